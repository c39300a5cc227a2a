// Package app wires the service graph shared by the API server and the
// scheduler.
package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stockwise/internal/config"
	"stockwise/internal/logger"
	"stockwise/internal/services"
)

// Services is the wired service graph.
type Services struct {
	Source    services.InventorySource
	Snapshots services.SnapshotStorer
	History   services.HistorySynthesizer
	Trend     services.TrendEstimator
	Anomalies services.AnomalyDetector
	Alerts    services.AlertManager
	Audit     services.AuditServicer
	Cycles    services.CycleRunner
}

// NewLocker returns a redis-backed cycle lock when REDIS_ADDR is set and an
// in-process one otherwise. The returned close func releases the connection.
func NewLocker(ctx context.Context, cfg *config.Config) (services.CycleLocker, func() error, error) {
	if cfg.RedisAddr == "" {
		logger.Named("app").Info("REDIS_ADDR not set, using in-process cycle lock")
		return services.NewLocalLocker(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.Named("app").Infow("using redis cycle lock", "addr", cfg.RedisAddr)
	return services.NewRedisLocker(client), client.Close, nil
}

// NewServices builds every service over db.
func NewServices(db *gorm.DB, cfg *config.Config, locker services.CycleLocker) *Services {
	f := cfg.Forecast
	seed := uint64(time.Now().UnixNano())

	source := services.NewInventorySource(db)
	snapshots := services.NewSnapshotStore(db, source)
	history := services.NewHistorySynthesizer(snapshots, source, f.HistorySpanDays, rand.New(rand.NewPCG(seed, seed>>1)))
	trend := services.NewTrendEstimator(snapshots, f.LookbackDays, f.MinTrendPoints, f.HorizonDays)
	anomalies := services.NewAnomalyDetector(db, source, f.AnnotateRemarks)
	alerts := services.NewAlertManager(db, snapshots, f)

	cycles := services.NewOrchestrator(db, services.OrchestratorDeps{
		Source:    source,
		Snapshots: snapshots,
		History:   history,
		Trend:     trend,
		Anomalies: anomalies,
		Alerts:    alerts,
		Locker:    locker,
	}, f)

	return &Services{
		Source:    source,
		Snapshots: snapshots,
		History:   history,
		Trend:     trend,
		Anomalies: anomalies,
		Alerts:    alerts,
		Audit:     services.NewAuditService(db),
		Cycles:    cycles,
	}
}
