package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockwise/internal/app"
	"stockwise/internal/config"
	"stockwise/internal/database"
	"stockwise/internal/logger"
	"stockwise/internal/metrics"
	"stockwise/internal/scheduler"
)

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Named("scheduler")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	locker, closeLocker, err := app.NewLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLocker() }()

	svc := app.NewServices(dbManager.DB(), cfg, locker)

	sched, err := scheduler.New(svc.Cycles, cfg.Schedule)
	if err != nil {
		return err
	}

	// One-shot mode: `scheduler run forecast`.
	if len(os.Args) > 2 && os.Args[1] == "run" {
		return sched.Run(os.Args[2])
	}

	metricsSrv := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warnw("metrics listener stopped", "error", err)
		}
	}()

	sched.Start(ctx)
	log.Info("Scheduler started")
	<-ctx.Done()

	log.Info("Stopping scheduler")
	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Forecast.CycleTimeout)
	defer cancel()
	_ = metricsSrv.Shutdown(stopCtx)
	return sched.Stop(stopCtx)
}
