package app

import (
	"context"
	"testing"

	"stockwise/internal/config"
	"stockwise/internal/models"
	"stockwise/internal/testutil"
)

func TestNewLocker(t *testing.T) {
	t.Run("local_lock_without_redis", func(t *testing.T) {
		locker, closeFn, err := NewLocker(context.Background(), &config.Config{})
		testutil.AssertNoError(t, err)
		defer func() { _ = closeFn() }()

		release, err := locker.Acquire(context.Background(), "forecast", 0)
		testutil.AssertNoError(t, err)
		release()
	})

	t.Run("unreachable_redis_is_an_error", func(t *testing.T) {
		_, _, err := NewLocker(context.Background(), &config.Config{RedisAddr: "127.0.0.1:1"})
		if err == nil {
			t.Fatal("expected error for unreachable redis")
		}
	})
}

func TestNewServices(t *testing.T) {
	t.Run("forecast_cycle_runs_end_to_end", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		m := testutil.CreateTestMaterial(t, db)
		testutil.CreateTestSnapshotSeries(t, db, m.ID, []float64{100, 100, 100, 100, 100, 100, 100})

		cfg := &config.Config{Forecast: config.DefaultForecastConfig()}
		locker, closeFn, err := NewLocker(context.Background(), cfg)
		testutil.AssertNoError(t, err)
		defer func() { _ = closeFn() }()

		svc := NewServices(db, cfg, locker)
		result, err := svc.Cycles.RunForecastCycle(context.Background())
		testutil.AssertNoError(t, err)

		if result.State != models.CycleStateDone {
			t.Fatalf("expected DONE, got %s (%s)", result.State, result.Message)
		}
		if result.HistorySynthesized {
			t.Error("expected existing history to be used")
		}
		if result.ProjectedCount != 1 {
			t.Errorf("expected 1 projection, got %d", result.ProjectedCount)
		}
		if result.AlertsRaised != 0 {
			t.Errorf("expected no alerts for flat stock, got %d", result.AlertsRaised)
		}
	})
}
