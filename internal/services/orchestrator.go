package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stockwise/internal/config"
	apperrors "stockwise/internal/errors"
	"stockwise/internal/logger"
	"stockwise/internal/metrics"
	"stockwise/internal/models"
	"stockwise/internal/uuid"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrchestratorDeps are the collaborators a CycleRunner drives.
type OrchestratorDeps struct {
	Source    InventorySource
	Snapshots SnapshotStorer
	History   HistorySynthesizer
	Trend     TrendEstimator
	Anomalies AnomalyDetector
	Alerts    AlertManager
	Locker    CycleLocker
}

// orchestrator runs the scheduled cycles and records each run in cycle_runs.
type orchestrator struct {
	db   *gorm.DB
	deps OrchestratorDeps
	cfg  config.ForecastConfig
	now  func() time.Time
}

// NewOrchestrator creates a CycleRunner. A nil Locker defaults to an
// in-process lock.
func NewOrchestrator(db *gorm.DB, deps OrchestratorDeps, cfg config.ForecastConfig) CycleRunner {
	if deps.Locker == nil {
		deps.Locker = NewLocalLocker()
	}
	return &orchestrator{db: db, deps: deps, cfg: cfg, now: time.Now}
}

// RunSnapshotCycle records the daily stock snapshot for asOf's day. A day
// after today is rejected before a run is opened.
func (o *orchestrator) RunSnapshotCycle(ctx context.Context, asOf time.Time) (*SnapshotResult, error) {
	if day := models.SnapshotDay(asOf); day.After(models.SnapshotDay(o.now())) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("snapshot day %s is in the future", day.Format(time.DateOnly)))
	}

	ctx, run, done, err := o.begin(ctx, models.CycleKindSnapshot)
	if err != nil {
		return nil, err
	}
	defer done()

	result := &SnapshotResult{RunID: run.ID, State: models.CycleStateIdle, AsOf: models.SnapshotDay(asOf)}
	n, err := o.deps.Snapshots.RecordSnapshot(ctx, asOf)
	if err != nil {
		result.State = models.CycleStateFailed
		result.Message = err.Error()
	} else {
		result.State = models.CycleStateDone
		result.Recorded = n
		if n == 0 {
			result.Message = "no active materials"
		}
	}

	run.ProcessedCount = result.Recorded
	o.finish(run, result.State, result.Message, nil)
	return result, nil
}

// RunForecastCycle ensures history, projects every active material and
// raises shortage and low-stock alerts. A failure on one material skips it;
// only a failure of the cycle itself ends in FAILED.
func (o *orchestrator) RunForecastCycle(ctx context.Context) (*ForecastResult, error) {
	ctx, run, done, err := o.begin(ctx, models.CycleKindForecast)
	if err != nil {
		return nil, err
	}
	defer done()

	log := o.log(run)
	machine := newCycleMachine()
	result := &ForecastResult{
		RunID:       run.ID,
		State:       models.CycleStateIdle,
		Projections: []TrendProjection{},
		Skipped:     []models.SkippedMaterial{},
	}

	fail := func(err error) (*ForecastResult, error) {
		log.Errorw("forecast cycle failed", "error", err, "state", machine.state, "projected", result.ProjectedCount)
		if terr := machine.advance(models.CycleStateFailed); terr != nil {
			log.Errorw("cycle transition rejected", "error", terr)
		}
		result.State = models.CycleStateFailed
		result.Message = err.Error()
		o.finishForecast(run, result)
		return result, nil
	}

	if err := machine.advance(models.CycleStateEnsuringHistory); err != nil {
		return fail(err)
	}
	synthesized, err := o.deps.History.EnsureHistory(ctx, o.cfg.HistoryMinDays, o.cfg.HistoryMinRows)
	if err != nil {
		return fail(fmt.Errorf("ensure history: %w", err))
	}
	result.HistorySynthesized = synthesized
	if synthesized {
		metrics.MarkHistorySynthesized()
	}

	materials, err := o.deps.Source.ListNormalMaterials(ctx)
	if err != nil {
		return fail(fmt.Errorf("list materials: %w", err))
	}
	if len(materials) == 0 {
		return fail(apperrors.ErrNoMaterials)
	}

	for _, m := range materials {
		if ctx.Err() != nil {
			return fail(o.interruptedError(ctx, result.ProjectedCount, len(materials)))
		}
		if err := machine.advance(models.CycleStateProjecting); err != nil {
			return fail(err)
		}

		projection, err := o.deps.Trend.Project(ctx, m)
		if err != nil {
			log.Warnw("skipping material", "material_id", m.ID, "error", err)
			result.Skipped = append(result.Skipped, models.SkippedMaterial{MaterialID: m.ID, Reason: err.Error()})
			continue
		}
		result.ProjectedCount++
		result.Projections = append(result.Projections, *projection)

		if err := machine.advance(models.CycleStateAlerting); err != nil {
			return fail(err)
		}
		if err := o.applyAlertRules(ctx, m, projection, result); err != nil {
			log.Warnw("alert rules failed", "material_id", m.ID, "error", err)
			result.Skipped = append(result.Skipped, models.SkippedMaterial{MaterialID: m.ID, Reason: err.Error()})
		}
	}
	if ctx.Err() != nil {
		return fail(o.interruptedError(ctx, result.ProjectedCount, len(materials)))
	}

	if err := machine.advance(models.CycleStateDone); err != nil {
		return fail(err)
	}
	result.State = machine.state
	if result.HistorySynthesized {
		result.Message = "forecast based on synthesized demo history"
	}

	log.Infow("forecast cycle complete",
		"projected", result.ProjectedCount,
		"alerts_raised", result.AlertsRaised,
		"alerts_refreshed", result.AlertsRefreshed,
		"low_stock_alerts", result.LowStockAlerts,
		"skipped", len(result.Skipped),
		"history_synthesized", result.HistorySynthesized,
	)
	o.finishForecast(run, result)
	return result, nil
}

// applyAlertRules raises a predicted_shortage alert for the projection and a
// low_stock alert for the current level, each against the safe minimum.
func (o *orchestrator) applyAlertRules(ctx context.Context, m models.Material, p *TrendProjection, result *ForecastResult) error {
	safeMin := *m.SafeStockMin

	outcome, err := o.deps.Alerts.GenerateShortageAlert(ctx, m.ID, p.ProjectedStock, safeMin)
	if err != nil {
		return err
	}
	metrics.ObserveAlert(string(models.AlertTypePredictedShortage), string(outcome))
	switch outcome {
	case AlertCreated:
		result.AlertsRaised++
	case AlertRefreshed:
		result.AlertsRefreshed++
	}

	outcome, err = o.deps.Alerts.GenerateLowStockAlert(ctx, m.ID, m.CurrentStock, safeMin)
	if err != nil {
		return err
	}
	metrics.ObserveAlert(string(models.AlertTypeLowStock), string(outcome))
	if outcome == AlertCreated {
		result.LowStockAlerts++
	}
	return nil
}

// RunAnomalyCycle scans the last scan.WindowDays days of outbound
// transactions, for one material when scan.MaterialID is set.
func (o *orchestrator) RunAnomalyCycle(ctx context.Context, scan AnomalyScan) (*AnomalyResult, error) {
	windowDays := scan.WindowDays
	if windowDays <= 0 {
		windowDays = o.cfg.AnomalyWindowDays
	}

	ctx, run, done, err := o.begin(ctx, models.CycleKindAnomaly)
	if err != nil {
		return nil, err
	}
	defer done()

	log := o.log(run)
	machine := newCycleMachine()
	result := &AnomalyResult{
		RunID:      run.ID,
		WindowDays: windowDays,
		MaterialID: scan.MaterialID,
		Flags:      []models.AnomalyFlag{},
		Skipped:    []models.SkippedMaterial{},
	}

	var report *DetectionReport
	err = machine.advance(models.CycleStateScanning)
	if err == nil {
		report, err = o.deps.Anomalies.DetectAnomalies(ctx, DetectOptions{
			WindowDays: windowDays,
			ZThreshold: o.cfg.AnomalyZThreshold,
			MinSamples: o.cfg.AnomalyMinSamples,
			RunID:      run.ID,
			MaterialID: scan.MaterialID,
		})
	}
	if err == nil {
		err = machine.advance(models.CycleStateDone)
	}
	if report != nil {
		result.ScannedCount = report.ScannedCount
		result.EvaluatedMaterials = report.EvaluatedMaterials
		result.NewFlags = report.NewFlags
		result.Flags = report.Flags
		result.Skipped = report.Skipped
	}
	metrics.AddAnomalies(result.NewFlags)

	result.State = machine.state
	if err != nil {
		log.Errorw("anomaly cycle failed", "error", err, "state", machine.state)
		if terr := machine.advance(models.CycleStateFailed); terr != nil {
			log.Errorw("cycle transition rejected", "error", terr)
		}
		result.State = models.CycleStateFailed
		result.Message = err.Error()
	}

	run.ProcessedCount = result.ScannedCount
	run.AlertsRaised = result.NewFlags
	o.finish(run, result.State, result.Message, result.Skipped)
	return result, nil
}

// RunMaintenance applies alert and snapshot retention.
func (o *orchestrator) RunMaintenance(ctx context.Context) (*MaintenanceResult, error) {
	ctx, run, done, err := o.begin(ctx, models.CycleKindMaintenance)
	if err != nil {
		return nil, err
	}
	defer done()

	result := &MaintenanceResult{RunID: run.ID, State: models.CycleStateDone}

	pruned, err := o.deps.Alerts.PruneStale(ctx)
	if err != nil {
		result.State = models.CycleStateFailed
		result.Message = err.Error()
		o.finish(run, result.State, result.Message, nil)
		return result, nil
	}
	result.ShortageAlerts = pruned.ShortageAlerts
	result.LowStockAlerts = pruned.LowStockAlerts

	if o.cfg.SnapshotRetentionDays > 0 {
		cutoff := o.now().UTC().AddDate(0, 0, -o.cfg.SnapshotRetentionDays)
		n, err := o.deps.Snapshots.PruneBefore(ctx, cutoff)
		if err != nil {
			result.State = models.CycleStateFailed
			result.Message = err.Error()
		}
		result.PrunedSnapshots = n
	}

	run.ProcessedCount = int(result.ShortageAlerts + result.LowStockAlerts + result.PrunedSnapshots)
	o.finish(run, result.State, result.Message, nil)
	return result, nil
}

// begin takes the kind's lock, applies the cycle time budget and opens a
// cycle_runs row. The returned func releases everything.
func (o *orchestrator) begin(ctx context.Context, kind models.CycleKind) (context.Context, *models.CycleRun, func(), error) {
	release, err := o.deps.Locker.Acquire(ctx, string(kind), o.cfg.CycleTimeout)
	if err != nil {
		return nil, nil, nil, err
	}

	cycleCtx, cancel := context.WithTimeout(ctx, o.cfg.CycleTimeout)
	run := &models.CycleRun{
		Base:      models.Base{ID: uuid.New()},
		Kind:      kind,
		State:     models.CycleStateIdle,
		StartedAt: o.now().UTC(),
	}
	if err := o.db.WithContext(cycleCtx).Create(run).Error; err != nil {
		logger.Named("orchestrator").Warnw("failed to record cycle start", "error", err, "kind", kind)
	}

	return cycleCtx, run, func() {
		cancel()
		release()
	}, nil
}

// finish stores the run outcome. It uses its own context since the cycle's
// may have expired.
func (o *orchestrator) finish(run *models.CycleRun, state models.CycleState, message string, skipped []models.SkippedMaterial) {
	finished := o.now().UTC()
	run.State = state
	run.Message = message
	run.FinishedAt = &finished
	if len(skipped) > 0 {
		if data, err := json.Marshal(skipped); err == nil {
			run.Skipped = datatypes.JSON(data)
		}
	}

	elapsed := finished.Sub(run.StartedAt)
	metrics.ObserveCycle(string(run.Kind), string(state), elapsed)
	metrics.AddSkipped(string(run.Kind), len(skipped))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.db.WithContext(ctx).Save(run).Error; err != nil {
		logger.Named("orchestrator").Warnw("failed to record cycle outcome", "error", err, "run_id", run.ID)
	}
}

func (o *orchestrator) finishForecast(run *models.CycleRun, result *ForecastResult) {
	run.HistorySynthesized = result.HistorySynthesized
	run.ProcessedCount = result.ProjectedCount
	run.AlertsRaised = result.AlertsRaised
	o.finish(run, result.State, result.Message, result.Skipped)
}

// interruptedError reports why ctx stopped the cycle after done of total
// materials. Only an expired budget is a timeout.
func (o *orchestrator) interruptedError(ctx context.Context, done, total int) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return apperrors.WithMessage(apperrors.ErrCycleCanceled,
			fmt.Sprintf("cycle canceled after %d of %d materials", done, total))
	}
	return apperrors.WithMessage(apperrors.ErrCycleTimeout,
		fmt.Sprintf("cycle exceeded %s after %d of %d materials", o.cfg.CycleTimeout, done, total))
}

// cycleInterruption maps a context error to the matching cycle error.
func cycleInterruption(err error) error {
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(apperrors.ErrCycleCanceled, err)
	}
	return apperrors.Wrap(apperrors.ErrCycleTimeout, err)
}

func (o *orchestrator) log(run *models.CycleRun) *zap.SugaredLogger {
	return logger.Named("orchestrator").With("run_id", run.ID, "kind", run.Kind)
}
