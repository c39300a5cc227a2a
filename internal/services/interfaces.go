package services

import (
	"context"
	"time"

	"stockwise/internal/models"
	"stockwise/internal/pagination"
)

// OutboundTransaction is one outbound stock movement as seen by the anomaly
// detector.
type OutboundTransaction struct {
	RecordID      string    `json:"record_id"`
	MaterialID    string    `json:"material_id"`
	MaterialName  string    `json:"material_name"`
	Quantity      float64   `json:"quantity"`
	OperationTime time.Time `json:"operation_time"`
}

// InventorySource is the read side of the inventory CRUD layer plus the one
// write this service is allowed: appending to a transaction remark.
type InventorySource interface {
	ListNormalMaterials(ctx context.Context) ([]models.Material, error)
	ListOutboundTransactions(ctx context.Context, materialID string, since time.Time) ([]OutboundTransaction, error)
	ListOutboundSince(ctx context.Context, since time.Time) ([]OutboundTransaction, error)
	AppendTransactionAnnotation(ctx context.Context, recordID, text string) error
}

// SnapshotStorer owns the daily stock snapshot table.
type SnapshotStorer interface {
	RecordSnapshot(ctx context.Context, asOf time.Time) (int, error)
	InsertIfAbsent(ctx context.Context, snapshots []models.StockSnapshot) (int, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	RecentSeries(ctx context.Context, materialID string, limit int) ([]models.StockSnapshot, error)
	StockOn(ctx context.Context, materialID string, day time.Time) (*models.StockSnapshot, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistorySynthesizer seeds demo history when the snapshot table is too sparse.
type HistorySynthesizer interface {
	EnsureHistory(ctx context.Context, minDays, minRows int) (bool, error)
}

// TrendProjection is the outcome of projecting one material.
type TrendProjection struct {
	MaterialID     string  `json:"material_id"`
	CurrentStock   float64 `json:"current_stock"`
	DailyRate      float64 `json:"daily_rate"`
	ProjectedStock float64 `json:"projected_stock"`
	HorizonDays    int     `json:"horizon_days"`
	DataPoints     int     `json:"data_points"`
}

// TrendEstimator turns snapshot history into a daily change rate.
type TrendEstimator interface {
	EstimateTrend(ctx context.Context, materialID string) (rate float64, points int, err error)
	ProjectStock(current, rate float64) float64
	Project(ctx context.Context, material models.Material) (*TrendProjection, error)
}

// DetectOptions tunes one anomaly scan.
type DetectOptions struct {
	WindowDays int
	ZThreshold float64
	MinSamples int
	RunID      string
	// MaterialID limits the scan to one material when set.
	MaterialID string
}

// DetectionReport is the outcome of one anomaly scan.
type DetectionReport struct {
	Flags              []models.AnomalyFlag     `json:"flags"`
	NewFlags           int                      `json:"new_flags"`
	ScannedCount       int                      `json:"scanned_count"`
	EvaluatedMaterials int                      `json:"evaluated_materials"`
	Skipped            []models.SkippedMaterial `json:"skipped"`
}

// AnomalyFlagFilter narrows ListFlags.
type AnomalyFlagFilter struct {
	MaterialID string
	Since      *time.Time
}

// AnomalyDetector scores outbound quantities against each material's recent
// distribution.
type AnomalyDetector interface {
	DetectAnomalies(ctx context.Context, opts DetectOptions) (*DetectionReport, error)
	ListFlags(ctx context.Context, filter AnomalyFlagFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AnomalyFlag], error)
}

// AlertOutcome says what an alert rule did.
type AlertOutcome string

const (
	AlertNotNeeded  AlertOutcome = "not_needed"
	AlertCreated    AlertOutcome = "created"
	AlertRefreshed  AlertOutcome = "refreshed"
	AlertSuppressed AlertOutcome = "suppressed"
)

// AlertFilter narrows ListAlerts.
type AlertFilter struct {
	Status     *models.AlertStatus
	AlertType  *models.AlertType
	MaterialID string
}

// PurchaseRecommendation is an unhandled recent alert joined with its
// material and supplier.
type PurchaseRecommendation struct {
	AlertID          string           `json:"alert_id"`
	AlertType        models.AlertType `json:"alert_type"`
	MaterialID       string           `json:"material_id"`
	MaterialName     string           `json:"material_name"`
	Specification    string           `json:"specification"`
	Unit             string           `json:"unit"`
	PredictedStock   float64          `json:"predicted_stock"`
	SafeThreshold    float64          `json:"safe_threshold"`
	RequiredQuantity float64          `json:"required_quantity"`
	SupplierName     string           `json:"supplier_name"`
	ContactPerson    string           `json:"contact_person"`
	Phone            string           `json:"phone"`
	AlertTime        time.Time        `json:"alert_time"`
}

// AccuracyStats compares elapsed shortage predictions with what happened.
type AccuracyStats struct {
	TotalPredictions int     `json:"total_predictions"`
	AccurateCount    int     `json:"accurate_count"`
	AccuracyRate     float64 `json:"accuracy_rate"`
	AvgAbsError      float64 `json:"avg_abs_error"`
	HorizonDays      int     `json:"horizon_days"`
}

// PruneResult counts rows removed by retention.
type PruneResult struct {
	ShortageAlerts int64 `json:"shortage_alerts"`
	LowStockAlerts int64 `json:"low_stock_alerts"`
}

// AlertManager owns the stock_alerts table.
type AlertManager interface {
	GenerateShortageAlert(ctx context.Context, materialID string, projectedStock, safeMin float64) (AlertOutcome, error)
	GenerateLowStockAlert(ctx context.Context, materialID string, currentStock, safeMin float64) (AlertOutcome, error)
	HandleAlert(ctx context.Context, alertID, operatorID, remark string) (bool, error)
	ListAlerts(ctx context.Context, filter AlertFilter, page pagination.PageRequest) (*pagination.PageResponse[models.StockAlert], error)
	ListPurchaseRecommendations(ctx context.Context) ([]PurchaseRecommendation, error)
	GetAccuracyStats(ctx context.Context) (*AccuracyStats, error)
	PruneStale(ctx context.Context) (*PruneResult, error)
}

// SnapshotResult is the outcome of a snapshot cycle.
type SnapshotResult struct {
	RunID    string            `json:"run_id"`
	State    models.CycleState `json:"state"`
	Message  string            `json:"message,omitempty"`
	AsOf     time.Time         `json:"as_of"`
	Recorded int               `json:"recorded"`
}

// ForecastResult is the outcome of a forecast cycle.
type ForecastResult struct {
	RunID              string                   `json:"run_id"`
	State              models.CycleState        `json:"state"`
	Message            string                   `json:"message,omitempty"`
	HistorySynthesized bool                     `json:"history_synthesized"`
	ProjectedCount     int                      `json:"projected_count"`
	AlertsRaised       int                      `json:"alerts_raised"`
	AlertsRefreshed    int                      `json:"alerts_refreshed"`
	LowStockAlerts     int                      `json:"low_stock_alerts"`
	Projections        []TrendProjection        `json:"projections"`
	Skipped            []models.SkippedMaterial `json:"skipped"`
}

// AnomalyResult is the outcome of an anomaly cycle.
type AnomalyResult struct {
	RunID              string                   `json:"run_id"`
	State              models.CycleState        `json:"state"`
	Message            string                   `json:"message,omitempty"`
	WindowDays         int                      `json:"window_days"`
	MaterialID         string                   `json:"material_id,omitempty"`
	ScannedCount       int                      `json:"scanned_count"`
	EvaluatedMaterials int                      `json:"evaluated_materials"`
	NewFlags           int                      `json:"new_flags"`
	Flags              []models.AnomalyFlag     `json:"flags"`
	Skipped            []models.SkippedMaterial `json:"skipped"`
}

// MaintenanceResult is the outcome of a retention pass.
type MaintenanceResult struct {
	RunID           string            `json:"run_id"`
	State           models.CycleState `json:"state"`
	Message         string            `json:"message,omitempty"`
	ShortageAlerts  int64             `json:"pruned_shortage_alerts"`
	LowStockAlerts  int64             `json:"pruned_low_stock_alerts"`
	PrunedSnapshots int64             `json:"pruned_snapshots"`
}

// AnomalyScan selects what one anomaly cycle covers. A non-positive
// WindowDays uses the configured default and an empty MaterialID scans every
// material.
type AnomalyScan struct {
	WindowDays int
	MaterialID string
}

// CycleRunner drives the scheduled jobs. Cycle-level failures come back as a
// result in state FAILED; the error return is reserved for cycles that never
// started, such as lock contention.
type CycleRunner interface {
	RunSnapshotCycle(ctx context.Context, asOf time.Time) (*SnapshotResult, error)
	RunForecastCycle(ctx context.Context) (*ForecastResult, error)
	RunAnomalyCycle(ctx context.Context, scan AnomalyScan) (*AnomalyResult, error)
	RunMaintenance(ctx context.Context) (*MaintenanceResult, error)
}

// CycleLocker prevents two cycles of one kind from overlapping.
type CycleLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// AuditServicer records operator actions.
type AuditServicer interface {
	Record(ctx context.Context, entry AuditEntry)
}
