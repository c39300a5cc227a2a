package services

import (
	"context"
	"errors"
	"time"

	"stockwise/internal/config"
	apperrors "stockwise/internal/errors"
	"stockwise/internal/logger"
	"stockwise/internal/models"
	"stockwise/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// alertService owns stock_alerts.
type alertService struct {
	db        *gorm.DB
	snapshots SnapshotStorer
	cfg       config.ForecastConfig
	locks     *keyedMutex
	now       func() time.Time
}

// NewAlertManager creates an AlertManager. snapshots is used to score past
// predictions against what actually happened.
func NewAlertManager(db *gorm.DB, snapshots SnapshotStorer, cfg config.ForecastConfig) AlertManager {
	return &alertService{
		db:        db,
		snapshots: snapshots,
		cfg:       cfg,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

// GenerateShortageAlert raises a predicted_shortage alert when projectedStock
// is strictly below safeMin.
func (s *alertService) GenerateShortageAlert(ctx context.Context, materialID string, projectedStock, safeMin float64) (AlertOutcome, error) {
	if !(projectedStock < safeMin) {
		return AlertNotNeeded, nil
	}
	return s.raise(ctx, materialID, models.AlertTypePredictedShortage, projectedStock, safeMin)
}

// GenerateLowStockAlert raises a low_stock alert when currentStock is strictly
// below safeMin.
func (s *alertService) GenerateLowStockAlert(ctx context.Context, materialID string, currentStock, safeMin float64) (AlertOutcome, error) {
	if !(currentStock < safeMin) {
		return AlertNotNeeded, nil
	}
	return s.raise(ctx, materialID, models.AlertTypeLowStock, currentStock, safeMin)
}

// raise keeps at most one unhandled alert per (material, type). An open alert
// younger than the dedup window suppresses the new one; an older one is
// refreshed in place with the latest figures.
func (s *alertService) raise(ctx context.Context, materialID string, alertType models.AlertType, stock, threshold float64) (AlertOutcome, error) {
	unlock := s.locks.Lock(materialID + "|" + string(alertType))
	defer unlock()

	now := s.now().UTC()
	db := s.db.WithContext(ctx)

	var existing models.StockAlert
	err := db.Where("material_id = ? AND alert_type = ? AND status = ?", materialID, alertType, models.AlertStatusUnhandled).
		Order("alert_time DESC").
		First(&existing).Error

	switch {
	case err == nil:
		if now.Sub(existing.AlertTime) < s.cfg.DedupWindow {
			return AlertSuppressed, nil
		}
		if err := db.Model(&existing).Updates(map[string]interface{}{
			"current_stock":  stock,
			"safe_threshold": threshold,
			"alert_time":     now,
		}).Error; err != nil {
			return "", apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		return AlertRefreshed, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		alert := &models.StockAlert{
			MaterialID:    materialID,
			AlertType:     alertType,
			CurrentStock:  stock,
			SafeThreshold: threshold,
			AlertTime:     now,
			Status:        models.AlertStatusUnhandled,
		}
		// Another process may have inserted the same open alert since the
		// read above; the partial unique index turns that into a no-op.
		result := db.Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "material_id"}, {Name: "alert_type"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "status = 'unhandled'"}}},
			DoNothing:   true,
		}).Create(alert)
		if result.Error != nil {
			return "", apperrors.Wrap(apperrors.ErrPersistence, result.Error)
		}
		if result.RowsAffected == 0 {
			return AlertSuppressed, nil
		}
		return AlertCreated, nil

	default:
		return "", apperrors.Wrap(apperrors.ErrPersistence, err)
	}
}

// HandleAlert marks an unhandled alert handled. It returns false when the
// alert does not exist or was already handled.
func (s *alertService) HandleAlert(ctx context.Context, alertID, operatorID, remark string) (bool, error) {
	now := s.now().UTC()
	result := s.db.WithContext(ctx).
		Model(&models.StockAlert{}).
		Where("id = ? AND status = ?", alertID, models.AlertStatusUnhandled).
		Updates(map[string]interface{}{
			"status":        models.AlertStatusHandled,
			"handle_time":   now,
			"handled_by":    operatorID,
			"handle_remark": remark,
		})
	if result.Error != nil {
		return false, apperrors.Wrap(apperrors.ErrPersistence, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListAlerts returns alerts matching filter, newest first.
func (s *alertService) ListAlerts(ctx context.Context, filter AlertFilter, page pagination.PageRequest) (*pagination.PageResponse[models.StockAlert], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.StockAlert{})
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.AlertType != nil {
		base = base.Where("alert_type = ?", *filter.AlertType)
	}
	if filter.MaterialID != "" {
		base = base.Where("material_id = ?", filter.MaterialID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var alerts []models.StockAlert
	if err := base.Order("alert_time DESC").Scopes(pagination.Paginate(page)).Find(&alerts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	result := pagination.NewPageResponse(alerts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ListPurchaseRecommendations returns unhandled alerts raised within the
// recommendation window, with material and supplier details, largest
// shortfall first.
func (s *alertService) ListPurchaseRecommendations(ctx context.Context) ([]PurchaseRecommendation, error) {
	since := s.now().UTC().AddDate(0, 0, -s.cfg.RecommendationWindowDays)

	var rows []PurchaseRecommendation
	err := s.db.WithContext(ctx).
		Table("stock_alerts AS sa").
		Select(`sa.id AS alert_id, sa.alert_type, sa.material_id,
			m.name AS material_name, COALESCE(m.specification, '') AS specification, COALESCE(m.unit, '') AS unit,
			sa.current_stock AS predicted_stock, sa.safe_threshold,
			(sa.safe_threshold - sa.current_stock) AS required_quantity,
			COALESCE(sup.name, '') AS supplier_name, COALESCE(sup.contact_person, '') AS contact_person,
			COALESCE(sup.phone, '') AS phone, sa.alert_time`).
		Joins("JOIN materials m ON m.id = sa.material_id").
		Joins("LEFT JOIN suppliers sup ON sup.id = m.supplier_id").
		Where("sa.status = ? AND sa.alert_time >= ?", models.AlertStatusUnhandled, since).
		Order("required_quantity DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	if rows == nil {
		rows = []PurchaseRecommendation{}
	}
	return rows, nil
}

// GetAccuracyStats scores every predicted_shortage alert whose horizon has
// elapsed and whose target day has a snapshot. A prediction counts as
// accurate when the actual stock on that day was below the threshold.
func (s *alertService) GetAccuracyStats(ctx context.Context) (*AccuracyStats, error) {
	horizon := s.cfg.HorizonDays
	cutoff := s.now().UTC().AddDate(0, 0, -horizon)

	var alerts []models.StockAlert
	if err := s.db.WithContext(ctx).
		Where("alert_type = ? AND alert_time <= ?", models.AlertTypePredictedShortage, cutoff).
		Find(&alerts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	stats := &AccuracyStats{HorizonDays: horizon}
	var absErr float64
	for _, a := range alerts {
		target := models.SnapshotDay(a.AlertTime).AddDate(0, 0, horizon)
		snap, err := s.snapshots.StockOn(ctx, a.MaterialID, target)
		if errors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		stats.TotalPredictions++
		if snap.StockQuantity < a.SafeThreshold {
			stats.AccurateCount++
		}
		diff := snap.StockQuantity - a.CurrentStock
		if diff < 0 {
			diff = -diff
		}
		absErr += diff
	}

	if stats.TotalPredictions > 0 {
		stats.AccuracyRate = float64(stats.AccurateCount) / float64(stats.TotalPredictions) * 100
		stats.AvgAbsError = absErr / float64(stats.TotalPredictions)
	}
	return stats, nil
}

// PruneStale deletes unhandled alerts past their retention: predicted
// shortages after ShortageRetentionDays, low-stock alerts after
// LowStockRetentionDays. Handled alerts are history and are kept.
func (s *alertService) PruneStale(ctx context.Context) (*PruneResult, error) {
	now := s.now().UTC()
	db := s.db.WithContext(ctx)

	shortage := db.Where("alert_type = ? AND status = ? AND alert_time < ?",
		models.AlertTypePredictedShortage, models.AlertStatusUnhandled, now.AddDate(0, 0, -s.cfg.ShortageRetentionDays)).
		Delete(&models.StockAlert{})
	if shortage.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, shortage.Error)
	}

	lowStock := db.Where("alert_type = ? AND status = ? AND alert_time < ?",
		models.AlertTypeLowStock, models.AlertStatusUnhandled, now.AddDate(0, 0, -s.cfg.LowStockRetentionDays)).
		Delete(&models.StockAlert{})
	if lowStock.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, lowStock.Error)
	}

	logger.Named("alerts").Infow("pruned stale alerts",
		"predicted_shortage", shortage.RowsAffected,
		"low_stock", lowStock.RowsAffected,
	)
	return &PruneResult{ShortageAlerts: shortage.RowsAffected, LowStockAlerts: lowStock.RowsAffected}, nil
}
