package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "stockwise/internal/errors"
	"stockwise/internal/logger"
	"stockwise/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// snapshotStore owns stock_snapshots.
type snapshotStore struct {
	db     *gorm.DB
	source InventorySource
	now    func() time.Time

	schemaMu    sync.Mutex
	schemaReady bool
}

// NewSnapshotStore creates a SnapshotStorer reading current stock from source.
func NewSnapshotStore(db *gorm.DB, source InventorySource) SnapshotStorer {
	return &snapshotStore{db: db, source: source, now: time.Now}
}

// ensureSchema creates the snapshot table on first use when migrations have
// not been applied. A failed attempt is retried on the next call.
func (s *snapshotStore) ensureSchema(ctx context.Context) error {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()

	if s.schemaReady {
		return nil
	}
	db := s.db.WithContext(ctx)
	if !db.Migrator().HasTable(&models.StockSnapshot{}) {
		if err := db.AutoMigrate(&models.StockSnapshot{}); err != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, err)
		}
		logger.Named("snapshots").Info("created stock_snapshots table")
	}
	s.schemaReady = true
	return nil
}

// RecordSnapshot writes asOf's UTC day of stock for every active material.
// Re-running on the same day overwrites that day's rows, including synthetic
// ones. A day after today is rejected. A past day only fills gaps for
// materials that already have a later snapshot, leaving their history intact.
func (s *snapshotStore) RecordSnapshot(ctx context.Context, asOf time.Time) (int, error) {
	day := models.SnapshotDay(asOf)
	if day.After(models.SnapshotDay(s.now())) {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("snapshot day %s is in the future", day.Format(time.DateOnly)))
	}
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}

	materials, err := s.source.ListNormalMaterials(ctx)
	if err != nil {
		return 0, err
	}
	if len(materials) == 0 {
		return 0, nil
	}

	ids := make([]string, len(materials))
	for i, m := range materials {
		ids[i] = m.ID
	}
	var settled []string
	if err := s.db.WithContext(ctx).Model(&models.StockSnapshot{}).
		Where("snapshot_date > ? AND material_id IN ?", day, ids).
		Distinct().Pluck("material_id", &settled).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	hasLater := make(map[string]bool, len(settled))
	for _, id := range settled {
		hasLater[id] = true
	}

	var current, backfill []models.StockSnapshot
	for _, m := range materials {
		row := models.StockSnapshot{
			MaterialID:    m.ID,
			SnapshotDate:  day,
			StockQuantity: m.CurrentStock,
			SafeStockMin:  m.SafeStockMin,
			SafeStockMax:  m.SafeStockMax,
		}
		if hasLater[m.ID] {
			backfill = append(backfill, row)
		} else {
			current = append(current, row)
		}
	}

	if len(current) > 0 {
		err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "material_id"}, {Name: "snapshot_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"stock_quantity", "safe_stock_min", "safe_stock_max", "synthetic", "updated_at"}),
		}).CreateInBatches(&current, 200).Error
		if err != nil {
			return 0, apperrors.Wrap(apperrors.ErrPersistence, err)
		}
	}

	filled, err := s.InsertIfAbsent(ctx, backfill)
	if err != nil {
		return len(current), err
	}
	if len(backfill) > 0 {
		logger.Named("snapshots").Infow("backdated snapshot kept later history",
			"day", day.Format(time.DateOnly),
			"materials", len(backfill),
			"filled", filled,
		)
	}
	return len(current) + filled, nil
}

// InsertIfAbsent stores snapshots, leaving any existing (material, day) row
// untouched. It returns the number of rows actually inserted.
func (s *snapshotStore) InsertIfAbsent(ctx context.Context, snapshots []models.StockSnapshot) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}

	inserted := 0
	for i := range snapshots {
		snapshots[i].SnapshotDate = models.SnapshotDay(snapshots[i].SnapshotDate)
		result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "material_id"}, {Name: "snapshot_date"}},
			DoNothing: true,
		}).Create(&snapshots[i])
		if result.Error != nil {
			return inserted, apperrors.Wrap(apperrors.ErrPersistence, result.Error)
		}
		inserted += int(result.RowsAffected)
	}
	return inserted, nil
}

// CountSince counts snapshot rows dated on or after since's UTC day.
func (s *snapshotStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.StockSnapshot{}).
		Where("snapshot_date >= ?", models.SnapshotDay(since)).
		Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return count, nil
}

// RecentSeries returns up to limit of the material's most recent snapshots in
// ascending date order.
func (s *snapshotStore) RecentSeries(ctx context.Context, materialID string, limit int) ([]models.StockSnapshot, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	var rows []models.StockSnapshot
	if err := s.db.WithContext(ctx).
		Where("material_id = ?", materialID).
		Order("snapshot_date DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// StockOn returns the material's snapshot for day, or ErrNotFound.
func (s *snapshotStore) StockOn(ctx context.Context, materialID string, day time.Time) (*models.StockSnapshot, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	var snap models.StockSnapshot
	err := s.db.WithContext(ctx).
		Where("material_id = ? AND snapshot_date = ?", materialID, models.SnapshotDay(day)).
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return &snap, nil
}

// PruneBefore deletes snapshots dated before cutoff's UTC day.
func (s *snapshotStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}

	result := s.db.WithContext(ctx).
		Where("snapshot_date < ?", models.SnapshotDay(cutoff)).
		Delete(&models.StockSnapshot{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrPersistence, result.Error)
	}
	return result.RowsAffected, nil
}
