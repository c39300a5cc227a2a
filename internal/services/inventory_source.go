package services

import (
	"context"
	"time"

	apperrors "stockwise/internal/errors"
	"stockwise/internal/models"

	"gorm.io/gorm"
)

// inventorySource reads the inventory CRUD tables directly.
type inventorySource struct {
	db *gorm.DB
}

// NewInventorySource creates an InventorySource over the shared database.
func NewInventorySource(db *gorm.DB) InventorySource {
	return &inventorySource{db: db}
}

// ListNormalMaterials returns every material in status normal, ordered by id.
func (s *inventorySource) ListNormalMaterials(ctx context.Context) ([]models.Material, error) {
	var materials []models.Material
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.MaterialStatusNormal).
		Order("id ASC").
		Find(&materials).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return materials, nil
}

// ListOutboundTransactions returns one material's outbound movements at or
// after since, newest first.
func (s *inventorySource) ListOutboundTransactions(ctx context.Context, materialID string, since time.Time) ([]OutboundTransaction, error) {
	return s.outbound(ctx, s.db.WithContext(ctx).Where("r.material_id = ?", materialID), since)
}

// ListOutboundSince returns all outbound movements at or after since, newest first.
func (s *inventorySource) ListOutboundSince(ctx context.Context, since time.Time) ([]OutboundTransaction, error) {
	return s.outbound(ctx, s.db.WithContext(ctx), since)
}

func (s *inventorySource) outbound(ctx context.Context, query *gorm.DB, since time.Time) ([]OutboundTransaction, error) {
	var rows []OutboundTransaction
	err := query.Table("inout_records AS r").
		Select("r.id AS record_id, r.material_id, COALESCE(m.name, '') AS material_name, r.quantity, r.operation_time").
		Joins("LEFT JOIN materials m ON m.id = r.material_id").
		Where("r.inout_type = ? AND r.operation_time >= ?", models.InoutTypeOut, since.UTC()).
		Order("r.operation_time DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	return rows, nil
}

// AppendTransactionAnnotation appends text to a movement's remark, keeping
// whatever the remark already said.
func (s *inventorySource) AppendTransactionAnnotation(ctx context.Context, recordID, text string) error {
	result := s.db.WithContext(ctx).
		Model(&models.InoutRecord{}).
		Where("id = ?", recordID).
		Update("remark", gorm.Expr("COALESCE(remark, '') || ?", text))
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
