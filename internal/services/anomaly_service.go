package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	apperrors "stockwise/internal/errors"
	"stockwise/internal/forecast"
	"stockwise/internal/logger"
	"stockwise/internal/models"
	"stockwise/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// anomalyDetector flags outbound movements with an unusual quantity.
type anomalyDetector struct {
	db       *gorm.DB
	source   InventorySource
	annotate bool
	now      func() time.Time
}

// NewAnomalyDetector creates an AnomalyDetector. With annotate set, newly
// flagged transactions also get a marker appended to their remark.
func NewAnomalyDetector(db *gorm.DB, source InventorySource, annotate bool) AnomalyDetector {
	return &anomalyDetector{db: db, source: source, annotate: annotate, now: time.Now}
}

// DetectAnomalies scores every outbound transaction in the window against its
// material's window mean and population standard deviation. Materials with
// fewer than MinSamples transactions are not scored. Flags are persisted at
// most once per transaction; the report lists every flag found this run.
func (d *anomalyDetector) DetectAnomalies(ctx context.Context, opts DetectOptions) (*DetectionReport, error) {
	if opts.WindowDays <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "window_days must be positive")
	}

	log := logger.Named("anomaly")
	now := d.now().UTC()
	since := models.SnapshotDay(now).AddDate(0, 0, -opts.WindowDays)

	var txns []OutboundTransaction
	var err error
	if opts.MaterialID != "" {
		txns, err = d.source.ListOutboundTransactions(ctx, opts.MaterialID, since)
	} else {
		txns, err = d.source.ListOutboundSince(ctx, since)
	}
	if err != nil {
		return nil, err
	}

	byMaterial := make(map[string][]OutboundTransaction)
	for _, tx := range txns {
		byMaterial[tx.MaterialID] = append(byMaterial[tx.MaterialID], tx)
	}
	materialIDs := make([]string, 0, len(byMaterial))
	for id := range byMaterial {
		materialIDs = append(materialIDs, id)
	}
	sort.Strings(materialIDs)

	report := &DetectionReport{
		Flags:        []models.AnomalyFlag{},
		Skipped:      []models.SkippedMaterial{},
		ScannedCount: len(txns),
	}

	for _, materialID := range materialIDs {
		if err := ctx.Err(); err != nil {
			return report, cycleInterruption(err)
		}

		group := byMaterial[materialID]
		if len(group) < opts.MinSamples {
			continue
		}
		report.EvaluatedMaterials++

		quantities := make([]float64, len(group))
		for i, tx := range group {
			quantities[i] = tx.Quantity
		}
		mean, stdDev := forecast.PopulationStats(quantities)

		for _, tx := range group {
			z := forecast.ZScore(tx.Quantity, mean, stdDev)
			if !forecast.IsAnomalous(z, opts.ZThreshold, len(group), opts.MinSamples) {
				continue
			}

			flag := models.AnomalyFlag{
				RecordID:      tx.RecordID,
				MaterialID:    tx.MaterialID,
				MaterialName:  tx.MaterialName,
				Quantity:      tx.Quantity,
				Mean:          mean,
				StdDev:        stdDev,
				SampleSize:    len(group),
				ZScore:        z,
				Threshold:     opts.ZThreshold,
				Reason:        fmt.Sprintf("z-score %.2f exceeds %.2f", z, opts.ZThreshold),
				OperationTime: tx.OperationTime,
				DetectedAt:    now,
				RunID:         opts.RunID,
			}

			created, err := d.persistFlag(ctx, &flag)
			if err != nil {
				log.Errorw("failed to persist anomaly flag", "error", err, "record_id", tx.RecordID)
				report.Skipped = append(report.Skipped, models.SkippedMaterial{
					MaterialID: materialID,
					Reason:     fmt.Sprintf("record %s: %v", tx.RecordID, err),
				})
				continue
			}

			if created {
				report.NewFlags++
				if d.annotate {
					note := fmt.Sprintf(" [anomaly: z=%.2f detected_at=%s]", z, now.Format(time.RFC3339))
					if err := d.source.AppendTransactionAnnotation(ctx, tx.RecordID, note); err != nil {
						log.Warnw("failed to annotate flagged transaction", "error", err, "record_id", tx.RecordID)
					}
				}
			}
			report.Flags = append(report.Flags, flag)
		}
	}

	log.Infow("anomaly scan complete",
		"window_days", opts.WindowDays,
		"material_id", opts.MaterialID,
		"scanned", report.ScannedCount,
		"evaluated_materials", report.EvaluatedMaterials,
		"flags", len(report.Flags),
		"new_flags", report.NewFlags,
	)
	return report, nil
}

// persistFlag inserts flag unless its transaction is already flagged, in
// which case flag is replaced by the stored row.
func (d *anomalyDetector) persistFlag(ctx context.Context, flag *models.AnomalyFlag) (bool, error) {
	result := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_id"}},
		DoNothing: true,
	}).Create(flag)
	if result.Error != nil {
		return false, apperrors.Wrap(apperrors.ErrPersistence, result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var stored models.AnomalyFlag
	if err := d.db.WithContext(ctx).Where("record_id = ?", flag.RecordID).First(&stored).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrPersistence, err)
	}
	*flag = stored
	return false, nil
}

// ListFlags returns persisted flags, newest detection first.
func (d *anomalyDetector) ListFlags(ctx context.Context, filter AnomalyFlagFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AnomalyFlag], error) {
	page.Defaults()

	query := d.db.WithContext(ctx).Model(&models.AnomalyFlag{})
	if filter.MaterialID != "" {
		query = query.Where("material_id = ?", filter.MaterialID)
	}
	if filter.Since != nil {
		query = query.Where("detected_at >= ?", filter.Since.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	var flags []models.AnomalyFlag
	if err := query.Order("detected_at DESC, z_score DESC").
		Scopes(pagination.Paginate(page)).
		Find(&flags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrPersistence, err)
	}

	resp := pagination.NewPageResponse(flags, page.Page, page.PageSize, total)
	return &resp, nil
}
