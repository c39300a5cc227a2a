package services

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"stockwise/internal/forecast"
	"stockwise/internal/logger"
	"stockwise/internal/models"
)

// historySynthesizer back-fills plausible demo snapshots so a fresh
// deployment can forecast before real history has accumulated. Synthetic
// rows are marked as such and never overwrite real ones.
type historySynthesizer struct {
	snapshots SnapshotStorer
	source    InventorySource
	spanDays  int
	now       func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewHistorySynthesizer creates a HistorySynthesizer writing spanDays+1 days
// of history (today included). A nil rng gets a randomly seeded one.
func NewHistorySynthesizer(snapshots SnapshotStorer, source InventorySource, spanDays int, rng *rand.Rand) HistorySynthesizer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &historySynthesizer{
		snapshots: snapshots,
		source:    source,
		spanDays:  spanDays,
		now:       time.Now,
		rng:       rng,
	}
}

// EnsureHistory synthesizes history when fewer than minRows snapshots exist
// in the last minDays days. It reports whether synthesis ran.
func (h *historySynthesizer) EnsureHistory(ctx context.Context, minDays, minRows int) (bool, error) {
	log := logger.Named("history")
	today := models.SnapshotDay(h.now())

	count, err := h.snapshots.CountSince(ctx, today.AddDate(0, 0, -minDays))
	if err != nil {
		return false, err
	}
	if count >= int64(minRows) {
		return false, nil
	}

	materials, err := h.source.ListNormalMaterials(ctx)
	if err != nil {
		return false, err
	}
	if len(materials) == 0 {
		log.Warn("snapshot history is sparse but there are no active materials to synthesize")
		return false, nil
	}

	rows := make([]models.StockSnapshot, 0, len(materials)*(h.spanDays+1))
	h.rngMu.Lock()
	for _, m := range materials {
		for i := h.spanDays; i >= 0; i-- {
			factor := forecast.JitterFactor(h.rng.Float64())
			rows = append(rows, models.StockSnapshot{
				MaterialID:    m.ID,
				SnapshotDate:  today.AddDate(0, 0, -i),
				StockQuantity: forecast.SynthesizeStock(m.CurrentStock, factor, m.SafeStockMin, m.SafeStockMax),
				SafeStockMin:  m.SafeStockMin,
				SafeStockMax:  m.SafeStockMax,
				Synthetic:     true,
			})
		}
	}
	h.rngMu.Unlock()

	inserted, err := h.snapshots.InsertIfAbsent(ctx, rows)
	if err != nil {
		return false, err
	}

	log.Warnw("synthesized demo snapshot history; forecasts are not based on real data",
		"materials", len(materials),
		"rows_inserted", inserted,
		"existing_rows", count,
	)
	return true, nil
}
