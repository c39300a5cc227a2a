package services

import (
	"context"

	apperrors "stockwise/internal/errors"
	"stockwise/internal/forecast"
	"stockwise/internal/models"
)

// trendEstimator fits a linear trend over recent snapshots.
type trendEstimator struct {
	snapshots    SnapshotStorer
	lookbackDays int
	minPoints    int
	horizonDays  int
}

// NewTrendEstimator creates a TrendEstimator over the lookbackDays most
// recent snapshots, projecting horizonDays ahead.
func NewTrendEstimator(snapshots SnapshotStorer, lookbackDays, minPoints, horizonDays int) TrendEstimator {
	return &trendEstimator{
		snapshots:    snapshots,
		lookbackDays: lookbackDays,
		minPoints:    minPoints,
		horizonDays:  horizonDays,
	}
}

// EstimateTrend returns the material's normalized daily rate and the number
// of snapshots it was fitted on. Too little data yields rate 0, not an error.
func (e *trendEstimator) EstimateTrend(ctx context.Context, materialID string) (float64, int, error) {
	series, err := e.snapshots.RecentSeries(ctx, materialID, e.lookbackDays)
	if err != nil {
		return 0, 0, err
	}

	ys := make([]float64, len(series))
	for i, snap := range series {
		ys[i] = snap.StockQuantity
	}
	return forecast.LinearTrend(ys, e.minPoints), len(ys), nil
}

// ProjectStock extrapolates current over the configured horizon.
func (e *trendEstimator) ProjectStock(current, rate float64) float64 {
	return forecast.ProjectStock(current, rate, e.horizonDays)
}

// Project estimates and projects one material. Materials without a safe
// minimum cannot be judged and are rejected.
func (e *trendEstimator) Project(ctx context.Context, material models.Material) (*TrendProjection, error) {
	if material.SafeStockMin == nil {
		return nil, apperrors.ErrMissingBounds
	}

	rate, points, err := e.EstimateTrend(ctx, material.ID)
	if err != nil {
		return nil, err
	}

	return &TrendProjection{
		MaterialID:     material.ID,
		CurrentStock:   material.CurrentStock,
		DailyRate:      rate,
		ProjectedStock: e.ProjectStock(material.CurrentStock, rate),
		HorizonDays:    e.horizonDays,
		DataPoints:     points,
	}, nil
}
