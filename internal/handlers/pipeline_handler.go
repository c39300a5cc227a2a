package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "stockwise/internal/errors"
	"stockwise/internal/models"
	"stockwise/internal/services"
)

// PipelineHandler exposes the scheduled cycles to the pipeline caller.
type PipelineHandler struct {
	cycles services.CycleRunner
	now    func() time.Time
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(cycles services.CycleRunner) *PipelineHandler {
	return &PipelineHandler{cycles: cycles, now: time.Now}
}

// RunSnapshotsRequest is the optional body of a snapshot run.
type RunSnapshotsRequest struct {
	AsOf string `json:"as_of" binding:"omitempty,iso_date"`
}

// RunAnomaliesRequest is the optional body of an anomaly scan.
type RunAnomaliesRequest struct {
	WindowDays int    `json:"window_days" binding:"omitempty,min=1,max=90"`
	MaterialID string `json:"material_id" binding:"omitempty,max=64"`
}

// cycleContext detaches a cycle from the request. A cycle the caller stops
// waiting for still runs to its own time budget.
func cycleContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// bindOptionalJSON binds a JSON body when one was sent.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	return nil
}

// RunSnapshots records today's stock snapshot, or the one for a past as_of.
// @Summary     Record stock snapshots
// @Description Upsert one snapshot per active material for the given day (pipeline endpoint)
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header   string               true  "Pipeline API key"
// @Param       request   body     RunSnapshotsRequest  false "Snapshot day"
// @Success     200       {object} services.SnapshotResult
// @Failure     400       {object} ErrorResponse "Invalid input"
// @Failure     401       {object} ErrorResponse "Invalid API key"
// @Failure     409       {object} ErrorResponse "Cycle already running"
// @Router      /pipeline/snapshots [post]
func (h *PipelineHandler) RunSnapshots(c *gin.Context) {
	var req RunSnapshotsRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	day, err := parseDay(req.AsOf, "as_of")
	if err != nil {
		respondWithError(c, err)
		return
	}
	asOf := h.now().UTC()
	if day != nil {
		if day.After(models.SnapshotDay(asOf)) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "as_of must not be in the future"))
			return
		}
		asOf = *day
	}

	result, err := h.cycles.RunSnapshotCycle(cycleContext(c), asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunForecast runs one forecasting cycle.
// @Summary     Run forecast cycle
// @Description Ensure history, project every active material and raise shortage alerts
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header   string true "Pipeline API key"
// @Success     200       {object} services.ForecastResult
// @Failure     401       {object} ErrorResponse "Invalid API key"
// @Failure     409       {object} ErrorResponse "Cycle already running"
// @Router      /pipeline/forecast [post]
func (h *PipelineHandler) RunForecast(c *gin.Context) {
	result, err := h.cycles.RunForecastCycle(cycleContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunAnomalies runs one anomaly scan.
// @Summary     Run anomaly scan
// @Description Flag outbound transactions whose z-score exceeds the threshold
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Param       X-API-Key header   string               true  "Pipeline API key"
// @Param       request   body     RunAnomaliesRequest  false "Scan window"
// @Success     200       {object} services.AnomalyResult
// @Failure     400       {object} ErrorResponse "Invalid input"
// @Failure     401       {object} ErrorResponse "Invalid API key"
// @Failure     409       {object} ErrorResponse "Cycle already running"
// @Router      /pipeline/anomalies [post]
func (h *PipelineHandler) RunAnomalies(c *gin.Context) {
	var req RunAnomaliesRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.cycles.RunAnomalyCycle(cycleContext(c), services.AnomalyScan{
		WindowDays: req.WindowDays,
		MaterialID: req.MaterialID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunMaintenance prunes stale alerts and snapshots.
// @Summary     Run retention pass
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header   string true "Pipeline API key"
// @Success     200       {object} services.MaintenanceResult
// @Failure     401       {object} ErrorResponse "Invalid API key"
// @Failure     409       {object} ErrorResponse "Cycle already running"
// @Router      /pipeline/maintenance [post]
func (h *PipelineHandler) RunMaintenance(c *gin.Context) {
	result, err := h.cycles.RunMaintenance(cycleContext(c))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
