package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "stockwise/internal/errors"
	"stockwise/internal/pagination"
	"stockwise/internal/services"
)

// AnomalyHandler lists persisted anomaly flags.
type AnomalyHandler struct {
	detector services.AnomalyDetector
}

// NewAnomalyHandler creates a new AnomalyHandler.
func NewAnomalyHandler(detector services.AnomalyDetector) *AnomalyHandler {
	return &AnomalyHandler{detector: detector}
}

// ListAnomaliesQuery holds the flag listing filters.
type ListAnomaliesQuery struct {
	MaterialID string `form:"material_id" binding:"omitempty,max=50"`
	Since      string `form:"since" binding:"omitempty,iso_date"`
}

// ListAnomalies handles listing anomaly flags.
// @Summary     List anomaly flags
// @Description Paginated anomaly flags, most recent detection first
// @Tags        anomalies
// @Produce     json
// @Security    BearerAuth
// @Param       material_id query string false "Material ID"
// @Param       since       query string false "Only flags detected on or after this day (YYYY-MM-DD)"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AnomalyFlag] "Paginated flags"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /anomalies [get]
func (h *AnomalyHandler) ListAnomalies(c *gin.Context) {
	var q ListAnomaliesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	since, err := parseDay(q.Since, "since")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.detector.ListFlags(c.Request.Context(),
		services.AnomalyFlagFilter{MaterialID: q.MaterialID, Since: since}, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
