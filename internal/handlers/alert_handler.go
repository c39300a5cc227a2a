package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "stockwise/internal/errors"
	"stockwise/internal/export"
	"stockwise/internal/logger"
	"stockwise/internal/models"
	"stockwise/internal/pagination"
	"stockwise/internal/services"
)

// AlertHandler serves the operator side of stock alerts.
type AlertHandler struct {
	alertService services.AlertManager
	auditService services.AuditServicer
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertService services.AlertManager, auditService services.AuditServicer) *AlertHandler {
	return &AlertHandler{alertService: alertService, auditService: auditService}
}

// ListAlertsQuery holds the alert listing filters.
type ListAlertsQuery struct {
	Status     string `form:"status" binding:"omitempty,alert_status"`
	AlertType  string `form:"alert_type" binding:"omitempty,alert_type"`
	MaterialID string `form:"material_id" binding:"omitempty,max=50"`
}

// HandleAlertRequest is the body of an alert acknowledgement.
type HandleAlertRequest struct {
	Remark string `json:"remark" binding:"max=500"`
}

// ListAlerts handles listing stock alerts.
// @Summary     List stock alerts
// @Description Paginated alerts, newest first, with optional status/type/material filters
// @Tags        alerts
// @Produce     json
// @Security    BearerAuth
// @Param       status      query string false "unhandled or handled"
// @Param       alert_type  query string false "predicted_shortage or low_stock"
// @Param       material_id query string false "Material ID"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.StockAlert] "Paginated alerts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /alerts [get]
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	var q ListAlertsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.AlertFilter{MaterialID: q.MaterialID}
	if q.Status != "" {
		status := models.AlertStatus(q.Status)
		filter.Status = &status
	}
	if q.AlertType != "" {
		alertType := models.AlertType(q.AlertType)
		filter.AlertType = &alertType
	}

	result, err := h.alertService.ListAlerts(c.Request.Context(), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListRecommendations handles the purchase recommendation list.
// @Summary     Purchase recommendations
// @Description Unhandled alerts from the recommendation window joined with material and supplier
// @Tags        alerts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]services.PurchaseRecommendation
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /alerts/recommendations [get]
func (h *AlertHandler) ListRecommendations(c *gin.Context) {
	recs, err := h.alertService.ListPurchaseRecommendations(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	if recs == nil {
		recs = []services.PurchaseRecommendation{}
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// ExportRecommendations streams the recommendation list as a workbook.
// @Summary     Export purchase recommendations
// @Tags        alerts
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Success     200 {file} file "xlsx workbook"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /alerts/recommendations/export [get]
func (h *AlertHandler) ExportRecommendations(c *gin.Context) {
	recs, err := h.alertService.ListPurchaseRecommendations(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	data, err := export.Recommendations(recs)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+export.Filename(time.Now())+"\"")
	c.Data(http.StatusOK, export.ContentType, data)
}

// HandleAlert marks an alert as handled by the calling operator.
// @Summary     Handle an alert
// @Tags        alerts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path     string             true  "Alert ID"
// @Param       request body     HandleAlertRequest false "Handling remark"
// @Success     200     {object} map[string]bool
// @Failure     400     {object} ErrorResponse "Invalid input"
// @Failure     401     {object} ErrorResponse "Unauthorized"
// @Failure     404     {object} ErrorResponse "Alert not found or already handled"
// @Router      /alerts/{id}/handle [put]
func (h *AlertHandler) HandleAlert(c *gin.Context) {
	operatorID, err := getOperatorID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alertID, err := parsePathID(c, "id", apperrors.ErrAlertNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req HandleAlertRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	ok, err := h.alertService.HandleAlert(c.Request.Context(), alertID, operatorID, req.Remark)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if !ok {
		respondWithError(c, apperrors.ErrAlertNotFound)
		return
	}

	h.auditService.Record(c.Request.Context(), services.AuditEntry{
		OperatorID:   operatorID,
		Action:       models.AuditActionHandleAlert,
		ResourceType: "stock_alert",
		ResourceID:   alertID,
		IPAddress:    c.ClientIP(),
		Changes:      map[string]any{"status": models.AlertStatusHandled, "remark": req.Remark},
	})
	logger.Named("alerts").Infow("alert handled", "alert_id", alertID, "operator_id", operatorID)

	c.JSON(http.StatusOK, gin.H{"handled": true})
}

// GetAccuracy reports how elapsed shortage predictions turned out.
// @Summary     Forecast accuracy
// @Tags        forecast
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.AccuracyStats
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /forecast/accuracy [get]
func (h *AlertHandler) GetAccuracy(c *gin.Context) {
	stats, err := h.alertService.GetAccuracyStats(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
