package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	apperrors "stockwise/internal/errors"
	"stockwise/internal/export"
	"stockwise/internal/models"
	"stockwise/internal/pagination"
	"stockwise/internal/services"
)

// --- mock alert manager ---

type mockAlertManager struct {
	handleAlertFn     func(ctx context.Context, alertID, operatorID, remark string) (bool, error)
	listAlertsFn      func(ctx context.Context, filter services.AlertFilter, page pagination.PageRequest) (*pagination.PageResponse[models.StockAlert], error)
	recommendationsFn func(ctx context.Context) ([]services.PurchaseRecommendation, error)
	accuracyFn        func(ctx context.Context) (*services.AccuracyStats, error)
}

var _ services.AlertManager = (*mockAlertManager)(nil)

func (m *mockAlertManager) GenerateShortageAlert(_ context.Context, _ string, _, _ float64) (services.AlertOutcome, error) {
	return services.AlertNotNeeded, nil
}

func (m *mockAlertManager) GenerateLowStockAlert(_ context.Context, _ string, _, _ float64) (services.AlertOutcome, error) {
	return services.AlertNotNeeded, nil
}

func (m *mockAlertManager) HandleAlert(ctx context.Context, alertID, operatorID, remark string) (bool, error) {
	if m.handleAlertFn != nil {
		return m.handleAlertFn(ctx, alertID, operatorID, remark)
	}
	return true, nil
}

func (m *mockAlertManager) ListAlerts(ctx context.Context, filter services.AlertFilter, page pagination.PageRequest) (*pagination.PageResponse[models.StockAlert], error) {
	if m.listAlertsFn != nil {
		return m.listAlertsFn(ctx, filter, page)
	}
	resp := pagination.NewPageResponse([]models.StockAlert{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAlertManager) ListPurchaseRecommendations(ctx context.Context) ([]services.PurchaseRecommendation, error) {
	if m.recommendationsFn != nil {
		return m.recommendationsFn(ctx)
	}
	return nil, nil
}

func (m *mockAlertManager) GetAccuracyStats(ctx context.Context) (*services.AccuracyStats, error) {
	if m.accuracyFn != nil {
		return m.accuracyFn(ctx)
	}
	return &services.AccuracyStats{}, nil
}

func (m *mockAlertManager) PruneStale(_ context.Context) (*services.PruneResult, error) {
	return &services.PruneResult{}, nil
}

// --- router setup ---

func setupAlertRouter(handler *AlertHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectOperatorID("op-7"))
	auth.GET("/alerts", handler.ListAlerts)
	auth.GET("/alerts/recommendations", handler.ListRecommendations)
	auth.GET("/alerts/recommendations/export", handler.ExportRecommendations)
	auth.PUT("/alerts/:id/handle", handler.HandleAlert)
	auth.GET("/forecast/accuracy", handler.GetAccuracy)
	// No operator in context
	r.PUT("/anon/alerts/:id/handle", handler.HandleAlert)
	return r
}

// --- tests ---

func TestAlertHandler_ListAlerts(t *testing.T) {
	t.Run("passes_filters_and_page", func(t *testing.T) {
		var gotFilter services.AlertFilter
		var gotPage pagination.PageRequest
		svc := &mockAlertManager{
			listAlertsFn: func(_ context.Context, filter services.AlertFilter, page pagination.PageRequest) (*pagination.PageResponse[models.StockAlert], error) {
				gotFilter, gotPage = filter, page
				alerts := []models.StockAlert{{MaterialID: "M001", AlertType: models.AlertTypeLowStock}}
				resp := pagination.NewPageResponse(alerts, 2, 5, 6)
				return &resp, nil
			},
		}
		r := setupAlertRouter(NewAlertHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/alerts?status=unhandled&alert_type=low_stock&material_id=M001&page=2&page_size=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.Status == nil || *gotFilter.Status != models.AlertStatusUnhandled {
			t.Errorf("expected status filter unhandled, got %v", gotFilter.Status)
		}
		if gotFilter.AlertType == nil || *gotFilter.AlertType != models.AlertTypeLowStock {
			t.Errorf("expected alert_type filter low_stock, got %v", gotFilter.AlertType)
		}
		if gotFilter.MaterialID != "M001" {
			t.Errorf("expected material filter M001, got %q", gotFilter.MaterialID)
		}
		if gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("expected page 2/5, got %d/%d", gotPage.Page, gotPage.PageSize)
		}
		result := parseJSON(t, rec)
		if result["total_pages"].(float64) != 2 {
			t.Errorf("expected total_pages=2, got %v", result["total_pages"])
		}
	})

	t.Run("no_filters_are_nil", func(t *testing.T) {
		var gotFilter services.AlertFilter
		svc := &mockAlertManager{
			listAlertsFn: func(_ context.Context, filter services.AlertFilter, _ pagination.PageRequest) (*pagination.PageResponse[models.StockAlert], error) {
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.StockAlert{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupAlertRouter(NewAlertHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/alerts", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.Status != nil || gotFilter.AlertType != nil {
			t.Errorf("expected no filters, got %+v", gotFilter)
		}
	})

	t.Run("returns_400_for_unknown_status", func(t *testing.T) {
		r := setupAlertRouter(NewAlertHandler(&mockAlertManager{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/alerts?status=archived", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns_400_for_unknown_type", func(t *testing.T) {
		r := setupAlertRouter(NewAlertHandler(&mockAlertManager{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/alerts?alert_type=overstock", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns_400_for_oversized_page", func(t *testing.T) {
		r := setupAlertRouter(NewAlertHandler(&mockAlertManager{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/alerts?page_size=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestAlertHandler_ListRecommendations(t *testing.T) {
	t.Run("empty_list_is_array", func(t *testing.T) {
		r := setupAlertRouter(NewAlertHandler(&mockAlertManager{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/alerts/recommendations", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		recs, ok := parseJSON(t, rec)["recommendations"].([]interface{})
		if !ok || len(recs) != 0 {
			t.Errorf("expected empty array, got %s", rec.Body.String())
		}
	})

	t.Run("returns_500_on_service_error", func(t *testing.T) {
		svc := &mockAlertManager{
			recommendationsFn: func(_ context.Context) ([]services.PurchaseRecommendation, error) {
				return nil, errors.New("db down")
			},
		}
		r := setupAlertRouter(NewAlertHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/alerts/recommendations", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "INTERNAL_ERROR")
	})
}

func TestAlertHandler_ExportRecommendations(t *testing.T) {
	t.Run("returns_workbook", func(t *testing.T) {
		svc := &mockAlertManager{
			recommendationsFn: func(_ context.Context) ([]services.PurchaseRecommendation, error) {
				return []services.PurchaseRecommendation{{
					MaterialID:       "M001",
					MaterialName:     "Steel bolt",
					AlertType:        models.AlertTypePredictedShortage,
					RequiredQuantity: 8,
					AlertTime:        time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC),
				}}, nil
			},
		}
		r := setupAlertRouter(NewAlertHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/alerts/recommendations/export", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != export.ContentType {
			t.Errorf("expected xlsx content type, got %q", ct)
		}
		if rec.Header().Get("Content-Disposition") == "" {
			t.Error("expected Content-Disposition header")
		}
		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		if err != nil {
			t.Fatalf("workbook did not open: %v", err)
		}
		defer f.Close()
		rows, err := f.GetRows(export.SheetName)
		if err != nil {
			t.Fatalf("GetRows: %v", err)
		}
		if len(rows) != 2 || rows[1][0] != "M001" {
			t.Errorf("unexpected rows: %v", rows)
		}
	})
}

const testAlertID = "0190a5e2-7c1b-7d3a-8f00-112233445566"

func TestAlertHandler_HandleAlert(t *testing.T) {
	t.Run("handles_and_audits", func(t *testing.T) {
		var gotID, gotOperator, gotRemark string
		svc := &mockAlertManager{
			handleAlertFn: func(_ context.Context, alertID, operatorID, remark string) (bool, error) {
				gotID, gotOperator, gotRemark = alertID, operatorID, remark
				return true, nil
			},
		}
		audit := &mockAuditService{}
		r := setupAlertRouter(NewAlertHandler(svc, audit))

		rec := doRequest(r, "PUT", "/alerts/"+testAlertID+"/handle", `{"remark":"ordered 200"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotID != testAlertID || gotOperator != "op-7" || gotRemark != "ordered 200" {
			t.Errorf("unexpected call: id=%q operator=%q remark=%q", gotID, gotOperator, gotRemark)
		}
		if len(audit.calls) != 1 {
			t.Fatalf("expected 1 audit entry, got %d", len(audit.calls))
		}
		if audit.calls[0].Action != models.AuditActionHandleAlert || audit.calls[0].ResourceID != testAlertID {
			t.Errorf("unexpected audit entry: %+v", audit.calls[0])
		}
	})

	t.Run("body_is_optional", func(t *testing.T) {
		r := setupAlertRouter(NewAlertHandler(&mockAlertManager{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/alerts/"+testAlertID+"/handle", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns_404_when_not_open", func(t *testing.T) {
		svc := &mockAlertManager{
			handleAlertFn: func(_ context.Context, _, _, _ string) (bool, error) {
				return false, nil
			},
		}
		audit := &mockAuditService{}
		r := setupAlertRouter(NewAlertHandler(svc, audit))

		rec := doRequest(r, "PUT", "/alerts/0190a5e2-0000-7000-8000-000000000000/handle", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "ALERT_NOT_FOUND")
		if len(audit.calls) != 0 {
			t.Errorf("expected no audit entry, got %d", len(audit.calls))
		}
	})

	t.Run("returns_404_for_malformed_id", func(t *testing.T) {
		called := false
		svc := &mockAlertManager{
			handleAlertFn: func(_ context.Context, _, _, _ string) (bool, error) {
				called = true
				return true, nil
			},
		}
		audit := &mockAuditService{}
		r := setupAlertRouter(NewAlertHandler(svc, audit))

		rec := doRequest(r, "PUT", "/alerts/not-a-uuid/handle", `{"remark":"x"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "ALERT_NOT_FOUND")
		if called {
			t.Error("alert service should not be called for a malformed id")
		}
		if len(audit.calls) != 0 {
			t.Errorf("expected no audit entry, got %d", len(audit.calls))
		}
	})

	t.Run("passes_canonical_id", func(t *testing.T) {
		var gotID string
		svc := &mockAlertManager{
			handleAlertFn: func(_ context.Context, alertID, _, _ string) (bool, error) {
				gotID = alertID
				return true, nil
			},
		}
		r := setupAlertRouter(NewAlertHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/alerts/"+strings.ToUpper(testAlertID)+"/handle", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotID != testAlertID {
			t.Errorf("expected canonical id %q, got %q", testAlertID, gotID)
		}
	})

	t.Run("returns_401_without_operator", func(t *testing.T) {
		r := setupAlertRouter(NewAlertHandler(&mockAlertManager{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/anon/alerts/"+testAlertID+"/handle", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns_500_on_persistence_error", func(t *testing.T) {
		svc := &mockAlertManager{
			handleAlertFn: func(_ context.Context, _, _, _ string) (bool, error) {
				return false, apperrors.Wrap(apperrors.ErrPersistence, errors.New("locked"))
			},
		}
		r := setupAlertRouter(NewAlertHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/alerts/"+testAlertID+"/handle", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "PERSISTENCE_ERROR")
	})
}

func TestAlertHandler_GetAccuracy(t *testing.T) {
	t.Run("returns_stats", func(t *testing.T) {
		svc := &mockAlertManager{
			accuracyFn: func(_ context.Context) (*services.AccuracyStats, error) {
				return &services.AccuracyStats{TotalPredictions: 4, AccurateCount: 3, AccuracyRate: 75, AvgAbsError: 6.5, HorizonDays: 14}, nil
			},
		}
		r := setupAlertRouter(NewAlertHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/forecast/accuracy", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["accuracy_rate"].(float64) != 75 {
			t.Errorf("expected accuracy_rate=75, got %v", result["accuracy_rate"])
		}
		if result["total_predictions"].(float64) != 4 {
			t.Errorf("expected total_predictions=4, got %v", result["total_predictions"])
		}
	})
}
