package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/services"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *StockwiseClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewStockwiseClient(server.URL+"/", "test-key", "test-token", server.Client())
}

func TestRunSnapshots(t *testing.T) {
	t.Run("sends_as_of_with_api_key", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/pipeline/snapshots", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
			assert.Empty(t, r.Header.Get("Authorization"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "2026-03-01", body["as_of"])

			_ = json.NewEncoder(w).Encode(map[string]any{"run_id": "r1", "state": "DONE", "recorded": 12})
		})

		result, err := c.RunSnapshots(context.Background(), "2026-03-01")
		require.NoError(t, err)
		assert.Equal(t, "r1", result.RunID)
		assert.Equal(t, 12, result.Recorded)
	})

	t.Run("omits_body_without_as_of", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			assert.Empty(t, raw)
			_ = json.NewEncoder(w).Encode(map[string]any{"state": "DONE"})
		})

		_, err := c.RunSnapshots(context.Background(), "")
		require.NoError(t, err)
	})
}

func TestRunForecast(t *testing.T) {
	t.Run("decodes_result", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/pipeline/forecast", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"state":               "DONE",
				"history_synthesized": true,
				"projected_count":     3,
				"alerts_raised":       1,
				"skipped":             []map[string]string{{"material_id": "M9", "reason": "MISSING_SAFE_BOUNDS"}},
			})
		})

		result, err := c.RunForecast(context.Background())
		require.NoError(t, err)
		assert.True(t, result.HistorySynthesized)
		assert.Equal(t, 3, result.ProjectedCount)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "M9", result.Skipped[0].MaterialID)
	})

	t.Run("conflict_is_api_error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "CYCLE_IN_PROGRESS", "message": "A cycle of this kind is already running"},
			})
		})

		_, err := c.RunForecast(context.Background())
		require.Error(t, err)

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
		assert.Equal(t, "CYCLE_IN_PROGRESS", apiErr.Code)
		assert.Contains(t, err.Error(), "unexpected status 409")
	})

	t.Run("non_json_error_body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("bad gateway"))
		})

		_, err := c.RunForecast(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status 502")
	})
}

func TestRunAnomalies(t *testing.T) {
	t.Run("window_only", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(14), body["window_days"])
			assert.NotContains(t, body, "material_id")
			_ = json.NewEncoder(w).Encode(map[string]any{"state": "DONE", "window_days": 14, "new_flags": 2})
		})

		result, err := c.RunAnomalies(context.Background(), services.AnomalyScan{WindowDays: 14})
		require.NoError(t, err)
		assert.Equal(t, 2, result.NewFlags)
	})

	t.Run("single_material", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "M001", body["material_id"])
			assert.NotContains(t, body, "window_days")
			_ = json.NewEncoder(w).Encode(map[string]any{"state": "DONE", "window_days": 7, "material_id": "M001"})
		})

		result, err := c.RunAnomalies(context.Background(), services.AnomalyScan{MaterialID: "M001"})
		require.NoError(t, err)
		assert.Equal(t, "M001", result.MaterialID)
	})
}

func TestListAlerts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/alerts", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "unhandled", r.URL.Query().Get("status"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Empty(t, r.URL.Query().Get("alert_type"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":        []map[string]any{{"id": "a1", "material_id": "M001", "alert_type": "low_stock"}},
			"page":        2,
			"page_size":   20,
			"total_items": 21,
			"total_pages": 2,
		})
	})

	page, err := c.ListAlerts(context.Background(), "unhandled", "", 2, 0)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "M001", page.Data[0].MaterialID)
	assert.Equal(t, int64(21), page.TotalItems)
}

func TestListRecommendations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"recommendations": []map[string]any{{"material_id": "M001", "required_quantity": 8}},
		})
	})

	recs, err := c.ListRecommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.InDelta(t, 8, recs[0].RequiredQuantity, 1e-9)
}

func TestExportRecommendations(t *testing.T) {
	payload := []byte("PK\x03\x04workbook")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/alerts/recommendations/export", r.URL.Path)
		_, _ = w.Write(payload)
	})

	var buf bytes.Buffer
	n, err := c.ExportRecommendations(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, buf.Bytes())
}

func TestHandleAlert(t *testing.T) {
	t.Run("sends_remark", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/api/v1/alerts/a-1/handle", r.URL.Path)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ordered", body["remark"])
			_ = json.NewEncoder(w).Encode(map[string]bool{"handled": true})
		})

		require.NoError(t, c.HandleAlert(context.Background(), "a-1", "ordered"))
	})

	t.Run("not_found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "ALERT_NOT_FOUND", "message": "Alert not found or already handled"},
			})
		})

		err := c.HandleAlert(context.Background(), "a-1", "")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "ALERT_NOT_FOUND", apiErr.Code)
	})
}

func TestGetAccuracy(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"total_predictions": 4, "accurate_count": 3, "accuracy_rate": 75.0})
	})

	stats, err := c.GetAccuracy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalPredictions)
	assert.InDelta(t, 75.0, stats.AccuracyRate, 1e-9)
}
