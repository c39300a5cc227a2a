// Package client provides an HTTP client for the stockwise API, used by
// stockctl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"stockwise/internal/models"
	"stockwise/internal/pagination"
	"stockwise/internal/services"
)

// APIError is a non-2xx response carrying the service error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// StockwiseClient talks to the pipeline routes with an API key and to the
// operator routes with a bearer token.
type StockwiseClient struct {
	baseURL    string
	apiKey     string
	token      string
	httpClient *http.Client
}

// NewStockwiseClient creates a new API client. Either credential may be empty
// when the caller only uses the other surface.
func NewStockwiseClient(baseURL, apiKey, token string, httpClient *http.Client) *StockwiseClient {
	return &StockwiseClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		token:      token,
		httpClient: httpClient,
	}
}

type auth int

const (
	pipelineAuth auth = iota
	operatorAuth
)

// RunSnapshots records snapshots for asOf (YYYY-MM-DD), or today when empty.
func (c *StockwiseClient) RunSnapshots(ctx context.Context, asOf string) (*services.SnapshotResult, error) {
	var body any
	if asOf != "" {
		body = map[string]string{"as_of": asOf}
	}
	var result services.SnapshotResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/pipeline/snapshots", pipelineAuth, body, &result); err != nil {
		return nil, fmt.Errorf("running snapshots: %w", err)
	}
	return &result, nil
}

// RunForecast runs one forecasting cycle.
func (c *StockwiseClient) RunForecast(ctx context.Context) (*services.ForecastResult, error) {
	var result services.ForecastResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/pipeline/forecast", pipelineAuth, nil, &result); err != nil {
		return nil, fmt.Errorf("running forecast: %w", err)
	}
	return &result, nil
}

// RunAnomalies runs one anomaly scan. Zero fields use the server defaults.
func (c *StockwiseClient) RunAnomalies(ctx context.Context, scan services.AnomalyScan) (*services.AnomalyResult, error) {
	var body any
	if scan.WindowDays > 0 || scan.MaterialID != "" {
		req := map[string]any{}
		if scan.WindowDays > 0 {
			req["window_days"] = scan.WindowDays
		}
		if scan.MaterialID != "" {
			req["material_id"] = scan.MaterialID
		}
		body = req
	}
	var result services.AnomalyResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/pipeline/anomalies", pipelineAuth, body, &result); err != nil {
		return nil, fmt.Errorf("running anomaly scan: %w", err)
	}
	return &result, nil
}

// RunMaintenance runs one retention pass.
func (c *StockwiseClient) RunMaintenance(ctx context.Context) (*services.MaintenanceResult, error) {
	var result services.MaintenanceResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/pipeline/maintenance", pipelineAuth, nil, &result); err != nil {
		return nil, fmt.Errorf("running maintenance: %w", err)
	}
	return &result, nil
}

// ListAlerts fetches one page of alerts. Empty filters are omitted.
func (c *StockwiseClient) ListAlerts(ctx context.Context, status, alertType string, page, pageSize int) (*pagination.PageResponse[models.StockAlert], error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if alertType != "" {
		q.Set("alert_type", alertType)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	path := "/api/v1/alerts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result pagination.PageResponse[models.StockAlert]
	if err := c.do(ctx, http.MethodGet, path, operatorAuth, nil, &result); err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	return &result, nil
}

// ListRecommendations fetches the purchase recommendation list.
func (c *StockwiseClient) ListRecommendations(ctx context.Context) ([]services.PurchaseRecommendation, error) {
	var result struct {
		Recommendations []services.PurchaseRecommendation `json:"recommendations"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/alerts/recommendations", operatorAuth, nil, &result); err != nil {
		return nil, fmt.Errorf("listing recommendations: %w", err)
	}
	return result.Recommendations, nil
}

// ExportRecommendations copies the recommendation workbook to w.
func (c *StockwiseClient) ExportRecommendations(ctx context.Context, w io.Writer) (int64, error) {
	resp, err := c.send(ctx, http.MethodGet, "/api/v1/alerts/recommendations/export", operatorAuth, nil)
	if err != nil {
		return 0, fmt.Errorf("exporting recommendations: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("exporting recommendations: %w", err)
	}
	return n, nil
}

// HandleAlert marks an alert handled with an optional remark.
func (c *StockwiseClient) HandleAlert(ctx context.Context, alertID, remark string) error {
	body := map[string]string{"remark": remark}
	if err := c.do(ctx, http.MethodPut, "/api/v1/alerts/"+url.PathEscape(alertID)+"/handle", operatorAuth, body, nil); err != nil {
		return fmt.Errorf("handling alert %s: %w", alertID, err)
	}
	return nil
}

// GetAccuracy fetches forecast accuracy statistics.
func (c *StockwiseClient) GetAccuracy(ctx context.Context) (*services.AccuracyStats, error) {
	var result services.AccuracyStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/forecast/accuracy", operatorAuth, nil, &result); err != nil {
		return nil, fmt.Errorf("fetching accuracy: %w", err)
	}
	return &result, nil
}

func (c *StockwiseClient) do(ctx context.Context, method, path string, a auth, body, out any) error {
	resp, err := c.send(ctx, method, path, a, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// send issues the request and turns non-2xx responses into *APIError.
func (c *StockwiseClient) send(ctx context.Context, method, path string, a auth, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch a {
	case pipelineAuth:
		req.Header.Set("X-API-Key", c.apiKey)
	case operatorAuth:
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return nil, apiErr
	}
	return resp, nil
}
