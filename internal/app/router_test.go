package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stockwise/internal/config"
	"stockwise/internal/middleware"
	"stockwise/internal/models"
	"stockwise/internal/testutil"
	"stockwise/internal/validator"
)

const (
	testAPIKey    = "router-test-pipeline-key"
	testJWTSecret = "router-test-jwt-secret"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// dbPinger adapts a gorm handle to the health probe.
type dbPinger struct{ db *gorm.DB }

func (p dbPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// testApp holds the full application stack over an isolated database.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
	token  string
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	cfg := &config.Config{
		PipelineAPIKey: testAPIKey,
		JWTSecret:      testJWTSecret,
		Forecast:       config.DefaultForecastConfig(),
	}
	locker, closeFn, err := NewLocker(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	token, err := middleware.GenerateAccessToken(testJWTSecret, "op-7", "Operator Seven", time.Hour)
	require.NoError(t, err)

	svc := NewServices(db, cfg, locker)
	return &testApp{DB: db, Router: NewRouter(cfg, svc, dbPinger{db: db}), token: token}
}

// pipeline calls a pipeline endpoint with the API key.
func (app *testApp) pipeline(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pipeline"+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// request makes an operator request with the given bearer token.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result), "body: %s", rec.Body.String())
	return result
}

func decliningSeries(start, end float64, n int) []float64 {
	values := make([]float64, n)
	step := (start - end) / float64(n-1)
	for i := range values {
		values[i] = start - float64(i)*step
	}
	return values
}

func TestRouter_Auth(t *testing.T) {
	app := setupApp(t)

	t.Run("pipeline_without_key_is_401", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/v1/pipeline/forecast", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("operator_route_without_token_is_401", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/v1/alerts", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("operator_route_with_wrong_secret_is_401", func(t *testing.T) {
		token, err := middleware.GenerateAccessToken("other-secret", "op-7", "", time.Hour)
		require.NoError(t, err)
		rec := app.request(http.MethodGet, "/api/v1/alerts", "", token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("health_is_public", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/health", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", parseJSON(t, rec)["database"])
	})
}

func TestRouter_ShortageFlow(t *testing.T) {
	app := setupApp(t)

	m := testutil.CreateTestMaterialWithStock(t, app.DB, 100, testutil.Float(50), testutil.Float(500))
	testutil.AttachSupplier(t, app.DB, m, testutil.CreateTestSupplier(t, app.DB))
	testutil.CreateTestSnapshotSeries(t, app.DB, m.ID, decliningSeries(400, 100, 30))

	rec := app.pipeline("/forecast", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := parseJSON(t, rec)
	assert.Equal(t, string(models.CycleStateDone), result["state"])
	assert.EqualValues(t, 1, result["alerts_raised"])

	rec = app.request(http.MethodGet, "/api/v1/alerts?alert_type=predicted_shortage", "", app.token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := parseJSON(t, rec)
	data, ok := page["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)
	alert := data[0].(map[string]any)
	assert.Equal(t, m.ID, alert["material_id"])
	alertID, _ := alert["id"].(string)
	require.NotEmpty(t, alertID)

	rec = app.request(http.MethodGet, "/api/v1/alerts/recommendations", "", app.token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	recs := parseJSON(t, rec)["recommendations"].([]any)
	require.Len(t, recs, 1)
	assert.Equal(t, m.ID, recs[0].(map[string]any)["material_id"])

	rec = app.request(http.MethodGet, "/api/v1/alerts/recommendations/export", "", app.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "purchase_recommendations_")
	assert.NotZero(t, rec.Body.Len())

	rec = app.pipeline("/forecast", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, parseJSON(t, rec)["alerts_raised"], "rerun within the dedup window must not raise")

	rec = app.request(http.MethodPut, "/api/v1/alerts/"+alertID+"/handle", `{"remark":"ordered"}`, app.token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, parseJSON(t, rec)["handled"])

	var audits int64
	app.DB.Model(&models.AuditLog{}).Where("action = ? AND resource_id = ?", "HANDLE_ALERT", alertID).Count(&audits)
	assert.EqualValues(t, 1, audits)

	rec = app.request(http.MethodPut, "/api/v1/alerts/"+alertID+"/handle", "", app.token)
	assert.Equal(t, http.StatusNotFound, rec.Code, "an alert can only be handled once")

	rec = app.request(http.MethodGet, "/api/v1/alerts?status=unhandled", "", app.token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, parseJSON(t, rec)["total_items"])
}

func TestRouter_AnomalyFlow(t *testing.T) {
	app := setupApp(t)

	m := testutil.CreateTestMaterial(t, app.DB)
	now := time.Now().UTC()
	for i, q := range []float64{10, 10, 10, 10, 10, 10, 10, 90} {
		testutil.CreateTestOutbound(t, app.DB, m.ID, q, now.Add(-time.Duration(i+1)*time.Hour))
	}

	rec := app.pipeline("/anomalies", `{"window_days":7}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := parseJSON(t, rec)
	assert.Equal(t, string(models.CycleStateDone), result["state"])
	assert.EqualValues(t, 1, result["new_flags"])

	rec = app.request(http.MethodGet, "/api/v1/anomalies?material_id="+m.ID, "", app.token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := parseJSON(t, rec)
	assert.EqualValues(t, 1, page["total_items"])

	rec = app.pipeline("/anomalies", `{"window_days":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 0, parseJSON(t, rec)["new_flags"])

	rec = app.pipeline("/anomalies", `{"window_days":365}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
