package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func pipelineRouter(apiKey string) *gin.Engine {
	r := gin.New()
	pipeline := r.Group("/pipeline", PipelineAuthMiddleware(apiKey))
	pipeline.POST("/forecast", func(c *gin.Context) {
		operator, err := OperatorID(c)
		if err != nil {
			RenderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"operator": operator})
	})
	return r
}

func postForecast(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/pipeline/forecast", http.NoBody)
	if key != "" {
		req.Header.Set(apiKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result), "body: %s", rec.Body.String())
	return result
}

func TestPipelineAuthMiddleware(t *testing.T) {
	const key = "nightly-forecast-key"

	tests := []struct {
		name       string
		configured string
		sent       string
		wantStatus int
		wantCode   string
	}{
		{name: "matching_key_reaches_handler", configured: key, sent: key, wantStatus: http.StatusOK},
		{name: "wrong_key", configured: key, sent: "other", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_API_KEY"},
		{name: "missing_key", configured: key, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_API_KEY"},
		{name: "prefix_of_key", configured: key, sent: key[:7], wantStatus: http.StatusUnauthorized, wantCode: "INVALID_API_KEY"},
		{name: "endpoints_disabled_without_key", sent: "anything", wantStatus: http.StatusServiceUnavailable, wantCode: "PIPELINE_NOT_CONFIGURED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForecast(pipelineRouter(tt.configured), tt.sent)
			require.Equal(t, tt.wantStatus, rec.Code)

			errObj, _ := parseBody(t, rec)["error"].(map[string]interface{})
			if tt.wantCode == "" {
				assert.Nil(t, errObj)
				return
			}
			assert.Equal(t, tt.wantCode, errObj["code"])
		})
	}

	t.Run("caller_recorded_as_pipeline_operator", func(t *testing.T) {
		rec := postForecast(pipelineRouter(key), key)
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, PipelineOperator, parseBody(t, rec)["operator"])
	})
}
