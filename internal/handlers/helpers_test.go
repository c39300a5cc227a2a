package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"stockwise/internal/middleware"
	"stockwise/internal/services"
	"stockwise/internal/validator"
)

// --- mock audit service ---

type mockAuditService struct {
	mu    sync.Mutex
	calls []services.AuditEntry
}

var _ services.AuditServicer = (*mockAuditService)(nil)

func (m *mockAuditService) Record(_ context.Context, entry services.AuditEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, entry)
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectOperatorID(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetOperatorID(c, id)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
