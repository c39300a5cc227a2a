package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "stockwise/internal/errors"
)

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging(), ErrorHandler(), Recovery())
	r.GET("/app", func(c *gin.Context) { _ = c.Error(apperrors.ErrAlertNotFound) })
	r.GET("/raw", func(c *gin.Context) { _ = c.Error(errors.New("db exploded")) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	tests := []struct {
		path       string
		wantStatus int
		wantCode   string
	}{
		{"/app", http.StatusNotFound, "ALERT_NOT_FOUND"},
		{"/raw", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/panic", http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			req.Header.Set("X-Request-ID", "req-1")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			errObj, _ := parseBody(t, rec)["error"].(map[string]interface{})
			if code, _ := errObj["code"].(string); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
			if rec.Header().Get("X-Request-ID") != "req-1" {
				t.Errorf("expected request id to be echoed")
			}
		})
	}
}

func TestRenderError_DoesNotLeakInternal(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		RenderError(c, apperrors.Wrap(apperrors.ErrPersistence, errors.New("pq: password authentication failed")))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", http.NoBody))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	errObj, _ := parseBody(t, rec)["error"].(map[string]interface{})
	if msg, _ := errObj["message"].(string); msg != apperrors.ErrPersistence.Message {
		t.Errorf("unexpected message %q", msg)
	}
}
