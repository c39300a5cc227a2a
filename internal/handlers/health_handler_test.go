package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

type mockPinger struct {
	err error
}

func (m mockPinger) Ping(_ context.Context) error { return m.err }

func TestHealthHandler_Health(t *testing.T) {
	t.Run("returns_200_when_database_reachable", func(t *testing.T) {
		r := gin.New()
		r.GET("/api/health", NewHealthHandler(mockPinger{}).Health)

		rec := doRequest(r, "GET", "/api/health", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["status"] != "ok" {
			t.Errorf("expected status ok")
		}
	})

	t.Run("returns_503_when_database_down", func(t *testing.T) {
		r := gin.New()
		r.GET("/api/health", NewHealthHandler(mockPinger{err: errors.New("refused")}).Health)

		rec := doRequest(r, "GET", "/api/health", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["database"] != "unreachable" {
			t.Errorf("expected database unreachable")
		}
	})
}
