package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "stockwise/internal/errors"
	"stockwise/internal/logger"
)

// PipelineOperator is recorded as the operator of scheduler-triggered calls.
const PipelineOperator = "pipeline"

const apiKeyHeader = "X-API-Key"

// PipelineAuthMiddleware guards the cycle-trigger endpoints with the shared
// API key. With no key configured the endpoints are disabled outright.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	expected := []byte(apiKey)
	return func(c *gin.Context) {
		if len(expected) == 0 {
			RenderError(c, apperrors.ErrPipelineDisabled)
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.GetHeader(apiKeyHeader)), expected) != 1 {
			logger.Named("http").Warnw("rejected pipeline call",
				"path", c.FullPath(),
				"client_ip", c.ClientIP(),
				"request_id", c.GetString(requestIDKey),
			)
			RenderError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Set(operatorIDKey, PipelineOperator)
		c.Next()
	}
}
