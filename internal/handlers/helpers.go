package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	apperrors "stockwise/internal/errors"
	"stockwise/internal/middleware"
	"stockwise/internal/uuid"
	"stockwise/internal/validator"
)

// getOperatorID extracts the authenticated operator from the Gin context.
// Returns ErrUnauthorized if not present.
func getOperatorID(c *gin.Context) (string, error) {
	return middleware.OperatorID(c)
}

// parseDay parses an optional YYYY-MM-DD value as a UTC midnight.
func parseDay(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(validator.DateLayout, value)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+field+", expected YYYY-MM-DD")
	}
	return &t, nil
}

// parsePathID returns the canonical form of a UUID path parameter.
// A value that is not a UUID cannot name a row, so notFound is returned.
func parsePathID(c *gin.Context, param string, notFound error) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", notFound
	}
	return id, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.RenderError(c, err)
}
