package testutil

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	apperrors "stockwise/internal/errors"
	"stockwise/internal/models"
)

// AssertAppError fails unless err is an *AppError carrying expectedCode.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// CountAlerts counts a material's alerts of one type and status.
func CountAlerts(t *testing.T, db *gorm.DB, materialID string, alertType models.AlertType, status models.AlertStatus) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.StockAlert{}).
		Where("material_id = ? AND alert_type = ? AND status = ?", materialID, alertType, status).
		Count(&count).Error; err != nil {
		t.Fatalf("failed to count alerts: %v", err)
	}
	return count
}
