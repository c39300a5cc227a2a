// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"stockwise/internal/models"
)

// DateLayout is the wire format of calendar-day parameters.
const DateLayout = "2006-01-02"

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("alert_type", validateAlertType)
		_ = v.RegisterValidation("alert_status", validateAlertStatus)
		_ = v.RegisterValidation("iso_date", validateISODate)
	}
}

func validateAlertType(fl validator.FieldLevel) bool {
	return models.IsValidAlertType(fl.Field().String())
}

func validateAlertStatus(fl validator.FieldLevel) bool {
	return models.IsValidAlertStatus(fl.Field().String())
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}
