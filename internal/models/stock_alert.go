package models

import "time"

// AlertType distinguishes projected shortages from current low stock.
type AlertType string

const (
	AlertTypePredictedShortage AlertType = "predicted_shortage"
	AlertTypeLowStock          AlertType = "low_stock"
)

// AlertStatus is the operator workflow state of an alert.
type AlertStatus string

const (
	AlertStatusUnhandled AlertStatus = "unhandled"
	AlertStatusHandled   AlertStatus = "handled"
)

// StockAlert is raised by the forecasting cycle. At most one unhandled alert
// may exist per (material, type); the partial unique index enforces it.
type StockAlert struct {
	Base
	MaterialID    string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_alert_open_key,priority:1,where:status = 'unhandled'" json:"material_id"`
	AlertType     AlertType   `gorm:"type:varchar(32);not null;uniqueIndex:idx_alert_open_key,priority:2,where:status = 'unhandled';index" json:"alert_type"`
	CurrentStock  float64     `gorm:"type:decimal(20,2);not null" json:"current_stock"`
	SafeThreshold float64     `gorm:"type:decimal(20,2);not null" json:"safe_threshold"`
	AlertTime     time.Time   `gorm:"not null;index" json:"alert_time"`
	Status        AlertStatus `gorm:"type:varchar(16);not null;default:unhandled;index" json:"status"`
	HandleTime    *time.Time  `json:"handle_time,omitempty"`
	HandledBy     string      `gorm:"type:varchar(50)" json:"handled_by,omitempty"`
	HandleRemark  string      `gorm:"type:text" json:"handle_remark,omitempty"`
}

// IsValidAlertType reports whether s names a known alert type.
func IsValidAlertType(s string) bool {
	switch AlertType(s) {
	case AlertTypePredictedShortage, AlertTypeLowStock:
		return true
	}
	return false
}

// IsValidAlertStatus reports whether s names a known alert status.
func IsValidAlertStatus(s string) bool {
	switch AlertStatus(s) {
	case AlertStatusUnhandled, AlertStatusHandled:
		return true
	}
	return false
}
