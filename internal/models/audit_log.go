package models

import "gorm.io/datatypes"

// AuditAction names an operator action worth keeping a trail of.
type AuditAction string

const (
	AuditActionHandleAlert AuditAction = "HANDLE_ALERT"
)

// AuditLog records operator actions on alerts.
type AuditLog struct {
	Base
	OperatorID   string         `gorm:"type:varchar(50);not null;index" json:"operator_id"`
	Action       AuditAction    `gorm:"type:varchar(64);not null" json:"action"`
	ResourceType string         `gorm:"type:varchar(64);not null" json:"resource_type"`
	ResourceID   string         `gorm:"type:varchar(50)" json:"resource_id"`
	IPAddress    string         `gorm:"type:varchar(64)" json:"ip_address"`
	Changes      datatypes.JSON `json:"changes,omitempty"`
}
