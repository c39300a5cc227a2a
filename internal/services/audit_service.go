package services

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"stockwise/internal/logger"
	"stockwise/internal/models"
)

// AuditEntry describes one operator action.
type AuditEntry struct {
	OperatorID   string
	Action       models.AuditAction
	ResourceType string
	ResourceID   string
	IPAddress    string
	Changes      map[string]any
}

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Record writes entry to audit_logs. Failures are logged and swallowed so an
// audit hiccup never undoes the action itself.
func (s *auditService) Record(ctx context.Context, entry AuditEntry) {
	log := logger.Named("audit").With(
		"operator_id", entry.OperatorID,
		"action", entry.Action,
		"resource_type", entry.ResourceType,
		"resource_id", entry.ResourceID,
	)

	row := &models.AuditLog{
		OperatorID:   entry.OperatorID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		IPAddress:    entry.IPAddress,
	}
	if entry.Changes != nil {
		data, err := json.Marshal(entry.Changes)
		if err != nil {
			log.Errorw("failed to marshal audit changes", "error", err)
			data = []byte("{}")
		}
		row.Changes = datatypes.JSON(data)
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		log.Errorw("failed to create audit log entry", "error", err)
	}
}
