package services

import (
	"context"
	"encoding/json"
	"testing"

	"stockwise/internal/models"
	"stockwise/internal/testutil"
)

func TestAuditService_Record(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)

	t.Run("stores_entry_with_changes", func(t *testing.T) {
		svc.Record(context.Background(), AuditEntry{
			OperatorID:   "op-3",
			Action:       models.AuditActionHandleAlert,
			ResourceType: "stock_alert",
			ResourceID:   "alert-1",
			IPAddress:    "10.0.0.8",
			Changes:      map[string]any{"remark": "reordered"},
		})

		var row models.AuditLog
		testutil.AssertNoError(t, db.Where("resource_id = ?", "alert-1").First(&row).Error)
		if row.OperatorID != "op-3" || row.Action != models.AuditActionHandleAlert || row.ID == "" {
			t.Errorf("unexpected row %+v", row)
		}
		var changes map[string]string
		testutil.AssertNoError(t, json.Unmarshal(row.Changes, &changes))
		if changes["remark"] != "reordered" {
			t.Errorf("unexpected changes %s", row.Changes)
		}
	})

	t.Run("no_changes_leaves_column_empty", func(t *testing.T) {
		svc.Record(context.Background(), AuditEntry{
			OperatorID:   "op-3",
			Action:       models.AuditActionHandleAlert,
			ResourceType: "stock_alert",
			ResourceID:   "alert-2",
		})

		var row models.AuditLog
		testutil.AssertNoError(t, db.Where("resource_id = ?", "alert-2").First(&row).Error)
		if len(row.Changes) != 0 {
			t.Errorf("expected no changes, got %s", row.Changes)
		}
	})

	t.Run("storage_failure_is_swallowed", func(t *testing.T) {
		broken := testutil.SetupTestDB(t)
		testutil.TeardownTestDB(t, broken)

		NewAuditService(broken).Record(context.Background(), AuditEntry{OperatorID: "op-3", Action: models.AuditActionHandleAlert})
	})
}
