package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"stockwise/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Float returns a pointer to v, for the nullable safe-stock bounds.
func Float(v float64) *float64 { return &v }

// Day returns midnight UTC daysAgo days before today.
func Day(daysAgo int) time.Time {
	return models.SnapshotDay(time.Now()).AddDate(0, 0, -daysAgo)
}

// CreateTestSupplier creates a supplier with unique id.
func CreateTestSupplier(t *testing.T, db *gorm.DB) *models.Supplier {
	t.Helper()

	n := nextID()
	supplier := &models.Supplier{
		ID:            fmt.Sprintf("SUP%04d", n),
		Name:          fmt.Sprintf("Supplier %d", n),
		ContactPerson: "Lee",
		Phone:         "555-0100",
	}
	if err := db.Create(supplier).Error; err != nil {
		t.Fatalf("failed to create test supplier: %v", err)
	}
	return supplier
}

// CreateTestMaterial creates an active material with stock 100 and safe band [50, 500].
func CreateTestMaterial(t *testing.T, db *gorm.DB) *models.Material {
	t.Helper()
	return CreateTestMaterialWithStock(t, db, 100, Float(50), Float(500))
}

// CreateTestMaterialWithStock creates an active material with the given stock and bounds.
func CreateTestMaterialWithStock(t *testing.T, db *gorm.DB, stock float64, safeMin, safeMax *float64) *models.Material {
	t.Helper()

	n := nextID()
	material := &models.Material{
		ID:            fmt.Sprintf("MAT%04d", n),
		Name:          fmt.Sprintf("Material %d", n),
		Specification: "standard",
		Unit:          "pcs",
		CurrentStock:  stock,
		SafeStockMin:  safeMin,
		SafeStockMax:  safeMax,
		Status:        models.MaterialStatusNormal,
	}
	if err := db.Create(material).Error; err != nil {
		t.Fatalf("failed to create test material: %v", err)
	}
	return material
}

// AttachSupplier links a material to a supplier.
func AttachSupplier(t *testing.T, db *gorm.DB, material *models.Material, supplier *models.Supplier) {
	t.Helper()

	if err := db.Model(material).Update("supplier_id", supplier.ID).Error; err != nil {
		t.Fatalf("failed to attach supplier: %v", err)
	}
	material.SupplierID = &supplier.ID
}

// CreateTestOutbound records an outbound movement of qty at the given time.
func CreateTestOutbound(t *testing.T, db *gorm.DB, materialID string, qty float64, at time.Time) *models.InoutRecord {
	t.Helper()

	record := &models.InoutRecord{
		ID:            fmt.Sprintf("REC%06d", nextID()),
		MaterialID:    materialID,
		InoutType:     models.InoutTypeOut,
		Quantity:      qty,
		OperatorID:    "op-1",
		OperationTime: at.UTC(),
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("failed to create test inout record: %v", err)
	}
	return record
}

// CreateTestSnapshotSeries stores one snapshot per value, ending today: the
// last value is today's stock.
func CreateTestSnapshotSeries(t *testing.T, db *gorm.DB, materialID string, values []float64) {
	t.Helper()

	for i, v := range values {
		snap := &models.StockSnapshot{
			MaterialID:    materialID,
			SnapshotDate:  Day(len(values) - 1 - i),
			StockQuantity: v,
		}
		if err := db.Create(snap).Error; err != nil {
			t.Fatalf("failed to create test snapshot: %v", err)
		}
	}
}

// CreateTestAlert inserts an alert with the given type, status and time.
func CreateTestAlert(t *testing.T, db *gorm.DB, materialID string, alertType models.AlertType, status models.AlertStatus, at time.Time) *models.StockAlert {
	t.Helper()

	alert := &models.StockAlert{
		MaterialID:    materialID,
		AlertType:     alertType,
		CurrentStock:  20,
		SafeThreshold: 50,
		AlertTime:     at.UTC(),
		Status:        status,
	}
	if err := db.Create(alert).Error; err != nil {
		t.Fatalf("failed to create test alert: %v", err)
	}
	return alert
}
