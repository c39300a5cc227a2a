package models

import "time"

// StockSnapshot is one material's stock on one calendar day (UTC).
// This is time-series data: upserted per (material, day), never soft deleted.
type StockSnapshot struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MaterialID    string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_snapshot_material_date,priority:1" json:"material_id"`
	SnapshotDate  time.Time `gorm:"type:date;not null;uniqueIndex:idx_snapshot_material_date,priority:2;index" json:"snapshot_date"`
	StockQuantity float64   `gorm:"type:decimal(20,2);not null" json:"stock_quantity"`
	SafeStockMin  *float64  `gorm:"type:decimal(20,2)" json:"safe_stock_min"`
	SafeStockMax  *float64  `gorm:"type:decimal(20,2)" json:"safe_stock_max"`
	Synthetic     bool      `gorm:"not null;default:false" json:"synthetic"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SnapshotDay truncates t to its UTC calendar day.
func SnapshotDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
