package models

import "time"

// AnomalyFlag marks one outbound transaction whose quantity deviates from its
// material's recent behaviour. A transaction is flagged at most once.
type AnomalyFlag struct {
	Base
	RecordID      string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"record_id"`
	MaterialID    string    `gorm:"type:varchar(50);not null;index" json:"material_id"`
	MaterialName  string    `gorm:"type:varchar(200)" json:"material_name"`
	Quantity      float64   `gorm:"type:decimal(20,2);not null" json:"quantity"`
	Mean          float64   `json:"mean"`
	StdDev        float64   `json:"std_dev"`
	SampleSize    int       `json:"sample_size"`
	ZScore        float64   `json:"z_score"`
	Threshold     float64   `json:"threshold"`
	Reason        string    `gorm:"type:varchar(255)" json:"anomaly_reason"`
	OperationTime time.Time `json:"operation_time"`
	DetectedAt    time.Time `gorm:"not null;index" json:"detected_at"`
	RunID         string    `gorm:"type:varchar(36);index" json:"run_id,omitempty"`
}
