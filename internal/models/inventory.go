package models

import "time"

// MaterialStatus values of the material table.
const (
	MaterialStatusNormal   = "normal"
	MaterialStatusDisabled = "disabled"
)

// InoutType values of the inout_records table.
const (
	InoutTypeIn  = "in"
	InoutTypeOut = "out"
)

// Material is a stock-keeping item. The table belongs to the inventory CRUD
// layer; this service only reads it.
type Material struct {
	ID            string    `gorm:"type:varchar(50);primaryKey" json:"material_id"`
	Name          string    `gorm:"type:varchar(200);not null" json:"material_name"`
	Specification string    `gorm:"type:varchar(200)" json:"specification"`
	Unit          string    `gorm:"type:varchar(20)" json:"unit"`
	CurrentStock  float64   `gorm:"type:decimal(20,2);not null;default:0" json:"current_stock"`
	SafeStockMin  *float64  `gorm:"type:decimal(20,2)" json:"safe_stock_min"`
	SafeStockMax  *float64  `gorm:"type:decimal(20,2)" json:"safe_stock_max"`
	SupplierID    *string   `gorm:"type:varchar(50);index" json:"supplier_id,omitempty"`
	Status        string    `gorm:"type:varchar(16);not null;default:normal;index" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Supplier is read for purchase recommendations.
type Supplier struct {
	ID            string    `gorm:"type:varchar(50);primaryKey" json:"supplier_id"`
	Name          string    `gorm:"type:varchar(200);not null" json:"supplier_name"`
	ContactPerson string    `gorm:"type:varchar(100)" json:"contact_person"`
	Phone         string    `gorm:"type:varchar(50)" json:"phone"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InoutRecord is a stock movement. Only Remark is ever written here, and only
// when anomaly annotation is enabled.
type InoutRecord struct {
	ID            string    `gorm:"type:varchar(50);primaryKey" json:"record_id"`
	MaterialID    string    `gorm:"type:varchar(50);not null;index" json:"material_id"`
	InoutType     string    `gorm:"type:varchar(8);not null;index" json:"inout_type"`
	Quantity      float64   `gorm:"type:decimal(20,2);not null" json:"quantity"`
	BeforeStock   float64   `gorm:"type:decimal(20,2)" json:"before_stock"`
	AfterStock    float64   `gorm:"type:decimal(20,2)" json:"after_stock"`
	OperatorID    string    `gorm:"type:varchar(50)" json:"operator_id"`
	OperationTime time.Time `gorm:"not null;index" json:"operation_time"`
	Remark        string    `gorm:"type:text" json:"remark"`
}
