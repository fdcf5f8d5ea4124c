package model

import "time"

// StockLevel is the derived on-hand quantity per (base, equipment) pair.
// Rows are created lazily on the first credit; quantity never goes below
// zero (enforced in the conditional update AND as a DB check constraint).
type StockLevel struct {
	BaseCode      string `gorm:"primaryKey;size:20"`
	EquipmentCode string `gorm:"primaryKey;size:30"`
	Quantity      int    `gorm:"not null;default:0;check:quantity >= 0"`
	UpdatedAt     time.Time
}

func (StockLevel) TableName() string { return "stock_levels" }
