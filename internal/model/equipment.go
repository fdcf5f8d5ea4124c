package model

import "time"

// EquipmentType is a catalog entry. Code is immutable after creation;
// name, category, unit and active are mutable.
type EquipmentType struct {
	Code      string `gorm:"primaryKey;size:30"`
	Name      string `gorm:"not null"`
	Category  string `gorm:"index;not null"`
	Unit      string `gorm:"not null;default:'unit'"`
	Active    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EquipmentType) TableName() string { return "equipment_types" }
