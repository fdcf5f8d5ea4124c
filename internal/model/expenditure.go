package model

import (
	"time"

	"github.com/google/uuid"
)

// Expenditure kinds.
const (
	KindAssignment  = "assignment"
	KindConsumption = "consumption"
)

// Expenditure is an outbound stock event. Applying it debits the base's
// stock; deleting it restores (credits) stock unconditionally.
type Expenditure struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BaseCode      string    `gorm:"size:20;not null;index"`
	EquipmentCode string    `gorm:"size:30;not null;index"`
	Quantity      int       `gorm:"not null"`
	Kind          string    `gorm:"size:20;not null"` // "assignment" | "consumption"
	Notes         string
	CreatedBy     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time

	Base      *Base          `gorm:"foreignKey:BaseCode"`
	Equipment *EquipmentType `gorm:"foreignKey:EquipmentCode"`
}

func (Expenditure) TableName() string { return "expenditures" }
