package model

import (
	"time"

	"github.com/google/uuid"
)

// Purchase is an immutable inbound stock event. Applying it credits the
// base's stock; deleting it debits stock by the same amount.
type Purchase struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BaseCode      string    `gorm:"size:20;not null;index"`
	EquipmentCode string    `gorm:"size:30;not null;index"`
	Quantity      int       `gorm:"not null"`
	PurchasedAt   time.Time `gorm:"not null"`
	Notes         string
	CreatedBy     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time

	Base      *Base          `gorm:"foreignKey:BaseCode"`
	Equipment *EquipmentType `gorm:"foreignKey:EquipmentCode"`
}

func (Purchase) TableName() string { return "purchases" }
