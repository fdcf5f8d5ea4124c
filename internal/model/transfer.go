package model

import (
	"time"

	"github.com/google/uuid"
)

// Transfer statuses. Transitions:
// pending → open → claimed → sent → received.
const (
	StatusPending  = "pending"
	StatusOpen     = "open"
	StatusClaimed  = "claimed"
	StatusSent     = "sent"
	StatusReceived = "received"
)

// TransferStatuses lists every status in lifecycle order.
var TransferStatuses = []string{StatusPending, StatusOpen, StatusClaimed, StatusSent, StatusReceived}

// Transfer is the central workflow entity. RequestBase owns the request;
// SupplierBase (nil until claimed) owns the supply side. Stock is debited
// from SupplierBase on send and credited to RequestBase on receive.
type Transfer struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestBase   string    `gorm:"size:20;not null;index"`
	SupplierBase  *string   `gorm:"size:20;index"`
	EquipmentCode string    `gorm:"size:30;not null;index"`
	Quantity      int       `gorm:"not null"`
	Notes         string
	Status        string    `gorm:"size:12;not null;index"`
	RequestedBy   uuid.UUID `gorm:"type:uuid;not null"`
	RequestedAt   time.Time `gorm:"not null"`
	ApprovedAt    *time.Time
	ClaimedAt     *time.Time
	SentAt        *time.Time
	ReceivedAt    *time.Time

	Equipment *EquipmentType `gorm:"foreignKey:EquipmentCode"`
}

func (Transfer) TableName() string { return "transfers" }

// StockApplied reports which stock effects the current status implies:
// debited — SupplierBase has been debited (send ran);
// credited — RequestBase has been credited (receive ran).
func (t *Transfer) StockApplied() (debited, credited bool) {
	switch t.Status {
	case StatusSent:
		return true, false
	case StatusReceived:
		return true, true
	}
	return false, false
}
