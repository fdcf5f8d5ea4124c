package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles. Roles are an externally-issued, immutable attribute of a principal;
// there is no self-service role management.
const (
	RoleAdmin            = "admin"
	RoleBaseCommander    = "base_commander"
	RoleLogisticsOfficer = "logistics_officer"
)

// User stores authenticated principals. BaseCode is nil for base-less admins.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"size:20;not null"`
	BaseCode     *string   `gorm:"size:20;index"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }
