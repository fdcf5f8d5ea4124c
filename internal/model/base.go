package model

import "time"

// Base is an operating location identified by its code. Coordinates are
// optional display data; bases created without them simply don't appear
// on the map.
type Base struct {
	Code      string `gorm:"primaryKey;size:20"`
	Lat       *float64
	Lng       *float64
	CreatedAt time.Time
}

func (Base) TableName() string { return "bases" }
