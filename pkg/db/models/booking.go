package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking is a waste pickup request. The admin core only reads bookings;
// they feed the analytics aggregates. EstimatedWeight is kept as the raw
// string clients submit; parsing happens at aggregation time.
type Booking struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index"`
	EstimatedWeight *string   `gorm:"column:estimated_weight"`
	Municipality    string    `gorm:"type:text;not null;index"`
	JunkType        *string   `gorm:"column:junk_type"`
	Notes           *string   `gorm:"column:notes"`
	Status          string    `gorm:"type:text;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}
