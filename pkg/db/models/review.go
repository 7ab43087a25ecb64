package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is buyer feedback on a collector or junk shop. Low-rated reviews
// surface in the moderation queue as synthesized report candidates.
type Review struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ReviewerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ReviewerName   string    `gorm:"type:text;not null"`
	ReviewedUserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Rating         int       `gorm:"not null"`
	Comment        *string   `gorm:"column:comment"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
