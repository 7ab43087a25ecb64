package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
)

// Verification is a junk-shop document submission awaiting admin review.
// Status is not terminal: an admin can re-approve a rejected submission
// or revoke an approved one, each decision overwriting the previous.
type Verification struct {
	ID              uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SubmittedBy     uuid.UUID                `gorm:"type:uuid;not null;index"`
	ShopName        string                   `gorm:"type:text;not null"`
	DocumentType    string                   `gorm:"type:text;not null"`
	DocumentURL     string                   `gorm:"type:text;not null"`
	Status          enums.VerificationStatus `gorm:"type:text;not null;default:'pending';index"`
	AdminNotes      *string                  `gorm:"column:admin_notes"`
	RejectionReason *string                  `gorm:"column:rejection_reason"`
	ResolvedBy      *uuid.UUID               `gorm:"type:uuid;column:resolved_by"`
	ResolvedAt      *time.Time               `gorm:"column:resolved_at"`
	SubmittedAt     time.Time                `gorm:"column:submitted_at;not null"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
