package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
)

// Report is a persisted moderation queue entry. Synthesized candidates
// (low-rated reviews, suspicious account names) have no row until an
// admin acts on them, at which point one is materialized with
// Source=synthesized.
type Report struct {
	ID             uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ReportType     string               `gorm:"type:text;not null"`
	ReporterID     *uuid.UUID           `gorm:"type:uuid;column:reporter_id"`
	ReporterName   string               `gorm:"type:text;not null"`
	ReportedUserID *uuid.UUID           `gorm:"type:uuid;column:reported_user_id;index"`
	Description    string               `gorm:"type:text;not null"`
	Priority       enums.ReportPriority `gorm:"type:text;not null;default:'medium'"`
	Status         enums.ReportStatus   `gorm:"type:text;not null;default:'pending';index"`
	Source         enums.ReportSource   `gorm:"type:text;not null;default:'stored'"`
	ActionTaken    *string              `gorm:"column:action_taken"`
	ActionNotes    *string              `gorm:"column:action_notes"`
	ResolvedBy     *uuid.UUID           `gorm:"type:uuid;column:resolved_by"`
	ResolvedAt     *time.Time           `gorm:"column:resolved_at"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
