package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/LeiBaylon/kolekkita-backend/pkg/db/types"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
)

// UserBreakdown carries per-role recipient counts for a campaign. Admins
// are excluded from every fan-out, so the admin count records how many
// accounts were skipped rather than delivered to.
type UserBreakdown struct {
	Total      int `gorm:"column:total;not null" json:"total"`
	Admins     int `gorm:"column:admins;not null" json:"admins"`
	JunkShops  int `gorm:"column:junk_shops;not null" json:"junkShops"`
	Collectors int `gorm:"column:collectors;not null" json:"collectors"`
	Residents  int `gorm:"column:residents;not null" json:"residents"`
}

// NotificationCampaign is the auditable summary of one fan-out invocation.
// Breakdown.Total always equals len(Recipients). ActualSentCount stays
// null until every per-recipient write succeeded; a row stuck at sending
// with a null count is the caller-visible signal of partial failure.
type NotificationCampaign struct {
	ID              uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title           string                 `gorm:"type:text;not null"`
	Message         string                 `gorm:"type:text;not null"`
	Type            enums.NotificationType `gorm:"type:text;not null"`
	SentBy          uuid.UUID              `gorm:"type:uuid;not null;index"`
	SentByName      string                 `gorm:"type:text;not null"`
	Status          enums.CampaignStatus   `gorm:"type:text;not null;default:'pending';index"`
	Breakdown       UserBreakdown          `gorm:"embedded;embeddedPrefix:breakdown_"`
	Recipients      dbtypes.UUIDArray      `gorm:"type:uuid[];column:recipients;not null;default:ARRAY[]::uuid[]"`
	ActualSentCount *int                   `gorm:"column:actual_sent_count"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
