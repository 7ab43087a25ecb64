package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/LeiBaylon/kolekkita-backend/pkg/db/types"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
)

// Notification is one in-app message for one user. Rows are immutable
// after creation except for the read markers. Fan-out writes carry the
// shared campaign id.
type Notification struct {
	ID         uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	CampaignID *uuid.UUID             `gorm:"type:uuid;column:campaign_id;index"`
	Type       enums.NotificationType `gorm:"type:text;not null"`
	Title      string                 `gorm:"type:text;not null"`
	Message    string                 `gorm:"type:text;not null"`
	Data       dbtypes.JSONMap        `gorm:"type:jsonb;column:data"`
	IsRead     bool                   `gorm:"column:is_read;not null;default:false"`
	ReadAt     *time.Time             `gorm:"column:read_at"`
	SentAt     time.Time              `gorm:"column:sent_at;not null"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
