package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
)

// User represents a marketplace account visible to the admin dashboard.
// Role is always stored canonically; legacy alias spellings are resolved
// on ingest via enums.ParseUserRole.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"type:text;not null;uniqueIndex"`
	Name         string         `gorm:"type:text;not null"`
	PasswordHash *string        `gorm:"column:password_hash"`
	Role         enums.UserRole `gorm:"type:text;not null;index"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	ProfilePhoto *string        `gorm:"column:profile_photo"`
	Phone        *string        `gorm:"column:phone"`
	Municipality *string        `gorm:"column:municipality;index"`
	FCMToken     *string        `gorm:"column:fcm_token"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// IsMainAdmin reports whether the account is the distinguished,
// non-deletable administrator.
func (u *User) IsMainAdmin() bool {
	return u != nil && u.Role == enums.UserRoleMainAdmin
}
