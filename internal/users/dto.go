package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID           uuid.UUID      `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	Role         enums.UserRole `json:"role"`
	IsActive     bool           `json:"is_active"`
	ProfilePhoto *string        `json:"profile_photo,omitempty"`
	Phone        *string        `json:"phone,omitempty"`
	Municipality *string        `json:"municipality,omitempty"`
	HasFCMToken  bool           `json:"has_fcm_token"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		IsActive:     u.IsActive,
		ProfilePhoto: u.ProfilePhoto,
		Phone:        u.Phone,
		Municipality: u.Municipality,
		HasFCMToken:  u.FCMToken != nil && *u.FCMToken != "",
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func fromModels(users []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, *FromModel(&users[i]))
	}
	return out
}
