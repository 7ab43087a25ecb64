package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	Name   string
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to dashboard admins.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	Name   string         `json:"name,omitempty"`
	jwt.RegisteredClaims
}
