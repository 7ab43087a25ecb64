package controllers

import (
	"net/http"
	"time"

	"github.com/LeiBaylon/kolekkita-backend/api/responses"
	"github.com/LeiBaylon/kolekkita-backend/api/validators"
	"github.com/LeiBaylon/kolekkita-backend/internal/users"
	pkgauth "github.com/LeiBaylon/kolekkita-backend/pkg/auth"
	"github.com/LeiBaylon/kolekkita-backend/pkg/config"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  users.UserDTO `json:"user"`
}

// AuthLogin exchanges admin credentials for a dashboard token. Marketplace
// accounts authenticate elsewhere; only admin roles get past this endpoint.
func AuthLogin(svc users.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if user.Role != enums.UserRoleAdmin && user.Role != enums.UserRoleMainAdmin {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "dashboard access is limited to admin accounts"))
			return
		}

		token, err := pkgauth.MintAccessToken(cfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
			UserID: user.ID,
			Role:   user.Role,
			Name:   user.Name,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token"))
			return
		}

		responses.WriteSuccess(w, loginResponse{Token: token, User: *user})
	}
}
