package users

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
	"github.com/LeiBaylon/kolekkita-backend/pkg/security"

	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
)

// Service owns admin-facing user management and credential checks.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*UserDTO, error)
	Authenticate(ctx context.Context, email, password string) (*UserDTO, error)
	RegisterFCMToken(ctx context.Context, id uuid.UUID, token string) error
}

// ListParams carries list filters as received from the API layer. Role
// accepts legacy alias spellings and is resolved before querying.
type ListParams struct {
	Role       string
	ActiveOnly bool
	Limit      int
	Cursor     string
}

// ListResult is a page of users plus the cursor for the next page.
type ListResult struct {
	Users      []UserDTO `json:"users"`
	NextCursor *string   `json:"next_cursor,omitempty"`
}

type serviceImpl struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &serviceImpl{repo: repo, logg: logg}, nil
}

func (s *serviceImpl) List(ctx context.Context, params ListParams) (*ListResult, error) {
	repoParams := ListUsersParams{
		ActiveOnly: params.ActiveOnly,
		Limit:      params.Limit,
	}

	if params.Role != "" {
		role, err := enums.ParseUserRole(params.Role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown role filter").
				WithDetails(map[string]string{"role": params.Role})
		}
		repoParams.Role = &role
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	repoParams.Cursor = cursor

	users, next, err := s.repo.List(ctx, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing users")
	}

	result := &ListResult{Users: fromModels(users)}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

func (s *serviceImpl) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching user")
	}
	return FromModel(user), nil
}

func (s *serviceImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching user")
	}

	if user.IsMainAdmin() && !active {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "the main admin account cannot be deactivated")
	}

	if user.IsActive == active {
		return FromModel(user), nil
	}

	updated, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating user status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"target_user_id": id.String(), "active": active})
	s.logg.Info(ctx, "user active status changed")

	user.IsActive = active
	return FromModel(user), nil
}

func (s *serviceImpl) Authenticate(ctx context.Context, email, password string) (*UserDTO, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching user by email")
	}

	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}
	if user.PasswordHash == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(password, *user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		// Login still succeeds; the timestamp is advisory.
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "failed to record last login")
	}

	return FromModel(user), nil
}

func (s *serviceImpl) RegisterFCMToken(ctx context.Context, id uuid.UUID, token string) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "fcm token is required")
	}
	if err := s.repo.UpdateFCMToken(ctx, id, &token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing fcm token")
	}
	return nil
}

func isNotFound(err error) bool {
	return stdErrors.Is(err, gorm.ErrRecordNotFound)
}
