package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
)

// Repository exposes user-related persistence operations.
type Repository interface {
	List(ctx context.Context, params ListUsersParams) ([]models.User, *pagination.Cursor, error)
	ListActive(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateFCMToken(ctx context.Context, id uuid.UUID, token *string) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type ListUsersParams struct {
	Role       *enums.UserRole
	ActiveOnly bool
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *repositoryImpl) List(ctx context.Context, params ListUsersParams) ([]models.User, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.User{})
	if params.Role != nil {
		query = query.Where("role = ?", *params.Role)
	}
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var users []models.User
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, nil, err
	}

	if len(users) > normalized {
		next := users[normalized]
		users = users[:normalized]
		return users, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return users, nil, nil
}

func (r *repositoryImpl) ListActive(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repositoryImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("is_active", active)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

func (r *repositoryImpl) UpdateFCMToken(ctx context.Context, id uuid.UUID, token *string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("fcm_token", token).Error
}
