package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
)

// Repository persists stored reports and reads the collections that feed
// synthesized candidates.
type Repository interface {
	ListStored(ctx context.Context, params ListReportsParams) ([]models.Report, *pagination.Cursor, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	Create(ctx context.Context, report *models.Report) error
	Resolve(ctx context.Context, id uuid.UUID, resolution Resolution) (bool, error)
	CreateResolved(ctx context.Context, report *models.Report) error
	LowRatedReviews(ctx context.Context, maxRating int) ([]models.Review, error)
	FindReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	AllUsers(ctx context.Context) ([]models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ListReportsParams filters the stored moderation queue.
type ListReportsParams struct {
	Status *enums.ReportStatus
	Limit  int
	Cursor *pagination.Cursor
}

// Resolution is the column set one admin action writes.
type Resolution struct {
	ActionTaken *string
	ActionNotes *string
	ResolvedBy  uuid.UUID
	ResolvedAt  time.Time
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs a reports repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) ListStored(ctx context.Context, params ListReportsParams) ([]models.Report, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Report{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Report
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *repositoryImpl) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// Resolve performs a guarded pending -> resolved update. A report that is
// already resolved does not match and reports false.
func (r *repositoryImpl) Resolve(ctx context.Context, id uuid.UUID, resolution Resolution) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ? AND status = ?", id, enums.ReportStatusPending).
		Updates(map[string]any{
			"status":       enums.ReportStatusResolved,
			"action_taken": resolution.ActionTaken,
			"action_notes": resolution.ActionNotes,
			"resolved_by":  resolution.ResolvedBy,
			"resolved_at":  resolution.ResolvedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CreateResolved materializes a synthesized candidate as an already
// resolved row. The insert runs in its own transaction so the row either
// fully exists with its resolution or not at all.
func (r *repositoryImpl) CreateResolved(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(report).Error
	})
}

func (r *repositoryImpl) LowRatedReviews(ctx context.Context, maxRating int) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.WithContext(ctx).Where("rating <= ?", maxRating).Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *repositoryImpl) FindReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *repositoryImpl) AllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repositoryImpl) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
