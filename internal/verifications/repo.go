package verifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
)

// Repository persists junk-shop verification submissions.
type Repository interface {
	Create(ctx context.Context, verification *models.Verification) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Verification, error)
	List(ctx context.Context, params ListVerificationsParams) ([]models.Verification, *pagination.Cursor, error)
	ApplyDecision(ctx context.Context, id uuid.UUID, decision DecisionUpdate) (bool, error)
	CountByStatus(ctx context.Context) (map[enums.VerificationStatus]int64, error)
}

// ListVerificationsParams filters the review queue.
type ListVerificationsParams struct {
	Status      *enums.VerificationStatus
	SubmittedBy *uuid.UUID
	Limit       int
	Cursor      *pagination.Cursor
}

// DecisionUpdate is the column set written by one admin decision. A nil
// RejectionReason clears any reason left by a previous rejection.
type DecisionUpdate struct {
	Status          enums.VerificationStatus
	AdminNotes      *string
	RejectionReason *string
	ResolvedBy      uuid.UUID
	ResolvedAt      time.Time
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs a verifications repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, verification *models.Verification) error {
	return r.db.WithContext(ctx).Create(verification).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Verification, error) {
	var verification models.Verification
	if err := r.db.WithContext(ctx).First(&verification, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &verification, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListVerificationsParams) ([]models.Verification, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Verification{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.SubmittedBy != nil {
		query = query.Where("submitted_by = ?", *params.SubmittedBy)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Verification
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

// ApplyDecision overwrites the decision columns unconditionally. Decisions
// are free transitions, so no status guard is applied.
func (r *repositoryImpl) ApplyDecision(ctx context.Context, id uuid.UUID, decision DecisionUpdate) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Verification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":           decision.Status,
			"admin_notes":      decision.AdminNotes,
			"rejection_reason": decision.RejectionReason,
			"resolved_by":      decision.ResolvedBy,
			"resolved_at":      decision.ResolvedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CountByStatus(ctx context.Context) (map[enums.VerificationStatus]int64, error) {
	type row struct {
		Status enums.VerificationStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Verification{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[enums.VerificationStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
