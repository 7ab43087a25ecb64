package campaigns

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
)

// Repository persists campaign summaries. Status writes are guarded so a
// campaign can only move forward through its lifecycle.
type Repository interface {
	Create(ctx context.Context, campaign *models.NotificationCampaign) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.NotificationCampaign, error)
	List(ctx context.Context, params ListCampaignsParams) ([]models.NotificationCampaign, *pagination.Cursor, error)
	AdvanceStatus(ctx context.Context, id uuid.UUID, from, to enums.CampaignStatus) (bool, error)
	Complete(ctx context.Context, id uuid.UUID, actualSentCount int) (bool, error)
	ListStuck(ctx context.Context, olderThan time.Time) ([]models.NotificationCampaign, error)
}

// ListCampaignsParams filters the campaign history listing.
type ListCampaignsParams struct {
	Status *enums.CampaignStatus
	SentBy *uuid.UUID
	Limit  int
	Cursor *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository constructs a campaigns repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, campaign *models.NotificationCampaign) error {
	return r.db.WithContext(ctx).Create(campaign).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.NotificationCampaign, error) {
	var campaign models.NotificationCampaign
	if err := r.db.WithContext(ctx).First(&campaign, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListCampaignsParams) ([]models.NotificationCampaign, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.NotificationCampaign{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.SentBy != nil {
		query = query.Where("sent_by = ?", *params.SentBy)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.NotificationCampaign
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

// AdvanceStatus performs a compare-and-set from one status to the next.
// The WHERE clause on the current status makes concurrent fan-outs of the
// same row a no-op for the loser.
func (r *repositoryImpl) AdvanceStatus(ctx context.Context, id uuid.UUID, from, to enums.CampaignStatus) (bool, error) {
	if !from.CanAdvanceTo(to) {
		return false, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.NotificationCampaign{}).
		Where("id = ? AND status = ?", id, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) Complete(ctx context.Context, id uuid.UUID, actualSentCount int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationCampaign{}).
		Where("id = ? AND status = ?", id, enums.CampaignStatusSending).
		Updates(map[string]any{
			"status":            enums.CampaignStatusCompleted,
			"actual_sent_count": actualSentCount,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListStuck returns campaigns sitting at sending past the threshold.
// These are the partial failures the repair job reconciles.
func (r *repositoryImpl) ListStuck(ctx context.Context, olderThan time.Time) ([]models.NotificationCampaign, error) {
	var rows []models.NotificationCampaign
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", enums.CampaignStatusSending, olderThan).
		Find(&rows).Error
	return rows, err
}
