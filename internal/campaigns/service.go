package campaigns

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/LeiBaylon/kolekkita-backend/internal/notifications"
	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	dbtypes "github.com/LeiBaylon/kolekkita-backend/pkg/db/types"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	"github.com/LeiBaylon/kolekkita-backend/pkg/metrics"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
)

// Service runs notification campaign fan-outs and exposes campaign history.
type Service interface {
	Send(ctx context.Context, input SendInput) (*SendResult, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*CampaignDetail, error)
}

// SendInput is one fan-out request from an admin.
type SendInput struct {
	Title      string
	Message    string
	Type       string
	SentBy     uuid.UUID
	SentByName string
}

// SendResult summarizes a completed fan-out.
type SendResult struct {
	CampaignID uuid.UUID            `json:"campaign_id"`
	Status     enums.CampaignStatus `json:"status"`
	Breakdown  models.UserBreakdown `json:"breakdown"`
	SentCount  int                  `json:"sent_count"`
}

// ListParams filters campaign history as received from the API layer.
type ListParams struct {
	Status string
	SentBy *uuid.UUID
	Limit  int
	Cursor string
}

// ListResult is a page of campaigns plus the cursor for the next page.
type ListResult struct {
	Campaigns  []models.NotificationCampaign `json:"campaigns"`
	NextCursor *string                       `json:"next_cursor,omitempty"`
}

// CampaignDetail pairs a campaign with the number of notification rows
// that actually exist for it, which can trail the recipient count when a
// fan-out failed partway.
type CampaignDetail struct {
	Campaign  models.NotificationCampaign `json:"campaign"`
	Delivered int64                       `json:"delivered"`
}

// RecipientSource enumerates the accounts eligible for fan-out. The users
// repository satisfies it.
type RecipientSource interface {
	ListActive(ctx context.Context) ([]models.User, error)
}

type serviceImpl struct {
	repo      Repository
	notifRepo notifications.Repository
	usersRepo RecipientSource
	dedup     DedupGuard
	metrics   *metrics.CampaignMetrics
	logg      *logger.Logger
}

func NewService(
	repo Repository,
	notifRepo notifications.Repository,
	usersRepo RecipientSource,
	dedup DedupGuard,
	campaignMetrics *metrics.CampaignMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if notifRepo == nil {
		return nil, fmt.Errorf("notifications repo is required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repo is required")
	}
	if dedup == nil {
		return nil, fmt.Errorf("dedup guard is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &serviceImpl{
		repo:      repo,
		notifRepo: notifRepo,
		usersRepo: usersRepo,
		dedup:     dedup,
		metrics:   campaignMetrics,
		logg:      logg,
	}, nil
}

// Send validates the payload, takes the dedup guard, then walks the
// campaign through pending -> sending -> completed while writing one
// notification row per non-admin recipient. Any recipient write failure
// leaves the campaign at sending with a null sent count.
func (s *serviceImpl) Send(ctx context.Context, input SendInput) (*SendResult, error) {
	started := time.Now()

	title := strings.TrimSpace(input.Title)
	message := strings.TrimSpace(input.Message)
	if title == "" || message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and message are required")
	}
	campaignType, err := enums.ParseNotificationType(input.Type)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid campaign type")
	}
	if input.SentBy == uuid.Nil || strings.TrimSpace(input.SentByName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sender identity is required")
	}

	// The guard fires before any storage or delivery work.
	key := DedupKey(input.SentBy, string(campaignType), title, message)
	if !s.dedup.Acquire(key) {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateSend, "identical campaign was just sent").
			WithDetails(map[string]any{"retry_after_seconds": s.dedup.Window().Seconds()})
	}

	activeUsers, err := s.usersRepo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "enumerating recipients")
	}

	breakdown, recipients := partitionRecipients(activeUsers)

	campaign := &models.NotificationCampaign{
		ID:         uuid.New(),
		Title:      title,
		Message:    message,
		Type:       campaignType,
		SentBy:     input.SentBy,
		SentByName: strings.TrimSpace(input.SentByName),
		Status:     enums.CampaignStatusPending,
		Breakdown:  breakdown,
		Recipients: recipientIDs(recipients),
	}
	if err := s.repo.Create(ctx, campaign); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating campaign")
	}

	ctx = s.logg.WithCampaignID(ctx, campaign.ID.String())
	ctx = s.logg.WithFields(ctx, map[string]any{
		"type":       string(campaignType),
		"recipients": breakdown.Total,
	})
	s.logg.Info(ctx, "campaign fan-out started")

	advanced, err := s.repo.AdvanceStatus(ctx, campaign.ID, enums.CampaignStatusPending, enums.CampaignStatusSending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "advancing campaign to sending")
	}
	if !advanced {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "campaign already picked up")
	}

	sentAt := time.Now().UTC()
	var sendErrs error
	sent := 0
	for _, recipient := range recipients {
		notification := &models.Notification{
			ID:         uuid.New(),
			UserID:     recipient.ID,
			CampaignID: &campaign.ID,
			Type:       campaignType,
			Title:      title,
			Message:    message,
			Data: dbtypes.JSONMap{
				"campaignId": campaign.ID.String(),
				"sentBy":     campaign.SentByName,
			},
			SentAt: sentAt,
		}
		if err := s.notifRepo.Create(ctx, notification); err != nil {
			sendErrs = multierr.Append(sendErrs, fmt.Errorf("recipient %s: %w", recipient.ID, err))
			continue
		}
		sent++
	}

	if sendErrs != nil {
		s.metrics.IncFailure(string(campaignType))
		failed := len(multierr.Errors(sendErrs))
		s.logg.Error(ctx, "campaign fan-out failed partway", sendErrs)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, sendErrs, "campaign delivery incomplete").
			WithDetails(map[string]any{
				"campaign_id": campaign.ID.String(),
				"sent":        sent,
				"failed":      failed,
			})
	}

	completed, err := s.repo.Complete(ctx, campaign.ID, sent)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "completing campaign")
	}
	if !completed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "campaign no longer at sending")
	}

	s.metrics.ObserveSend(string(campaignType), sent, time.Since(started))
	s.logg.Info(ctx, "campaign fan-out completed")

	return &SendResult{
		CampaignID: campaign.ID,
		Status:     enums.CampaignStatusCompleted,
		Breakdown:  breakdown,
		SentCount:  sent,
	}, nil
}

func (s *serviceImpl) List(ctx context.Context, params ListParams) (*ListResult, error) {
	repoParams := ListCampaignsParams{
		SentBy: params.SentBy,
		Limit:  params.Limit,
	}

	if params.Status != "" {
		status, err := enums.ParseCampaignStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		repoParams.Status = &status
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	repoParams.Cursor = cursor

	rows, next, err := s.repo.List(ctx, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing campaigns")
	}

	result := &ListResult{Campaigns: rows}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

func (s *serviceImpl) Get(ctx context.Context, id uuid.UUID) (*CampaignDetail, error) {
	campaign, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching campaign")
	}

	delivered, err := s.notifRepo.CountByCampaign(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting campaign deliveries")
	}

	return &CampaignDetail{Campaign: *campaign, Delivered: delivered}, nil
}

// partitionRecipients splits active users into the per-role breakdown and
// the actual recipient set. Admin accounts are counted but never receive
// campaign notifications.
func partitionRecipients(activeUsers []models.User) (models.UserBreakdown, []models.User) {
	breakdown := models.UserBreakdown{Total: 0}
	recipients := make([]models.User, 0, len(activeUsers))

	for _, user := range activeUsers {
		switch {
		case user.Role.IsAdmin():
			breakdown.Admins++
			continue
		case user.Role == enums.UserRoleJunkShopOwner:
			breakdown.JunkShops++
		case user.Role == enums.UserRoleCollector:
			breakdown.Collectors++
		case user.Role == enums.UserRoleResident:
			breakdown.Residents++
		default:
			continue
		}
		recipients = append(recipients, user)
	}

	breakdown.Total = len(recipients)
	return breakdown, recipients
}

func recipientIDs(recipients []models.User) dbtypes.UUIDArray {
	ids := make(dbtypes.UUIDArray, 0, len(recipients))
	for _, recipient := range recipients {
		ids = append(ids, recipient.ID)
	}
	return ids
}
