package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
)

const defaultStuckThreshold = 15 * time.Minute

type stuckCampaignSource interface {
	ListStuck(ctx context.Context, olderThan time.Time) ([]models.NotificationCampaign, error)
	Complete(ctx context.Context, id uuid.UUID, actualSentCount int) (bool, error)
}

type deliveryCounter interface {
	CountByCampaign(ctx context.Context, campaignID uuid.UUID) (int64, error)
}

// StuckCampaignParams wires the campaign reconciliation job.
type StuckCampaignParams struct {
	Logger         *logger.Logger
	Campaigns      stuckCampaignSource
	Notifications  deliveryCounter
	StuckThreshold time.Duration
}

// StuckCampaignJob reconciles campaigns left in the sending state by a
// crashed or partially failed fan-out. A campaign whose inbox rows all
// landed is completed with the observed count; anything short of that
// is surfaced for manual review.
type StuckCampaignJob struct {
	logg           *logger.Logger
	campaigns      stuckCampaignSource
	notifications  deliveryCounter
	stuckThreshold time.Duration
	now            func() time.Time
}

func NewStuckCampaignJob(params StuckCampaignParams) (*StuckCampaignJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.Campaigns == nil {
		return nil, fmt.Errorf("campaign repository is required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if params.StuckThreshold <= 0 {
		params.StuckThreshold = defaultStuckThreshold
	}
	return &StuckCampaignJob{
		logg:           params.Logger,
		campaigns:      params.Campaigns,
		notifications:  params.Notifications,
		stuckThreshold: params.StuckThreshold,
		now:            time.Now,
	}, nil
}

func (j *StuckCampaignJob) Name() string {
	return "stuck_campaign_reconciler"
}

func (j *StuckCampaignJob) Run(ctx context.Context) error {
	olderThan := j.now().UTC().Add(-j.stuckThreshold)

	stuck, err := j.campaigns.ListStuck(ctx, olderThan)
	if err != nil {
		return fmt.Errorf("listing stuck campaigns: %w", err)
	}
	if len(stuck) == 0 {
		return nil
	}

	var reconciled, incomplete int
	for _, campaign := range stuck {
		done, err := j.reconcile(ctx, campaign)
		if err != nil {
			return err
		}
		if done {
			reconciled++
		} else {
			incomplete++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"reconciled": reconciled,
		"incomplete": incomplete,
	})
	j.logg.Info(logCtx, "stuck campaign sweep finished")
	return nil
}

func (j *StuckCampaignJob) reconcile(ctx context.Context, campaign models.NotificationCampaign) (bool, error) {
	logCtx := j.logg.WithCampaignID(ctx, campaign.ID.String())

	delivered, err := j.notifications.CountByCampaign(ctx, campaign.ID)
	if err != nil {
		return false, fmt.Errorf("counting deliveries for campaign %s: %w", campaign.ID, err)
	}

	expected := int64(len(campaign.Recipients))
	if delivered < expected {
		logCtx = j.logg.WithFields(logCtx, map[string]any{
			"delivered": delivered,
			"expected":  expected,
		})
		j.logg.Warn(logCtx, "campaign fan-out is incomplete, leaving for review")
		return false, nil
	}

	// Every recipient got an inbox row; only the status update was lost.
	completed, err := j.campaigns.Complete(ctx, campaign.ID, int(delivered))
	if err != nil {
		return false, fmt.Errorf("completing campaign %s: %w", campaign.ID, err)
	}
	if !completed {
		// Someone else advanced it between the listing and the update.
		j.logg.Info(logCtx, "campaign already advanced, skipping")
		return false, nil
	}

	j.logg.Info(logCtx, "stuck campaign marked completed")
	return true, nil
}
