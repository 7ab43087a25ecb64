package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	dbtypes "github.com/LeiBaylon/kolekkita-backend/pkg/db/types"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
)

type fakeCampaignSource struct {
	stuck        []models.NotificationCampaign
	lastOlder    time.Time
	completed    map[uuid.UUID]int
	completeOK   bool
	completeErrs map[uuid.UUID]error
}

func newFakeCampaignSource(stuck ...models.NotificationCampaign) *fakeCampaignSource {
	return &fakeCampaignSource{
		stuck:      stuck,
		completed:  map[uuid.UUID]int{},
		completeOK: true,
	}
}

func (f *fakeCampaignSource) ListStuck(ctx context.Context, olderThan time.Time) ([]models.NotificationCampaign, error) {
	f.lastOlder = olderThan
	return f.stuck, nil
}

func (f *fakeCampaignSource) Complete(ctx context.Context, id uuid.UUID, actualSentCount int) (bool, error) {
	if err := f.completeErrs[id]; err != nil {
		return false, err
	}
	if !f.completeOK {
		return false, nil
	}
	f.completed[id] = actualSentCount
	return true, nil
}

type fakeCounter struct {
	counts map[uuid.UUID]int64
}

func (f *fakeCounter) CountByCampaign(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	return f.counts[campaignID], nil
}

func stuckCampaign(recipients int) models.NotificationCampaign {
	ids := make(dbtypes.UUIDArray, recipients)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return models.NotificationCampaign{
		ID:         uuid.New(),
		Status:     enums.CampaignStatusSending,
		Recipients: ids,
	}
}

func newStuckJob(t *testing.T, campaigns *fakeCampaignSource, counter *fakeCounter) *StuckCampaignJob {
	t.Helper()

	job, err := NewStuckCampaignJob(StuckCampaignParams{
		Logger:         testLogger(),
		Campaigns:      campaigns,
		Notifications:  counter,
		StuckThreshold: 15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewStuckCampaignJob: %v", err)
	}
	return job
}

func TestStuckCampaignJobCompletesFullyDelivered(t *testing.T) {
	campaign := stuckCampaign(3)
	campaigns := newFakeCampaignSource(campaign)
	counter := &fakeCounter{counts: map[uuid.UUID]int64{campaign.ID: 3}}
	job := newStuckJob(t, campaigns, counter)

	frozen := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return frozen }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := campaigns.completed[campaign.ID]; got != 3 {
		t.Fatalf("expected completion with count 3, got %d", got)
	}
	want := frozen.Add(-15 * time.Minute)
	if !campaigns.lastOlder.Equal(want) {
		t.Fatalf("expected threshold %s, got %s", want, campaigns.lastOlder)
	}
}

func TestStuckCampaignJobLeavesPartialDelivery(t *testing.T) {
	campaign := stuckCampaign(5)
	campaigns := newFakeCampaignSource(campaign)
	counter := &fakeCounter{counts: map[uuid.UUID]int64{campaign.ID: 2}}
	job := newStuckJob(t, campaigns, counter)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(campaigns.completed) != 0 {
		t.Fatalf("partial campaigns must not be completed: %v", campaigns.completed)
	}
}

func TestStuckCampaignJobToleratesLostRace(t *testing.T) {
	campaign := stuckCampaign(1)
	campaigns := newFakeCampaignSource(campaign)
	campaigns.completeOK = false
	counter := &fakeCounter{counts: map[uuid.UUID]int64{campaign.ID: 1}}
	job := newStuckJob(t, campaigns, counter)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("losing the completion race is not an error: %v", err)
	}
}

func TestStuckCampaignJobNoStuckRows(t *testing.T) {
	campaigns := newFakeCampaignSource()
	job := newStuckJob(t, campaigns, &fakeCounter{})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
