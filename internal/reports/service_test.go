package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
)

type fakeReportsRepo struct {
	stored   map[uuid.UUID]*models.Report
	reviews  map[uuid.UUID]*models.Review
	users    map[uuid.UUID]*models.User
	resolved []uuid.UUID
}

func newFakeReportsRepo() *fakeReportsRepo {
	return &fakeReportsRepo{
		stored:  map[uuid.UUID]*models.Report{},
		reviews: map[uuid.UUID]*models.Review{},
		users:   map[uuid.UUID]*models.User{},
	}
}

func (f *fakeReportsRepo) ListStored(ctx context.Context, params ListReportsParams) ([]models.Report, *pagination.Cursor, error) {
	var out []models.Report
	for _, report := range f.stored {
		if params.Status != nil && report.Status != *params.Status {
			continue
		}
		out = append(out, *report)
	}
	return out, nil, nil
}

func (f *fakeReportsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report, ok := f.stored[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *report
	return &copied, nil
}

func (f *fakeReportsRepo) Create(ctx context.Context, report *models.Report) error {
	f.stored[report.ID] = report
	return nil
}

func (f *fakeReportsRepo) Resolve(ctx context.Context, id uuid.UUID, resolution Resolution) (bool, error) {
	report, ok := f.stored[id]
	if !ok || report.Status != enums.ReportStatusPending {
		return false, nil
	}
	report.Status = enums.ReportStatusResolved
	report.ActionTaken = resolution.ActionTaken
	report.ResolvedBy = &resolution.ResolvedBy
	report.ResolvedAt = &resolution.ResolvedAt
	f.resolved = append(f.resolved, id)
	return true, nil
}

func (f *fakeReportsRepo) CreateResolved(ctx context.Context, report *models.Report) error {
	f.stored[report.ID] = report
	return nil
}

func (f *fakeReportsRepo) LowRatedReviews(ctx context.Context, maxRating int) ([]models.Review, error) {
	var out []models.Review
	for _, review := range f.reviews {
		if review.Rating <= maxRating {
			out = append(out, *review)
		}
	}
	return out, nil
}

func (f *fakeReportsRepo) FindReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, ok := f.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *review
	return &copied, nil
}

func (f *fakeReportsRepo) AllUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeReportsRepo) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "reports-test"})
}

func newTestService(t *testing.T, repo *fakeReportsRepo) Service {
	t.Helper()

	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func strPtr(s string) *string { return &s }

func seedReview(repo *fakeReportsRepo, rating int, comment string) *models.Review {
	review := &models.Review{
		ID:             uuid.New(),
		ReviewerID:     uuid.New(),
		ReviewerName:   "Maria Santos",
		ReviewedUserID: uuid.New(),
		Rating:         rating,
		CreatedAt:      time.Now().UTC(),
	}
	if comment != "" {
		review.Comment = &comment
	}
	repo.reviews[review.ID] = review
	return review
}

func seedUser(repo *fakeReportsRepo, name string) *models.User {
	user := &models.User{
		ID:        uuid.New(),
		Name:      name,
		Role:      enums.UserRoleResident,
		CreatedAt: time.Now().UTC(),
	}
	repo.users[user.ID] = user
	return user
}

func TestListMergesSynthesizedCandidates(t *testing.T) {
	repo := newFakeReportsRepo()
	svc := newTestService(t, repo)

	seedReview(repo, 1, "never showed up")
	seedReview(repo, 5, "great service")
	seedUser(repo, "X")
	seedUser(repo, "Juan dela Cruz")
	repo.stored[uuid.New()] = &models.Report{
		ID:           uuid.New(),
		ReportType:   "harassment",
		ReporterName: "Ana",
		Description:  "abusive chat messages",
		Status:       enums.ReportStatusPending,
		Source:       enums.ReportSourceStored,
		CreatedAt:    time.Now().UTC(),
	}

	result, err := svc.List(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	// 1 stored + 1 low-rated review + 1 short-named user.
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(result.Items))
	}

	synthesized := 0
	for _, item := range result.Items {
		if item.Report.Source == enums.ReportSourceSynthesized {
			synthesized++
			if item.Ref == "" {
				t.Fatalf("synthesized item must carry a ref")
			}
			if _, err := ParseCandidateRef(item.Ref); err != nil {
				t.Fatalf("synthesized ref must round-trip: %v", err)
			}
		}
	}
	if synthesized != 2 {
		t.Fatalf("expected 2 synthesized candidates, got %d", synthesized)
	}
}

func TestListResolvedFilterSkipsSynthesized(t *testing.T) {
	repo := newFakeReportsRepo()
	svc := newTestService(t, repo)

	seedReview(repo, 1, "")
	resolvedAt := time.Now().UTC()
	resolver := uuid.New()
	id := uuid.New()
	repo.stored[id] = &models.Report{
		ID:           id,
		ReportType:   "spam",
		ReporterName: "Ana",
		Description:  "spam listings",
		Status:       enums.ReportStatusResolved,
		Source:       enums.ReportSourceStored,
		ResolvedBy:   &resolver,
		ResolvedAt:   &resolvedAt,
	}

	result, err := svc.List(context.Background(), ListParams{Status: "resolved"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected only the stored resolved report, got %d items", len(result.Items))
	}
	if result.Items[0].Report.Source != enums.ReportSourceStored {
		t.Fatalf("synthesized candidates are never resolved in a listing")
	}
}

func TestResolveStoredReport(t *testing.T) {
	repo := newFakeReportsRepo()
	svc := newTestService(t, repo)

	id := uuid.New()
	repo.stored[id] = &models.Report{
		ID:           id,
		ReportType:   "harassment",
		ReporterName: "Ana",
		Description:  "abusive chat messages",
		Status:       enums.ReportStatusPending,
		Source:       enums.ReportSourceStored,
	}

	admin := uuid.New()
	report, err := svc.Resolve(context.Background(), ResolveInput{
		ReportID:    &id,
		ActionTaken: strPtr("warning_issued"),
		ResolvedBy:  admin,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if report.Status != enums.ReportStatusResolved {
		t.Fatalf("expected resolved, got %s", report.Status)
	}

	// A second resolution attempt conflicts.
	_, err = svc.Resolve(context.Background(), ResolveInput{
		ReportID:   &id,
		ResolvedBy: admin,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on double resolve, got %v", err)
	}
}

func TestResolveSynthesizedMaterializesRow(t *testing.T) {
	repo := newFakeReportsRepo()
	svc := newTestService(t, repo)

	review := seedReview(repo, 1, "item was stolen")
	ref := CandidateRef{Kind: "review", SourceID: review.ID}.String()

	admin := uuid.New()
	report, err := svc.Resolve(context.Background(), ResolveInput{
		CandidateRef: ref,
		ActionTaken:  strPtr("account_suspended"),
		ResolvedBy:   admin,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if report.Source != enums.ReportSourceSynthesized {
		t.Fatalf("materialized row must keep the synthesized source, got %s", report.Source)
	}
	if report.Status != enums.ReportStatusResolved {
		t.Fatalf("materialized row must be resolved, got %s", report.Status)
	}
	if report.Priority != enums.ReportPriorityHigh {
		t.Fatalf("one-star review should rank high, got %s", report.Priority)
	}

	stored, ok := repo.stored[report.ID]
	if !ok {
		t.Fatalf("expected a stored row after materialization")
	}
	if stored.ResolvedBy == nil || *stored.ResolvedBy != admin {
		t.Fatalf("resolver must be recorded on the stored row")
	}
}

func TestResolveSynthesizedStaleCandidate(t *testing.T) {
	repo := newFakeReportsRepo()
	svc := newTestService(t, repo)

	// A review that no longer qualifies (rating raised after an edit).
	review := seedReview(repo, 4, "")
	ref := CandidateRef{Kind: "review", SourceID: review.ID}.String()

	_, err := svc.Resolve(context.Background(), ResolveInput{
		CandidateRef: ref,
		ResolvedBy:   uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for stale candidate, got %v", err)
	}
}

func TestResolveInputValidation(t *testing.T) {
	repo := newFakeReportsRepo()
	svc := newTestService(t, repo)
	id := uuid.New()

	cases := []ResolveInput{
		// neither id nor ref
		{ResolvedBy: uuid.New()},
		// both id and ref
		{ReportID: &id, CandidateRef: "review:" + id.String(), ResolvedBy: uuid.New()},
		// missing resolver
		{CandidateRef: "review:" + id.String()},
		// unknown candidate kind
		{CandidateRef: "booking:" + id.String(), ResolvedBy: uuid.New()},
		// malformed source id
		{CandidateRef: "review:not-a-uuid", ResolvedBy: uuid.New()},
	}
	for i, input := range cases {
		_, err := svc.Resolve(context.Background(), input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestSubmitStoredReport(t *testing.T) {
	repo := newFakeReportsRepo()
	svc := newTestService(t, repo)

	report, err := svc.Submit(context.Background(), SubmitInput{
		ReportType:   "scam",
		ReporterName: "Ana",
		Description:  "asked for payment outside the app",
		Priority:     "high",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if report.Status != enums.ReportStatusPending || report.Source != enums.ReportSourceStored {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Priority != enums.ReportPriorityHigh {
		t.Fatalf("expected high priority, got %s", report.Priority)
	}

	_, err = svc.Submit(context.Background(), SubmitInput{ReportType: "scam"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
