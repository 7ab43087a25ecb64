package reports

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
)

// ReportItem is one moderation queue entry. Stored rows carry their own
// id; synthesized candidates carry a ref instead, which Resolve accepts
// in place of an id.
type ReportItem struct {
	Report models.Report `json:"report"`
	Ref    string        `json:"ref,omitempty"`
}

// Service merges stored reports with read-time synthesized candidates and
// resolves both kinds.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Submit(ctx context.Context, input SubmitInput) (*models.Report, error)
	Resolve(ctx context.Context, input ResolveInput) (*models.Report, error)
}

// ListParams filters the moderation queue as received from the API layer.
type ListParams struct {
	Status string
	Limit  int
	Cursor string
}

// ListResult is a page of queue entries. Synthesized candidates appear on
// the first page only; cursors page through stored rows.
type ListResult struct {
	Items      []ReportItem `json:"items"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// SubmitInput is a user-filed report.
type SubmitInput struct {
	ReportType     string
	ReporterID     *uuid.UUID
	ReporterName   string
	ReportedUserID *uuid.UUID
	Description    string
	Priority       string
}

// ResolveInput is one admin action on a queue entry. Exactly one of
// ReportID and CandidateRef must be set.
type ResolveInput struct {
	ReportID     *uuid.UUID
	CandidateRef string
	ActionTaken  *string
	ActionNotes  *string
	ResolvedBy   uuid.UUID
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
	repoParams := ListReportsParams{Limit: params.Limit}

	var status *enums.ReportStatus
	if params.Status != "" {
		parsed := enums.ReportStatus(params.Status)
		if !parsed.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").
				WithDetails(map[string]string{"status": params.Status})
		}
		status = &parsed
		repoParams.Status = &parsed
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	repoParams.Cursor = cursor

	stored, next, err := s.repo.ListStored(ctx, repoParams)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing reports")
	}

	items := make([]ReportItem, 0, len(stored))
	for _, report := range stored {
		items = append(items, ReportItem{Report: report})
	}

	// Synthesized candidates are pending by definition and only join the
	// first page. They are recomputed per request, never stored.
	includeSynthesized := cursor == nil && (status == nil || *status == enums.ReportStatusPending)
	if includeSynthesized {
		candidates, err := s.synthesize(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, candidates...)
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Report.CreatedAt.After(items[j].Report.CreatedAt)
		})
	}

	result := &ListResult{Items: items}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

func (s *serviceImpl) synthesize(ctx context.Context) ([]ReportItem, error) {
	reviews, err := s.repo.LowRatedReviews(ctx, lowRatingThreshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading low-rated reviews")
	}
	users, err := s.repo.AllUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading users")
	}

	var items []ReportItem
	for _, candidate := range SynthesizeFromReviews(reviews) {
		items = append(items, ReportItem{
			Report: candidate,
			Ref:    CandidateRef{Kind: candidateKindReview, SourceID: candidate.ID}.String(),
		})
	}
	for _, candidate := range SynthesizeFromUsers(users) {
		items = append(items, ReportItem{
			Report: candidate,
			Ref:    CandidateRef{Kind: candidateKindUser, SourceID: candidate.ID}.String(),
		})
	}
	return items, nil
}

func (s *serviceImpl) Submit(ctx context.Context, input SubmitInput) (*models.Report, error) {
	reportType := strings.TrimSpace(input.ReportType)
	description := strings.TrimSpace(input.Description)
	reporterName := strings.TrimSpace(input.ReporterName)
	if reportType == "" || description == "" || reporterName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report type, reporter name and description are required")
	}

	priority := enums.ReportPriorityMedium
	if input.Priority != "" {
		parsed, err := enums.ParseReportPriority(input.Priority)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority")
		}
		priority = parsed
	}

	report := &models.Report{
		ID:             uuid.New(),
		ReportType:     reportType,
		ReporterID:     input.ReporterID,
		ReporterName:   reporterName,
		ReportedUserID: input.ReportedUserID,
		Description:    description,
		Priority:       priority,
		Status:         enums.ReportStatusPending,
		Source:         enums.ReportSourceStored,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating report")
	}
	return report, nil
}

// Resolve closes a stored report, or materializes a synthesized candidate
// as an already resolved row so the action leaves an audit trail.
func (s *serviceImpl) Resolve(ctx context.Context, input ResolveInput) (*models.Report, error) {
	if input.ResolvedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "resolver identity is required")
	}
	if (input.ReportID == nil) == (input.CandidateRef == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of report id or candidate ref is required")
	}

	if input.ReportID != nil {
		return s.resolveStored(ctx, *input.ReportID, input)
	}
	return s.resolveSynthesized(ctx, input)
}

func (s *serviceImpl) resolveStored(ctx context.Context, id uuid.UUID, input ResolveInput) (*models.Report, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "report not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching report")
	}

	now := time.Now().UTC()
	resolution := Resolution{
		ActionTaken: input.ActionTaken,
		ActionNotes: input.ActionNotes,
		ResolvedBy:  input.ResolvedBy,
		ResolvedAt:  now,
	}
	resolved, err := s.repo.Resolve(ctx, id, resolution)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving report")
	}
	if !resolved {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "report already resolved")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"report_id": id.String()})
	s.logg.Info(ctx, "report resolved")

	report.Status = enums.ReportStatusResolved
	report.ActionTaken = input.ActionTaken
	report.ActionNotes = input.ActionNotes
	report.ResolvedBy = &input.ResolvedBy
	report.ResolvedAt = &now
	return report, nil
}

func (s *serviceImpl) resolveSynthesized(ctx context.Context, input ResolveInput) (*models.Report, error) {
	ref, err := ParseCandidateRef(input.CandidateRef)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid candidate ref")
	}

	var candidate *models.Report
	switch ref.Kind {
	case candidateKindReview:
		review, err := s.repo.FindReviewByID(ctx, ref.SourceID)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching review")
		}
		synthesized := SynthesizeFromReviews([]models.Review{*review})
		if len(synthesized) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "review no longer qualifies as a report candidate")
		}
		candidate = &synthesized[0]
	case candidateKindUser:
		user, err := s.repo.FindUserByID(ctx, ref.SourceID)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching user")
		}
		synthesized := SynthesizeFromUsers([]models.User{*user})
		if len(synthesized) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user no longer qualifies as a report candidate")
		}
		candidate = &synthesized[0]
	}

	now := time.Now().UTC()
	report := *candidate
	report.ID = uuid.New()
	report.Status = enums.ReportStatusResolved
	report.ActionTaken = input.ActionTaken
	report.ActionNotes = input.ActionNotes
	report.ResolvedBy = &input.ResolvedBy
	report.ResolvedAt = &now
	report.CreatedAt = time.Time{}

	if err := s.repo.CreateResolved(ctx, &report); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "materializing candidate")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"report_id": report.ID.String(), "ref": input.CandidateRef})
	s.logg.Info(ctx, "synthesized candidate resolved")
	return &report, nil
}
