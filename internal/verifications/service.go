package verifications

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeiBaylon/kolekkita-backend/internal/notifications"
	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	dbtypes "github.com/LeiBaylon/kolekkita-backend/pkg/db/types"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
)

// Service owns the junk-shop verification review workflow.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Verification, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Verification, error)
	Decide(ctx context.Context, input DecideInput) (*models.Verification, error)
	StatusCounts(ctx context.Context) (map[enums.VerificationStatus]int64, error)
}

// SubmitInput is a new document submission from a junk shop.
type SubmitInput struct {
	SubmittedBy  uuid.UUID
	ShopName     string
	DocumentType string
	DocumentURL  string
}

// ListParams filters the review queue as received from the API layer.
type ListParams struct {
	Status      string
	SubmittedBy *uuid.UUID
	Limit       int
	Cursor      string
}

// ListResult is a page of verifications plus the cursor for the next page.
type ListResult struct {
	Verifications []models.Verification `json:"verifications"`
	NextCursor    *string               `json:"next_cursor,omitempty"`
}

// DecideInput is one admin decision on a submission. Decisions overwrite
// each other: an approved submission can later be rejected and vice versa.
type DecideInput struct {
	VerificationID  uuid.UUID
	Decision        string
	AdminNotes      *string
	RejectionReason *string
	ResolvedBy      uuid.UUID
}

type serviceImpl struct {
	repo      Repository
	notifRepo notifications.Repository
	logg      *logger.Logger
}

func NewService(repo Repository, notifRepo notifications.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if notifRepo == nil {
		return nil, fmt.Errorf("notifications repo is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &serviceImpl{repo: repo, notifRepo: notifRepo, logg: logg}, nil
}

func (s *serviceImpl) Submit(ctx context.Context, input SubmitInput) (*models.Verification, error) {
	if input.SubmittedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submitter is required")
	}
	shopName := strings.TrimSpace(input.ShopName)
	documentType := strings.TrimSpace(input.DocumentType)
	documentURL := strings.TrimSpace(input.DocumentURL)
	if shopName == "" || documentType == "" || documentURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name, document type and document url are required")
	}

	verification := &models.Verification{
		ID:           uuid.New(),
		SubmittedBy:  input.SubmittedBy,
		ShopName:     shopName,
		DocumentType: documentType,
		DocumentURL:  documentURL,
		Status:       enums.VerificationStatusPending,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, verification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating verification")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"verification_id": verification.ID.String(),
		"submitted_by":    input.SubmittedBy.String(),
	})
	s.logg.Info(ctx, "verification submitted")
	return verification, nil
}

func (s *serviceImpl) List(ctx context.Context, params ListParams) (*ListResult, error) {
	repoParams := ListVerificationsParams{
		SubmittedBy: params.SubmittedBy,
		Limit:       params.Limit,
	}

	if params.Status != "" {
		status, err := enums.ParseVerificationStatus(params.Status)
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing verifications")
	}

	result := &ListResult{Verifications: rows}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

func (s *serviceImpl) Get(ctx context.Context, id uuid.UUID) (*models.Verification, error) {
	verification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "verification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching verification")
	}
	return verification, nil
}

// Decide validates the decision payload before touching storage, applies
// it, and notifies the submitter. A rejection without a reason is refused
// outright.
func (s *serviceImpl) Decide(ctx context.Context, input DecideInput) (*models.Verification, error) {
	decision, err := enums.ParseVerificationStatus(input.Decision)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision")
	}
	if !decision.IsDecision() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approved or rejected")
	}
	if input.ResolvedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewer identity is required")
	}

	var reason *string
	if decision == enums.VerificationStatusRejected {
		if input.RejectionReason == nil || strings.TrimSpace(*input.RejectionReason) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection requires a reason")
		}
		trimmed := strings.TrimSpace(*input.RejectionReason)
		reason = &trimmed
	}

	verification, err := s.repo.FindByID(ctx, input.VerificationID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "verification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching verification")
	}

	now := time.Now().UTC()
	update := DecisionUpdate{
		Status:          decision,
		AdminNotes:      input.AdminNotes,
		RejectionReason: reason,
		ResolvedBy:      input.ResolvedBy,
		ResolvedAt:      now,
	}
	applied, err := s.repo.ApplyDecision(ctx, verification.ID, update)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "applying decision")
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "verification not found")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"verification_id": verification.ID.String(),
		"previous_status": string(verification.Status),
		"decision":        string(decision),
	})
	s.logg.Info(ctx, "verification decided")

	if err := s.notifRepo.Create(ctx, decisionNotification(verification, decision, reason, now)); err != nil {
		// The decision is already recorded; the submitter just misses the ping.
		s.logg.Error(ctx, "failed to notify submitter of decision", err)
	}

	verification.Status = decision
	verification.AdminNotes = input.AdminNotes
	verification.RejectionReason = reason
	verification.ResolvedBy = &input.ResolvedBy
	verification.ResolvedAt = &now
	return verification, nil
}

func (s *serviceImpl) StatusCounts(ctx context.Context) (map[enums.VerificationStatus]int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting verifications")
	}
	return counts, nil
}

func decisionNotification(verification *models.Verification, decision enums.VerificationStatus, reason *string, at time.Time) *models.Notification {
	title := "Verification approved"
	message := fmt.Sprintf("Your submission for %s has been approved.", verification.ShopName)
	if decision == enums.VerificationStatusRejected {
		title = "Verification rejected"
		message = fmt.Sprintf("Your submission for %s was rejected: %s", verification.ShopName, *reason)
	}

	return &models.Notification{
		ID:      uuid.New(),
		UserID:  verification.SubmittedBy,
		Type:    enums.NotificationTypeVerification,
		Title:   title,
		Message: message,
		Data: dbtypes.JSONMap{
			"verificationId": verification.ID.String(),
			"decision":       string(decision),
		},
		SentAt: at,
	}
}
