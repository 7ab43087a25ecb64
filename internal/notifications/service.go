package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
)

// Service exposes the notification inbox for a single user.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ListParams carries inbox filters from the API layer.
type ListParams struct {
	UnreadOnly bool
	Limit      int
	Cursor     string
}

// ListResult is a page of notifications plus the unread total.
type ListResult struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
	NextCursor    *string               `json:"next_cursor,omitempty"`
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

func (s *serviceImpl) List(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, ListNotificationsParams{
		UserID:     userID,
		UnreadOnly: params.UnreadOnly,
		Limit:      params.Limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing notifications")
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting unread notifications")
	}

	result := &ListResult{Notifications: rows, UnreadCount: unread}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		result.NextCursor = &encoded
	}
	return result, nil
}

func (s *serviceImpl) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	updated, err := s.repo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking notification read")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *serviceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking notifications read")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"user_id": userID.String(), "marked": count})
	s.logg.Info(ctx, "inbox marked as read")
	return count, nil
}
