package push

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/fcm"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
)

// Sender is the slice of the push transport the service uses.
type Sender interface {
	SendToToken(ctx context.Context, token string, msg fcm.Message) error
	SendToTokens(ctx context.Context, tokens []string, msg fcm.Message) (*fcm.BatchResult, error)
}

// TokenSource resolves accounts to device tokens.
type TokenSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	ListActive(ctx context.Context) ([]models.User, error)
}

// Service delivers ad-hoc push messages to one, many, or all devices.
// Delivery is best effort and independent of the in-app inbox.
type Service interface {
	SendToUser(ctx context.Context, input SendToUserInput) error
	SendToAll(ctx context.Context, input BroadcastInput) (*BroadcastResult, error)
	SendToMultiple(ctx context.Context, input MulticastInput) (*BroadcastResult, error)
}

// SendToUserInput targets a single account's registered device.
type SendToUserInput struct {
	UserID uuid.UUID
	Title  string
	Body   string
	Data   map[string]string
}

// BroadcastInput targets every active device, optionally filtered by role.
// RoleFilter accepts legacy alias spellings.
type BroadcastInput struct {
	Title      string
	Body       string
	RoleFilter string
	Data       map[string]string
}

// MulticastInput targets an explicit account list.
type MulticastInput struct {
	UserIDs []uuid.UUID
	Title   string
	Body    string
	Data    map[string]string
}

// BroadcastResult reports per-device outcomes of a batch delivery.
type BroadcastResult struct {
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`
	SkippedCount int `json:"skipped_count"`
}

type serviceImpl struct {
	sender Sender
	tokens TokenSource
	logg   *logger.Logger
}

func NewService(sender Sender, tokens TokenSource, logg *logger.Logger) (Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &serviceImpl{sender: sender, tokens: tokens, logg: logg}, nil
}

func (s *serviceImpl) SendToUser(ctx context.Context, input SendToUserInput) error {
	if err := validateMessage(input.Title, input.Body); err != nil {
		return err
	}
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	user, err := s.tokens.FindByID(ctx, input.UserID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching user")
	}
	if user.FCMToken == nil || strings.TrimSpace(*user.FCMToken) == "" {
		return pkgerrors.New(pkgerrors.CodeConflict, "user has no registered device")
	}

	msg := fcm.Message{Title: input.Title, Body: input.Body, Data: input.Data}
	if err := s.sender.SendToToken(ctx, *user.FCMToken, msg); err != nil {
		return err
	}

	logCtx := s.logg.WithUserID(ctx, input.UserID.String())
	s.logg.Info(logCtx, "push delivered to user")
	return nil
}

func (s *serviceImpl) SendToAll(ctx context.Context, input BroadcastInput) (*BroadcastResult, error) {
	if err := validateMessage(input.Title, input.Body); err != nil {
		return nil, err
	}

	var roleFilter *enums.UserRole
	if input.RoleFilter != "" {
		role, err := enums.ParseUserRole(input.RoleFilter)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown role filter")
		}
		roleFilter = &role
	}

	activeUsers, err := s.tokens.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "enumerating devices")
	}

	if roleFilter != nil {
		filtered := activeUsers[:0]
		for _, user := range activeUsers {
			if user.Role == *roleFilter {
				filtered = append(filtered, user)
			}
		}
		activeUsers = filtered
	}

	return s.deliver(ctx, activeUsers, fcm.Message{Title: input.Title, Body: input.Body, Data: input.Data})
}

func (s *serviceImpl) SendToMultiple(ctx context.Context, input MulticastInput) (*BroadcastResult, error) {
	if err := validateMessage(input.Title, input.Body); err != nil {
		return nil, err
	}
	if len(input.UserIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one user id is required")
	}

	targets, err := s.tokens.FindByIDs(ctx, input.UserIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving users")
	}

	return s.deliver(ctx, targets, fcm.Message{Title: input.Title, Body: input.Body, Data: input.Data})
}

// deliver extracts device tokens and pushes in one batch call. Accounts
// without a token are skipped and reported, not treated as failures.
func (s *serviceImpl) deliver(ctx context.Context, targets []models.User, msg fcm.Message) (*BroadcastResult, error) {
	tokens := make([]string, 0, len(targets))
	skipped := 0
	for _, user := range targets {
		if user.FCMToken == nil || strings.TrimSpace(*user.FCMToken) == "" {
			skipped++
			continue
		}
		tokens = append(tokens, *user.FCMToken)
	}

	if len(tokens) == 0 {
		return &BroadcastResult{SkippedCount: skipped}, nil
	}

	batch, err := s.sender.SendToTokens(ctx, tokens, msg)
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"delivered": batch.SuccessCount,
		"failed":    batch.FailureCount,
		"skipped":   skipped,
	})
	s.logg.Info(logCtx, "push broadcast finished")

	return &BroadcastResult{
		SuccessCount: batch.SuccessCount,
		FailureCount: batch.FailureCount,
		SkippedCount: skipped,
	}, nil
}

func validateMessage(title, body string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title and body are required")
	}
	return nil
}
