package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/LeiBaylon/kolekkita-backend/pkg/config"
	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
	"github.com/LeiBaylon/kolekkita-backend/pkg/security"
)

type fakeRepo struct {
	listFn           func(ctx context.Context, params ListUsersParams) ([]models.User, *pagination.Cursor, error)
	listActiveFn     func(ctx context.Context) ([]models.User, error)
	findByIDFn       func(ctx context.Context, id uuid.UUID) (*models.User, error)
	findByIDsFn      func(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	findByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	setActiveFn      func(ctx context.Context, id uuid.UUID, active bool) (bool, error)
	updateLastLogin  func(ctx context.Context, id uuid.UUID, at time.Time) error
	updateFCMTokenFn func(ctx context.Context, id uuid.UUID, token *string) error
}

func (f *fakeRepo) List(ctx context.Context, params ListUsersParams) ([]models.User, *pagination.Cursor, error) {
	return f.listFn(ctx, params)
}

func (f *fakeRepo) ListActive(ctx context.Context) ([]models.User, error) {
	return f.listActiveFn(ctx)
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	return f.findByIDsFn(ctx, ids)
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.findByEmailFn(ctx, email)
}

func (f *fakeRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	return f.setActiveFn(ctx, id, active)
}

func (f *fakeRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if f.updateLastLogin == nil {
		return nil
	}
	return f.updateLastLogin(ctx, id, at)
}

func (f *fakeRepo) UpdateFCMToken(ctx context.Context, id uuid.UUID, token *string) error {
	return f.updateFCMTokenFn(ctx, id, token)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "users-test"})
}

func TestListResolvesRoleAliases(t *testing.T) {
	var captured ListUsersParams
	repo := &fakeRepo{
		listFn: func(ctx context.Context, params ListUsersParams) ([]models.User, *pagination.Cursor, error) {
			captured = params
			return nil, nil, nil
		},
	}

	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.List(context.Background(), ListParams{Role: "junkshop"}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if captured.Role == nil || *captured.Role != enums.UserRoleJunkShopOwner {
		t.Fatalf("expected junkshop alias to resolve to junk_shop_owner, got %v", captured.Role)
	}

	if _, err := svc.List(context.Background(), ListParams{Role: "customer"}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if captured.Role == nil || *captured.Role != enums.UserRoleResident {
		t.Fatalf("expected customer alias to resolve to resident, got %v", captured.Role)
	}
}

func TestListRejectsUnknownRole(t *testing.T) {
	repo := &fakeRepo{}
	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.List(context.Background(), ListParams{Role: "astronaut"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetActiveProtectsMainAdmin(t *testing.T) {
	mainAdmin := &models.User{ID: uuid.New(), Role: enums.UserRoleMainAdmin, IsActive: true}
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return mainAdmin, nil
		},
		setActiveFn: func(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
			t.Fatalf("SetActive should not be called for the main admin")
			return false, nil
		},
	}

	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.SetActive(context.Background(), mainAdmin.ID, false)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	// Re-activating the main admin is still allowed.
	if _, err := svc.SetActive(context.Background(), mainAdmin.ID, true); err != nil {
		t.Fatalf("re-activating main admin: %v", err)
	}
}

func TestSetActiveDeactivatesRegularUser(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: enums.UserRoleCollector, IsActive: true}
	var called bool
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return user, nil
		},
		setActiveFn: func(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
			called = true
			if active {
				t.Fatalf("expected deactivation, got active=true")
			}
			return true, nil
		},
	}

	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	dto, err := svc.SetActive(context.Background(), user.ID, false)
	if err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if !called {
		t.Fatalf("repo SetActive was not called")
	}
	if dto.IsActive {
		t.Fatalf("expected returned user to be inactive")
	}
}

func TestSetActiveNotFound(t *testing.T) {
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.SetActive(context.Background(), uuid.New(), false)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	fastParams := config.PasswordConfig{
		ArgonMemoryKiB:   8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
	}
	hash, err := security.HashPassword("correct horse", fastParams)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        "admin@kolekkita.ph",
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
		PasswordHash: &hash,
	}
	repo := &fakeRepo{
		findByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			if email != user.Email {
				return nil, gorm.ErrRecordNotFound
			}
			return user, nil
		},
	}

	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	dto, err := svc.Authenticate(context.Background(), user.Email, "correct horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if dto.ID != user.ID {
		t.Fatalf("unexpected user returned: %s", dto.ID)
	}

	_, err = svc.Authenticate(context.Background(), user.Email, "wrong")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on wrong password, got %v", err)
	}

	_, err = svc.Authenticate(context.Background(), "nobody@kolekkita.ph", "whatever")
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on unknown email, got %v", err)
	}
}

func TestAuthenticateRejectsDeactivated(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "x@y.z", IsActive: false}
	repo := &fakeRepo{
		findByEmailFn: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), user.Email, "anything")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for deactivated account, got %v", err)
	}
}
