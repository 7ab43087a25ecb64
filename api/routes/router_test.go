package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/internal/analytics"
	"github.com/LeiBaylon/kolekkita-backend/internal/campaigns"
	"github.com/LeiBaylon/kolekkita-backend/internal/notifications"
	"github.com/LeiBaylon/kolekkita-backend/internal/push"
	"github.com/LeiBaylon/kolekkita-backend/internal/reports"
	"github.com/LeiBaylon/kolekkita-backend/internal/users"
	"github.com/LeiBaylon/kolekkita-backend/internal/verifications"
	pkgauth "github.com/LeiBaylon/kolekkita-backend/pkg/auth"
	"github.com/LeiBaylon/kolekkita-backend/pkg/config"
	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubUsersService struct {
	authenticated *users.UserDTO
}

func (s stubUsersService) List(ctx context.Context, params users.ListParams) (*users.ListResult, error) {
	return &users.ListResult{}, nil
}

func (s stubUsersService) Get(ctx context.Context, id uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: id}, nil
}

func (s stubUsersService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*users.UserDTO, error) {
	return &users.UserDTO{ID: id, IsActive: active}, nil
}

func (s stubUsersService) Authenticate(ctx context.Context, email, password string) (*users.UserDTO, error) {
	if s.authenticated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return s.authenticated, nil
}

func (s stubUsersService) RegisterFCMToken(ctx context.Context, id uuid.UUID, token string) error {
	return nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, userID uuid.UUID, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type stubCampaignsService struct{}

func (stubCampaignsService) Send(ctx context.Context, input campaigns.SendInput) (*campaigns.SendResult, error) {
	return &campaigns.SendResult{CampaignID: uuid.New(), Status: enums.CampaignStatusCompleted}, nil
}

func (stubCampaignsService) List(ctx context.Context, params campaigns.ListParams) (*campaigns.ListResult, error) {
	return &campaigns.ListResult{}, nil
}

func (stubCampaignsService) Get(ctx context.Context, id uuid.UUID) (*campaigns.CampaignDetail, error) {
	return &campaigns.CampaignDetail{}, nil
}

type stubVerificationsService struct{}

func (stubVerificationsService) Submit(ctx context.Context, input verifications.SubmitInput) (*models.Verification, error) {
	return &models.Verification{}, nil
}

func (stubVerificationsService) List(ctx context.Context, params verifications.ListParams) (*verifications.ListResult, error) {
	return &verifications.ListResult{}, nil
}

func (stubVerificationsService) Get(ctx context.Context, id uuid.UUID) (*models.Verification, error) {
	return &models.Verification{}, nil
}

func (stubVerificationsService) Decide(ctx context.Context, input verifications.DecideInput) (*models.Verification, error) {
	return &models.Verification{}, nil
}

func (stubVerificationsService) StatusCounts(ctx context.Context) (map[enums.VerificationStatus]int64, error) {
	return map[enums.VerificationStatus]int64{}, nil
}

type stubAnalyticsService struct{}

func (stubAnalyticsService) Overview(ctx context.Context, months int) (*analytics.Overview, error) {
	return &analytics.Overview{GeneratedAt: time.Now().UTC()}, nil
}

type stubReportsService struct{}

func (stubReportsService) List(ctx context.Context, params reports.ListParams) (*reports.ListResult, error) {
	return &reports.ListResult{}, nil
}

func (stubReportsService) Submit(ctx context.Context, input reports.SubmitInput) (*models.Report, error) {
	return &models.Report{}, nil
}

func (stubReportsService) Resolve(ctx context.Context, input reports.ResolveInput) (*models.Report, error) {
	return &models.Report{}, nil
}

type stubPushService struct{}

func (stubPushService) SendToUser(ctx context.Context, input push.SendToUserInput) error {
	return nil
}

func (stubPushService) SendToAll(ctx context.Context, input push.BroadcastInput) (*push.BroadcastResult, error) {
	return &push.BroadcastResult{}, nil
}

func (stubPushService) SendToMultiple(ctx context.Context, input push.MulticastInput) (*push.BroadcastResult, error) {
	return &push.BroadcastResult{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
	}
}

func newTestRouter(cfg *config.Config, usersSvc users.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Output: io.Discard})
	return NewRouter(Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            stubPinger{},
		Users:         usersSvc,
		Notifications: stubNotificationsService{},
		Campaigns:     stubCampaignsService{},
		Verifications: stubVerificationsService{},
		Analytics:     stubAnalyticsService{},
		Reports:       stubReportsService{},
		Push:          stubPushService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()

	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		Name:   "Router Test",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(), stubUsersService{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), stubUsersService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedRoutesRejectNonAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubUsersService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/overview", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleResident))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for resident got %d", resp.Code)
	}
}

func TestProtectedRoutesAllowAdmin(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, stubUsersService{})

	for _, path := range []string{
		"/api/v1/users",
		"/api/v1/campaigns",
		"/api/v1/verifications",
		"/api/v1/verifications/status-counts",
		"/api/v1/analytics/overview",
		"/api/v1/reports",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 for admin got %d", path, resp.Code)
		}
	}
}

func TestLoginIssuesTokenForAdmin(t *testing.T) {
	cfg := testConfig()
	admin := &users.UserDTO{ID: uuid.New(), Email: "admin@kolekkita.ph", Name: "Ana", Role: enums.UserRoleAdmin, IsActive: true}
	router := newTestRouter(cfg, stubUsersService{authenticated: admin})

	body := `{"email":"admin@kolekkita.ph","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Token == "" {
		t.Fatal("expected a token in the login response")
	}
}

func TestLoginRejectsMarketplaceAccounts(t *testing.T) {
	cfg := testConfig()
	resident := &users.UserDTO{ID: uuid.New(), Role: enums.UserRoleResident, IsActive: true}
	router := newTestRouter(cfg, stubUsersService{authenticated: resident})

	body := `{"email":"resident@kolekkita.ph","password":"pw"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for marketplace account got %d", resp.Code)
	}
}
