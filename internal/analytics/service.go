package analytics

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
)

// Overview is the dashboard's one-shot statistics payload.
type Overview struct {
	Weights            WeightSummary       `json:"weights"`
	Materials          MaterialBreakdown   `json:"materials"`
	Monthly            []MonthBucket       `json:"monthly"`
	ExcludedTimestamps int                 `json:"excluded_timestamps"`
	Municipalities     []MunicipalityCount `json:"municipalities"`
	Roles              RoleCounts          `json:"roles"`
	GeneratedAt        time.Time           `json:"generated_at"`
}

// Service computes dashboard statistics on demand.
type Service interface {
	Overview(ctx context.Context, months int) (*Overview, error)
}

type serviceImpl struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &serviceImpl{repo: repo, logg: logg, now: time.Now}, nil
}

// Overview re-scans the full booking and user collections. Aggregates are
// never cached or persisted; each request pays the full scan.
func (s *serviceImpl) Overview(ctx context.Context, months int) (*Overview, error) {
	bookings, err := s.repo.AllBookings(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bookings")
	}
	users, err := s.repo.AllUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading users")
	}

	now := s.now().UTC()
	monthly, excluded := MonthlySeries(bookings, months, now)
	if excluded > 0 {
		logCtx := s.logg.WithFields(ctx, map[string]any{"excluded": excluded})
		s.logg.Warn(logCtx, "bookings without timestamps excluded from monthly series")
	}

	return &Overview{
		Weights:            SummarizeWeights(bookings),
		Materials:          BreakdownByMaterial(bookings),
		Monthly:            monthly,
		ExcludedTimestamps: excluded,
		Municipalities:     BreakdownByMunicipality(bookings),
		Roles:              BreakdownByRole(users),
		GeneratedAt:        now,
	}, nil
}
