package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	"github.com/LeiBaylon/kolekkita-backend/pkg/metrics"
)

const defaultInterval = 24 * time.Hour

// ServiceParams wires the worker loop.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service runs registered jobs on a fixed interval, one instance at a
// time across the fleet.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock is required")
	}
	if params.Interval <= 0 {
		params.Interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		registry: params.Registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: params.Interval,
	}, nil
}

// Run executes one cycle immediately, then ticks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Service) runCycle(ctx context.Context) {
	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		s.logg.Error(ctx, "acquiring cron lock", err)
		return
	}
	if !acquired {
		s.logg.Info(ctx, "cron lock held elsewhere, skipping cycle")
		return
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			s.logg.Error(ctx, "releasing cron lock", err)
		}
	}()

	for _, job := range s.registry.Jobs() {
		s.runJob(ctx, job)
	}
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	start := time.Now()

	err := job.Run(jobCtx)
	elapsed := time.Since(start)
	s.metrics.ObserveDuration(job.Name(), elapsed)

	jobCtx = s.logg.WithField(jobCtx, "duration_ms", elapsed.Milliseconds())
	if err != nil {
		s.metrics.IncFailure(job.Name())
		s.logg.Error(jobCtx, "cron job failed", err)
		return
	}
	s.metrics.IncSuccess(job.Name())
	s.logg.Info(jobCtx, "cron job finished")
}
