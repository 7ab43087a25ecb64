package cron

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeLock struct {
	grant    bool
	acquires int
	releases int
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) {
	f.acquires++
	return f.grant, nil
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.releases++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestServiceRunsJobsOnce(t *testing.T) {
	jobA := &countingJob{name: "a"}
	jobB := &countingJob{name: "b", err: errors.New("boom")}
	lock := &fakeLock{grant: true}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(jobA, jobB),
		Lock:     lock,
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	svc.runCycle(context.Background())

	// A failing job does not stop the rest of the cycle.
	if jobA.runs != 1 || jobB.runs != 1 {
		t.Fatalf("expected each job to run once, got a=%d b=%d", jobA.runs, jobB.runs)
	}
	if lock.acquires != 1 || lock.releases != 1 {
		t.Fatalf("lock should be acquired and released once, got %d/%d", lock.acquires, lock.releases)
	}
}

func TestServiceSkipsCycleWithoutLock(t *testing.T) {
	job := &countingJob{name: "a"}
	lock := &fakeLock{grant: false}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	svc.runCycle(context.Background())

	if job.runs != 0 {
		t.Fatalf("jobs must not run without the lock")
	}
	if lock.releases != 0 {
		t.Fatalf("an unheld lock must not be released")
	}
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	lock := &fakeLock{grant: true}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(),
		Lock:     lock,
		Interval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}

func TestNewServiceValidation(t *testing.T) {
	if _, err := NewService(ServiceParams{Registry: NewRegistry(), Lock: &fakeLock{}}); err == nil {
		t.Fatalf("expected error without logger")
	}
	if _, err := NewService(ServiceParams{Logger: testLogger(), Lock: &fakeLock{}}); err == nil {
		t.Fatalf("expected error without registry")
	}
	if _, err := NewService(ServiceParams{Logger: testLogger(), Registry: NewRegistry()}); err == nil {
		t.Fatalf("expected error without lock")
	}
}
