package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/attribution-backend/pkg/logger"
)

type fakeLock struct {
	held     bool
	acquires int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	f.acquires++
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.held = false; return nil }

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func TestServiceRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	failing := &testJob{name: "fail", err: errors.New("boom")}
	trailing := &testJob{name: "trailing"}
	registry := NewRegistry(failing, trailing)
	service, err := NewService(ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     &fakeLock{},
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if failing.runs != 1 {
		t.Fatalf("expected failing job to run once, ran %d", failing.runs)
	}
	if trailing.runs != 1 {
		t.Fatalf("expected trailing job to run despite earlier failure, ran %d", trailing.runs)
	}
}

func TestServiceRunCycleSkipsWhenLockHeld(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	job := &testJob{name: "only"}
	lock := &fakeLock{held: true}
	service, err := NewService(ServiceParams{
		Logger:   logg,
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected no runs while another worker holds the lock, ran %d", job.runs)
	}
	if lock.acquires != 1 {
		t.Fatalf("expected one acquire attempt, got %d", lock.acquires)
	}
}

func TestServiceTriggerCoalesces(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	service, err := NewService(ServiceParams{
		Logger: logg,
		Lock:   &fakeLock{},
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	service.Trigger()
	service.Trigger()
	if len(service.trigger) != 1 {
		t.Fatalf("expected pending triggers to coalesce to one, got %d", len(service.trigger))
	}
}

func TestNewServiceRequiresLock(t *testing.T) {
	if _, err := NewService(ServiceParams{Logger: logger.New(logger.Options{ServiceName: "cron-test"})}); err == nil {
		t.Fatal("expected error without lock")
	}
	if _, err := NewService(ServiceParams{Lock: &fakeLock{}}); err == nil {
		t.Fatal("expected error without logger")
	}
}
