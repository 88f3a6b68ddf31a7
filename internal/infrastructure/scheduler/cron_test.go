package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/baseradar/baseradar/internal/logging"
)

func TestCronSchedulerRunsJob(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("@every 1s", time.UTC, logging.Discard())
	fired := make(chan time.Time, 1)
	if err := s.Start(context.Background(), func(trigger time.Time) {
		select {
		case fired <- trigger:
		default:
		}
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop(context.Background())

	if s.Next().IsZero() {
		t.Fatalf("expected a planned next run")
	}

	select {
	case trigger := <-fired:
		if trigger.Location() != time.UTC {
			t.Fatalf("trigger not in scheduler location: %v", trigger.Location())
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("job did not fire")
	}
}

func TestCronSchedulerRejectsBadSpec(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("every tuesday", nil, logging.Discard())
	if err := s.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatalf("expected invalid spec error")
	}
	if err := s.Start(context.Background(), nil); err == nil {
		t.Fatalf("expected nil job error")
	}
}

func TestCronSchedulerStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewCronScheduler("0 */2 * * *", time.UTC, logging.Discard())
	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for !s.Next().IsZero() {
		if time.Now().After(deadline) {
			t.Fatalf("scheduler still running after cancel")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
