package events

import (
	"context"
	"delivery-sim-service/internal/domain"
	"errors"
	"testing"
	"time"
)

type flakyPublisher struct {
	failures int
	calls    int
}

func (f *flakyPublisher) PublishSimulation(context.Context, *domain.SimulationResult) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection reset")
	}
	return nil
}

func TestRetryPublisherRecovers(t *testing.T) {
	flaky := &flakyPublisher{failures: 2}
	p := &RetryPublisher{Next: flaky, Attempts: 3, Backoff: time.Millisecond}

	if err := p.PublishSimulation(context.Background(), sampleResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flaky.calls != 3 {
		t.Fatalf("calls = %d, want 3", flaky.calls)
	}
}

func TestRetryPublisherGivesUp(t *testing.T) {
	flaky := &flakyPublisher{failures: 10}
	p := &RetryPublisher{Next: flaky, Attempts: 2, Backoff: time.Millisecond}

	if err := p.PublishSimulation(context.Background(), sampleResult()); err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if flaky.calls != 2 {
		t.Fatalf("calls = %d, want 2", flaky.calls)
	}
}

func TestRetryPublisherStopsOnCancel(t *testing.T) {
	flaky := &flakyPublisher{failures: 10}
	p := &RetryPublisher{Next: flaky, Attempts: 5, Backoff: time.Hour}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.PublishSimulation(ctx, sampleResult())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
	if flaky.calls != 1 {
		t.Fatalf("calls = %d, want 1", flaky.calls)
	}
}
