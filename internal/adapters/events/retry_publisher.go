package events

import (
	"context"
	"delivery-sim-service/internal/domain"
	"delivery-sim-service/internal/ports"
	"errors"
	"time"
)

// RetryPublisher retries a failing publish with exponential backoff while
// respecting context cancellation. Used for network-backed publishers.
type RetryPublisher struct {
	Next     ports.SimulationPublisher
	Attempts int
	Backoff  time.Duration
}

func WithRetry(next ports.SimulationPublisher) *RetryPublisher {
	return &RetryPublisher{Next: next, Attempts: 3, Backoff: 200 * time.Millisecond}
}

func (p *RetryPublisher) PublishSimulation(ctx context.Context, res *domain.SimulationResult) error {
	attempts := max(p.Attempts, 1)
	backoff := p.Backoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(lastErr, err)
		}

		err := p.Next.PublishSimulation(ctx, res)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}

		backoff *= 2
	}

	return lastErr
}
