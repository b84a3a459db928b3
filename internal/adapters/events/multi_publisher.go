package events

import (
	"context"
	"delivery-sim-service/internal/domain"
	"delivery-sim-service/internal/ports"
	"errors"
)

// MultiPublisher publishes to every target; one failing target does not stop the rest.
type MultiPublisher []ports.SimulationPublisher

func (m MultiPublisher) PublishSimulation(ctx context.Context, res *domain.SimulationResult) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishSimulation(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
