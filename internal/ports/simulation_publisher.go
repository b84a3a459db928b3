package ports

import (
	"context"
	"delivery-sim-service/internal/domain"
)

// Port: notifies downstream consumers that a simulation run completed.
type SimulationPublisher interface {
	PublishSimulation(ctx context.Context, res *domain.SimulationResult) error
}
