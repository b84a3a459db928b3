package ports

import (
	"context"
	"delivery-sim-service/internal/domain"
)

// Port: append-only history of simulation runs.
type SimulationRepository interface {
	SaveSimulation(ctx context.Context, res *domain.SimulationResult) error
	// Return all runs ordered by creation time, oldest first.
	ListSimulations(ctx context.Context) ([]*domain.SimulationResult, error)
	GetSimulation(ctx context.Context, id string) (*domain.SimulationResult, error)
}
