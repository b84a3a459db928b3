package ports

import (
	"context"
	"delivery-sim-service/internal/domain"
)

// Port: a boundary for reading and maintaining Driver records.
type DriverRepository interface {
	// Return all drivers in storage order; callers impose their own ordering.
	ListDrivers(ctx context.Context) ([]*domain.Driver, error)
	GetDriver(ctx context.Context, id int64) (*domain.Driver, error)
	// Persist a new driver and return it with its assigned ID.
	CreateDriver(ctx context.Context, d domain.Driver) (*domain.Driver, error)
	UpdateDriver(ctx context.Context, d domain.Driver) (*domain.Driver, error)
	DeleteDriver(ctx context.Context, id int64) error
}
