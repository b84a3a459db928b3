package ports

import (
	"context"
	"delivery-sim-service/internal/domain"
)

// Port: a boundary for Route records keyed by route_id.
type RouteRepository interface {
	ListRoutes(ctx context.Context) ([]*domain.Route, error)
	GetRoute(ctx context.Context, routeID int) (*domain.Route, error)
	CreateRoute(ctx context.Context, r domain.Route) (*domain.Route, error)
	UpdateRoute(ctx context.Context, r domain.Route) (*domain.Route, error)
	// Deleting a route that orders still reference fails with domain.ErrConflict.
	DeleteRoute(ctx context.Context, routeID int) error
}
