package ports

import (
	"context"
	"delivery-sim-service/internal/domain"
)

// Port: a boundary for Order records keyed by order_id.
type OrderRepository interface {
	// Return all orders with their Route resolved.
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	GetOrder(ctx context.Context, orderID int) (*domain.Order, error)
	CreateOrder(ctx context.Context, o domain.Order) (*domain.Order, error)
	UpdateOrder(ctx context.Context, o domain.Order) (*domain.Order, error)
	DeleteOrder(ctx context.Context, orderID int) error
}
