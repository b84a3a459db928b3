package domain

import "fmt"

// OrderStatus is informational; a simulation never writes it back onto the order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderDelivered  OrderStatus = "delivered"
	OrderLate       OrderStatus = "late"
	OrderUnassigned OrderStatus = "unassigned"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderDelivered, OrderLate, OrderUnassigned:
		return true
	}
	return false
}

// Order is a single delivery request on exactly one route.
// DeliveryTime is the requested time of day and only orders processing.
// Route is populated by repositories that join the referenced route.
type Order struct {
	OrderID          int
	ValueRs          float64
	RouteID          int
	Route            *Route
	DeliveryTime     TimeOfDay
	AssignedDriverID *int64
	Status           OrderStatus
}

func (o Order) Validate() error {
	if o.OrderID <= 0 {
		return fmt.Errorf("order: order_id must be positive, got %d: %w", o.OrderID, ErrValidation)
	}

	if o.ValueRs < 0 {
		return fmt.Errorf("order %d: value_rs must be >= 0: %w", o.OrderID, ErrValidation)
	}

	if o.RouteID <= 0 {
		return fmt.Errorf("order %d: route_id must be positive: %w", o.OrderID, ErrValidation)
	}

	if o.Status != "" && !o.Status.Valid() {
		return fmt.Errorf("order %d: unknown status %q: %w", o.OrderID, o.Status, ErrValidation)
	}

	return nil
}
