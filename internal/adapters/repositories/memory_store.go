package repositories

import (
	"cmp"
	"context"
	"delivery-sim-service/internal/domain"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// MemoryStore is an in-process ports.FleetStore used when no database is configured
// and in tests. Every read returns copies, so callers get a stable snapshot.
type MemoryStore struct {
	mu           sync.RWMutex
	nextDriverID int64
	drivers      map[int64]domain.Driver
	routes       map[int]domain.Route
	orders       map[int]domain.Order
	simulations  []domain.SimulationResult
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drivers: map[int64]domain.Driver{},
		routes:  map[int]domain.Route{},
		orders:  map[int]domain.Order{},
	}
}

func (m *MemoryStore) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Driver, 0, len(m.drivers))
	for _, id := range slices.Sorted(maps.Keys(m.drivers)) {
		out = append(out, copyDriver(m.drivers[id]))
	}
	return out, nil
}

func (m *MemoryStore) GetDriver(ctx context.Context, id int64) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drivers[id]
	if !ok {
		return nil, fmt.Errorf("get driver %d: %w", id, domain.ErrNotFound)
	}
	return copyDriver(d), nil
}

func (m *MemoryStore) CreateDriver(ctx context.Context, d domain.Driver) (*domain.Driver, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextDriverID++
	d.ID = m.nextDriverID
	d.PastWeekHours = slices.Clone(d.PastWeekHours)
	m.drivers[d.ID] = d
	return copyDriver(d), nil
}

func (m *MemoryStore) UpdateDriver(ctx context.Context, d domain.Driver) (*domain.Driver, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("update driver: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drivers[d.ID]; !ok {
		return nil, fmt.Errorf("update driver %d: %w", d.ID, domain.ErrNotFound)
	}
	d.PastWeekHours = slices.Clone(d.PastWeekHours)
	m.drivers[d.ID] = d
	return copyDriver(d), nil
}

func (m *MemoryStore) DeleteDriver(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drivers[id]; !ok {
		return fmt.Errorf("delete driver %d: %w", id, domain.ErrNotFound)
	}
	delete(m.drivers, id)

	for oid, o := range m.orders {
		if o.AssignedDriverID != nil && *o.AssignedDriverID == id {
			o.AssignedDriverID = nil
			m.orders[oid] = o
		}
	}
	return nil
}

func (m *MemoryStore) ListRoutes(ctx context.Context) ([]*domain.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Route, 0, len(m.routes))
	for _, id := range slices.Sorted(maps.Keys(m.routes)) {
		r := m.routes[id]
		out = append(out, &r)
	}
	return out, nil
}

func (m *MemoryStore) GetRoute(ctx context.Context, routeID int) (*domain.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.routes[routeID]
	if !ok {
		return nil, fmt.Errorf("get route %d: %w", routeID, domain.ErrNotFound)
	}
	return &r, nil
}

func (m *MemoryStore) CreateRoute(ctx context.Context, r domain.Route) (*domain.Route, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.routes[r.RouteID]; ok {
		return nil, fmt.Errorf("create route %d: route_id already exists: %w", r.RouteID, domain.ErrConflict)
	}
	m.routes[r.RouteID] = r
	return &r, nil
}

func (m *MemoryStore) UpdateRoute(ctx context.Context, r domain.Route) (*domain.Route, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("update route: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.routes[r.RouteID]; !ok {
		return nil, fmt.Errorf("update route %d: %w", r.RouteID, domain.ErrNotFound)
	}
	m.routes[r.RouteID] = r
	return &r, nil
}

func (m *MemoryStore) DeleteRoute(ctx context.Context, routeID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.routes[routeID]; !ok {
		return fmt.Errorf("delete route %d: %w", routeID, domain.ErrNotFound)
	}

	for _, o := range m.orders {
		if o.RouteID == routeID {
			return fmt.Errorf("delete route %d: route is referenced by orders: %w", routeID, domain.ErrConflict)
		}
	}

	delete(m.routes, routeID)
	return nil
}

// ListOrders returns orders by order_id with a private copy of each route.
func (m *MemoryStore) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Order, 0, len(m.orders))
	for _, id := range slices.Sorted(maps.Keys(m.orders)) {
		o, err := m.resolve(m.orders[id])
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *MemoryStore) GetOrder(ctx context.Context, orderID int) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("get order %d: %w", orderID, domain.ErrNotFound)
	}
	return m.resolve(o)
}

func (m *MemoryStore) CreateOrder(ctx context.Context, o domain.Order) (*domain.Order, error) {
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[o.OrderID]; ok {
		return nil, fmt.Errorf("create order %d: order_id already exists: %w", o.OrderID, domain.ErrConflict)
	}
	if _, ok := m.routes[o.RouteID]; !ok {
		return nil, fmt.Errorf("create order %d: route %d: %w", o.OrderID, o.RouteID, domain.ErrNotFound)
	}

	o.Route = nil
	m.orders[o.OrderID] = o
	return m.resolve(o)
}

func (m *MemoryStore) UpdateOrder(ctx context.Context, o domain.Order) (*domain.Order, error) {
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[o.OrderID]; !ok {
		return nil, fmt.Errorf("update order %d: %w", o.OrderID, domain.ErrNotFound)
	}
	if _, ok := m.routes[o.RouteID]; !ok {
		return nil, fmt.Errorf("update order %d: route %d: %w", o.OrderID, o.RouteID, domain.ErrNotFound)
	}

	o.Route = nil
	m.orders[o.OrderID] = o
	return m.resolve(o)
}

func (m *MemoryStore) DeleteOrder(ctx context.Context, orderID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[orderID]; !ok {
		return fmt.Errorf("delete order %d: %w", orderID, domain.ErrNotFound)
	}
	delete(m.orders, orderID)
	return nil
}

func (m *MemoryStore) SaveSimulation(ctx context.Context, res *domain.SimulationResult) error {
	if res == nil || res.ID == "" {
		return errors.New("save simulation: result must have an id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.simulations {
		if existing.ID == res.ID {
			return fmt.Errorf("save simulation %s: %w", res.ID, domain.ErrConflict)
		}
	}
	m.simulations = append(m.simulations, *res)
	return nil
}

// ListSimulations orders by creation time; equal timestamps keep insertion order.
func (m *MemoryStore) ListSimulations(ctx context.Context) ([]*domain.SimulationResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.SimulationResult, 0, len(m.simulations))
	for _, res := range m.simulations {
		out = append(out, &res)
	}

	slices.SortStableFunc(out, func(a, b *domain.SimulationResult) int {
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	})
	return out, nil
}

func (m *MemoryStore) GetSimulation(ctx context.Context, id string) (*domain.SimulationResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, res := range m.simulations {
		if res.ID == id {
			return &res, nil
		}
	}
	return nil, fmt.Errorf("get simulation %s: %w", id, domain.ErrNotFound)
}

// resolve attaches a copy of the referenced route. Caller holds the lock.
func (m *MemoryStore) resolve(o domain.Order) (*domain.Order, error) {
	r, ok := m.routes[o.RouteID]
	if !ok {
		return nil, fmt.Errorf("order %d: route %d missing", o.OrderID, o.RouteID)
	}
	o.Route = &r
	if o.AssignedDriverID != nil {
		id := *o.AssignedDriverID
		o.AssignedDriverID = &id
	}
	return &o, nil
}

func copyDriver(d domain.Driver) *domain.Driver {
	d.PastWeekHours = slices.Clone(d.PastWeekHours)
	return &d
}
