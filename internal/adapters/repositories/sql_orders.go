package repositories

import (
	"context"
	"database/sql"
	"delivery-sim-service/internal/domain"
	"delivery-sim-service/internal/platform/obs"
	"errors"
	"fmt"
	"time"
)

const selectOrdersQuery = `
	SELECT
		o.order_id,
		o.value_rs,
		o.delivery_time,
		o.assigned_driver_id,
		o.status,
		r.route_id,
		r.distance_km,
		r.traffic_level,
		r.base_time_min
	FROM orders o
	JOIN routes r ON r.route_id = o.route_id
`

// Return all orders with their routes joined, ordered by order_id.
func (s *SQLStore) ListOrders(ctx context.Context) (_ []*domain.Order, err error) {
	defer obs.Time(ctx, "store.ListOrders")(&err)

	if err := s.check(); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, s.q(selectOrdersQuery+`ORDER BY o.order_id;`))
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, 64)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}

	return orders, nil
}

func (s *SQLStore) GetOrder(ctx context.Context, orderID int) (*domain.Order, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, s.q(selectOrdersQuery+`WHERE o.order_id = ?;`), orderID)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order %d: %w", orderID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	return o, nil
}

func (s *SQLStore) CreateOrder(ctx context.Context, o domain.Order) (*domain.Order, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create order %d: begin tx: %w", o.OrderID, err)
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := s.exists(ctx, tx, `SELECT 1 FROM orders WHERE order_id = ?;`, o.OrderID)
	if err != nil {
		return nil, fmt.Errorf("create order %d: %w", o.OrderID, err)
	}
	if exists {
		return nil, fmt.Errorf("create order %d: order_id already exists: %w", o.OrderID, domain.ErrConflict)
	}

	route, err := s.routeInTx(ctx, tx, o.RouteID)
	if err != nil {
		return nil, fmt.Errorf("create order %d: %w", o.OrderID, err)
	}

	if _, err := tx.ExecContext(ctx, s.q(`
	INSERT INTO orders (
		order_id,
		value_rs,
		route_id,
		delivery_time,
		assigned_driver_id,
		status,
		created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`),
		o.OrderID, o.ValueRs, o.RouteID, o.DeliveryTime.String(),
		nullableID(o.AssignedDriverID), string(o.Status), time.Now().UTC().Format(timeLayout),
	); err != nil {
		return nil, fmt.Errorf("create order %d: insert: %w", o.OrderID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create order %d: commit tx: %w", o.OrderID, err)
	}

	o.Route = route
	return &o, nil
}

func (s *SQLStore) UpdateOrder(ctx context.Context, o domain.Order) (*domain.Order, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update order %d: begin tx: %w", o.OrderID, err)
	}
	defer func() { _ = tx.Rollback() }()

	route, err := s.routeInTx(ctx, tx, o.RouteID)
	if err != nil {
		return nil, fmt.Errorf("update order %d: %w", o.OrderID, err)
	}

	res, err := tx.ExecContext(ctx, s.q(`
	UPDATE orders
	SET value_rs = ?, route_id = ?, delivery_time = ?, assigned_driver_id = ?, status = ?
	WHERE order_id = ?;
	`), o.ValueRs, o.RouteID, o.DeliveryTime.String(), nullableID(o.AssignedDriverID), string(o.Status), o.OrderID)
	if err != nil {
		return nil, fmt.Errorf("update order %d: %w", o.OrderID, err)
	}

	if err := expectOneRow(res); err != nil {
		return nil, fmt.Errorf("update order %d: %w", o.OrderID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update order %d: commit tx: %w", o.OrderID, err)
	}

	o.Route = route
	return &o, nil
}

func (s *SQLStore) DeleteOrder(ctx context.Context, orderID int) error {
	if err := s.check(); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, s.q(`DELETE FROM orders WHERE order_id = ?;`), orderID)
	if err != nil {
		return fmt.Errorf("delete order %d: %w", orderID, err)
	}

	if err := expectOneRow(res); err != nil {
		return fmt.Errorf("delete order %d: %w", orderID, err)
	}

	return nil
}

func (s *SQLStore) routeInTx(ctx context.Context, tx *sql.Tx, routeID int) (*domain.Route, error) {
	row := tx.QueryRowContext(ctx, s.q(`
	SELECT route_id, distance_km, traffic_level, base_time_min
	FROM routes
	WHERE route_id = ?;
	`), routeID)

	r, err := scanRoute(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("route %d: %w", routeID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("route %d: %w", routeID, err)
	}
	return r, nil
}

func scanOrder(row scanner) (*domain.Order, error) {
	var (
		o        domain.Order
		r        domain.Route
		at       string
		driverID sql.NullInt64
		status   string
		traffic  string
	)

	if err := row.Scan(
		&o.OrderID, &o.ValueRs, &at, &driverID, &status,
		&r.RouteID, &r.DistanceKm, &traffic, &r.BaseTimeMin,
	); err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	deliveryTime, err := domain.ParseTimeOfDay(at)
	if err != nil {
		return nil, fmt.Errorf("scan order %d: %w", o.OrderID, err)
	}

	o.DeliveryTime = deliveryTime
	o.Status = domain.OrderStatus(status)
	if driverID.Valid {
		id := driverID.Int64
		o.AssignedDriverID = &id
	}

	r.TrafficLevel = domain.TrafficLevel(traffic)
	o.RouteID = r.RouteID
	o.Route = &r

	return &o, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
