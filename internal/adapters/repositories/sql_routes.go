package repositories

import (
	"context"
	"database/sql"
	"delivery-sim-service/internal/domain"
	"errors"
	"fmt"
)

func (s *SQLStore) ListRoutes(ctx context.Context) ([]*domain.Route, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, s.q(`
	SELECT route_id, distance_km, traffic_level, base_time_min
	FROM routes
	ORDER BY route_id;
	`))
	if err != nil {
		return nil, fmt.Errorf("list routes: query routes table: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.Route, 0, 16)
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("list routes: %w", err)
		}
		routes = append(routes, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	return routes, nil
}

func (s *SQLStore) GetRoute(ctx context.Context, routeID int) (*domain.Route, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, s.q(`
	SELECT route_id, distance_km, traffic_level, base_time_min
	FROM routes
	WHERE route_id = ?;
	`), routeID)

	r, err := scanRoute(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get route %d: %w", routeID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get route %d: %w", routeID, err)
	}
	return r, nil
}

func (s *SQLStore) CreateRoute(ctx context.Context, r domain.Route) (*domain.Route, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create route %d: begin tx: %w", r.RouteID, err)
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := s.exists(ctx, tx, `SELECT 1 FROM routes WHERE route_id = ?;`, r.RouteID)
	if err != nil {
		return nil, fmt.Errorf("create route %d: %w", r.RouteID, err)
	}
	if exists {
		return nil, fmt.Errorf("create route %d: route_id already exists: %w", r.RouteID, domain.ErrConflict)
	}

	if _, err := tx.ExecContext(ctx, s.q(`
	INSERT INTO routes (
		route_id,
		distance_km,
		traffic_level,
		base_time_min
	)
	VALUES (?, ?, ?, ?);
	`), r.RouteID, r.DistanceKm, string(r.TrafficLevel), r.BaseTimeMin); err != nil {
		return nil, fmt.Errorf("create route %d: insert: %w", r.RouteID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create route %d: commit tx: %w", r.RouteID, err)
	}

	return &r, nil
}

func (s *SQLStore) UpdateRoute(ctx context.Context, r domain.Route) (*domain.Route, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("update route: %w", err)
	}

	res, err := s.DB.ExecContext(ctx, s.q(`
	UPDATE routes
	SET distance_km = ?, traffic_level = ?, base_time_min = ?
	WHERE route_id = ?;
	`), r.DistanceKm, string(r.TrafficLevel), r.BaseTimeMin, r.RouteID)
	if err != nil {
		return nil, fmt.Errorf("update route %d: %w", r.RouteID, err)
	}

	if err := expectOneRow(res); err != nil {
		return nil, fmt.Errorf("update route %d: %w", r.RouteID, err)
	}

	return &r, nil
}

// DeleteRoute refuses to remove a route that any order still references.
func (s *SQLStore) DeleteRoute(ctx context.Context, routeID int) error {
	if err := s.check(); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete route %d: begin tx: %w", routeID, err)
	}
	defer func() { _ = tx.Rollback() }()

	referenced, err := s.exists(ctx, tx, `SELECT 1 FROM orders WHERE route_id = ? LIMIT 1;`, routeID)
	if err != nil {
		return fmt.Errorf("delete route %d: %w", routeID, err)
	}
	if referenced {
		return fmt.Errorf("delete route %d: route is referenced by orders: %w", routeID, domain.ErrConflict)
	}

	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM routes WHERE route_id = ?;`), routeID)
	if err != nil {
		return fmt.Errorf("delete route %d: %w", routeID, err)
	}

	if err := expectOneRow(res); err != nil {
		return fmt.Errorf("delete route %d: %w", routeID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete route %d: commit tx: %w", routeID, err)
	}

	return nil
}

func (s *SQLStore) exists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, s.q(query), args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return true, nil
}

func scanRoute(row scanner) (*domain.Route, error) {
	var r domain.Route
	var traffic string
	if err := row.Scan(&r.RouteID, &r.DistanceKm, &traffic, &r.BaseTimeMin); err != nil {
		return nil, fmt.Errorf("scan route: %w", err)
	}
	r.TrafficLevel = domain.TrafficLevel(traffic)
	return &r, nil
}
