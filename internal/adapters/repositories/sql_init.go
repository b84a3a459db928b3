package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the fleet tables if they do not exist.
// Referential rules (route deletion, order->route) are enforced by the store,
// so the schema stays portable between Postgres and SQLite.
func InitSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDriversQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS drivers (
		id %s,
		name TEXT NOT NULL,
		shift_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
		past_week_hours TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`, dialect.autoIncrementKey())

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		route_id INTEGER PRIMARY KEY,
		distance_km DOUBLE PRECISION NOT NULL,
		traffic_level TEXT NOT NULL,
		base_time_min DOUBLE PRECISION NOT NULL
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		order_id INTEGER PRIMARY KEY,
		value_rs DOUBLE PRECISION NOT NULL,
		route_id INTEGER NOT NULL REFERENCES routes(route_id),
		delivery_time TEXT NOT NULL,
		assigned_driver_id BIGINT,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL
	);
	`

	createSimulationsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS simulation_results (
		seq %s,
		id TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL,
		inputs TEXT NOT NULL,
		results TEXT NOT NULL
	);
	`, dialect.autoIncrementKey())

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_orders_route_id
	ON orders(route_id);
	`

	statements := []string{
		createDriversQuery,
		createRoutesQuery,
		createOrdersQuery,
		createSimulationsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
