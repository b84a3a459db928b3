package repositories

import (
	"context"
	"database/sql"
	"delivery-sim-service/internal/domain"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Seed file names expected in the seed directory.
const (
	DriversCSV = "drivers.csv"
	RoutesCSV  = "routes.csv"
	OrdersCSV  = "orders.csv"
)

// SeedFromCSV upserts drivers (by name), routes (by route_id) and orders
// (by order_id) from the CSV files in dir. Seeded orders are reset to pending
// and unassigned.
func SeedFromCSV(ctx context.Context, db *sql.DB, dialect Dialect, dir string) error {
	if db == nil {
		return errors.New("seed csv: DB is nil")
	}

	drivers, err := readSeedFile(filepath.Join(dir, DriversCSV), ParseDriversCSV)
	if err != nil {
		return fmt.Errorf("seed csv: %w", err)
	}
	routes, err := readSeedFile(filepath.Join(dir, RoutesCSV), ParseRoutesCSV)
	if err != nil {
		return fmt.Errorf("seed csv: %w", err)
	}
	orders, err := readSeedFile(filepath.Join(dir, OrdersCSV), ParseOrdersCSV)
	if err != nil {
		return fmt.Errorf("seed csv: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed csv: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(timeLayout)

	for _, d := range drivers {
		if err := upsertDriver(ctx, tx, dialect, d, now); err != nil {
			return fmt.Errorf("seed csv: driver %q: %w", d.Name, err)
		}
	}

	routeQuery := dialect.rebind(`
	INSERT INTO routes (route_id, distance_km, traffic_level, base_time_min)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (route_id) DO UPDATE SET
		distance_km = excluded.distance_km,
		traffic_level = excluded.traffic_level,
		base_time_min = excluded.base_time_min;
	`)
	for _, r := range routes {
		if _, err := tx.ExecContext(ctx, routeQuery, r.RouteID, r.DistanceKm, string(r.TrafficLevel), r.BaseTimeMin); err != nil {
			return fmt.Errorf("seed csv: upsert route_id=%d: %w", r.RouteID, err)
		}
	}

	orderQuery := dialect.rebind(`
	INSERT INTO orders (order_id, value_rs, route_id, delivery_time, assigned_driver_id, status, created_at)
	VALUES (?, ?, ?, ?, NULL, ?, ?)
	ON CONFLICT (order_id) DO UPDATE SET
		value_rs = excluded.value_rs,
		route_id = excluded.route_id,
		delivery_time = excluded.delivery_time,
		assigned_driver_id = NULL,
		status = excluded.status;
	`)
	for _, o := range orders {
		var one int
		err := tx.QueryRowContext(ctx, dialect.rebind(`SELECT 1 FROM routes WHERE route_id = ?;`), o.RouteID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("seed csv: order_id=%d: route %d: %w", o.OrderID, o.RouteID, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("seed csv: order_id=%d: check route: %w", o.OrderID, err)
		}

		if _, err := tx.ExecContext(ctx, orderQuery,
			o.OrderID, o.ValueRs, o.RouteID, o.DeliveryTime.String(), string(domain.OrderPending), now,
		); err != nil {
			return fmt.Errorf("seed csv: upsert order_id=%d: %w", o.OrderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed csv: commit tx: %w", err)
	}

	return nil
}

// Drivers have no natural key besides their name.
func upsertDriver(ctx context.Context, tx *sql.Tx, dialect Dialect, d domain.Driver, now string) error {
	hours, err := json.Marshal(d.PastWeekHours)
	if err != nil {
		return fmt.Errorf("encode past_week_hours: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx, dialect.rebind(`SELECT id FROM drivers WHERE name = ? ORDER BY id LIMIT 1;`), d.Name).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, dialect.rebind(`
		INSERT INTO drivers (name, shift_hours, past_week_hours, created_at)
		VALUES (?, ?, ?, ?);
		`), d.Name, d.ShiftHours, string(hours), now)
	case err == nil:
		_, err = tx.ExecContext(ctx, dialect.rebind(`
		UPDATE drivers SET shift_hours = ?, past_week_hours = ? WHERE id = ?;
		`), d.ShiftHours, string(hours), id)
	}
	return err
}

func readSeedFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	rows, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// ParseDriversCSV reads name,shift_hours,past_week_hours rows.
// past_week_hours is a |-separated list of seven numbers.
func ParseDriversCSV(r io.Reader) ([]domain.Driver, error) {
	records, err := readRecords(r, "name", "shift_hours", "past_week_hours")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Driver, 0, len(records))
	for i, rec := range records {
		line := i + 2
		shift, err := parseFloat(rec["shift_hours"])
		if err != nil {
			return nil, fmt.Errorf("line %d: shift_hours: %w", line, err)
		}

		parts := strings.Split(rec["past_week_hours"], "|")
		hours := make([]float64, 0, len(parts))
		for _, p := range parts {
			h, err := parseFloat(p)
			if err != nil {
				return nil, fmt.Errorf("line %d: past_week_hours: %w", line, err)
			}
			hours = append(hours, h)
		}

		d := domain.Driver{Name: rec["name"], ShiftHours: shift, PastWeekHours: hours}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// ParseRoutesCSV reads route_id,distance_km,traffic_level,base_time_min rows.
func ParseRoutesCSV(r io.Reader) ([]domain.Route, error) {
	records, err := readRecords(r, "route_id", "distance_km", "traffic_level", "base_time_min")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Route, 0, len(records))
	for i, rec := range records {
		line := i + 2
		id, err := strconv.Atoi(rec["route_id"])
		if err != nil {
			return nil, fmt.Errorf("line %d: route_id: %w", line, err)
		}
		dist, err := parseFloat(rec["distance_km"])
		if err != nil {
			return nil, fmt.Errorf("line %d: distance_km: %w", line, err)
		}
		base, err := parseFloat(rec["base_time_min"])
		if err != nil {
			return nil, fmt.Errorf("line %d: base_time_min: %w", line, err)
		}

		route := domain.Route{
			RouteID:      id,
			DistanceKm:   dist,
			TrafficLevel: domain.TrafficLevel(rec["traffic_level"]),
			BaseTimeMin:  base,
		}
		if err := route.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, route)
	}
	return out, nil
}

// ParseOrdersCSV reads order_id,value_rs,route_id,delivery_time rows.
func ParseOrdersCSV(r io.Reader) ([]domain.Order, error) {
	records, err := readRecords(r, "order_id", "value_rs", "route_id", "delivery_time")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Order, 0, len(records))
	for i, rec := range records {
		line := i + 2
		id, err := strconv.Atoi(rec["order_id"])
		if err != nil {
			return nil, fmt.Errorf("line %d: order_id: %w", line, err)
		}
		value, err := parseFloat(rec["value_rs"])
		if err != nil {
			return nil, fmt.Errorf("line %d: value_rs: %w", line, err)
		}
		routeID, err := strconv.Atoi(rec["route_id"])
		if err != nil {
			return nil, fmt.Errorf("line %d: route_id: %w", line, err)
		}
		at, err := domain.ParseTimeOfDay(rec["delivery_time"])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		o := domain.Order{
			OrderID:      id,
			ValueRs:      value,
			RouteID:      routeID,
			DeliveryTime: at,
			Status:       domain.OrderPending,
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, o)
	}
	return out, nil
}

// readRecords maps each data row to its header columns. Column order is free;
// every required column must be present.
func readRecords(r io.Reader, required ...string) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var out []map[string]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		row := make(map[string]string, len(required))
		for _, col := range required {
			row[col] = strings.TrimSpace(rec[index[col]])
		}
		out = append(out, row)
	}
	return out, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
