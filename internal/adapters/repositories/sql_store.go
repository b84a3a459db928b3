package repositories

import (
	"context"
	"database/sql"
	"delivery-sim-service/internal/domain"
	"delivery-sim-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Fixed-width UTC timestamps sort lexically in both dialects.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLStore is a database/sql implementation of ports.FleetStore.
// It works against Postgres (pgx stdlib driver) and SQLite (modernc.org/sqlite).
type SQLStore struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{DB: db, Dialect: dialect}
}

func (s *SQLStore) q(query string) string { return s.Dialect.rebind(query) }

func (s *SQLStore) check() error {
	if s.DB == nil {
		return errors.New("sql store: DB is nil")
	}
	return nil
}

// Return all drivers ordered by id.
func (s *SQLStore) ListDrivers(ctx context.Context) (_ []*domain.Driver, err error) {
	defer obs.Time(ctx, "store.ListDrivers")(&err)

	if err := s.check(); err != nil {
		return nil, err
	}

	query := `
	SELECT
		id,
		name,
		shift_hours,
		past_week_hours
	FROM drivers
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, s.q(query))
	if err != nil {
		return nil, fmt.Errorf("list drivers: query drivers table: %w", err)
	}
	defer rows.Close()

	drivers := make([]*domain.Driver, 0, 16)
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("list drivers: %w", err)
		}
		drivers = append(drivers, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}

	return drivers, nil
}

func (s *SQLStore) GetDriver(ctx context.Context, id int64) (*domain.Driver, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, s.q(`
	SELECT id, name, shift_hours, past_week_hours
	FROM drivers
	WHERE id = ?;
	`), id)

	d, err := scanDriver(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get driver %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get driver %d: %w", id, err)
	}
	return d, nil
}

func (s *SQLStore) CreateDriver(ctx context.Context, d domain.Driver) (*domain.Driver, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}

	hours, err := json.Marshal(d.PastWeekHours)
	if err != nil {
		return nil, fmt.Errorf("create driver: encode past_week_hours: %w", err)
	}

	query := `
	INSERT INTO drivers (
		name,
		shift_hours,
		past_week_hours,
		created_at
	)
	VALUES (?, ?, ?, ?)
	RETURNING id;
	`
	now := time.Now().UTC().Format(timeLayout)
	if err := s.DB.QueryRowContext(ctx, s.q(query), d.Name, d.ShiftHours, string(hours), now).Scan(&d.ID); err != nil {
		return nil, fmt.Errorf("create driver %q: insert: %w", d.Name, err)
	}

	return &d, nil
}

func (s *SQLStore) UpdateDriver(ctx context.Context, d domain.Driver) (*domain.Driver, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("update driver: %w", err)
	}

	hours, err := json.Marshal(d.PastWeekHours)
	if err != nil {
		return nil, fmt.Errorf("update driver: encode past_week_hours: %w", err)
	}

	res, err := s.DB.ExecContext(ctx, s.q(`
	UPDATE drivers
	SET name = ?, shift_hours = ?, past_week_hours = ?
	WHERE id = ?;
	`), d.Name, d.ShiftHours, string(hours), d.ID)
	if err != nil {
		return nil, fmt.Errorf("update driver %d: %w", d.ID, err)
	}

	if err := expectOneRow(res); err != nil {
		return nil, fmt.Errorf("update driver %d: %w", d.ID, err)
	}

	return &d, nil
}

// DeleteDriver removes the driver and clears it from any order assignment.
func (s *SQLStore) DeleteDriver(ctx context.Context, id int64) error {
	if err := s.check(); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete driver %d: begin tx: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.q(`UPDATE orders SET assigned_driver_id = NULL WHERE assigned_driver_id = ?;`), id); err != nil {
		return fmt.Errorf("delete driver %d: clear assignments: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM drivers WHERE id = ?;`), id)
	if err != nil {
		return fmt.Errorf("delete driver %d: %w", id, err)
	}

	if err := expectOneRow(res); err != nil {
		return fmt.Errorf("delete driver %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete driver %d: commit tx: %w", id, err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDriver(row scanner) (*domain.Driver, error) {
	var d domain.Driver
	var hours string
	if err := row.Scan(&d.ID, &d.Name, &d.ShiftHours, &hours); err != nil {
		return nil, fmt.Errorf("scan driver: %w", err)
	}

	if err := json.Unmarshal([]byte(hours), &d.PastWeekHours); err != nil {
		return nil, fmt.Errorf("scan driver %d: decode past_week_hours: %w", d.ID, err)
	}

	return &d, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
