package repositories

import (
	"context"
	"database/sql"
	"delivery-sim-service/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SaveSimulation appends a result. Results are never updated afterwards.
func (s *SQLStore) SaveSimulation(ctx context.Context, res *domain.SimulationResult) error {
	if err := s.check(); err != nil {
		return err
	}

	if res == nil || res.ID == "" {
		return errors.New("save simulation: result must have an id")
	}

	inputs, err := json.Marshal(res.Inputs)
	if err != nil {
		return fmt.Errorf("save simulation %s: encode inputs: %w", res.ID, err)
	}

	results, err := json.Marshal(res.Results)
	if err != nil {
		return fmt.Errorf("save simulation %s: encode results: %w", res.ID, err)
	}

	if _, err := s.DB.ExecContext(ctx, s.q(`
	INSERT INTO simulation_results (
		id,
		created_at,
		inputs,
		results
	)
	VALUES (?, ?, ?, ?);
	`), res.ID, res.CreatedAt.UTC().Format(timeLayout), string(inputs), string(results)); err != nil {
		return fmt.Errorf("save simulation %s: insert: %w", res.ID, err)
	}

	return nil
}

func (s *SQLStore) ListSimulations(ctx context.Context) ([]*domain.SimulationResult, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, s.q(`
	SELECT id, created_at, inputs, results
	FROM simulation_results
	ORDER BY created_at, seq;
	`))
	if err != nil {
		return nil, fmt.Errorf("list simulations: query simulation_results table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.SimulationResult, 0, 16)
	for rows.Next() {
		res, err := scanSimulation(rows)
		if err != nil {
			return nil, fmt.Errorf("list simulations: %w", err)
		}
		out = append(out, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list simulations: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLStore) GetSimulation(ctx context.Context, id string) (*domain.SimulationResult, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, s.q(`
	SELECT id, created_at, inputs, results
	FROM simulation_results
	WHERE id = ?;
	`), id)

	res, err := scanSimulation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get simulation %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get simulation %s: %w", id, err)
	}
	return res, nil
}

func scanSimulation(row scanner) (*domain.SimulationResult, error) {
	var (
		res       domain.SimulationResult
		createdAt string
		inputs    string
		results   string
	)

	if err := row.Scan(&res.ID, &createdAt, &inputs, &results); err != nil {
		return nil, fmt.Errorf("scan simulation: %w", err)
	}

	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("scan simulation %s: parse created_at: %w", res.ID, err)
	}
	res.CreatedAt = ts

	if err := json.Unmarshal([]byte(inputs), &res.Inputs); err != nil {
		return nil, fmt.Errorf("scan simulation %s: decode inputs: %w", res.ID, err)
	}

	if err := json.Unmarshal([]byte(results), &res.Results); err != nil {
		return nil, fmt.Errorf("scan simulation %s: decode results: %w", res.ID, err)
	}

	return &res, nil
}
