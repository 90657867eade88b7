package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgBackend struct {
	pool *pgxpool.Pool
}

func (b *pgBackend) name() string { return "postgres" }

func (b *pgBackend) insert(ctx context.Context, run Run) error {
	query := `
		INSERT INTO valuation_runs (id, ticker, kind, inputs, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := b.pool.Exec(ctx, query,
		run.ID, run.Ticker, run.Kind, []byte(run.Inputs), []byte(run.Result), run.CreatedAt,
	)
	return err
}

func scanRun(row pgx.Row) (Run, error) {
	var (
		run            Run
		inputs, result []byte
	)
	if err := row.Scan(&run.ID, &run.Ticker, &run.Kind, &inputs, &result, &run.CreatedAt); err != nil {
		return Run{}, err
	}
	run.Inputs = inputs
	run.Result = result
	return run, nil
}

func (b *pgBackend) get(ctx context.Context, id string) (Run, error) {
	query := `
		SELECT id::text, ticker, kind, inputs, result, created_at
		FROM valuation_runs
		WHERE id = $1
	`
	run, err := scanRun(b.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

func (b *pgBackend) list(ctx context.Context, ticker string, limit int) ([]Run, error) {
	query := `
		SELECT id::text, ticker, kind, inputs, result, created_at
		FROM valuation_runs
		WHERE $1 = '' OR ticker = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := b.pool.Query(ctx, query, ticker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
