package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// DefaultListLimit caps List when no positive limit is given.
const DefaultListLimit = 50

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("valuation run not found")

// Run is one persisted calculation: the request that produced it and the
// typed response, both kept as raw JSON.
type Run struct {
	ID        string          `json:"id"`
	Ticker    string          `json:"ticker,omitempty"`
	Kind      string          `json:"kind"`
	Inputs    json.RawMessage `json:"inputs"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

type backend interface {
	insert(ctx context.Context, run Run) error
	get(ctx context.Context, id string) (Run, error)
	list(ctx context.Context, ticker string, limit int) ([]Run, error)
	name() string
}

// HistoryStore keeps calculation history.
// Hybrid vault: Postgres when a pool is configured, JSON files otherwise.
type HistoryStore struct {
	backend backend
	log     zerolog.Logger
}

// NewHistoryStore uses pool when it is non-nil. Otherwise runs are written
// to dir, which defaults to .cache/valuations.
func NewHistoryStore(pool *pgxpool.Pool, dir string, log zerolog.Logger) (*HistoryStore, error) {
	s := &HistoryStore{log: log.With().Str("component", "history").Logger()}

	if pool != nil {
		s.backend = &pgBackend{pool: pool}
	} else {
		if dir == "" {
			dir = filepath.Join(".cache", "valuations")
		}
		fb, err := newFileBackend(dir)
		if err != nil {
			return nil, err
		}
		s.backend = fb
	}

	s.log.Debug().Str("backend", s.backend.name()).Msg("History store ready")
	return s, nil
}

// Backend names the storage in use ("postgres" or "file").
func (s *HistoryStore) Backend() string {
	return s.backend.name()
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// Save assigns an id and timestamp when they are missing and persists the run.
func (s *HistoryStore) Save(ctx context.Context, run Run) (Run, error) {
	if run.Kind == "" {
		return Run{}, fmt.Errorf("run kind is required")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	} else if _, err := uuid.Parse(run.ID); err != nil {
		return Run{}, fmt.Errorf("invalid run id %q: %w", run.ID, err)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Ticker = normalizeTicker(run.Ticker)

	if err := s.backend.insert(ctx, run); err != nil {
		s.log.Error().Err(err).Str("kind", run.Kind).Msg("Failed to save run")
		return Run{}, fmt.Errorf("failed to save run: %w", err)
	}

	s.log.Info().Str("id", run.ID).Str("kind", run.Kind).Str("ticker", run.Ticker).Msg("Run saved")
	return run, nil
}

// Get loads a run by id. Unknown or malformed ids yield ErrRunNotFound.
func (s *HistoryStore) Get(ctx context.Context, id string) (Run, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Run{}, ErrRunNotFound
	}
	return s.backend.get(ctx, id)
}

// List returns runs newest first, filtered by ticker when one is given.
func (s *HistoryStore) List(ctx context.Context, ticker string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	runs, err := s.backend.list(ctx, normalizeTicker(ticker), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
