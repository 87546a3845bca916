// Package store persists completed valuation runs. The primary backend
// is Postgres (one JSONB row per run); a file-based fallback keeps
// local workflows usable without a database.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"credit_valuation/pkg/core/engine"
	"credit_valuation/pkg/models"
)

// RunRecord is one persisted valuation run: the scenario it came from,
// the full widened table, and the summary.
type RunRecord struct {
	ID        string                  `json:"id"`
	Scenario  string                  `json:"scenario"`
	Summary   models.ValuationSummary `json:"summary"`
	Table     []engine.PeriodRow      `json:"table"`
	CreatedAt time.Time               `json:"created_at"`
}

// NewRunRecord assembles a record with a fresh run id.
func NewRunRecord(scenario string, table []engine.PeriodRow, summary models.ValuationSummary) *RunRecord {
	return &RunRecord{
		ID:        uuid.NewString(),
		Scenario:  scenario,
		Summary:   summary,
		Table:     table,
		CreatedAt: time.Now().UTC(),
	}
}

// RunRepository abstracts run persistence so handlers and the CLI can
// be tested with a mock.
type RunRepository interface {
	Save(ctx context.Context, rec *RunRecord) error
	Load(ctx context.Context, id string) (*RunRecord, error)
}

// RunRepo stores runs in Postgres when a pool is available, falling
// back to JSON files in fileDir otherwise.
//
// Schema assumption (managed outside this package):
//
//	CREATE TABLE IF NOT EXISTS valuation_runs (
//	  id UUID PRIMARY KEY,
//	  scenario TEXT,
//	  run_json JSONB,
//	  created_at TIMESTAMPTZ
//	);
type RunRepo struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewRunRepo creates a repository. If pool is nil and dir is empty, it
// defaults to a local .cache directory.
func NewRunRepo(pool *pgxpool.Pool, dir string) *RunRepo {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "valuation", "runs")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] check run store dir: %v\n", err)
		}
	}
	return &RunRepo{pool: pool, fileDir: dir}
}

// OpenRunRepo builds a repository from the environment: Postgres when
// DATABASE_URL is set, JSON files under dir otherwise. Pool creation is
// lazy, so a bad URL fails at parse time, not connect time.
func OpenRunRepo(ctx context.Context, dir string) (*RunRepo, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return NewRunRepo(nil, dir), nil
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	return NewRunRepo(pool, dir), nil
}

// Close releases the database pool, if the repository holds one.
func (r *RunRepo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Save persists the run, upserting on id.
func (r *RunRepo) Save(ctx context.Context, rec *RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run %s: %w", rec.ID, err)
	}

	if r.pool != nil {
		query := `
			INSERT INTO valuation_runs (id, scenario, run_json, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id)
			DO UPDATE SET
				scenario = EXCLUDED.scenario,
				run_json = EXCLUDED.run_json,
				created_at = EXCLUDED.created_at;
		`
		if _, err := r.pool.Exec(ctx, query, rec.ID, rec.Scenario, data, rec.CreatedAt); err != nil {
			return fmt.Errorf("failed to save run %s: %w", rec.ID, err)
		}
		return nil
	}

	if r.fileDir == "" {
		return fmt.Errorf("run store has neither a database pool nor a file directory")
	}
	path := r.runPath(rec.ID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run file %s: %w", path, err)
	}
	return nil
}

// Load retrieves a run by id.
func (r *RunRepo) Load(ctx context.Context, id string) (*RunRecord, error) {
	var data []byte

	if r.pool != nil {
		query := `SELECT run_json FROM valuation_runs WHERE id = $1`
		err := r.pool.QueryRow(ctx, query, id).Scan(&data)
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no run found with id %s", id)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load run %s: %w", id, err)
		}
	} else {
		path := r.runPath(id)
		var err error
		data, err = os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no run found with id %s", id)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read run file %s: %w", path, err)
		}
	}

	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %s: %w", id, err)
	}
	return &rec, nil
}

func (r *RunRepo) runPath(id string) string {
	return filepath.Join(r.fileDir, id+".json")
}
