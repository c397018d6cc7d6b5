package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/moonwatch/memetracker/internal/domain/entities"
	"github.com/moonwatch/memetracker/internal/domain/repositories"
)

// Ensure RunRepo implements RunRepository
var _ repositories.RunRepository = (*RunRepo)(nil)

// RunRepo implements RunRepository using PostgreSQL
type RunRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a new ingest run repository
func NewRunRepo(db *sqlx.DB) *RunRepo {
	return &RunRepo{db: db}
}

// Begin records the start of a run
func (r *RunRepo) Begin(ctx context.Context, artifactPath string) (int64, error) {
	query := `INSERT INTO ingest_runs (artifact_path) VALUES ($1) RETURNING id`

	var id int64
	if err := r.db.GetContext(ctx, &id, query, artifactPath); err != nil {
		return 0, fmt.Errorf("failed to begin ingest run: %w", err)
	}

	return id, nil
}

// Finish completes a run with its counters
func (r *RunRepo) Finish(ctx context.Context, runID int64, upserted, inserted, dropped int, errMsg string) error {
	query := `
		UPDATE ingest_runs SET
			finished_at = NOW(),
			tokens_upserted = $2,
			prices_inserted = $3,
			records_dropped = $4,
			error = NULLIF($5, '')
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, runID, upserted, inserted, dropped, errMsg); err != nil {
		return fmt.Errorf("failed to finish ingest run: %w", err)
	}

	return nil
}

// GetLast returns the most recently started run
func (r *RunRepo) GetLast(ctx context.Context) (*entities.IngestRun, error) {
	var run entities.IngestRun
	query := `SELECT * FROM ingest_runs ORDER BY started_at DESC, id DESC LIMIT 1`

	if err := r.db.GetContext(ctx, &run, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last ingest run: %w", err)
	}

	return &run, nil
}
