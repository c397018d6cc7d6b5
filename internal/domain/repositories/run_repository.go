package repositories

import (
	"context"

	"github.com/moonwatch/memetracker/internal/domain/entities"
)

// RunRepository records ingestion run bookkeeping
type RunRepository interface {
	// Begin records the start of a run and returns its id
	Begin(ctx context.Context, artifactPath string) (int64, error)

	// Finish completes a run with its counters; errMsg is empty for a
	// clean run
	Finish(ctx context.Context, runID int64, upserted, inserted, dropped int, errMsg string) error

	// GetLast returns the most recently started run, or nil if none
	GetLast(ctx context.Context) (*entities.IngestRun, error)
}
