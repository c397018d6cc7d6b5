package entities

import (
	"time"
)

// IngestRun records one pass of the feed-fetch/normalize/commit
// pipeline. Kept for operational visibility; the run itself is
// best-effort and a failed run leaves prior state untouched.
type IngestRun struct {
	ID             int64      `db:"id"`
	StartedAt      time.Time  `db:"started_at"`
	FinishedAt     *time.Time `db:"finished_at"`
	ArtifactPath   string     `db:"artifact_path"`
	TokensUpserted int        `db:"tokens_upserted"`
	PricesInserted int        `db:"prices_inserted"`
	RecordsDropped int        `db:"records_dropped"`
	Error          *string    `db:"error"`
}
