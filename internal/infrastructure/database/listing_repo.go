package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/moonwatch/memetracker/internal/domain/entities"
	"github.com/moonwatch/memetracker/internal/domain/repositories"
)

// Ensure ListingRepo implements ListingRepository
var _ repositories.ListingRepository = (*ListingRepo)(nil)

// ListingRepo implements the ranked listing read path using PostgreSQL
type ListingRepo struct {
	db *sqlx.DB
}

// NewListingRepo creates a new listing repository
func NewListingRepo(db *sqlx.DB) *ListingRepo {
	return &ListingRepo{db: db}
}

// ListPage returns one window of tokens joined with their latest price.
// The inner join on is_latest excludes tokens without a price; the id
// tie-break makes the order total so paging is stable.
func (r *ListingRepo) ListPage(ctx context.Context, offset, limit int) ([]entities.MemecoinRow, error) {
	query := `
		SELECT
			t.id, t.mint_address, t.name, t.symbol, t.uri,
			t.views, t.mentions, t.created_at,
			p.price_usd, p.price_sol, p.observed_at
		FROM tokens t
		INNER JOIN prices p ON p.token_id = t.id AND p.is_latest
		ORDER BY t.mentions DESC, t.id ASC
		LIMIT $1 OFFSET $2
	`

	rows := []entities.MemecoinRow{}
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	return rows, nil
}

// Count returns the number of tokens having a latest price
func (r *ListingRepo) Count(ctx context.Context) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM tokens t
		INNER JOIN prices p ON p.token_id = t.id AND p.is_latest
	`

	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}

	return count, nil
}
