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

// Ensure PriceRepo implements PriceRepository
var _ repositories.PriceRepository = (*PriceRepo)(nil)

// PriceRepo implements PriceRepository using PostgreSQL
type PriceRepo struct {
	db *sqlx.DB
}

// NewPriceRepo creates a new price repository
func NewPriceRepo(db *sqlx.DB) *PriceRepo {
	return &PriceRepo{db: db}
}

// InsertLatest appends a price observation and makes it the token's
// latest. The UPDATE takes a row lock on the previous latest row, so a
// concurrent commit for the same token waits here; the partial unique
// index on (token_id) WHERE is_latest backstops the invariant.
func (r *PriceRepo) InsertLatest(ctx context.Context, tokenID int64, insert entities.PriceInsert) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin price transaction: %w", err)
	}
	defer tx.Rollback()

	clearQuery := `UPDATE prices SET is_latest = FALSE WHERE token_id = $1 AND is_latest`
	if _, err := tx.ExecContext(ctx, clearQuery, tokenID); err != nil {
		return fmt.Errorf("failed to clear latest price: %w", err)
	}

	insertQuery := `
		INSERT INTO prices (token_id, price_usd, price_sol, observed_at, is_latest)
		VALUES ($1, $2, $3, $4, TRUE)
	`
	if _, err := tx.ExecContext(ctx, insertQuery,
		tokenID,
		insert.PriceUSD,
		insert.PriceSOL,
		insert.ObservedAt,
	); err != nil {
		return fmt.Errorf("failed to insert price: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price transaction: %w", err)
	}

	return nil
}

// GetLatest retrieves the current latest price for a token
func (r *PriceRepo) GetLatest(ctx context.Context, tokenID int64) (*entities.Price, error) {
	var price entities.Price
	query := `SELECT * FROM prices WHERE token_id = $1 AND is_latest`

	if err := r.db.GetContext(ctx, &price, query, tokenID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest price: %w", err)
	}

	return &price, nil
}
