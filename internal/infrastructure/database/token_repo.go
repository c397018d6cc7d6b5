package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/moonwatch/memetracker/internal/domain"
	"github.com/moonwatch/memetracker/internal/domain/entities"
	"github.com/moonwatch/memetracker/internal/domain/repositories"
)

// Ensure TokenRepo implements TokenRepository
var _ repositories.TokenRepository = (*TokenRepo)(nil)

// TokenRepo implements TokenRepository using PostgreSQL
type TokenRepo struct {
	db *sqlx.DB
}

// NewTokenRepo creates a new token repository
func NewTokenRepo(db *sqlx.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// Upsert inserts a token if its mint is unseen, otherwise refreshes the
// mutable metadata. created_at is only set by the insert default and is
// never part of the update.
func (r *TokenRepo) Upsert(ctx context.Context, upsert entities.TokenUpsert) (int64, error) {
	query := `
		INSERT INTO tokens (mint_address, name, symbol, uri, decimals)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (mint_address) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			uri = EXCLUDED.uri,
			decimals = EXCLUDED.decimals,
			updated_at = NOW()
		RETURNING id
	`

	var id int64
	err := r.db.GetContext(ctx, &id, query,
		upsert.MintAddress,
		upsert.Name,
		upsert.Symbol,
		upsert.URI,
		upsert.Decimals,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert token: %w", err)
	}

	return id, nil
}

// IncrementMentions bumps the mentions counter for a token
func (r *TokenRepo) IncrementMentions(ctx context.Context, tokenID int64) error {
	return r.incrementCounter(ctx, "mentions", tokenID)
}

// IncrementViews bumps the views counter for a token
func (r *TokenRepo) IncrementViews(ctx context.Context, tokenID int64) error {
	return r.incrementCounter(ctx, "views", tokenID)
}

func (r *TokenRepo) incrementCounter(ctx context.Context, column string, tokenID int64) error {
	query := fmt.Sprintf(`
		UPDATE tokens SET
			%s = %s + 1,
			updated_at = NOW()
		WHERE id = $1
	`, column, column)

	res, err := r.db.ExecContext(ctx, query, tokenID)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check %s update: %w", column, err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}
