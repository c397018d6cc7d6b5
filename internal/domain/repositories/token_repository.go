package repositories

import (
	"context"

	"github.com/moonwatch/memetracker/internal/domain/entities"
)

// TokenRepository defines the interface for token data operations
type TokenRepository interface {
	// Upsert inserts a token if its mint is unseen, otherwise refreshes
	// the mutable metadata. created_at is never overwritten. Returns
	// the token's surrogate id either way.
	Upsert(ctx context.Context, upsert entities.TokenUpsert) (int64, error)

	// IncrementMentions bumps the mentions counter for a token
	IncrementMentions(ctx context.Context, tokenID int64) error

	// IncrementViews bumps the views counter for a token
	IncrementViews(ctx context.Context, tokenID int64) error
}
