package repositories

import (
	"context"

	"github.com/moonwatch/memetracker/internal/domain/entities"
)

// PriceRepository defines the interface for price history operations
type PriceRepository interface {
	// InsertLatest appends a price observation and makes it the
	// token's latest. Clearing the previous latest flag and inserting
	// the new row happen in one transaction per token, so two
	// concurrent commits for the same token serialize while commits
	// for different tokens do not block each other.
	InsertLatest(ctx context.Context, tokenID int64, insert entities.PriceInsert) error

	// GetLatest retrieves the current latest price for a token, or nil
	// if none has been observed
	GetLatest(ctx context.Context, tokenID int64) (*entities.Price, error)
}
