package repositories

import (
	"context"

	"github.com/moonwatch/memetracker/internal/domain/entities"
)

// ListingRepository defines the read path consumed by the retrieval API
type ListingRepository interface {
	// ListPage returns one offset-addressed window of tokens joined
	// with their latest price, ordered by mentions descending with id
	// ascending as tie-break. The tie-break makes the order total, so
	// offset pagination neither skips nor duplicates rows.
	ListPage(ctx context.Context, offset, limit int) ([]entities.MemecoinRow, error)

	// Count returns the number of tokens eligible for listing, i.e.
	// those having a latest price
	Count(ctx context.Context) (int64, error)
}
