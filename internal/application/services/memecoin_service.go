package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/moonwatch/memetracker/internal/config"
	"github.com/moonwatch/memetracker/internal/domain"
	"github.com/moonwatch/memetracker/internal/domain/entities"
	"github.com/moonwatch/memetracker/internal/domain/repositories"
	"github.com/moonwatch/memetracker/internal/infrastructure/cache"
)

// MemecoinDTO is the API representation of one ranked listing row.
// Image is always null until token imagery is sourced from metadata.
type MemecoinDTO struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	URI             string  `json:"uri"`
	Image           *string `json:"image"`
	CreatedAt       string  `json:"created_at"`
	LatestPriceUSD  float64 `json:"latest_price_usd"`
	LatestMarketCap float64 `json:"latest_market_cap"`
	LatestPriceSOL  float64 `json:"latest_price_sol"`
	Views           int64   `json:"views"`
	Mentions        int64   `json:"mentions"`
}

// CountResponse is the API response for listing count queries
type CountResponse struct {
	Count int64 `json:"count"`
}

// MemecoinService provides the ranked listing read path. Repositories
// may be nil when the store is unconfigured; every operation then
// returns ErrNotConfigured instead of failing at startup.
type MemecoinService struct {
	listingRepo repositories.ListingRepository
	tokenRepo   repositories.TokenRepository
	cache       *cache.RedisCache
	config      config.ListingConfig
	location    *time.Location
	logger      *zap.Logger
}

// NewMemecoinService creates a new memecoin listing service
func NewMemecoinService(
	listingRepo repositories.ListingRepository,
	tokenRepo repositories.TokenRepository,
	redisCache *cache.RedisCache,
	cfg config.ListingConfig,
	logger *zap.Logger,
) (*MemecoinService, error) {
	loc, err := time.LoadLocation(cfg.DisplayTimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid display timezone %q: %w", cfg.DisplayTimeZone, err)
	}

	return &MemecoinService{
		listingRepo: listingRepo,
		tokenRepo:   tokenRepo,
		cache:       redisCache,
		config:      cfg,
		location:    loc,
		logger:      logger,
	}, nil
}

// GetPage returns one fixed-size window of the ranked listing starting
// at the given offset. A window past the end of the set is an empty
// list, not an error.
func (s *MemecoinService) GetPage(ctx context.Context, start int) ([]MemecoinDTO, error) {
	if s.listingRepo == nil {
		return nil, domain.ErrNotConfigured
	}

	if start < 0 {
		start = 0
	}

	cacheKey := fmt.Sprintf("memecoins:page:%d", start)

	var cached []MemecoinDTO
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return cached, nil
		}
	}

	rows, err := s.listingRepo.ListPage(ctx, start, s.config.ItemsPerPage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreQuery, err)
	}

	dtos := make([]MemecoinDTO, len(rows))
	for i, row := range rows {
		dtos[i] = s.rowToDTO(row)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, dtos); err != nil {
			s.logger.Warn("Failed to cache listing page", zap.Error(err))
		}
	}

	return dtos, nil
}

// GetCount returns the number of tokens eligible for listing
func (s *MemecoinService) GetCount(ctx context.Context) (int64, error) {
	if s.listingRepo == nil {
		return 0, domain.ErrNotConfigured
	}

	cacheKey := "memecoins:count"

	var cached CountResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return cached.Count, nil
		}
	}

	count, err := s.listingRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreQuery, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, CountResponse{Count: count}); err != nil {
			s.logger.Warn("Failed to cache listing count", zap.Error(err))
		}
	}

	return count, nil
}

// TrackMention bumps the mentions counter on behalf of the external
// mention-tracking collaborator
func (s *MemecoinService) TrackMention(ctx context.Context, tokenID int64) error {
	if s.tokenRepo == nil {
		return domain.ErrNotConfigured
	}
	return s.tokenRepo.IncrementMentions(ctx, tokenID)
}

// TrackView bumps the views counter for a token
func (s *MemecoinService) TrackView(ctx context.Context, tokenID int64) error {
	if s.tokenRepo == nil {
		return domain.ErrNotConfigured
	}
	return s.tokenRepo.IncrementViews(ctx, tokenID)
}

// rowToDTO maps a listing row to its API shape. Market cap is derived
// from the configured notional supply, not stored; created_at is
// rendered in the configured display zone so output does not vary with
// the host's local zone.
func (s *MemecoinService) rowToDTO(row entities.MemecoinRow) MemecoinDTO {
	return MemecoinDTO{
		ID:              row.ID,
		Name:            row.Name,
		Symbol:          row.Symbol,
		URI:             row.URI,
		Image:           nil,
		CreatedAt:       row.CreatedAt.In(s.location).Format(time.RFC3339),
		LatestPriceUSD:  row.PriceUSD,
		LatestMarketCap: row.PriceUSD * s.config.AssumedCirculatingSupply,
		LatestPriceSOL:  row.PriceSOL,
		Views:           row.Views,
		Mentions:        row.Mentions,
	}
}
