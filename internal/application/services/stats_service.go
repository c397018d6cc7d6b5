package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/moonwatch/memetracker/internal/domain"
	"github.com/moonwatch/memetracker/internal/domain/repositories"
)

// StatsService reports operational statistics for the tracker
type StatsService struct {
	listingRepo repositories.ListingRepository
	runRepo     repositories.RunRepository
	logger      *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(
	listingRepo repositories.ListingRepository,
	runRepo repositories.RunRepository,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		listingRepo: listingRepo,
		runRepo:     runRepo,
		logger:      logger,
	}
}

// IngestRunDTO is the API representation of the last ingestion run
type IngestRunDTO struct {
	StartedAt      string  `json:"started_at"`
	FinishedAt     *string `json:"finished_at"`
	TokensUpserted int     `json:"tokens_upserted"`
	PricesInserted int     `json:"prices_inserted"`
	RecordsDropped int     `json:"records_dropped"`
	Error          *string `json:"error"`
}

// StatsResponse is the API response for tracker statistics
type StatsResponse struct {
	ListedTokens int64         `json:"listed_tokens"`
	LastRun      *IngestRunDTO `json:"last_run"`
}

// GetStats returns the listing size and the last ingestion run
func (s *StatsService) GetStats(ctx context.Context) (*StatsResponse, error) {
	if s.listingRepo == nil || s.runRepo == nil {
		return nil, domain.ErrNotConfigured
	}

	count, err := s.listingRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreQuery, err)
	}

	run, err := s.runRepo.GetLast(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreQuery, err)
	}

	response := &StatsResponse{ListedTokens: count}

	if run != nil {
		dto := &IngestRunDTO{
			StartedAt:      run.StartedAt.UTC().Format(time.RFC3339),
			TokensUpserted: run.TokensUpserted,
			PricesInserted: run.PricesInserted,
			RecordsDropped: run.RecordsDropped,
			Error:          run.Error,
		}
		if run.FinishedAt != nil {
			finished := run.FinishedAt.UTC().Format(time.RFC3339)
			dto.FinishedAt = &finished
		}
		response.LastRun = dto
	}

	return response, nil
}
