package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/moonwatch/memetracker/internal/config"
	"github.com/moonwatch/memetracker/internal/domain/repositories"
	"github.com/moonwatch/memetracker/internal/infrastructure/bitquery"
)

var (
	ingestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingester_runs_total",
			Help: "Total number of ingestion runs by outcome",
		},
		[]string{"outcome"},
	)

	ingestPricesInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingester_prices_inserted_total",
		Help: "Total number of latest-price rows inserted",
	})

	ingestRecordsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingester_records_dropped_total",
		Help: "Total number of feed records dropped during normalization",
	})

	ingestRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingester_run_duration_seconds",
		Help:    "Time taken by one ingestion run",
		Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60},
	})
)

// FeedFetcher fetches one raw snapshot from the upstream trade feed
type FeedFetcher interface {
	FetchBestTrades(ctx context.Context) ([]byte, error)
}

// CacheInvalidator drops cached listing pages after a commit
type CacheInvalidator interface {
	DeletePattern(ctx context.Context, pattern string) error
}

// IngesterService runs the periodic fetch/normalize/commit pipeline.
// Runs are best-effort: a failed run is logged and the next tick tries
// again, prior state is never touched.
type IngesterService struct {
	fetcher   FeedFetcher
	tokenRepo repositories.TokenRepository
	priceRepo repositories.PriceRepository
	runRepo   repositories.RunRepository
	cache     CacheInvalidator
	config    config.IngesterConfig
	logger    *zap.Logger
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewIngesterService creates a new ingester service
func NewIngesterService(
	fetcher FeedFetcher,
	tokenRepo repositories.TokenRepository,
	priceRepo repositories.PriceRepository,
	runRepo repositories.RunRepository,
	cache CacheInvalidator,
	cfg config.IngesterConfig,
	logger *zap.Logger,
) *IngesterService {
	return &IngesterService{
		fetcher:   fetcher,
		tokenRepo: tokenRepo,
		priceRepo: priceRepo,
		runRepo:   runRepo,
		cache:     cache,
		config:    cfg,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic ingestion loop
func (s *IngesterService) Start(ctx context.Context) {
	s.logger.Info("Starting ingester service",
		zap.Duration("poll_interval", s.config.PollInterval),
		zap.String("artifact_path", s.config.ArtifactPath),
	)

	s.wg.Add(1)
	go s.runLoop(ctx)
}

// Stop gracefully stops the ingester
func (s *IngesterService) Stop() {
	s.logger.Info("Stopping ingester service")
	close(s.stopCh)
	s.wg.Wait()
}

func (s *IngesterService) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	// Run immediately on start
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single fetch/normalize/commit pass
func (s *IngesterService) RunOnce(ctx context.Context) {
	start := time.Now()
	defer func() {
		ingestRunDuration.Observe(time.Since(start).Seconds())
	}()

	runID, err := s.runRepo.Begin(ctx, s.config.ArtifactPath)
	if err != nil {
		s.logger.Error("Failed to record ingest run", zap.Error(err))
		ingestRunsTotal.WithLabelValues("error").Inc()
		return
	}

	upserted, inserted, dropped, runErr := s.ingest(ctx)

	errMsg := ""
	outcome := "ok"
	if runErr != nil {
		errMsg = runErr.Error()
		outcome = "error"
		s.logger.Error("Ingestion run failed", zap.Error(runErr))
	}

	if err := s.runRepo.Finish(ctx, runID, upserted, inserted, dropped, errMsg); err != nil {
		s.logger.Warn("Failed to finish ingest run record", zap.Error(err))
	}

	ingestRunsTotal.WithLabelValues(outcome).Inc()
	ingestPricesInserted.Add(float64(inserted))
	ingestRecordsDropped.Add(float64(dropped))

	s.logger.Info("Ingestion run complete",
		zap.Int("tokens_upserted", upserted),
		zap.Int("prices_inserted", inserted),
		zap.Int("records_dropped", dropped),
		zap.Duration("duration", time.Since(start)),
	)
}

func (s *IngesterService) ingest(ctx context.Context) (upserted, inserted, dropped int, err error) {
	raw, err := s.fetcher.FetchBestTrades(ctx)
	if err != nil {
		return 0, 0, 0, err
	}

	// Persist the raw response first, then normalize from the artifact
	// so the on-disk snapshot is exactly what the run consumed
	if err := bitquery.WriteArtifact(s.config.ArtifactPath, raw); err != nil {
		return 0, 0, 0, err
	}

	artifact, err := bitquery.ReadArtifact(s.config.ArtifactPath)
	if err != nil {
		return 0, 0, 0, err
	}

	batch, err := bitquery.Normalize(artifact, time.Now().UTC(), s.logger)
	if err != nil {
		return 0, 0, 0, err
	}

	if batch.Empty() {
		s.logger.Info("Feed returned no usable records", zap.Int("dropped", batch.Dropped))
		return 0, 0, batch.Dropped, nil
	}

	upserted, inserted = s.commit(ctx, batch)

	if inserted > 0 && s.cache != nil {
		if err := s.cache.DeletePattern(ctx, "memecoins:*"); err != nil {
			s.logger.Warn("Failed to invalidate listing cache", zap.Error(err))
		}
	}

	return upserted, inserted, batch.Dropped, nil
}

// commit applies the batch token by token. A failed token is logged and
// skipped; the rest of the batch proceeds. Per-token serialization is
// handled by the price repository's transaction.
func (s *IngesterService) commit(ctx context.Context, batch bitquery.Batch) (upserted, inserted int) {
	var upsertCount, insertCount atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.WorkerCount)

	for i := range batch.Tokens {
		token := batch.Tokens[i]
		price := batch.Prices[i]

		g.Go(func() error {
			tokenID, err := s.tokenRepo.Upsert(gCtx, token)
			if err != nil {
				s.logger.Error("Failed to upsert token",
					zap.String("mint", token.MintAddress),
					zap.Error(err),
				)
				return nil
			}
			upsertCount.Add(1)

			if err := s.priceRepo.InsertLatest(gCtx, tokenID, price); err != nil {
				s.logger.Error("Failed to insert latest price",
					zap.String("mint", token.MintAddress),
					zap.Int64("token_id", tokenID),
					zap.Error(err),
				)
				return nil
			}
			insertCount.Add(1)

			return nil
		})
	}

	_ = g.Wait()

	return int(upsertCount.Load()), int(insertCount.Load())
}
