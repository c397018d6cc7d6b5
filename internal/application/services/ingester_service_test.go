package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/moonwatch/memetracker/internal/config"
	"github.com/moonwatch/memetracker/internal/domain/entities"
	"github.com/moonwatch/memetracker/internal/testutil"
)

type fakeFeed struct {
	raw []byte
	err error
}

func (f *fakeFeed) FetchBestTrades(ctx context.Context) ([]byte, error) {
	return f.raw, f.err
}

type fakeInvalidator struct {
	mu       sync.Mutex
	patterns []string
}

func (f *fakeInvalidator) DeletePattern(ctx context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patterns = append(f.patterns, pattern)
	return nil
}

func feedArtifact(trades ...string) []byte {
	joined := ""
	for i, t := range trades {
		if i > 0 {
			joined += ","
		}
		joined += t
	}
	return []byte(`{"data":{"Solana":{"DEXTrades":[` + joined + `]}}}`)
}

func feedTrade(mint string, priceSOL, priceUSD float64) string {
	return fmt.Sprintf(`{
		"Trade": {
			"Buy": {
				"Price": %f,
				"PriceInUSD": %f,
				"Currency": {"Name": "Token", "Symbol": "TKN", "MintAddress": %q, "Decimals": 6, "Uri": ""}
			}
		}
	}`, priceSOL, priceUSD, mint)
}

func setupIngesterTest(t *testing.T, feed FeedFetcher, cache CacheInvalidator) (*IngesterService, *testutil.MockTokenRepository, *testutil.MockPriceRepository, *testutil.MockRunRepository) {
	t.Helper()

	tokenRepo := testutil.NewMockTokenRepository()
	priceRepo := testutil.NewMockPriceRepository()
	runRepo := testutil.NewMockRunRepository()

	cfg := config.IngesterConfig{
		PollInterval: time.Minute,
		WorkerCount:  2,
		ArtifactPath: filepath.Join(t.TempDir(), "response.json"),
	}

	service := NewIngesterService(feed, tokenRepo, priceRepo, runRepo, cache, cfg, zap.NewNop())
	return service, tokenRepo, priceRepo, runRepo
}

func TestIngesterService_RunOnce(t *testing.T) {
	feed := &fakeFeed{raw: feedArtifact(
		feedTrade(testutil.DogeMint, 0.0001, 0.02),
		feedTrade(testutil.PepeMint, 0.0002, 0.04),
	)}
	invalidator := &fakeInvalidator{}

	service, tokenRepo, priceRepo, runRepo := setupIngesterTest(t, feed, invalidator)

	service.RunOnce(context.Background())

	doge := tokenRepo.GetToken(testutil.DogeMint)
	if doge == nil {
		t.Fatal("expected doge token upserted")
	}
	pepe := tokenRepo.GetToken(testutil.PepeMint)
	if pepe == nil {
		t.Fatal("expected pepe token upserted")
	}

	if priceRepo.LatestCount(doge.ID) != 1 {
		t.Errorf("expected exactly one latest price for doge, got %d", priceRepo.LatestCount(doge.ID))
	}

	runs := runRepo.Runs()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run record, got %d", len(runs))
	}
	if runs[0].TokensUpserted != 2 || runs[0].PricesInserted != 2 {
		t.Errorf("expected 2 upserts and 2 inserts recorded, got %d and %d",
			runs[0].TokensUpserted, runs[0].PricesInserted)
	}
	if runs[0].Error != nil {
		t.Errorf("expected clean run, got error %q", *runs[0].Error)
	}

	if len(invalidator.patterns) != 1 || invalidator.patterns[0] != "memecoins:*" {
		t.Errorf("expected listing cache invalidation, got %v", invalidator.patterns)
	}
}

func TestIngesterService_LatestPriceInvariantAcrossRuns(t *testing.T) {
	feed := &fakeFeed{raw: feedArtifact(feedTrade(testutil.DogeMint, 0.0001, 0.02))}
	service, tokenRepo, priceRepo, _ := setupIngesterTest(t, feed, nil)

	service.RunOnce(context.Background())

	feed.raw = feedArtifact(feedTrade(testutil.DogeMint, 0.0003, 0.06))
	service.RunOnce(context.Background())

	token := tokenRepo.GetToken(testutil.DogeMint)
	if token == nil {
		t.Fatal("expected token upserted")
	}

	history := priceRepo.History(token.ID)
	if len(history) != 2 {
		t.Fatalf("expected append-only history of 2, got %d", len(history))
	}
	if priceRepo.LatestCount(token.ID) != 1 {
		t.Fatalf("expected exactly one latest price, got %d", priceRepo.LatestCount(token.ID))
	}

	latest, err := priceRepo.GetLatest(context.Background(), token.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.PriceUSD != 0.06 {
		t.Errorf("expected latest price 0.06, got %f", latest.PriceUSD)
	}
}

func TestIngesterService_FeedFailure(t *testing.T) {
	feed := &fakeFeed{err: errors.New("upstream unreachable")}
	service, tokenRepo, _, runRepo := setupIngesterTest(t, feed, nil)

	service.RunOnce(context.Background())

	if len(tokenRepo.Calls) != 0 {
		t.Errorf("expected no store writes on feed failure, got %d calls", len(tokenRepo.Calls))
	}

	runs := runRepo.Runs()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run record, got %d", len(runs))
	}
	if runs[0].Error == nil {
		t.Fatal("expected run error recorded")
	}
}

func TestIngesterService_PerTokenFailureIsolated(t *testing.T) {
	feed := &fakeFeed{raw: feedArtifact(
		feedTrade(testutil.DogeMint, 0.0001, 0.02),
		feedTrade(testutil.PepeMint, 0.0002, 0.04),
	)}
	service, tokenRepo, priceRepo, runRepo := setupIngesterTest(t, feed, nil)

	tokenRepo.UpsertFunc = func(ctx context.Context, upsert entities.TokenUpsert) (int64, error) {
		if upsert.MintAddress == testutil.DogeMint {
			return 0, errors.New("deadlock detected")
		}
		tokenRepo.AddToken(entities.Token{ID: 42, MintAddress: upsert.MintAddress})
		return 42, nil
	}

	service.RunOnce(context.Background())

	if tokenRepo.GetToken(testutil.PepeMint) == nil {
		t.Error("expected pepe committed despite doge failure")
	}

	pepe := tokenRepo.GetToken(testutil.PepeMint)
	if pepe != nil && priceRepo.LatestCount(pepe.ID) != 1 {
		t.Errorf("expected pepe price inserted, got %d", priceRepo.LatestCount(pepe.ID))
	}

	runs := runRepo.Runs()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run record, got %d", len(runs))
	}
	if runs[0].TokensUpserted != 1 || runs[0].PricesInserted != 1 {
		t.Errorf("expected 1 upsert and 1 insert recorded, got %d and %d",
			runs[0].TokensUpserted, runs[0].PricesInserted)
	}
}

func TestIngesterService_EmptyFeedIsNoOp(t *testing.T) {
	feed := &fakeFeed{raw: feedArtifact()}
	invalidator := &fakeInvalidator{}
	service, tokenRepo, _, runRepo := setupIngesterTest(t, feed, invalidator)

	service.RunOnce(context.Background())

	if len(tokenRepo.Calls) != 0 {
		t.Errorf("expected no store writes for empty feed, got %d calls", len(tokenRepo.Calls))
	}
	if len(invalidator.patterns) != 0 {
		t.Errorf("expected no cache invalidation for empty feed, got %v", invalidator.patterns)
	}

	runs := runRepo.Runs()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run record, got %d", len(runs))
	}
	if runs[0].Error != nil {
		t.Errorf("expected empty feed to be a clean no-op, got error %q", *runs[0].Error)
	}
}

func TestIngesterService_StartStop(t *testing.T) {
	feed := &fakeFeed{raw: feedArtifact()}
	service, _, _, runRepo := setupIngesterTest(t, feed, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	service.Start(ctx)
	service.Stop()

	// The immediate first run must have completed before Stop returned
	if len(runRepo.Runs()) < 1 {
		t.Error("expected at least one run before stop")
	}
}
