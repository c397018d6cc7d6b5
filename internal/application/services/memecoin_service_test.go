package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/moonwatch/memetracker/internal/config"
	"github.com/moonwatch/memetracker/internal/domain"
	"github.com/moonwatch/memetracker/internal/domain/entities"
	"github.com/moonwatch/memetracker/internal/testutil"
)

func listingConfig() config.ListingConfig {
	return config.ListingConfig{
		ItemsPerPage:             2,
		AssumedCirculatingSupply: 1000000000,
		DisplayTimeZone:          "UTC",
	}
}

func setupMemecoinServiceTest(t *testing.T) (*MemecoinService, *testutil.MockListingRepository, *testutil.MockTokenRepository) {
	t.Helper()

	listingRepo := testutil.NewMockListingRepository()
	tokenRepo := testutil.NewMockTokenRepository()

	service, err := NewMemecoinService(listingRepo, tokenRepo, nil, listingConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return service, listingRepo, tokenRepo
}

func TestMemecoinService_GetPage_RankedScenario(t *testing.T) {
	// A(mentions=5, id=1), B(mentions=5, id=2), C(mentions=10, id=3)
	// with two items per page: page one is [C, A], page two is [B]
	service, listingRepo, _ := setupMemecoinServiceTest(t)
	ctx := context.Background()

	listingRepo.AddRow(testutil.CreateTestRow(
		testutil.RowWithID(1), testutil.RowWithSymbol("AAA"), testutil.RowWithMentions(5),
	))
	listingRepo.AddRow(testutil.CreateTestRow(
		testutil.RowWithID(2), testutil.RowWithSymbol("BBB"), testutil.RowWithMentions(5),
	))
	listingRepo.AddRow(testutil.CreateTestRow(
		testutil.RowWithID(3), testutil.RowWithSymbol("CCC"), testutil.RowWithMentions(10),
	))

	first, err := service.GetPage(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(first))
	}
	if first[0].ID != 3 || first[1].ID != 1 {
		t.Errorf("expected [3, 1], got [%d, %d]", first[0].ID, first[1].ID)
	}

	second, err := service.GetPage(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected 1 row, got %d", len(second))
	}
	if second[0].ID != 2 {
		t.Errorf("expected [2], got [%d]", second[0].ID)
	}

	count, err := service.GetCount(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
}

func TestMemecoinService_GetPage_Deterministic(t *testing.T) {
	service, listingRepo, _ := setupMemecoinServiceTest(t)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		listingRepo.AddRow(testutil.CreateTestRow(
			testutil.RowWithID(i), testutil.RowWithMentions(7),
		))
	}

	first, err := service.GetPage(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := service.GetPage(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(again) {
		t.Fatalf("expected identical pages, got %d and %d rows", len(first), len(again))
	}
	for i := range first {
		if first[i].ID != again[i].ID {
			t.Errorf("row %d differs between identical queries", i)
		}
	}
}

func TestMemecoinService_GetPage_DerivedFields(t *testing.T) {
	service, listingRepo, _ := setupMemecoinServiceTest(t)
	ctx := context.Background()

	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	listingRepo.AddRow(testutil.CreateTestRow(
		testutil.RowWithPriceUSD(0.5),
		testutil.RowWithCreatedAt(created),
	))

	page, err := service.GetPage(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("expected 1 row, got %d", len(page))
	}

	row := page[0]
	if row.LatestMarketCap != 0.5*1000000000 {
		t.Errorf("expected market cap 5e8, got %f", row.LatestMarketCap)
	}
	if row.CreatedAt != "2024-01-15T10:30:00Z" {
		t.Errorf("expected UTC ISO-8601 created_at, got %s", row.CreatedAt)
	}
	if row.Image != nil {
		t.Errorf("expected null image, got %v", *row.Image)
	}
}

func TestMemecoinService_DisplayTimeZone(t *testing.T) {
	listingRepo := testutil.NewMockListingRepository()
	cfg := listingConfig()
	cfg.DisplayTimeZone = "America/New_York"

	service, err := NewMemecoinService(listingRepo, nil, nil, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	listingRepo.AddRow(testutil.CreateTestRow(
		testutil.RowWithCreatedAt(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)),
	))

	page, err := service.GetPage(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page[0].CreatedAt != "2024-01-15T05:30:00-05:00" {
		t.Errorf("expected zoned created_at, got %s", page[0].CreatedAt)
	}
}

func TestMemecoinService_InvalidTimeZone(t *testing.T) {
	cfg := listingConfig()
	cfg.DisplayTimeZone = "Not/AZone"

	if _, err := NewMemecoinService(nil, nil, nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected error for invalid timezone")
	}
}

func TestMemecoinService_GetPage_NegativeStart(t *testing.T) {
	service, listingRepo, _ := setupMemecoinServiceTest(t)
	ctx := context.Background()

	listingRepo.AddRow(testutil.CreateTestRow(testutil.RowWithID(1)))

	fromZero, err := service.GetPage(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fromNegative, err := service.GetPage(ctx, -5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fromZero) != len(fromNegative) {
		t.Errorf("expected negative start to behave like zero")
	}
}

func TestMemecoinService_GetPage_Empty(t *testing.T) {
	service, _, _ := setupMemecoinServiceTest(t)

	page, err := service.GetPage(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(page) != 0 {
		t.Errorf("expected 0 rows, got %d", len(page))
	}
}

func TestMemecoinService_NotConfigured(t *testing.T) {
	service, err := NewMemecoinService(nil, nil, nil, listingConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := service.GetPage(context.Background(), 0); !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := service.GetCount(context.Background()); !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if err := service.TrackMention(context.Background(), 1); !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestMemecoinService_StoreQueryError(t *testing.T) {
	service, listingRepo, _ := setupMemecoinServiceTest(t)

	boom := errors.New("connection refused")
	listingRepo.ListPageFunc = func(ctx context.Context, offset, limit int) ([]entities.MemecoinRow, error) {
		return nil, boom
	}
	listingRepo.CountFunc = func(ctx context.Context) (int64, error) {
		return 0, boom
	}

	if _, err := service.GetPage(context.Background(), 0); !errors.Is(err, domain.ErrStoreQuery) {
		t.Errorf("expected ErrStoreQuery, got %v", err)
	}
	if _, err := service.GetCount(context.Background()); !errors.Is(err, domain.ErrStoreQuery) {
		t.Errorf("expected ErrStoreQuery, got %v", err)
	}
}

func TestMemecoinService_TrackCounters(t *testing.T) {
	service, _, tokenRepo := setupMemecoinServiceTest(t)
	ctx := context.Background()

	tokenRepo.AddToken(testutil.CreateTestToken(testutil.TokenWithID(7), testutil.TokenWithMint(testutil.DogeMint)))

	if err := service.TrackMention(ctx, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.TrackView(ctx, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token := tokenRepo.GetToken(testutil.DogeMint)
	if token.Mentions != 6 {
		t.Errorf("expected 6 mentions, got %d", token.Mentions)
	}
	if token.Views != 11 {
		t.Errorf("expected 11 views, got %d", token.Views)
	}

	if err := service.TrackMention(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
