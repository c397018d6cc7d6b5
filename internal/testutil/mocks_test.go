package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/moonwatch/memetracker/internal/domain/entities"
)

func TestMockPriceRepository_LatestInvariant(t *testing.T) {
	repo := NewMockPriceRepository()
	ctx := context.Background()

	observed := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := repo.InsertLatest(ctx, 1, entities.PriceInsert{
			PriceUSD:   float64(i + 1),
			PriceSOL:   0.001,
			ObservedAt: observed.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := repo.LatestCount(1); got != 1 {
		t.Errorf("expected exactly 1 latest row, got %d", got)
	}
	if got := len(repo.History(1)); got != 3 {
		t.Errorf("expected 3 history rows, got %d", got)
	}

	latest, err := repo.GetLatest(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest == nil || latest.PriceUSD != 3 {
		t.Errorf("expected most recent price 3, got %+v", latest)
	}
}

func TestMockListingRepository_Ordering(t *testing.T) {
	repo := NewMockListingRepository()
	ctx := context.Background()

	// Insertion order deliberately scrambled
	repo.AddRow(CreateTestRow(RowWithID(2), RowWithMentions(5)))
	repo.AddRow(CreateTestRow(RowWithID(1), RowWithMentions(5)))
	repo.AddRow(CreateTestRow(RowWithID(3), RowWithMentions(9)))

	rows, err := repo.ListPage(ctx, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mentions descending, id ascending as tie-break
	wantIDs := []int64{3, 1, 2}
	for i, want := range wantIDs {
		if rows[i].ID != want {
			t.Errorf("position %d: expected id %d, got %d", i, want, rows[i].ID)
		}
	}
}

func TestMockListingRepository_Pagination(t *testing.T) {
	repo := NewMockListingRepository()
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		repo.AddRow(CreateTestRow(RowWithID(i), RowWithMentions(10-i)))
	}

	page, err := repo.ListPage(ctx, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 2 || page[0].ID != 3 || page[1].ID != 4 {
		t.Errorf("unexpected middle page: %+v", page)
	}

	tail, err := repo.ListPage(ctx, 4, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tail) != 1 {
		t.Errorf("expected 1 row on last page, got %d", len(tail))
	}

	past, err := repo.ListPage(ctx, 100, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if past == nil || len(past) != 0 {
		t.Errorf("expected empty page past the end, got %+v", past)
	}
}

func TestMockTokenRepository_UpsertAndCounters(t *testing.T) {
	repo := NewMockTokenRepository()
	ctx := context.Background()

	id, err := repo.Upsert(ctx, entities.TokenUpsert{
		MintAddress: DogeMint,
		Name:        "Doge Classic",
		Symbol:      "DOGC",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Upserting the same mint keeps the id stable
	again, err := repo.Upsert(ctx, entities.TokenUpsert{
		MintAddress: DogeMint,
		Name:        "Doge Classic v2",
		Symbol:      "DOGC",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != id {
		t.Errorf("expected stable id %d, got %d", id, again)
	}
	if got := repo.GetToken(DogeMint).Name; got != "Doge Classic v2" {
		t.Errorf("expected updated name, got %q", got)
	}

	if err := repo.IncrementMentions(ctx, id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.GetToken(DogeMint).Mentions; got != 1 {
		t.Errorf("expected 1 mention, got %d", got)
	}

	// Call tracking covers every repository method
	if len(repo.Calls) != 3 {
		t.Errorf("expected 3 recorded calls, got %d", len(repo.Calls))
	}
}
