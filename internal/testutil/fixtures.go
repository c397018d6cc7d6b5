package testutil

import (
	"time"

	"github.com/moonwatch/memetracker/internal/domain/entities"
)

// Common test mint addresses (valid 32-byte base58)
const (
	DogeMint  = "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"
	PepeMint  = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	MoonMint  = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	WrongMint = "not-base58-0OIl"
)

// CreateTestRow creates a listing row with default values
func CreateTestRow(opts ...RowOption) entities.MemecoinRow {
	row := entities.MemecoinRow{
		ID:          1,
		MintAddress: DogeMint,
		Name:        "Doge Classic",
		Symbol:      "DOGC",
		URI:         "https://example.com/dogc.json",
		Views:       10,
		Mentions:    5,
		CreatedAt:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		PriceUSD:    0.02,
		PriceSOL:    0.0001,
		ObservedAt:  time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	}

	for _, opt := range opts {
		opt(&row)
	}

	return row
}

type RowOption func(*entities.MemecoinRow)

func RowWithID(id int64) RowOption {
	return func(r *entities.MemecoinRow) {
		r.ID = id
	}
}

func RowWithMint(mint string) RowOption {
	return func(r *entities.MemecoinRow) {
		r.MintAddress = mint
	}
}

func RowWithSymbol(symbol string) RowOption {
	return func(r *entities.MemecoinRow) {
		r.Symbol = symbol
	}
}

func RowWithMentions(mentions int64) RowOption {
	return func(r *entities.MemecoinRow) {
		r.Mentions = mentions
	}
}

func RowWithViews(views int64) RowOption {
	return func(r *entities.MemecoinRow) {
		r.Views = views
	}
}

func RowWithPriceUSD(price float64) RowOption {
	return func(r *entities.MemecoinRow) {
		r.PriceUSD = price
	}
}

func RowWithCreatedAt(ts time.Time) RowOption {
	return func(r *entities.MemecoinRow) {
		r.CreatedAt = ts
	}
}

// CreateTestToken creates a token entity with default values
func CreateTestToken(opts ...TokenOption) entities.Token {
	token := entities.Token{
		ID:          1,
		MintAddress: DogeMint,
		Name:        "Doge Classic",
		Symbol:      "DOGC",
		URI:         "https://example.com/dogc.json",
		Decimals:    6,
		Views:       10,
		Mentions:    5,
		CreatedAt:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	for _, opt := range opts {
		opt(&token)
	}

	return token
}

type TokenOption func(*entities.Token)

func TokenWithID(id int64) TokenOption {
	return func(t *entities.Token) {
		t.ID = id
	}
}

func TokenWithMint(mint string) TokenOption {
	return func(t *entities.Token) {
		t.MintAddress = mint
	}
}

func TokenWithMentions(mentions int64) TokenOption {
	return func(t *entities.Token) {
		t.Mentions = mentions
	}
}
