package entities

import (
	"time"
)

// SentinelMintAddress is the reserved mint of the native chain asset.
// It is excluded upstream by the feed query and re-checked during
// normalization; it must never appear as a Token row.
const SentinelMintAddress = "11111111111111111111111111111111"

// Token is the canonical record for one tradable mint
type Token struct {
	ID          int64     `db:"id"`
	MintAddress string    `db:"mint_address"`
	Name        string    `db:"name"`
	Symbol      string    `db:"symbol"`
	URI         string    `db:"uri"`
	Decimals    int       `db:"decimals"`
	Views       int64     `db:"views"`
	Mentions    int64     `db:"mentions"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Price is a point-in-time price observation for a token. Rows are
// append-only; is_latest is the only mutable field and at most one row
// per token carries it at any moment.
type Price struct {
	ID         int64     `db:"id"`
	TokenID    int64     `db:"token_id"`
	PriceUSD   float64   `db:"price_usd"`
	PriceSOL   float64   `db:"price_sol"`
	IsLatest   bool      `db:"is_latest"`
	ObservedAt time.Time `db:"observed_at"`
	CreatedAt  time.Time `db:"created_at"`
}

// TokenUpsert is a normalized token record ready for insert-if-absent.
// created_at is set by the store on first insert and never overwritten.
type TokenUpsert struct {
	MintAddress string
	Name        string
	Symbol      string
	URI         string
	Decimals    int
}

// PriceInsert is a normalized price observation, keyed by mint address
// because the token surrogate id is not known until the upsert runs.
type PriceInsert struct {
	MintAddress string
	PriceUSD    float64
	PriceSOL    float64
	ObservedAt  time.Time
}

// MemecoinRow is one row of the ranked listing: a token joined with its
// latest price. Tokens without a latest price never appear.
type MemecoinRow struct {
	ID          int64     `db:"id"`
	MintAddress string    `db:"mint_address"`
	Name        string    `db:"name"`
	Symbol      string    `db:"symbol"`
	URI         string    `db:"uri"`
	Views       int64     `db:"views"`
	Mentions    int64     `db:"mentions"`
	CreatedAt   time.Time `db:"created_at"`
	PriceUSD    float64   `db:"price_usd"`
	PriceSOL    float64   `db:"price_sol"`
	ObservedAt  time.Time `db:"observed_at"`
}
