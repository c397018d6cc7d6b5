package bitquery

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"github.com/moonwatch/memetracker/internal/domain/entities"
)

// solanaMintLength is the byte length of a decoded mint address
const solanaMintLength = 32

// Batch is the output of one normalization pass. Tokens and Prices are
// aligned one-to-one; Prices carry the mint address because the token
// surrogate id is only known after the upsert.
type Batch struct {
	Tokens  []entities.TokenUpsert
	Prices  []entities.PriceInsert
	Dropped int
}

// Empty reports whether the batch produced no usable records. An empty
// batch is a no-op commit, not an error.
func (b Batch) Empty() bool {
	return len(b.Tokens) == 0
}

// Normalize maps a raw feed artifact into token upserts and price
// inserts. Records missing a mint address, carrying the sentinel native
// mint, repeating an already-seen mint, or missing either price field
// are dropped. Only first occurrence per mint survives, so a pass over
// the same artifact is idempotent.
func Normalize(raw []byte, observedAt time.Time, logger *zap.Logger) (Batch, error) {
	var resp feedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Batch{}, fmt.Errorf("failed to decode feed artifact: %w", err)
	}

	trades := resp.Data.Solana.DEXTrades
	batch := Batch{
		Tokens: make([]entities.TokenUpsert, 0, len(trades)),
		Prices: make([]entities.PriceInsert, 0, len(trades)),
	}

	seen := make(map[string]struct{}, len(trades))

	for _, trade := range trades {
		buy := trade.Trade.Buy
		mint := buy.Currency.MintAddress

		if mint == "" {
			batch.Dropped++
			logger.Warn("Dropping trade without mint address")
			continue
		}

		// The feed query already excludes the sentinel; re-check anyway
		if mint == entities.SentinelMintAddress {
			batch.Dropped++
			logger.Warn("Dropping trade for sentinel mint")
			continue
		}

		if !isValidMint(mint) {
			batch.Dropped++
			logger.Warn("Dropping trade with malformed mint address", zap.String("mint", mint))
			continue
		}

		// The feed guarantees one trade per mint; first in scan order
		// wins if that guarantee ever slips
		if _, ok := seen[mint]; ok {
			batch.Dropped++
			logger.Warn("Dropping duplicate mint in artifact", zap.String("mint", mint))
			continue
		}

		if buy.PriceInUSD == nil || buy.Price == nil {
			batch.Dropped++
			logger.Warn("Dropping trade with missing price fields", zap.String("mint", mint))
			continue
		}

		seen[mint] = struct{}{}

		batch.Tokens = append(batch.Tokens, entities.TokenUpsert{
			MintAddress: mint,
			Name:        buy.Currency.Name,
			Symbol:      buy.Currency.Symbol,
			URI:         buy.Currency.URI,
			Decimals:    buy.Currency.Decimals,
		})
		batch.Prices = append(batch.Prices, entities.PriceInsert{
			MintAddress: mint,
			PriceUSD:    *buy.PriceInUSD,
			PriceSOL:    *buy.Price,
			ObservedAt:  observedAt,
		})
	}

	return batch, nil
}

// isValidMint checks that the mint is 32 bytes of base58
func isValidMint(mint string) bool {
	decoded, err := base58.Decode(mint)
	if err != nil {
		return false
	}
	return len(decoded) == solanaMintLength
}
