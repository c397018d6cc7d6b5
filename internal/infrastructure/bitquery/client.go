package bitquery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/moonwatch/memetracker/internal/config"
	"github.com/moonwatch/memetracker/internal/domain/entities"
)

// bestTradesQuery requests, per distinct buy-currency mint, the trade
// with the highest buy price, restricted to one DEX protocol and
// successful transactions, with the native mint excluded. When several
// trades share the maximal price the feed's own ordering decides which
// one comes back; that choice is upstream-determined and not re-resolved
// here. The feed guarantees at most one trade per mint per query.
const bestTradesQuery = `{
  Solana {
    DEXTrades(
      limitBy: { by: Trade_Buy_Currency_MintAddress, count: 1 }
      orderBy: { descending: Trade_Buy_Price }
      where: {
        Trade: {
          Dex: { ProtocolName: { is: %q } }
          Buy: {
            Currency: {
              MintAddress: { notIn: [%q] }
            }
          }
        }
        Transaction: { Result: { Success: true } }
      }
    ) {
      Trade {
        Buy {
          Price
          PriceInUSD
          Currency {
            Name
            Symbol
            MintAddress
            Decimals
            Fungible
            Uri
          }
        }
      }
    }
  }
}`

// FetchError carries the upstream status and body of a failed feed
// request. Fetches are not retried in process; the ingestion cadence
// is the retry policy.
type FetchError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feed fetch failed: %v", e.Err)
	}
	return fmt.Sprintf("feed fetch failed: status %d: %s", e.StatusCode, e.Body)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client issues GraphQL queries against the Bitquery trade feed
type Client struct {
	httpClient *http.Client
	config     config.FeedConfig
	logger     *zap.Logger
}

// NewClient creates a new feed client
func NewClient(cfg config.FeedConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		config:     cfg,
		logger:     logger,
	}
}

// FetchBestTrades runs the one-trade-per-mint best-price query and
// returns the raw response body verbatim, ready to be persisted as the
// run artifact.
func (c *Client) FetchBestTrades(ctx context.Context) ([]byte, error) {
	query := fmt.Sprintf(bestTradesQuery, c.config.Protocol, entities.SentinelMintAddress)

	payload, err := json.Marshal(map[string]string{
		"query":     query,
		"variables": "{}",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feed query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.config.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	c.logger.Debug("Fetched trade feed",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)

	return body, nil
}
