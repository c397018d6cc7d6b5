// Package client is the consumer side of the retrieval API: a typed
// HTTP client plus the pager/sorter state machine that drives a ranked
// listing view.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Memecoin is one row of the ranked listing as served by the API
type Memecoin struct {
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

// APIError is a structured error response from the retrieval API
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Details    string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error (status %d): %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// Client is an HTTP client for the retrieval API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new retrieval API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchPage retrieves one listing window starting at the given offset
func (c *Client) FetchPage(ctx context.Context, start int) ([]Memecoin, error) {
	url := c.baseURL + "/memecoins?start=" + strconv.Itoa(start)

	var memecoins []Memecoin
	if err := c.getJSON(ctx, url, &memecoins); err != nil {
		return nil, err
	}

	return memecoins, nil
}

// Count retrieves the total number of listed tokens
func (c *Client) Count(ctx context.Context) (int64, error) {
	var response struct {
		Count int64 `json:"count"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/memecoins/count", &response); err != nil {
		return 0, err
	}

	return response.Count, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(body)
		}
		return apiErr
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
