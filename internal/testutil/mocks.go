package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/moonwatch/memetracker/internal/domain"
	"github.com/moonwatch/memetracker/internal/domain/entities"
)

// MockCall records one invocation on a mock
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockTokenRepository is an in-memory implementation of TokenRepository
type MockTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*entities.Token
	nextID int64

	// Function hooks for custom behavior
	UpsertFunc            func(ctx context.Context, upsert entities.TokenUpsert) (int64, error)
	IncrementMentionsFunc func(ctx context.Context, tokenID int64) error
	IncrementViewsFunc    func(ctx context.Context, tokenID int64) error

	// Call tracking
	Calls []MockCall
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{
		tokens: make(map[string]*entities.Token),
		nextID: 1,
	}
}

// AddToken seeds a token directly, bypassing upsert bookkeeping
func (m *MockTokenRepository) AddToken(token entities.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token.ID >= m.nextID {
		m.nextID = token.ID + 1
	}
	m.tokens[token.MintAddress] = &token
}

// GetToken returns a seeded or upserted token by mint address
func (m *MockTokenRepository) GetToken(mintAddress string) *entities.Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens[mintAddress]
}

func (m *MockTokenRepository) Upsert(ctx context.Context, upsert entities.TokenUpsert) (int64, error) {
	m.record("Upsert", upsert)

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, upsert)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.tokens[upsert.MintAddress]; ok {
		existing.Name = upsert.Name
		existing.Symbol = upsert.Symbol
		existing.URI = upsert.URI
		existing.Decimals = upsert.Decimals
		return existing.ID, nil
	}

	token := &entities.Token{
		ID:          m.nextID,
		MintAddress: upsert.MintAddress,
		Name:        upsert.Name,
		Symbol:      upsert.Symbol,
		URI:         upsert.URI,
		Decimals:    upsert.Decimals,
	}
	m.nextID++
	m.tokens[upsert.MintAddress] = token

	return token.ID, nil
}

func (m *MockTokenRepository) IncrementMentions(ctx context.Context, tokenID int64) error {
	m.record("IncrementMentions", tokenID)

	if m.IncrementMentionsFunc != nil {
		return m.IncrementMentionsFunc(ctx, tokenID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tokens {
		if t.ID == tokenID {
			t.Mentions++
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockTokenRepository) IncrementViews(ctx context.Context, tokenID int64) error {
	m.record("IncrementViews", tokenID)

	if m.IncrementViewsFunc != nil {
		return m.IncrementViewsFunc(ctx, tokenID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tokens {
		if t.ID == tokenID {
			t.Views++
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockTokenRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// MockPriceRepository is an in-memory implementation of PriceRepository.
// Its default behavior maintains the at-most-one-latest invariant the
// same way the real store does, so tests can assert on it.
type MockPriceRepository struct {
	mu     sync.RWMutex
	prices map[int64][]entities.Price
	nextID int64

	// Function hooks for custom behavior
	InsertLatestFunc func(ctx context.Context, tokenID int64, insert entities.PriceInsert) error
	GetLatestFunc    func(ctx context.Context, tokenID int64) (*entities.Price, error)

	// Call tracking
	Calls []MockCall
}

func NewMockPriceRepository() *MockPriceRepository {
	return &MockPriceRepository{
		prices: make(map[int64][]entities.Price),
		nextID: 1,
	}
}

func (m *MockPriceRepository) InsertLatest(ctx context.Context, tokenID int64, insert entities.PriceInsert) error {
	m.record("InsertLatest", tokenID, insert)

	if m.InsertLatestFunc != nil {
		return m.InsertLatestFunc(ctx, tokenID, insert)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.prices[tokenID]
	for i := range history {
		history[i].IsLatest = false
	}

	m.prices[tokenID] = append(history, entities.Price{
		ID:         m.nextID,
		TokenID:    tokenID,
		PriceUSD:   insert.PriceUSD,
		PriceSOL:   insert.PriceSOL,
		IsLatest:   true,
		ObservedAt: insert.ObservedAt,
	})
	m.nextID++

	return nil
}

func (m *MockPriceRepository) GetLatest(ctx context.Context, tokenID int64) (*entities.Price, error) {
	m.record("GetLatest", tokenID)

	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, tokenID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.prices[tokenID] {
		if p.IsLatest {
			price := p
			return &price, nil
		}
	}
	return nil, nil
}

// History returns the full append-only price history for a token
func (m *MockPriceRepository) History(tokenID int64) []entities.Price {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := make([]entities.Price, len(m.prices[tokenID]))
	copy(history, m.prices[tokenID])
	return history
}

// LatestCount returns how many rows for a token carry the latest flag
func (m *MockPriceRepository) LatestCount(tokenID int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, p := range m.prices[tokenID] {
		if p.IsLatest {
			count++
		}
	}
	return count
}

func (m *MockPriceRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// MockListingRepository is an in-memory implementation of
// ListingRepository. Rows are served in mentions-descending,
// id-ascending order like the real query.
type MockListingRepository struct {
	mu   sync.RWMutex
	rows []entities.MemecoinRow

	// Function hooks for custom behavior
	ListPageFunc func(ctx context.Context, offset, limit int) ([]entities.MemecoinRow, error)
	CountFunc    func(ctx context.Context) (int64, error)

	// Call tracking
	Calls []MockCall
}

func NewMockListingRepository() *MockListingRepository {
	return &MockListingRepository{}
}

// AddRow seeds one listing row
func (m *MockListingRepository) AddRow(row entities.MemecoinRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, row)
}

func (m *MockListingRepository) ListPage(ctx context.Context, offset, limit int) ([]entities.MemecoinRow, error) {
	m.record("ListPage", offset, limit)

	if m.ListPageFunc != nil {
		return m.ListPageFunc(ctx, offset, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ordered := make([]entities.MemecoinRow, len(m.rows))
	copy(ordered, m.rows)
	sortListingRows(ordered)

	if offset >= len(ordered) {
		return []entities.MemecoinRow{}, nil
	}
	end := offset + limit
	if end > len(ordered) {
		end = len(ordered)
	}

	return ordered[offset:end], nil
}

func (m *MockListingRepository) Count(ctx context.Context) (int64, error) {
	m.record("Count")

	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.rows)), nil
}

func (m *MockListingRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

func sortListingRows(rows []entities.MemecoinRow) {
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0; j-- {
			a, b := rows[j-1], rows[j]
			if b.Mentions > a.Mentions || (b.Mentions == a.Mentions && b.ID < a.ID) {
				rows[j-1], rows[j] = b, a
			} else {
				break
			}
		}
	}
}

// MockRunRepository is an in-memory implementation of RunRepository
type MockRunRepository struct {
	mu     sync.RWMutex
	runs   []*entities.IngestRun
	nextID int64

	// Function hooks for custom behavior
	BeginFunc   func(ctx context.Context, artifactPath string) (int64, error)
	FinishFunc  func(ctx context.Context, runID int64, upserted, inserted, dropped int, errMsg string) error
	GetLastFunc func(ctx context.Context) (*entities.IngestRun, error)
}

func NewMockRunRepository() *MockRunRepository {
	return &MockRunRepository{nextID: 1}
}

func (m *MockRunRepository) Begin(ctx context.Context, artifactPath string) (int64, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, artifactPath)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	run := &entities.IngestRun{ID: m.nextID, ArtifactPath: artifactPath}
	m.nextID++
	m.runs = append(m.runs, run)

	return run.ID, nil
}

func (m *MockRunRepository) Finish(ctx context.Context, runID int64, upserted, inserted, dropped int, errMsg string) error {
	if m.FinishFunc != nil {
		return m.FinishFunc(ctx, runID, upserted, inserted, dropped, errMsg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, run := range m.runs {
		if run.ID == runID {
			run.TokensUpserted = upserted
			run.PricesInserted = inserted
			run.RecordsDropped = dropped
			if errMsg != "" {
				run.Error = &errMsg
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockRunRepository) GetLast(ctx context.Context) (*entities.IngestRun, error) {
	if m.GetLastFunc != nil {
		return m.GetLastFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.runs) == 0 {
		return nil, nil
	}
	return m.runs[len(m.runs)-1], nil
}

// Runs returns all recorded runs
func (m *MockRunRepository) Runs() []*entities.IngestRun {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]*entities.IngestRun, len(m.runs))
	copy(runs, m.runs)
	return runs
}

// MockHealthChecker reports a fixed health status
type MockHealthChecker struct {
	healthy bool
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	return &MockHealthChecker{healthy: healthy}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	if !m.healthy {
		return errors.New("component unavailable")
	}
	return nil
}
