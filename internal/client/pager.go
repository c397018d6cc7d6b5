package client

import (
	"context"
	"sort"
	"strings"
	"time"
)

// SortKey identifies a sortable listing column
type SortKey string

const (
	SortKeyNone      SortKey = ""
	SortKeyPosition  SortKey = "position"
	SortKeyTicker    SortKey = "ticker"
	SortKeyPrice     SortKey = "price"
	SortKeyAge       SortKey = "age"
	SortKeyViews     SortKey = "views"
	SortKeyMentions  SortKey = "mentions"
	SortKeyMarketCap SortKey = "marketCap"
)

// SortDirection is the order applied to the active sort key
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// PageFetcher is the retrieval API surface the pager depends on.
// *Client satisfies it.
type PageFetcher interface {
	FetchPage(ctx context.Context, start int) ([]Memecoin, error)
	Count(ctx context.Context) (int64, error)
}

// Pager tracks the listing view state: current page, total pages, the
// held rows and the client-side sort. Sorting reorders only the held
// page; paging re-fetches and always comes back in server order, so a
// sort never survives a page change.
//
// The pager is single-threaded and cooperative, not goroutine-safe.
// When page changes interleave, the fetch that started last wins: a
// response arriving for a superseded fetch is discarded rather than
// rendered out of order.
type Pager struct {
	fetcher      PageFetcher
	itemsPerPage int

	page       int
	totalPages int
	sortKey    SortKey
	sortDir    SortDirection
	rows       []Memecoin
	fetchSeq   uint64
}

// NewPager creates a pager in its initial state: first page, no sort,
// no rows. Call Refresh to perform the mount-time fetch.
func NewPager(fetcher PageFetcher, itemsPerPage int) *Pager {
	return &Pager{
		fetcher:      fetcher,
		itemsPerPage: itemsPerPage,
		page:         1,
		totalPages:   1,
		sortKey:      SortKeyNone,
		sortDir:      SortAsc,
		rows:         []Memecoin{},
	}
}

// Refresh re-fetches the current page and the total count. On failure
// the previously held rows stay visible and the error is returned.
func (p *Pager) Refresh(ctx context.Context) error {
	return p.fetch(ctx, p.page)
}

// PageChanged moves to the given page. Out-of-range pages are ignored.
func (p *Pager) PageChanged(ctx context.Context, page int) error {
	if page < 1 || page > p.totalPages {
		return nil
	}
	return p.fetch(ctx, page)
}

// SortRequested applies a client-side sort to the held rows. Requesting
// the active key flips the direction; a new key starts ascending.
func (p *Pager) SortRequested(key SortKey) {
	if key == p.sortKey {
		if p.sortDir == SortAsc {
			p.sortDir = SortDesc
		} else {
			p.sortDir = SortAsc
		}
	} else {
		p.sortKey = key
		p.sortDir = SortAsc
	}

	p.sortRows()
}

// Rows returns the currently held page
func (p *Pager) Rows() []Memecoin {
	return p.rows
}

// Page returns the current page number, starting at 1
func (p *Pager) Page() int {
	return p.page
}

// TotalPages returns the page count from the last fetch, minimum 1
func (p *Pager) TotalPages() int {
	return p.totalPages
}

// SortState returns the active sort key and direction
func (p *Pager) SortState() (SortKey, SortDirection) {
	return p.sortKey, p.sortDir
}

func (p *Pager) fetch(ctx context.Context, page int) error {
	p.fetchSeq++
	seq := p.fetchSeq

	count, err := p.fetcher.Count(ctx)
	if err != nil {
		return err
	}

	rows, err := p.fetcher.FetchPage(ctx, (page-1)*p.itemsPerPage)
	if err != nil {
		return err
	}

	p.apply(seq, page, count, rows)
	return nil
}

// apply installs a fetch result unless a newer fetch has started since.
// Rows are kept in server order; the client sort is not reapplied.
func (p *Pager) apply(seq uint64, page int, count int64, rows []Memecoin) bool {
	if seq != p.fetchSeq {
		return false
	}

	totalPages := int((count + int64(p.itemsPerPage) - 1) / int64(p.itemsPerPage))
	if totalPages < 1 {
		totalPages = 1
	}

	p.page = page
	p.totalPages = totalPages
	p.rows = rows
	if p.rows == nil {
		p.rows = []Memecoin{}
	}

	return true
}

func (p *Pager) sortRows() {
	if p.sortKey == SortKeyNone {
		return
	}

	less := lessFunc(p.sortKey)
	asc := p.sortDir == SortAsc

	sort.SliceStable(p.rows, func(i, j int) bool {
		if asc {
			return less(p.rows[i], p.rows[j])
		}
		return less(p.rows[j], p.rows[i])
	})
}

func lessFunc(key SortKey) func(a, b Memecoin) bool {
	switch key {
	case SortKeyTicker:
		return func(a, b Memecoin) bool {
			return strings.ToLower(a.Symbol) < strings.ToLower(b.Symbol)
		}
	case SortKeyPrice:
		return func(a, b Memecoin) bool { return a.LatestPriceUSD < b.LatestPriceUSD }
	case SortKeyAge:
		return func(a, b Memecoin) bool { return createdAt(a).Before(createdAt(b)) }
	case SortKeyViews:
		return func(a, b Memecoin) bool { return a.Views < b.Views }
	case SortKeyMentions:
		return func(a, b Memecoin) bool { return a.Mentions < b.Mentions }
	case SortKeyMarketCap:
		return func(a, b Memecoin) bool { return a.LatestMarketCap < b.LatestMarketCap }
	default: // SortKeyPosition
		return func(a, b Memecoin) bool { return a.ID < b.ID }
	}
}

func createdAt(m Memecoin) time.Time {
	t, err := time.Parse(time.RFC3339, m.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
