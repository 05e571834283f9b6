// Package services holds the application use cases that sit between the
// HTTP layer and the catalog and storage ports.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
	"github.com/ewilliams-labs/beatbuddies/internal/core/ports"
	"github.com/ewilliams-labs/beatbuddies/internal/platform/logger"
	"golang.org/x/sync/semaphore"
)

// DefaultPageSize is the page size used by the mobile client.
const DefaultPageSize = 5

// PageResult describes the outcome of one FetchNextPage call.
type PageResult struct {
	// Items are the entries appended to the session by this call.
	Items []domain.SearchResultItem
	// Skipped is set when no request was issued because a fetch was
	// already in flight or the session is exhausted.
	Skipped bool
	// Stale is set when the response arrived after the session was
	// superseded and was discarded.
	Stale bool
}

// AggregatorOptions tunes an Aggregator. Zero values select the defaults.
type AggregatorOptions struct {
	PageSize int
	Policy   domain.DedupePolicy
}

// Aggregator drives "search + load more" against a paginated catalog.
// It owns exactly one session at a time and is safe for concurrent use.
type Aggregator struct {
	searcher ports.CatalogSearcher
	pageSize int
	policy   domain.DedupePolicy
	log      *logger.Logger

	mu       sync.Mutex
	nextID   uint64
	session  domain.SearchSession
	inflight *semaphore.Weighted
}

// NewAggregator constructs an Aggregator with no active session.
func NewAggregator(searcher ports.CatalogSearcher, opts AggregatorOptions, log *logger.Logger) *Aggregator {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Aggregator{
		searcher: searcher,
		pageSize: opts.PageSize,
		policy:   opts.Policy,
		log:      log,
		inflight: semaphore.NewWeighted(1),
	}
}

// PageSize returns the number of entries requested per page.
func (a *Aggregator) PageSize() int { return a.pageSize }

// StartSearch replaces the current session with a fresh one for query and
// kind, then fetches its first page. A blank query or an unknown kind is
// rejected before any request and leaves the current session untouched.
func (a *Aggregator) StartSearch(ctx context.Context, query string, kind domain.Kind) (PageResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return PageResult{}, &domain.ValidationError{Field: "query", Reason: "is required"}
	}
	if !kind.Valid() {
		return PageResult{}, &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}

	a.mu.Lock()
	a.nextID++
	a.session = domain.NewSearchSession(a.nextID, query, kind)
	a.inflight = semaphore.NewWeighted(1)
	id := a.nextID
	a.mu.Unlock()

	a.log.Debug("search started", "session", id, "kind", kind.String())
	return a.FetchNextPage(ctx)
}

// FetchNextPage requests the next page of the current session. It is a
// no-op while a fetch is in flight or once the session is exhausted. On
// error the session is unchanged and the same offset is retried next time.
func (a *Aggregator) FetchNextPage(ctx context.Context) (PageResult, error) {
	a.mu.Lock()
	if a.session.ID == 0 || !a.session.More {
		a.mu.Unlock()
		return PageResult{Skipped: true}, nil
	}
	guard := a.inflight
	if !guard.TryAcquire(1) {
		a.mu.Unlock()
		return PageResult{Skipped: true}, nil
	}
	id := a.session.ID
	q := ports.SearchQuery{
		Query:  a.session.Query,
		Kind:   a.session.Kind,
		Limit:  a.pageSize,
		Offset: a.session.Offset,
	}
	a.session.Fetching = true
	a.mu.Unlock()

	page, err := a.searcher.Search(ctx, q)

	a.mu.Lock()
	defer a.mu.Unlock()
	guard.Release(1)

	if a.session.ID != id {
		a.log.Debug("discarding stale page", "session", id, "current", a.session.ID, "offset", q.Offset)
		return PageResult{Stale: true}, nil
	}
	a.session.Fetching = false

	if err != nil {
		return PageResult{}, fmt.Errorf("aggregator: fetch page at offset %d: %w", q.Offset, err)
	}

	appended := a.session.Apply(page, a.pageSize, a.policy)
	if dropped := page.Returned - len(page.Items); dropped > 0 {
		a.log.Debug("page had malformed entries", "session", id, "dropped", dropped)
	}
	return PageResult{Items: appended}, nil
}

// CurrentItems returns a copy of every item accumulated so far.
func (a *Aggregator) CurrentItems() []domain.SearchResultItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Snapshot().Items
}

// Session returns a snapshot of the current session.
func (a *Aggregator) Session() domain.SearchSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Snapshot()
}

