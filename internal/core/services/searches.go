package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
	"github.com/ewilliams-labs/beatbuddies/internal/core/ports"
	"github.com/ewilliams-labs/beatbuddies/internal/platform/logger"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultMaxSessions  = 1024
	DefaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// SessionView is the externally visible state of one search session.
type SessionView struct {
	ID       string                    `json:"id"`
	Query    string                    `json:"query"`
	Kind     domain.Kind               `json:"kind"`
	Offset   int                       `json:"offset"`
	More     bool                      `json:"more"`
	Fetching bool                      `json:"fetching"`
	Items    []domain.SearchResultItem `json:"items"`
	Appended int                       `json:"appended"`
	Skipped  bool                      `json:"skipped,omitempty"`
	Stale    bool                      `json:"stale,omitempty"`
}

// SearchesOptions configures the session registry.
type SearchesOptions struct {
	PageSize    int
	Policy      domain.DedupePolicy
	MaxSessions int
}

type searchSession struct {
	userID string
	agg    *Aggregator
}

// Searches keeps one Aggregator per client session.
type Searches struct {
	searcher ports.CatalogSearcher
	history  ports.HistoryStore
	previews ports.PreviewQueue
	opts     SearchesOptions
	log      *logger.Logger
	sessions *lru.Cache[string, *searchSession]

	newID func() string
	now   func() time.Time
}

// NewSearches builds the registry. history and previews are optional.
func NewSearches(searcher ports.CatalogSearcher, history ports.HistoryStore, previews ports.PreviewQueue, opts SearchesOptions, log *logger.Logger) (*Searches, error) {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Searches{
		searcher: searcher,
		history:  history,
		previews: previews,
		opts:     opts,
		log:      log,
		newID:    uuid.NewString,
		now:      time.Now,
	}
	cache, err := lru.NewWithEvict[string, *searchSession](opts.MaxSessions, func(id string, _ *searchSession) {
		s.log.Debug("search session dropped", "session", id)
	})
	if err != nil {
		return nil, fmt.Errorf("searches: create session cache: %w", err)
	}
	s.sessions = cache
	return s, nil
}

// Start opens a new session owned by userID and returns its first page.
func (s *Searches) Start(ctx context.Context, userID, query string, kind domain.Kind) (SessionView, error) {
	if strings.TrimSpace(userID) == "" {
		return SessionView{}, &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	agg := NewAggregator(s.searcher, AggregatorOptions{PageSize: s.opts.PageSize, Policy: s.opts.Policy}, s.log)
	res, err := agg.StartSearch(ctx, query, kind)
	if err != nil {
		return SessionView{}, fmt.Errorf("searches: start: %w", err)
	}

	id := s.newID()
	s.sessions.Add(id, &searchSession{userID: userID, agg: agg})
	s.record(userID, query, kind)
	s.queuePreviews(res.Items)
	return s.view(id, agg, res), nil
}

// Restart replaces the query of an existing session. A fetch still in
// flight for the previous query is discarded when it resolves.
func (s *Searches) Restart(ctx context.Context, userID, sessionID, query string, kind domain.Kind) (SessionView, error) {
	sess, err := s.lookup(userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	res, err := sess.agg.StartSearch(ctx, query, kind)
	if err != nil {
		return SessionView{}, fmt.Errorf("searches: restart %s: %w", sessionID, err)
	}
	s.record(sess.userID, query, kind)
	s.queuePreviews(res.Items)
	return s.view(sessionID, sess.agg, res), nil
}

// Next loads the following page of a session.
func (s *Searches) Next(ctx context.Context, userID, sessionID string) (SessionView, error) {
	sess, err := s.lookup(userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	res, err := sess.agg.FetchNextPage(ctx)
	if err != nil {
		return SessionView{}, fmt.Errorf("searches: next %s: %w", sessionID, err)
	}
	s.queuePreviews(res.Items)
	return s.view(sessionID, sess.agg, res), nil
}

// Get returns the current view of a session.
func (s *Searches) Get(userID, sessionID string) (SessionView, error) {
	sess, err := s.lookup(userID, sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return s.view(sessionID, sess.agg, PageResult{}), nil
}

// Close forgets a session.
func (s *Searches) Close(userID, sessionID string) error {
	if _, err := s.lookup(userID, sessionID); err != nil {
		return err
	}
	s.sessions.Remove(sessionID)
	return nil
}

// Recent returns the user's latest searches, newest first.
func (s *Searches) Recent(userID string, limit int) ([]domain.HistoryEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if s.history == nil {
		return []domain.HistoryEntry{}, nil
	}
	entries, err := s.history.GetHistory(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("searches: load history: %w", err)
	}
	return entries, nil
}

// lookup returns the session only to its owner.
func (s *Searches) lookup(userID, sessionID string) (*searchSession, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("searches: session %s: %w", sessionID, domain.ErrNotFound)
	}
	if sess.userID != userID {
		return nil, fmt.Errorf("searches: session %s: %w", sessionID, domain.ErrForbidden)
	}
	return sess, nil
}

func (s *Searches) record(userID, query string, kind domain.Kind) {
	if s.history == nil {
		return
	}
	entry := domain.HistoryEntry{
		UserID:     userID,
		Query:      strings.TrimSpace(query),
		Kind:       kind,
		SearchedAt: s.now().UTC(),
	}
	if err := s.history.AddToHistory(entry); err != nil {
		s.log.Warn("failed to record search history", "user", userID, "error", err)
	}
}

func (s *Searches) queuePreviews(items []domain.SearchResultItem) {
	if s.previews == nil {
		return
	}
	for _, it := range items {
		if !it.HasPreview() {
			continue
		}
		if !s.previews.Enqueue(it.ID, it.PreviewURL) {
			s.log.Debug("preview queue full", "item", it.ID)
		}
	}
}

func (s *Searches) view(id string, agg *Aggregator, res PageResult) SessionView {
	sess := agg.Session()
	return SessionView{
		ID:       id,
		Query:    sess.Query,
		Kind:     sess.Kind,
		Offset:   sess.Offset,
		More:     sess.More,
		Fetching: sess.Fetching,
		Items:    sess.Items,
		Appended: len(res.Items),
		Skipped:  res.Skipped,
		Stale:    res.Stale,
	}
}

