package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
	"github.com/ewilliams-labs/beatbuddies/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memHistory struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	addErr  error
}

func (m *memHistory) AddToHistory(e domain.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.entries = append([]domain.HistoryEntry{e}, m.entries...)
	return nil
}

func (m *memHistory) GetHistory(userID string, limit int) ([]domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.HistoryEntry
	for _, e := range m.entries {
		if e.UserID == userID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memHistory) Close() error { return nil }

type recordingQueue struct {
	mu   sync.Mutex
	jobs []string
}

func (q *recordingQueue) Enqueue(itemID, previewURL string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, itemID+"="+previewURL)
	return true
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("s-%d", n)
	}
}

func newTestSearches(t *testing.T, searcher ports.CatalogSearcher, history ports.HistoryStore, queue ports.PreviewQueue, maxSessions int) *Searches {
	t.Helper()
	s, err := NewSearches(searcher, history, queue, SearchesOptions{PageSize: 5, MaxSessions: maxSessions}, nil)
	require.NoError(t, err)
	s.newID = sequentialIDs()
	return s
}

func TestSearches_StartAndNext(t *testing.T) {
	hist := &memHistory{}
	s := newTestSearches(t, pagesOf(5, 3), hist, nil, 0)
	ctx := context.Background()

	view, err := s.Start(ctx, "u1", " daft punk ", domain.KindTrack)
	require.NoError(t, err)
	assert.Equal(t, "s-1", view.ID)
	assert.Equal(t, "daft punk", view.Query)
	assert.Equal(t, 5, view.Appended)
	assert.True(t, view.More)

	view, err = s.Next(ctx, "u1", view.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Appended)
	assert.Len(t, view.Items, 8)
	assert.False(t, view.More)

	view, err = s.Next(ctx, "u1", view.ID)
	require.NoError(t, err)
	assert.True(t, view.Skipped)

	recent, err := s.Recent("u1", 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "daft punk", recent[0].Query)
	assert.Equal(t, domain.KindTrack, recent[0].Kind)
}

func TestSearches_StartValidation(t *testing.T) {
	fs := pagesOf(5)
	hist := &memHistory{}
	s := newTestSearches(t, fs, hist, nil, 0)

	_, err := s.Start(context.Background(), "u1", "   ", domain.KindTrack)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, fs.Calls())
	assert.Empty(t, hist.entries)
	assert.Equal(t, 0, s.sessions.Len())

	_, err = s.Start(context.Background(), " ", "daft punk", domain.KindTrack)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, fs.Calls())
}

func TestSearches_OwnerOnly(t *testing.T) {
	hist := &memHistory{}
	fs := pagesOf(5, 5)
	s := newTestSearches(t, fs, hist, nil, 0)
	ctx := context.Background()

	view, err := s.Start(ctx, "alice", "daft punk", domain.KindTrack)
	require.NoError(t, err)

	_, err = s.Get("mallory", view.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = s.Next(ctx, "mallory", view.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = s.Restart(ctx, "mallory", view.ID, "justice", domain.KindArtist)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, s.Close("mallory", view.ID), domain.ErrForbidden)

	assert.Len(t, fs.Calls(), 1)
	require.Len(t, hist.entries, 1)
	assert.Equal(t, "alice", hist.entries[0].UserID)

	got, err := s.Get("alice", view.ID)
	require.NoError(t, err)
	assert.Equal(t, "daft punk", got.Query)
	assert.Equal(t, 5, got.Offset)
}

func TestSearches_UnknownSession(t *testing.T) {
	s := newTestSearches(t, pagesOf(5), nil, nil, 0)
	ctx := context.Background()

	_, err := s.Get("u1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Next(ctx, "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Restart(ctx, "u1", "missing", "q", domain.KindTrack)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Close("u1", "missing"), domain.ErrNotFound)
}

func TestSearches_RestartAndClose(t *testing.T) {
	s := newTestSearches(t, pagesOf(5, 2), nil, nil, 0)
	ctx := context.Background()

	view, err := s.Start(ctx, "u1", "daft", domain.KindTrack)
	require.NoError(t, err)

	restarted, err := s.Restart(ctx, "u1", view.ID, "justice", domain.KindArtist)
	require.NoError(t, err)
	assert.Equal(t, view.ID, restarted.ID)
	assert.Equal(t, "justice", restarted.Query)
	assert.Equal(t, domain.KindArtist, restarted.Kind)
	assert.Len(t, restarted.Items, 2)
	assert.Equal(t, 2, restarted.Offset)

	require.NoError(t, s.Close("u1", view.ID))
	_, err = s.Get("u1", view.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearches_EvictsLeastRecentlyUsed(t *testing.T) {
	s := newTestSearches(t, pagesOf(5, 5, 5), nil, nil, 2)
	ctx := context.Background()

	first, err := s.Start(ctx, "u1", "a", domain.KindTrack)
	require.NoError(t, err)
	second, err := s.Start(ctx, "u1", "b", domain.KindTrack)
	require.NoError(t, err)

	_, err = s.Get("u1", first.ID)
	require.NoError(t, err)

	_, err = s.Start(ctx, "u1", "c", domain.KindTrack)
	require.NoError(t, err)

	_, err = s.Get("u1", first.ID)
	assert.NoError(t, err)
	_, err = s.Get("u1", second.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearches_QueuesTrackPreviews(t *testing.T) {
	fs := &fakeSearcher{fn: func(_ context.Context, q ports.SearchQuery) (domain.Page, error) {
		return domain.Page{Items: []domain.SearchResultItem{
			{Kind: domain.KindTrack, ID: "t1", Name: "One More Time", PreviewURL: "https://p.test/t1.mp3"},
			{Kind: domain.KindTrack, ID: "t2", Name: "Aerodynamic"},
		}, Returned: 2}, nil
	}}
	queue := &recordingQueue{}
	s := newTestSearches(t, fs, nil, queue, 0)

	_, err := s.Start(context.Background(), "u1", "daft punk", domain.KindTrack)
	require.NoError(t, err)

	assert.Equal(t, []string{"t1=https://p.test/t1.mp3"}, queue.jobs)
}

func TestSearches_HistoryFailureDoesNotFailSearch(t *testing.T) {
	hist := &memHistory{addErr: errors.New("disk full")}
	s := newTestSearches(t, pagesOf(5), hist, nil, 0)

	view, err := s.Start(context.Background(), "u1", "air", domain.KindArtist)
	require.NoError(t, err)
	assert.Len(t, view.Items, 5)
}

func TestSearches_FetchErrorPropagates(t *testing.T) {
	fs := &fakeSearcher{fn: func(context.Context, ports.SearchQuery) (domain.Page, error) {
		return domain.Page{}, &domain.AuthError{Err: errors.New("invalid_client")}
	}}
	s := newTestSearches(t, fs, nil, nil, 0)

	_, err := s.Start(context.Background(), "u1", "air", domain.KindArtist)
	assert.ErrorIs(t, err, domain.ErrAuth)
	assert.Equal(t, 0, s.sessions.Len())
}

func TestSearches_RecentRequiresUser(t *testing.T) {
	s := newTestSearches(t, pagesOf(), &memHistory{}, nil, 0)

	_, err := s.Recent(" ", 5)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
