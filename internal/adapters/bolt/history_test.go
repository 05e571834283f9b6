package bolt

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err, "Failed to create history store")
	t.Cleanup(func() { _ = store.Close() })

	clock := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	return store
}

func TestHistoryStore_OrderAndDedupe(t *testing.T) {
	store := newTestStore(t)

	for _, q := range []string{"daft punk", "justice", "air"} {
		require.NoError(t, store.AddToHistory(domain.HistoryEntry{UserID: "u1", Query: q, Kind: domain.KindTrack}))
	}

	history, err := store.GetHistory("u1", 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, "air", history[0].Query, "The most recent search should be first")
	require.Equal(t, "justice", history[1].Query)
	require.Equal(t, "daft punk", history[2].Query)

	require.NoError(t, store.AddToHistory(domain.HistoryEntry{UserID: "u1", Query: "Daft Punk ", Kind: domain.KindTrack}))

	history, err = store.GetHistory("u1", 10)
	require.NoError(t, err)
	require.Len(t, history, 3, "A repeated search should not duplicate")
	require.Equal(t, "Daft Punk ", history[0].Query)
	require.Equal(t, "air", history[1].Query)

	require.NoError(t, store.AddToHistory(domain.HistoryEntry{UserID: "u1", Query: "air", Kind: domain.KindArtist}))
	history, err = store.GetHistory("u1", 10)
	require.NoError(t, err)
	require.Len(t, history, 4, "Same query with another kind is a separate entry")

	limited, err := store.GetHistory("u1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, domain.KindArtist, limited[0].Kind)
}

func TestHistoryStore_PerUser(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AddToHistory(domain.HistoryEntry{UserID: "u1", Query: "daft punk", Kind: domain.KindTrack}))
	require.NoError(t, store.AddToHistory(domain.HistoryEntry{UserID: "u2", Query: "justice", Kind: domain.KindAlbum}))

	u1, err := store.GetHistory("u1", 10)
	require.NoError(t, err)
	require.Len(t, u1, 1)
	require.Equal(t, "daft punk", u1[0].Query)

	nobody, err := store.GetHistory("u3", 10)
	require.NoError(t, err)
	require.Empty(t, nobody)

	require.ErrorIs(t, store.AddToHistory(domain.HistoryEntry{Query: "x", Kind: domain.KindTrack}), domain.ErrValidation)
}

func TestHistoryStore_CapsEntriesPerUser(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < MaxEntriesPerUser+5; i++ {
		require.NoError(t, store.AddToHistory(domain.HistoryEntry{UserID: "u1", Query: fmt.Sprintf("q%d", i), Kind: domain.KindTrack}))
	}

	history, err := store.GetHistory("u1", MaxEntriesPerUser*2)
	require.NoError(t, err)
	require.Len(t, history, MaxEntriesPerUser)
	require.Equal(t, fmt.Sprintf("q%d", MaxEntriesPerUser+4), history[0].Query)
	require.Equal(t, "q5", history[len(history)-1].Query)
}

func TestHistoryStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(path)
	require.NoError(t, err)
	require.NoError(t, store.AddToHistory(domain.HistoryEntry{UserID: "u1", Query: "air", Kind: domain.KindArtist}))
	require.NoError(t, store.Close())

	reopened, err := NewHistoryStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	history, err := reopened.GetHistory("u1", 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "air", history[0].Query)
}
