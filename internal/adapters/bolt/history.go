// Package bolt stores per-user search history in an embedded bbolt file.
package bolt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
	"github.com/ewilliams-labs/beatbuddies/internal/core/ports"
	"go.etcd.io/bbolt"
)

var historyBucket = []byte("history")

// keyTimeFormat is fixed width so keys sort chronologically.
const keyTimeFormat = "20060102T150405.000000000Z"

// MaxEntriesPerUser bounds how many searches are kept for one user.
const MaxEntriesPerUser = 100

var _ ports.HistoryStore = (*HistoryStore)(nil)

type HistoryStore struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewHistoryStore opens (or creates) the history file at dbPath.
func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	options := &bbolt.Options{Timeout: 1 * time.Second}
	db, err := bbolt.Open(dbPath, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("could not open bbolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(historyBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not create history bucket: %w", err)
	}

	return &HistoryStore{db: db, now: time.Now}, nil
}

func historyKey(t time.Time, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s/%020d", t.UTC().Format(keyTimeFormat), seq))
}

func sameSearch(a, b domain.HistoryEntry) bool {
	return a.Kind == b.Kind && strings.EqualFold(strings.TrimSpace(a.Query), strings.TrimSpace(b.Query))
}

// deleteMatching removes an earlier entry for the same query and kind.
func deleteMatching(b *bbolt.Bucket, entry domain.HistoryEntry) error {
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var old domain.HistoryEntry
		if err := json.Unmarshal(v, &old); err != nil {
			continue
		}
		if sameSearch(old, entry) {
			return c.Delete()
		}
	}
	return nil
}

func trimOldest(b *bbolt.Bucket, keep int) error {
	count := 0
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		count++
	}
	for k, _ := c.First(); k != nil && count > keep; k, _ = c.First() {
		if err := c.Delete(); err != nil {
			return err
		}
		count--
	}
	return nil
}

// AddToHistory records a search. Repeating a query moves it to the front.
func (s *HistoryStore) AddToHistory(entry domain.HistoryEntry) error {
	if strings.TrimSpace(entry.UserID) == "" {
		return &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	if entry.SearchedAt.IsZero() {
		entry.SearchedAt = s.now()
	}
	entry.SearchedAt = entry.SearchedAt.UTC()

	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(historyBucket).CreateBucketIfNotExists([]byte(entry.UserID))
		if err != nil {
			return fmt.Errorf("could not create user bucket: %w", err)
		}

		if err := deleteMatching(b, entry); err != nil {
			return err
		}

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		value, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("error serializing history entry: %w", err)
		}
		if err := b.Put(historyKey(entry.SearchedAt, seq), value); err != nil {
			return err
		}

		return trimOldest(b, MaxEntriesPerUser)
	})
}

// GetHistory returns up to limit entries for userID, newest first.
func (s *HistoryStore) GetHistory(userID string, limit int) ([]domain.HistoryEntry, error) {
	entries := []domain.HistoryEntry{}
	if limit <= 0 {
		return entries, nil
	}

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(historyBucket).Bucket([]byte(userID))
		if b == nil {
			return nil
		}
		c := b.Cursor()

		for k, v := c.Last(); k != nil && len(entries) < limit; k, v = c.Prev() {
			var entry domain.HistoryEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("error deserializing history entry: %w", err)
			}
			entries = append(entries, entry)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}
