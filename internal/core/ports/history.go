package ports

import "github.com/ewilliams-labs/beatbuddies/internal/core/domain"

// HistoryStore keeps each user's recent searches, newest first.
type HistoryStore interface {
	AddToHistory(entry domain.HistoryEntry) error
	GetHistory(userID string, limit int) ([]domain.HistoryEntry, error)
	Close() error
}
