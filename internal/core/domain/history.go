package domain

import "time"

// HistoryEntry is one accepted search, kept for the "recent searches" view.
type HistoryEntry struct {
	UserID     string    `json:"user_id"`
	Query      string    `json:"query"`
	Kind       Kind      `json:"kind"`
	SearchedAt time.Time `json:"searched_at"`
}

// PreviewAnalysis is the loudness estimate computed from a track's audio preview.
type PreviewAnalysis struct {
	ItemID     string    `json:"item_id"`
	Energy     float64   `json:"energy"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}
