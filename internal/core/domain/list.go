package domain

import (
	"strings"
	"time"
)

// List is a user-curated collection of catalog items.
type List struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CoverURL    string     `json:"cover_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Items       []ListItem `json:"items"`
}

// ListItem is a snapshot of a search result saved into a list.
type ListItem struct {
	Kind       Kind      `json:"kind"`
	ItemID     string    `json:"item_id"`
	Name       string    `json:"name"`
	ArtistName string    `json:"artist"`
	ImageURL   string    `json:"image_url,omitempty"`
	AddedAt    time.Time `json:"added_at"`
}

// ListItemFrom snapshots a search result.
func ListItemFrom(it SearchResultItem) ListItem {
	return ListItem{
		Kind:       it.Kind,
		ItemID:     it.ID,
		Name:       it.Name,
		ArtistName: it.ArtistName,
		ImageURL:   it.ImageURL,
	}
}

// NewList validates the user-supplied fields. Title and description are both required.
func NewList(id, userID, title, description, coverURL string) (*List, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Reason: "is required"}
	}
	if strings.TrimSpace(userID) == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "is required"}
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "is required"}
	}
	if description == "" {
		return nil, &ValidationError{Field: "description", Reason: "is required"}
	}
	return &List{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Description: description,
		CoverURL:    strings.TrimSpace(coverURL),
		Items:       []ListItem{},
	}, nil
}

// AddItem appends an item unless the same (kind, id) is already present,
// in which case it returns ErrDuplicateItem.
func (l *List) AddItem(it ListItem) error {
	if !it.Kind.Valid() {
		return &ValidationError{Field: "kind", Reason: "unknown kind"}
	}
	if strings.TrimSpace(it.ItemID) == "" {
		return &ValidationError{Field: "item_id", Reason: "is required"}
	}
	if l.Contains(it.Kind, it.ItemID) {
		return ErrDuplicateItem
	}
	l.Items = append(l.Items, it)
	return nil
}

// Contains reports whether the list already holds the item.
func (l *List) Contains(kind Kind, itemID string) bool {
	for _, ex := range l.Items {
		if ex.Kind == kind && ex.ItemID == itemID {
			return true
		}
	}
	return false
}
