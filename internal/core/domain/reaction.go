package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxRating       = 5.0
	RatingStep      = 0.5
	MaxReviewLength = 2000
)

// Reaction is a user's rating and review of one catalog item.
type Reaction struct {
	UserID    string    `json:"user_id"`
	Kind      Kind      `json:"kind"`
	ItemID    string    `json:"item_id"`
	Rating    float64   `json:"rating"`
	Review    string    `json:"review"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Favorite marks a catalog item as one of the user's favourites.
type Favorite struct {
	UserID    string    `json:"user_id"`
	Kind      Kind      `json:"kind"`
	ItemID    string    `json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReaction validates and builds a reaction. Timestamps are left to the store.
func NewReaction(userID string, kind Kind, itemID string, rating float64, review string) (Reaction, error) {
	if err := ValidateItemRef(userID, kind, itemID); err != nil {
		return Reaction{}, err
	}
	if err := ValidateRating(rating); err != nil {
		return Reaction{}, err
	}
	review = strings.TrimSpace(review)
	if utf8.RuneCountInString(review) > MaxReviewLength {
		return Reaction{}, &ValidationError{Field: "review", Reason: fmt.Sprintf("longer than %d characters", MaxReviewLength)}
	}
	return Reaction{
		UserID: userID,
		Kind:   kind,
		ItemID: itemID,
		Rating: rating,
		Review: review,
	}, nil
}

// ValidateRating accepts 0 through 5 in half-star steps.
func ValidateRating(rating float64) error {
	if math.IsNaN(rating) || rating < 0 || rating > MaxRating {
		return &ValidationError{Field: "rating", Reason: "must be between 0 and 5"}
	}
	if steps := rating / RatingStep; steps != math.Trunc(steps) {
		return &ValidationError{Field: "rating", Reason: "must be a multiple of 0.5"}
	}
	return nil
}

// ValidateItemRef checks the (user, kind, item) triple that keys reactions and favourites.
func ValidateItemRef(userID string, kind Kind, itemID string) error {
	if strings.TrimSpace(userID) == "" {
		return &ValidationError{Field: "user_id", Reason: "is required"}
	}
	if !kind.Valid() {
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
	if strings.TrimSpace(itemID) == "" {
		return &ValidationError{Field: "item_id", Reason: "is required"}
	}
	return nil
}
