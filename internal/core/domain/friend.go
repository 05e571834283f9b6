package domain

import (
	"strings"
	"time"
)

// Friend records that UserID follows FriendID. Following is one-way.
type Friend struct {
	UserID    string    `json:"user_id"`
	FriendID  string    `json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFriend validates a follow. Users cannot follow themselves.
func NewFriend(userID, friendID string) (Friend, error) {
	userID = strings.TrimSpace(userID)
	friendID = strings.TrimSpace(friendID)
	if userID == "" {
		return Friend{}, &ValidationError{Field: "user_id", Reason: "is required"}
	}
	if friendID == "" {
		return Friend{}, &ValidationError{Field: "friend_id", Reason: "is required"}
	}
	if userID == friendID {
		return Friend{}, &ValidationError{Field: "friend_id", Reason: "cannot be the caller"}
	}
	return Friend{UserID: userID, FriendID: friendID}, nil
}
