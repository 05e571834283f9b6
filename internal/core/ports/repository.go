package ports

import (
	"context"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
)

// LibraryRepository persists a user's reactions, favourites, lists and friends.
type LibraryRepository interface {
	SaveReaction(ctx context.Context, r domain.Reaction) (domain.Reaction, error)
	GetReaction(ctx context.Context, userID string, kind domain.Kind, itemID string) (domain.Reaction, error)
	ListReactions(ctx context.Context, userID string, kind domain.Kind) ([]domain.Reaction, error)

	AddFavorite(ctx context.Context, f domain.Favorite) error
	RemoveFavorite(ctx context.Context, userID string, kind domain.Kind, itemID string) error
	ListFavorites(ctx context.Context, userID string, kind domain.Kind) ([]domain.Favorite, error)

	SaveList(ctx context.Context, l domain.List) error
	// AddListItem appends item to a list owned by userID in one atomic step.
	// It reports false when the list already holds the item.
	AddListItem(ctx context.Context, userID, listID string, item domain.ListItem) (bool, error)
	GetList(ctx context.Context, id string) (domain.List, error)
	ListsByUser(ctx context.Context, userID string) ([]domain.List, error)

	AddFriend(ctx context.Context, f domain.Friend) error
	IsFriend(ctx context.Context, userID, friendID string) (bool, error)
	ListFriends(ctx context.Context, userID string) ([]domain.Friend, error)
}

// AnalysisRepository stores preview analyses produced by the worker pool.
type AnalysisRepository interface {
	SaveAnalysis(ctx context.Context, a domain.PreviewAnalysis) error
	GetAnalysis(ctx context.Context, itemID string) (domain.PreviewAnalysis, error)
}

// PreviewQueue accepts tracks whose audio preview should be analyzed.
// Enqueue must not block; it reports false when the job was dropped.
type PreviewQueue interface {
	Enqueue(itemID, previewURL string) bool
}
