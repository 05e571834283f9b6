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
)

// Library manages a user's reactions, favourites, curated lists and friends.
type Library struct {
	repo    ports.LibraryRepository
	catalog ports.CatalogLookup
	log     *logger.Logger

	newID func() string
	now   func() time.Time
}

// NewLibrary constructs a Library. catalog may be nil, in which case list
// items are stored exactly as submitted.
func NewLibrary(repo ports.LibraryRepository, catalog ports.CatalogLookup, log *logger.Logger) *Library {
	if log == nil {
		log = logger.Nop()
	}
	return &Library{
		repo:    repo,
		catalog: catalog,
		log:     log,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// React stores the user's rating and review of an item, replacing any
// previous reaction to the same item.
func (l *Library) React(ctx context.Context, userID string, kind domain.Kind, itemID string, rating float64, review string) (domain.Reaction, error) {
	r, err := domain.NewReaction(userID, kind, itemID, rating, review)
	if err != nil {
		return domain.Reaction{}, err
	}
	now := l.now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	saved, err := l.repo.SaveReaction(ctx, r)
	if err != nil {
		return domain.Reaction{}, fmt.Errorf("library: save reaction: %w", err)
	}
	return saved, nil
}

// Reaction returns the user's reaction to one item.
func (l *Library) Reaction(ctx context.Context, userID string, kind domain.Kind, itemID string) (domain.Reaction, error) {
	if err := domain.ValidateItemRef(userID, kind, itemID); err != nil {
		return domain.Reaction{}, err
	}
	r, err := l.repo.GetReaction(ctx, userID, kind, itemID)
	if err != nil {
		return domain.Reaction{}, fmt.Errorf("library: load reaction: %w", err)
	}
	return r, nil
}

// Reactions lists the user's reactions of one kind, most recently updated first.
func (l *Library) Reactions(ctx context.Context, userID string, kind domain.Kind) ([]domain.Reaction, error) {
	if err := validateOwnerKind(userID, kind); err != nil {
		return nil, err
	}
	rs, err := l.repo.ListReactions(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("library: list reactions: %w", err)
	}
	return rs, nil
}

// Favorite marks an item as a favourite. Repeating it is harmless.
func (l *Library) Favorite(ctx context.Context, userID string, kind domain.Kind, itemID string) error {
	if err := domain.ValidateItemRef(userID, kind, itemID); err != nil {
		return err
	}
	f := domain.Favorite{UserID: userID, Kind: kind, ItemID: itemID, CreatedAt: l.now().UTC()}
	if err := l.repo.AddFavorite(ctx, f); err != nil {
		return fmt.Errorf("library: add favorite: %w", err)
	}
	return nil
}

// Unfavorite removes a favourite. Removing one that does not exist is not an error.
func (l *Library) Unfavorite(ctx context.Context, userID string, kind domain.Kind, itemID string) error {
	if err := domain.ValidateItemRef(userID, kind, itemID); err != nil {
		return err
	}
	if err := l.repo.RemoveFavorite(ctx, userID, kind, itemID); err != nil {
		return fmt.Errorf("library: remove favorite: %w", err)
	}
	return nil
}

// Favorites lists the user's favourites of one kind, newest first.
func (l *Library) Favorites(ctx context.Context, userID string, kind domain.Kind) ([]domain.Favorite, error) {
	if err := validateOwnerKind(userID, kind); err != nil {
		return nil, err
	}
	fs, err := l.repo.ListFavorites(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("library: list favorites: %w", err)
	}
	return fs, nil
}

// CreateList creates an empty list owned by userID.
func (l *Library) CreateList(ctx context.Context, userID, title, description, coverURL string) (domain.List, error) {
	list, err := domain.NewList(l.newID(), userID, title, description, coverURL)
	if err != nil {
		return domain.List{}, err
	}
	list.CreatedAt = l.now().UTC()
	if err := l.repo.SaveList(ctx, *list); err != nil {
		return domain.List{}, fmt.Errorf("library: save list: %w", err)
	}
	return *list, nil
}

// AddToList appends an item to one of the caller's lists. When a catalog is
// configured, item details are resolved from it. Adding an item the list
// already holds returns the list unchanged.
func (l *Library) AddToList(ctx context.Context, userID, listID string, item domain.ListItem) (domain.List, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.List{}, &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	if !item.Kind.Valid() {
		return domain.List{}, &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", item.Kind)}
	}
	if strings.TrimSpace(item.ItemID) == "" {
		return domain.List{}, &domain.ValidationError{Field: "item_id", Reason: "is required"}
	}

	list, err := l.repo.GetList(ctx, listID)
	if err != nil {
		return domain.List{}, fmt.Errorf("library: load list: %w", err)
	}
	if list.UserID != userID {
		return domain.List{}, fmt.Errorf("library: list %s: %w", listID, domain.ErrForbidden)
	}
	if list.Contains(item.Kind, item.ItemID) {
		l.log.Debug("item already in list", "list", listID, "item", item.ItemID)
		return list, nil
	}

	if l.catalog != nil {
		resolved, err := l.catalog.Lookup(ctx, item.Kind, item.ItemID)
		if err != nil {
			return domain.List{}, fmt.Errorf("library: resolve %s %s: %w", item.Kind, item.ItemID, err)
		}
		item = domain.ListItemFrom(resolved)
	}
	item.AddedAt = l.now().UTC()

	added, err := l.repo.AddListItem(ctx, userID, listID, item)
	if err != nil {
		return domain.List{}, fmt.Errorf("library: add to list %s: %w", listID, err)
	}
	if !added {
		l.log.Debug("item already in list", "list", listID, "item", item.ItemID)
	}
	list, err = l.repo.GetList(ctx, listID)
	if err != nil {
		return domain.List{}, fmt.Errorf("library: load list: %w", err)
	}
	return list, nil
}

// List returns one list with its items.
func (l *Library) List(ctx context.Context, listID string) (domain.List, error) {
	if strings.TrimSpace(listID) == "" {
		return domain.List{}, &domain.ValidationError{Field: "id", Reason: "is required"}
	}
	list, err := l.repo.GetList(ctx, listID)
	if err != nil {
		return domain.List{}, fmt.Errorf("library: load list: %w", err)
	}
	return list, nil
}

// Lists returns every list owned by userID, newest first.
func (l *Library) Lists(ctx context.Context, userID string) ([]domain.List, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	lists, err := l.repo.ListsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("library: list lists: %w", err)
	}
	return lists, nil
}

// AddFriend makes userID follow friendID. Repeating it is harmless.
func (l *Library) AddFriend(ctx context.Context, userID, friendID string) (domain.Friend, error) {
	f, err := domain.NewFriend(userID, friendID)
	if err != nil {
		return domain.Friend{}, err
	}
	f.CreatedAt = l.now().UTC()
	if err := l.repo.AddFriend(ctx, f); err != nil {
		return domain.Friend{}, fmt.Errorf("library: add friend: %w", err)
	}
	return f, nil
}

// Friends lists the users userID follows, most recently added first.
func (l *Library) Friends(ctx context.Context, userID string) ([]domain.Friend, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	fs, err := l.repo.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("library: list friends: %w", err)
	}
	return fs, nil
}

// FriendReactions lists a followed user's reactions of one kind. Only
// followers may read them.
func (l *Library) FriendReactions(ctx context.Context, userID, friendID string, kind domain.Kind) ([]domain.Reaction, error) {
	if _, err := domain.NewFriend(userID, friendID); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
	ok, err := l.repo.IsFriend(ctx, userID, friendID)
	if err != nil {
		return nil, fmt.Errorf("library: check friend: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("library: %s does not follow %s: %w", userID, friendID, domain.ErrForbidden)
	}
	rs, err := l.repo.ListReactions(ctx, friendID, kind)
	if err != nil {
		return nil, fmt.Errorf("library: list friend reactions: %w", err)
	}
	return rs, nil
}

// Item resolves a single catalog entry.
func (l *Library) Item(ctx context.Context, kind domain.Kind, itemID string) (domain.SearchResultItem, error) {
	if !kind.Valid() {
		return domain.SearchResultItem{}, &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
	if strings.TrimSpace(itemID) == "" {
		return domain.SearchResultItem{}, &domain.ValidationError{Field: "item_id", Reason: "is required"}
	}
	if l.catalog == nil {
		return domain.SearchResultItem{}, fmt.Errorf("library: catalog lookup unavailable: %w", domain.ErrNotFound)
	}
	it, err := l.catalog.Lookup(ctx, kind, itemID)
	if err != nil {
		return domain.SearchResultItem{}, fmt.Errorf("library: lookup %s %s: %w", kind, itemID, err)
	}
	return it, nil
}

func validateOwnerKind(userID string, kind domain.Kind) error {
	if strings.TrimSpace(userID) == "" {
		return &domain.ValidationError{Field: "user_id", Reason: "is required"}
	}
	if !kind.Valid() {
		return &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
	return nil
}
