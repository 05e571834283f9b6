// Package sqlite provides a SQLite-backed implementation of the library and
// analysis repository ports.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
	"github.com/ewilliams-labs/beatbuddies/internal/core/ports"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

var (
	_ ports.LibraryRepository  = (*Adapter)(nil)
	_ ports.AnalysisRepository = (*Adapter)(nil)
)

// Adapter implements the repository ports for SQLite
type Adapter struct {
	db *sql.DB
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	sep := "?"
	if strings.Contains(storagePath, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", storagePath+sep+"_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// SQLite serializes writers; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Ping verifies the database is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// SaveReaction upserts a reaction. The original created_at survives updates.
func (a *Adapter) SaveReaction(ctx context.Context, r domain.Reaction) (domain.Reaction, error) {
	query := `
		INSERT INTO reactions (user_id, kind, item_id, rating, review, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, kind, item_id) DO UPDATE SET
			rating=excluded.rating,
			review=excluded.review,
			updated_at=excluded.updated_at;
	`
	if _, err := a.db.ExecContext(ctx, query,
		r.UserID, string(r.Kind), r.ItemID, r.Rating, r.Review, r.CreatedAt.UTC(), r.UpdatedAt.UTC(),
	); err != nil {
		return domain.Reaction{}, fmt.Errorf("failed to save reaction: %w", err)
	}
	return a.GetReaction(ctx, r.UserID, r.Kind, r.ItemID)
}

func (a *Adapter) GetReaction(ctx context.Context, userID string, kind domain.Kind, itemID string) (domain.Reaction, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT user_id, kind, item_id, rating, review, created_at, updated_at
		FROM reactions WHERE user_id = ? AND kind = ? AND item_id = ?
	`, userID, string(kind), itemID)

	r, err := scanReaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Reaction{}, domain.ErrNotFound
		}
		return domain.Reaction{}, fmt.Errorf("failed to load reaction: %w", err)
	}
	return r, nil
}

func (a *Adapter) ListReactions(ctx context.Context, userID string, kind domain.Kind) ([]domain.Reaction, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT user_id, kind, item_id, rating, review, created_at, updated_at
		FROM reactions WHERE user_id = ? AND kind = ?
		ORDER BY updated_at DESC, item_id ASC
	`, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer rows.Close()

	out := []domain.Reaction{}
	for rows.Next() {
		r, err := scanReaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reactions: %w", err)
	}
	return out, nil
}

// AddFavorite is idempotent; re-adding keeps the first created_at.
func (a *Adapter) AddFavorite(ctx context.Context, f domain.Favorite) error {
	if _, err := a.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, kind, item_id, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, kind, item_id) DO NOTHING
	`, f.UserID, string(f.Kind), f.ItemID, f.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (a *Adapter) RemoveFavorite(ctx context.Context, userID string, kind domain.Kind, itemID string) error {
	if _, err := a.db.ExecContext(ctx,
		"DELETE FROM favorites WHERE user_id = ? AND kind = ? AND item_id = ?",
		userID, string(kind), itemID,
	); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (a *Adapter) ListFavorites(ctx context.Context, userID string, kind domain.Kind) ([]domain.Favorite, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT user_id, kind, item_id, created_at FROM favorites
		WHERE user_id = ? AND kind = ?
		ORDER BY created_at DESC, item_id ASC
	`, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	out := []domain.Favorite{}
	for rows.Next() {
		var f domain.Favorite
		var k string
		if err := rows.Scan(&f.UserID, &k, &f.ItemID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		f.Kind = domain.Kind(k)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}
	return out, nil
}

// SaveList upserts the list row and replaces its items in order.
func (a *Adapter) SaveList(ctx context.Context, l domain.List) error {
	// 1. Start Transaction
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // auto-rollback if we error before commit

	// 2. Upsert list metadata; owner and created_at never change
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO lists (id, user_id, title, description, cover_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			description=excluded.description,
			cover_url=excluded.cover_url;
	`, l.ID, l.UserID, l.Title, l.Description, nullString(l.CoverURL), l.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("failed to save list metadata: %w", err)
	}

	// 3. Reset items, then re-insert in order
	if _, err := tx.ExecContext(ctx, "DELETE FROM list_items WHERE list_id = ?", l.ID); err != nil {
		return fmt.Errorf("failed to clear old list items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO list_items (list_id, position, kind, item_id, name, artist, image_url, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list item insert: %w", err)
	}
	defer stmt.Close()

	for i, it := range l.Items {
		if _, err := stmt.ExecContext(ctx,
			l.ID, i, string(it.Kind), it.ItemID, it.Name, it.ArtistName, nullString(it.ImageURL), it.AddedAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to save list item %s: %w", it.ItemID, err)
		}
	}

	// 4. Commit Transaction
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// AddListItem checks ownership and appends the item at the end of the list
// inside one transaction. Concurrent adds never overwrite each other.
func (a *Adapter) AddListItem(ctx context.Context, userID, listID string, it domain.ListItem) (bool, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, "SELECT user_id FROM lists WHERE id = ?", listID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("failed to load list owner: %w", err)
	}
	if owner != userID {
		return false, domain.ErrForbidden
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO list_items (list_id, position, kind, item_id, name, artist, image_url, added_at)
		SELECT ?, COALESCE(MAX(position) + 1, 0), ?, ?, ?, ?, ?, ?
		FROM list_items WHERE list_id = ?
		ON CONFLICT(list_id, kind, item_id) DO NOTHING
	`, listID, string(it.Kind), it.ItemID, it.Name, it.ArtistName, nullString(it.ImageURL), it.AddedAt.UTC(), listID)
	if err != nil {
		return false, fmt.Errorf("failed to add list item %s: %w", it.ItemID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("transaction commit failed: %w", err)
	}
	return n == 1, nil
}

func (a *Adapter) GetList(ctx context.Context, id string) (domain.List, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, description, cover_url, created_at FROM lists WHERE id = ?
	`, id)
	l, err := scanList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.List{}, domain.ErrNotFound
		}
		return domain.List{}, fmt.Errorf("failed to load list: %w", err)
	}

	items, err := loadListItems(ctx, a.db, l.ID)
	if err != nil {
		return domain.List{}, err
	}
	l.Items = items
	return l, nil
}

func (a *Adapter) ListsByUser(ctx context.Context, userID string) ([]domain.List, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, cover_url, created_at FROM lists
		WHERE user_id = ?
		ORDER BY created_at DESC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}

	out := []domain.List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate lists: %w", err)
	}
	rows.Close()

	// Items are loaded after the cursor is closed; the pool holds a single connection.
	for i := range out {
		items, err := loadListItems(ctx, a.db, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

// AddFriend is idempotent; re-adding keeps the first created_at.
func (a *Adapter) AddFriend(ctx context.Context, f domain.Friend) error {
	if _, err := a.db.ExecContext(ctx, `
		INSERT INTO friends (user_id, friend_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id, friend_id) DO NOTHING
	`, f.UserID, f.FriendID, f.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}
	return nil
}

func (a *Adapter) IsFriend(ctx context.Context, userID, friendID string) (bool, error) {
	var one int
	err := a.db.QueryRowContext(ctx,
		"SELECT 1 FROM friends WHERE user_id = ? AND friend_id = ?", userID, friendID,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check friend: %w", err)
	}
	return true, nil
}

func (a *Adapter) ListFriends(ctx context.Context, userID string) ([]domain.Friend, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT user_id, friend_id, created_at FROM friends
		WHERE user_id = ?
		ORDER BY created_at DESC, friend_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	out := []domain.Friend{}
	for rows.Next() {
		var f domain.Friend
		if err := rows.Scan(&f.UserID, &f.FriendID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return out, nil
}

func (a *Adapter) SaveAnalysis(ctx context.Context, pa domain.PreviewAnalysis) error {
	if _, err := a.db.ExecContext(ctx, `
		INSERT INTO preview_analyses (item_id, energy, analyzed_at) VALUES (?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			energy=excluded.energy,
			analyzed_at=excluded.analyzed_at;
	`, pa.ItemID, pa.Energy, pa.AnalyzedAt.UTC()); err != nil {
		return fmt.Errorf("failed to save preview analysis: %w", err)
	}
	return nil
}

func (a *Adapter) GetAnalysis(ctx context.Context, itemID string) (domain.PreviewAnalysis, error) {
	var pa domain.PreviewAnalysis
	err := a.db.QueryRowContext(ctx,
		"SELECT item_id, energy, analyzed_at FROM preview_analyses WHERE item_id = ?", itemID,
	).Scan(&pa.ItemID, &pa.Energy, &pa.AnalyzedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PreviewAnalysis{}, domain.ErrNotFound
		}
		return domain.PreviewAnalysis{}, fmt.Errorf("failed to load preview analysis: %w", err)
	}
	return pa, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReaction(s scanner) (domain.Reaction, error) {
	var r domain.Reaction
	var kind string
	var review sql.NullString
	if err := s.Scan(&r.UserID, &kind, &r.ItemID, &r.Rating, &review, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return domain.Reaction{}, err
	}
	r.Kind = domain.Kind(kind)
	if review.Valid {
		r.Review = review.String
	}
	return r, nil
}

func scanList(s scanner) (domain.List, error) {
	var l domain.List
	var cover sql.NullString
	if err := s.Scan(&l.ID, &l.UserID, &l.Title, &l.Description, &cover, &l.CreatedAt); err != nil {
		return domain.List{}, err
	}
	if cover.Valid {
		l.CoverURL = cover.String
	}
	l.Items = []domain.ListItem{}
	return l, nil
}

func loadListItems(ctx context.Context, q querier, listID string) ([]domain.ListItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT kind, item_id, name, artist, image_url, added_at FROM list_items
		WHERE list_id = ?
		ORDER BY position ASC
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to load list items: %w", err)
	}
	defer rows.Close()

	items := []domain.ListItem{}
	for rows.Next() {
		var it domain.ListItem
		var kind string
		var image sql.NullString
		if err := rows.Scan(&kind, &it.ItemID, &it.Name, &it.ArtistName, &image, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan list item: %w", err)
		}
		it.Kind = domain.Kind(kind)
		if image.Valid {
			it.ImageURL = image.String
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate list items: %w", err)
	}
	return items, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS reactions (
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		item_id TEXT NOT NULL,
		rating REAL NOT NULL,
		review TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, kind, item_id)
	);

	CREATE TABLE IF NOT EXISTS favorites (
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		item_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, kind, item_id)
	);

	CREATE TABLE IF NOT EXISTS lists (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		cover_url TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS lists_by_user ON lists (user_id, created_at);

	CREATE TABLE IF NOT EXISTS list_items (
		list_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		item_id TEXT NOT NULL,
		name TEXT NOT NULL,
		artist TEXT NOT NULL,
		image_url TEXT,
		added_at DATETIME NOT NULL,
		PRIMARY KEY (list_id, kind, item_id),
		FOREIGN KEY(list_id) REFERENCES lists(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS friends (
		user_id TEXT NOT NULL,
		friend_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, friend_id)
	);

	CREATE TABLE IF NOT EXISTS preview_analyses (
		item_id TEXT PRIMARY KEY,
		energy REAL NOT NULL,
		analyzed_at DATETIME NOT NULL
	);
	`
	_, err := a.db.Exec(query)
	return err
}
