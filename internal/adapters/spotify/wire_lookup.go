package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
)

var lookupPaths = map[domain.Kind]string{
	domain.KindTrack:  "tracks",
	domain.KindAlbum:  "albums",
	domain.KindArtist: "artists",
}

// Lookup fetches a single track, album or artist by catalog id.
func (c *Client) Lookup(ctx context.Context, kind domain.Kind, id string) (domain.SearchResultItem, error) {
	path, ok := lookupPaths[kind]
	if !ok {
		return domain.SearchResultItem{}, &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", kind)}
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.SearchResultItem{}, &domain.ValidationError{Field: "id", Reason: "is required"}
	}

	token, err := c.bearer(ctx)
	if err != nil {
		return domain.SearchResultItem{}, err
	}

	lookupURL := fmt.Sprintf("%s/%s/%s", c.baseURL, path, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return domain.SearchResultItem{}, &domain.TransientFetchError{Err: fmt.Errorf("spotify adapter: failed to create %s request: %w", kind, err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return domain.SearchResultItem{}, fetchError(string(kind), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return domain.SearchResultItem{}, fmt.Errorf("spotify adapter: %s %q: %w", kind, id, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return domain.SearchResultItem{}, &domain.TransientFetchError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("spotify adapter: %s status %d", kind, resp.StatusCode),
		}
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return domain.SearchResultItem{}, &domain.TransientFetchError{Status: resp.StatusCode, Err: fmt.Errorf("spotify adapter: %s decode error: %w", kind, err)}
	}

	item, ok := normalizeEntry(kind, raw)
	if !ok {
		return domain.SearchResultItem{}, &domain.TransientFetchError{
			Status: resp.StatusCode,
			Err:    errors.New("spotify adapter: catalog returned an incomplete " + string(kind)),
		}
	}
	return item, nil
}
