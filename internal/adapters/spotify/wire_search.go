package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
	"github.com/ewilliams-labs/beatbuddies/internal/core/ports"
)

const (
	defaultPageSize = 5
	maxPageSize     = 50
)

// Search fetches one page of results of a single kind.
func (c *Client) Search(ctx context.Context, q ports.SearchQuery) (domain.Page, error) {
	if !q.Kind.Valid() {
		return domain.Page{}, &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", q.Kind)}
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	token, err := c.bearer(ctx)
	if err != nil {
		return domain.Page{}, err
	}

	searchURL, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return domain.Page{}, &domain.TransientFetchError{Err: fmt.Errorf("spotify adapter: invalid search url: %w", err)}
	}
	query := searchURL.Query()
	query.Set("q", q.Query)
	query.Set("type", string(q.Kind))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	searchURL.RawQuery = query.Encode()

	c.log.Debug("search request", "kind", q.Kind, "limit", limit, "offset", offset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return domain.Page{}, &domain.TransientFetchError{Err: fmt.Errorf("spotify adapter: failed to create search request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return domain.Page{}, fetchError("search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Page{}, &domain.TransientFetchError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("spotify adapter: search status %d", resp.StatusCode),
		}
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Page{}, &domain.TransientFetchError{Status: resp.StatusCode, Err: fmt.Errorf("spotify adapter: search decode error: %w", err)}
	}

	paging := body.section(q.Kind)
	if paging == nil {
		return domain.Page{Items: []domain.SearchResultItem{}}, nil
	}

	items, dropped := normalizeEntries(q.Kind, paging.Items)
	if dropped > 0 {
		c.log.Debug("dropped malformed catalog entries", "kind", q.Kind, "dropped", dropped, "returned", len(paging.Items))
	}

	return domain.Page{Items: items, Returned: len(paging.Items)}, nil
}

func (r searchResponse) section(kind domain.Kind) *pagingObject {
	switch kind {
	case domain.KindTrack:
		return r.Tracks
	case domain.KindAlbum:
		return r.Albums
	case domain.KindArtist:
		return r.Artists
	}
	return nil
}

// fetchError classifies a failed round trip as transient, keeping the last
// status code when the retries ran out on one.
func fetchError(op string, err error) error {
	var se *statusError
	if errors.As(err, &se) {
		return &domain.TransientFetchError{Status: se.Status, Err: err}
	}
	return &domain.TransientFetchError{Err: fmt.Errorf("spotify adapter: %s request failed: %w", op, err)}
}
