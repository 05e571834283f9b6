package ports

import (
	"context"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
)

// SearchQuery addresses one page of the catalog search endpoint.
type SearchQuery struct {
	Query  string
	Kind   domain.Kind
	Limit  int
	Offset int
}

// CatalogSearcher fetches one normalized page of search results.
// Implementations return *domain.AuthError when the token exchange fails and
// *domain.TransientFetchError when the page request fails; malformed entries
// are dropped from the page rather than failing it.
type CatalogSearcher interface {
	Search(ctx context.Context, q SearchQuery) (domain.Page, error)
}

// CatalogLookup resolves a single catalog entry by kind and id.
// It returns domain.ErrNotFound when the catalog has no such entry.
type CatalogLookup interface {
	Lookup(ctx context.Context, kind domain.Kind, id string) (domain.SearchResultItem, error)
}
