package spotify

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
)

// bearer returns an access token for one catalog call. Unless token reuse
// is enabled this performs a fresh client-credentials exchange every time.
func (c *Client) bearer(ctx context.Context) (string, error) {
	var (
		tok *oauth2.Token
		err error
	)
	if c.reused != nil {
		tok, err = c.reused.Token()
	} else {
		tok, err = c.credentials.Token(c.tokenContext(ctx))
	}
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			c.log.Warn("token exchange rejected", "status", retrieveErr.Response.StatusCode)
		} else {
			c.log.Warn("token exchange failed", "error", err)
		}
		return "", &domain.AuthError{Err: fmt.Errorf("spotify adapter: token exchange: %w", err)}
	}
	if tok.AccessToken == "" {
		return "", &domain.AuthError{Err: errors.New("spotify adapter: token exchange returned an empty access token")}
	}
	return tok.AccessToken, nil
}

// tokenContext routes the token exchange through the adapter's HTTP client.
func (c *Client) tokenContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}
