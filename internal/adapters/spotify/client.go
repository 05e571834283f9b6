// Package spotify is the catalog adapter: it exchanges client credentials
// for a bearer token and pages through the Spotify Web API search endpoint.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/beatbuddies/internal/core/ports"
	"github.com/ewilliams-labs/beatbuddies/internal/platform/logger"
)

const (
	DefaultAPIBase      = "https://api.spotify.com/v1"
	DefaultAccountsBase = "https://accounts.spotify.com"
)

// Config describes how to reach the catalog.
type Config struct {
	ClientID     string
	ClientSecret string
	APIBase      string
	AccountsBase string
	MaxRetries   int
	RetryBackoff time.Duration
	Timeout      time.Duration
	// ReuseToken caches the bearer token across calls. Off by default: every
	// search performs its own client-credentials exchange.
	ReuseToken bool
}

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	credentials *clientcredentials.Config
	reused      oauth2.TokenSource
	maxRetries  int
	baseBackoff time.Duration
	log         *logger.Logger
}

// compile-time interface assertions
var (
	_ ports.CatalogSearcher = (*Client)(nil)
	_ ports.CatalogLookup   = (*Client)(nil)
)

// NewClient constructs a catalog client. A nil httpClient gets one bounded by cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = logger.Nop()
	}
	apiBase := strings.TrimRight(cfg.APIBase, "/")
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	accountsBase := strings.TrimRight(cfg.AccountsBase, "/")
	if accountsBase == "" {
		accountsBase = DefaultAccountsBase
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    apiBase,
		credentials: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     accountsBase + "/api/token",
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		maxRetries:  cfg.MaxRetries,
		baseBackoff: cfg.RetryBackoff,
		log:         log.With("component", "spotify"),
	}
	if cfg.ReuseToken {
		c.reused = c.credentials.TokenSource(c.tokenContext(context.Background()))
	}
	return c
}
