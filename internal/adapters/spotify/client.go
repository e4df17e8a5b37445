package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/popularity/internal/core/ports"
)

// DefaultBaseURL is the Spotify Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

// AuthorizeURLer supplies the login link attached to authorization errors.
type AuthorizeURLer interface {
	AuthorizeURL() string
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// RetryPolicy bounds how long a single request may be retried.
type RetryPolicy struct {
	InitialBackoff      time.Duration
	MaxRateLimitBackoff time.Duration
	MaxServerBackoff    time.Duration
	MaxRateLimitRetries int
	MaxServerRetries    int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialBackoff:      time.Second,
		MaxRateLimitBackoff: 60 * time.Second,
		MaxServerBackoff:    30 * time.Second,
		MaxRateLimitRetries: 8,
		MaxServerRetries:    3,
	}
}

// Client is an HTTP client for the Spotify adapter.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	auth            AuthorizeURLer
	policy          RetryPolicy
	sleep           Sleeper
	logger          *zap.Logger
	artistThreshold float64
}

// compile-time interface assertion
var _ ports.SpotifyProvider = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSleeper replaces the context-aware timer used between retries.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		if s != nil {
			c.sleep = s
		}
	}
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

// WithArtistMatchThreshold drops search results whose artist similarity to
// the query is below t. Zero disables the filter.
func WithArtistMatchThreshold(t float64) Option {
	return func(c *Client) { c.artistThreshold = t }
}

// NewClient constructs a new Spotify client. auth is consulted whenever the
// upstream rejects the access token.
func NewClient(baseURL string, auth AuthorizeURLer, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		auth:       auth,
		policy:     DefaultRetryPolicy(),
		sleep:      sleepWithContext,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.policy.InitialBackoff <= 0 {
		c.policy.InitialBackoff = time.Second
	}
	return c
}

func (c *Client) authorizeURL() string {
	if c.auth == nil {
		return ""
	}
	return c.auth.AuthorizeURL()
}
