// Package oauth implements the Spotify authorization-code flow on top of
// golang.org/x/oauth2, persisting the resulting token set in a TokenStore.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
	"github.com/ewilliams-labs/popularity/internal/core/ports"
)

// Manager hands out valid access tokens, refreshing them when they are about
// to expire. Calls are serialized so a stale token is refreshed once.
type Manager struct {
	creds      domain.Credentials
	store      ports.TokenStore
	conf       *oauth2.Config
	state      string
	httpClient *http.Client
	now        func() time.Time
	logger     *zap.Logger

	mu sync.Mutex
}

var _ ports.SessionManager = (*Manager)(nil)

type Option func(*Manager)

// WithEndpoint points the manager at a different authorization server.
func WithEndpoint(authURL, tokenURL string) Option {
	return func(m *Manager) {
		m.conf.Endpoint.AuthURL = authURL
		m.conf.Endpoint.TokenURL = tokenURL
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager builds a Manager. The state parameter is derived from the client
// id and redirect URI, so the authorize URL is stable across restarts.
func NewManager(creds domain.Credentials, store ports.TokenStore, opts ...Option) (*Manager, error) {
	if strings.TrimSpace(creds.ClientID) == "" || strings.TrimSpace(creds.ClientSecret) == "" || strings.TrimSpace(creds.RedirectURI) == "" {
		return nil, &domain.ConfigurationError{Err: errors.New("oauth: client id, client secret and redirect uri are required")}
	}
	if store == nil {
		return nil, &domain.ConfigurationError{Err: errors.New("oauth: token store is required")}
	}

	scope := creds.Scope
	if strings.TrimSpace(scope) == "" {
		scope = spotifyauth.ScopeUserReadPrivate
	}

	m := &Manager{
		creds: creds,
		store: store,
		conf: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Scopes:       strings.Fields(scope),
			Endpoint: oauth2.Endpoint{
				AuthURL:   spotifyauth.AuthURL,
				TokenURL:  spotifyauth.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		state:  uuid.NewSHA1(uuid.NameSpaceURL, []byte(creds.ClientID+"|"+creds.RedirectURI)).String(),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// AuthorizeURL returns the provider URL the user visits to grant access.
func (m *Manager) AuthorizeURL() string {
	return m.conf.AuthCodeURL(m.state)
}

// State is the value the provider echoes back on the redirect.
func (m *Manager) State() string {
	return m.state
}

// GetSession returns a usable session from the cache, refreshing it when it
// is stale. A missing token or a failed refresh yields the authorize URL
// instead of an error.
func (m *Manager) GetSession(ctx context.Context) (domain.SessionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tokens, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("oauth: unreadable token cache, ignoring", zap.Error(err))
		tokens = nil
	}
	if tokens == nil {
		return m.needsAuthorization(), nil
	}

	if !tokens.Stale(m.now()) {
		return sessionResult(*tokens), nil
	}

	if tokens.RefreshToken == "" {
		m.logger.Info("oauth: cached token expired and cannot be refreshed")
		if err := m.store.Clear(ctx); err != nil {
			return domain.SessionResult{}, err
		}
		return m.needsAuthorization(), nil
	}

	refreshed, err := m.refresh(ctx, tokens.RefreshToken)
	if err != nil {
		m.logger.Warn("oauth: token refresh failed, clearing cache", zap.Error(err))
		if cerr := m.store.Clear(ctx); cerr != nil {
			return domain.SessionResult{}, cerr
		}
		return m.needsAuthorization(), nil
	}

	if err := m.store.Save(ctx, refreshed); err != nil {
		return domain.SessionResult{}, err
	}
	m.logger.Info("oauth: access token refreshed", zap.Time("expires_at", refreshed.ExpiresAt))
	return sessionResult(refreshed), nil
}

// Exchange trades an authorization code for a token set and stores it.
// state must match the one embedded in AuthorizeURL.
func (m *Manager) Exchange(ctx context.Context, code, state string) (domain.Session, error) {
	if strings.TrimSpace(code) == "" {
		return domain.Session{}, &domain.ExchangeError{Err: errors.New("missing authorization code")}
	}
	if state != m.state {
		return domain.Session{}, &domain.ExchangeError{Err: errors.New("state mismatch")}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tok, err := m.conf.Exchange(m.clientContext(ctx), code)
	if err != nil {
		return domain.Session{}, &domain.ExchangeError{Err: err}
	}

	tokens := m.fromOAuth2(tok, "")
	if err := m.store.Save(ctx, tokens); err != nil {
		return domain.Session{}, err
	}
	m.logger.Info("oauth: authorization code exchanged", zap.Time("expires_at", tokens.ExpiresAt))
	return domain.Session{AccessToken: tokens.AccessToken, ExpiresAt: tokens.ExpiresAt}, nil
}

// Resolve prefers a cached token, then a redirect code, then the login link.
func (m *Manager) Resolve(ctx context.Context, code, state string) (domain.SessionResult, error) {
	res, err := m.GetSession(ctx)
	if err != nil {
		return domain.SessionResult{}, err
	}
	if !res.NeedsAuthorization() || code == "" {
		return res, nil
	}

	s, err := m.Exchange(ctx, code, state)
	if err != nil {
		return domain.SessionResult{}, err
	}
	return domain.SessionResult{Session: &s}, nil
}

// Logout forgets the cached token set.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Clear(ctx)
}

func (m *Manager) refresh(ctx context.Context, refreshToken string) (domain.TokenSet, error) {
	// An empty access token forces the source to hit the token endpoint.
	src := m.conf.TokenSource(m.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return domain.TokenSet{}, fmt.Errorf("oauth: refresh: %w", err)
	}
	return m.fromOAuth2(tok, refreshToken), nil
}

func (m *Manager) fromOAuth2(tok *oauth2.Token, previousRefresh string) domain.TokenSet {
	ts := domain.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresAt:    tok.Expiry,
	}
	if ts.RefreshToken == "" {
		ts.RefreshToken = previousRefresh
	}
	if scope, ok := tok.Extra("scope").(string); ok && scope != "" {
		ts.Scope = scope
	} else {
		ts.Scope = strings.Join(m.conf.Scopes, " ")
	}
	if ts.ExpiresAt.IsZero() {
		ts.ExpiresAt = m.now().Add(time.Hour)
	}
	return ts
}

func (m *Manager) clientContext(ctx context.Context) context.Context {
	if m.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

func (m *Manager) needsAuthorization() domain.SessionResult {
	return domain.SessionResult{AuthorizeURL: m.AuthorizeURL()}
}

func sessionResult(t domain.TokenSet) domain.SessionResult {
	return domain.SessionResult{Session: &domain.Session{AccessToken: t.AccessToken, ExpiresAt: t.ExpiresAt}}
}
