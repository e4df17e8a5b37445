package domain

import "time"

// RefreshMargin is how close to expiry a token may get before it is refreshed.
const RefreshMargin = 30 * time.Second

// Credentials identify this application to the OAuth provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scope        string
}

// TokenSet is the last token response obtained from the provider. It is
// always replaced wholesale, never merged.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string
	ExpiresAt    time.Time
}

// Stale reports whether the access token expires within RefreshMargin of now.
func (t TokenSet) Stale(now time.Time) bool {
	return t.ExpiresAt.Sub(now) < RefreshMargin
}

// Session carries what an authenticated upstream call needs.
type Session struct {
	AccessToken string
	ExpiresAt   time.Time
}

// SessionResult is either an authenticated Session or the URL the user must
// visit to authorize the application.
type SessionResult struct {
	Session      *Session
	AuthorizeURL string
}

// NeedsAuthorization reports whether the caller must send the user through
// the browser authorization flow.
func (r SessionResult) NeedsAuthorization() bool {
	return r.Session == nil
}
