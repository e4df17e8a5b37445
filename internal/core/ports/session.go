package ports

import (
	"context"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
)

// TokenStore persists the last obtained TokenSet. Load returns (nil, nil)
// when nothing is stored. Save always replaces the stored value entirely.
type TokenStore interface {
	Load(ctx context.Context) (*domain.TokenSet, error)
	Save(ctx context.Context, tokens domain.TokenSet) error
	Clear(ctx context.Context) error
}

// SessionManager owns the OAuth token lifecycle.
type SessionManager interface {
	AuthorizeURL() string
	GetSession(ctx context.Context) (domain.SessionResult, error)
	Exchange(ctx context.Context, code, state string) (domain.Session, error)
	Resolve(ctx context.Context, code, state string) (domain.SessionResult, error)
	Logout(ctx context.Context) error
}
