// Package tokencache provides TokenStore implementations: a JSON file for the
// running service and an in-memory store for tests.
package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
	"github.com/ewilliams-labs/popularity/internal/core/ports"
)

// cacheFile is the on-disk layout. expires_at is unix seconds.
type cacheFile struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope,omitempty"`
	ExpiresAt    int64  `json:"expires_at"`
}

// FileStore keeps the token set in a single JSON file. It assumes a single
// writing process.
type FileStore struct {
	path string
}

var _ ports.TokenStore = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns (nil, nil) when the file does not exist or holds no token.
func (s *FileStore) Load(ctx context.Context) (*domain.TokenSet, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("tokencache: read %s: %w", s.path, err)
	}

	var cf cacheFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return nil, fmt.Errorf("tokencache: decode %s: %w", s.path, err)
	}
	if cf.AccessToken == "" && cf.RefreshToken == "" {
		return nil, nil
	}

	return &domain.TokenSet{
		AccessToken:  cf.AccessToken,
		RefreshToken: cf.RefreshToken,
		TokenType:    cf.TokenType,
		Scope:        cf.Scope,
		ExpiresAt:    time.Unix(cf.ExpiresAt, 0),
	}, nil
}

// Save replaces the file contents entirely. The new contents are written to a
// temporary file in the same directory and renamed over the old file.
func (s *FileStore) Save(ctx context.Context, tokens domain.TokenSet) error {
	raw, err := json.MarshalIndent(cacheFile{
		AccessToken:  tokens.AccessToken,
		TokenType:    tokens.TokenType,
		RefreshToken: tokens.RefreshToken,
		Scope:        tokens.Scope,
		ExpiresAt:    tokens.ExpiresAt.Unix(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("tokencache: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("tokencache: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("tokencache: chmod: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("tokencache: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tokencache: close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("tokencache: replace %s: %w", s.path, err)
	}
	return nil
}

// Clear removes the file. A missing file is not an error.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("tokencache: remove %s: %w", s.path, err)
	}
	return nil
}
