package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
)

// ErrNoTracksFound indicates an artist search produced no usable tracks.
var ErrNoTracksFound = errors.New("no tracks found")

// NoTracksFoundError provides context for an empty artist search.
type NoTracksFoundError struct {
	Artist string
}

func (e *NoTracksFoundError) Error() string {
	if e.Artist == "" {
		return ErrNoTracksFound.Error()
	}
	return fmt.Sprintf("no tracks found for artist %q", e.Artist)
}

func (e *NoTracksFoundError) Is(target error) bool {
	return target == ErrNoTracksFound
}

// SpotifyProvider is the upstream catalog the analyzer reads from.
type SpotifyProvider interface {
	SearchTracksByArtist(ctx context.Context, session domain.Session, artist string, limit int) ([]domain.TrackFeatureRow, error)
	FetchFeatures(ctx context.Context, session domain.Session, trackIDs []string, batchSize int) ([]domain.FeatureResult, error)
}
