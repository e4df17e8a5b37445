package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
	"github.com/ewilliams-labs/popularity/internal/core/ports"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
)

// SearchTracksByArtist returns up to limit tracks credited to artist as rows
// without features.
func (c *Client) SearchTracksByArtist(ctx context.Context, session domain.Session, artist string, limit int) ([]domain.TrackFeatureRow, error) {
	if strings.TrimSpace(artist) == "" {
		return nil, errors.New("spotify adapter: artist must not be empty")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	searchURL, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: invalid search url: %w", err)
	}

	query := searchURL.Query()
	query.Set("q", "artist:"+strings.TrimSpace(artist))
	query.Set("type", "track")
	query.Set("limit", strconv.Itoa(limit))
	searchURL.RawQuery = query.Encode()

	c.logger.Debug("spotify adapter: search request", zap.String("url", searchURL.String()))

	var body searchResponse
	if err := c.getJSON(ctx, session, searchURL.String(), &body); err != nil {
		return nil, err
	}

	rows := make([]domain.TrackFeatureRow, 0, len(body.Tracks.Items))
	for _, item := range body.Tracks.Items {
		if item.ID == "" {
			continue
		}
		if c.artistThreshold > 0 {
			score := artistMatchScore(artist, item)
			if score < c.artistThreshold {
				c.logger.Debug("spotify adapter: dropping search hit",
					zap.String("track", item.Name), zap.String("artist", joinArtistNames(item)),
					zap.Float64("score", score))
				continue
			}
		}
		rows = append(rows, mapTrackToRow(item))
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("spotify adapter: %w", &ports.NoTracksFoundError{Artist: artist})
	}
	return rows, nil
}
