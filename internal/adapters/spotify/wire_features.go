package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
)

// MaxBatchSize is the most ids /audio-features accepts in one request.
const MaxBatchSize = 100

// FetchFeatures returns one result per input id, in input order. Chunks are
// requested sequentially; ids the upstream has no vector for come back with
// nil Features.
func (c *Client) FetchFeatures(ctx context.Context, session domain.Session, trackIDs []string, batchSize int) ([]domain.FeatureResult, error) {
	if batchSize <= 0 || batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}

	results := make([]domain.FeatureResult, len(trackIDs))
	for i, id := range trackIDs {
		results[i].ID = id
	}

	for start := 0; start < len(trackIDs); start += batchSize {
		end := min(start+batchSize, len(trackIDs))
		chunk := trackIDs[start:end]

		entries, err := c.fetchChunk(ctx, session, chunk)
		if err != nil {
			return nil, err
		}

		byID := make(map[string]*spotifyAudioFeatures, len(entries))
		for _, e := range entries {
			if e != nil && e.ID != "" {
				byID[e.ID] = e
			}
		}
		for j, id := range chunk {
			if f, ok := byID[id]; ok {
				results[start+j].Features = mapFeaturesToDomain(f)
				continue
			}
			// entries without an id are matched by position
			if j < len(entries) && entries[j] != nil && entries[j].ID == "" {
				results[start+j].Features = mapFeaturesToDomain(entries[j])
			}
		}

		c.logger.Debug("spotify adapter: fetched audio features",
			zap.Int("offset", start), zap.Int("chunk", len(chunk)), zap.Int("total", len(trackIDs)))
	}

	return results, nil
}

func (c *Client) fetchChunk(ctx context.Context, session domain.Session, ids []string) ([]*spotifyAudioFeatures, error) {
	u, err := url.Parse(c.baseURL + "/audio-features")
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: invalid audio-features url: %w", err)
	}
	q := u.Query()
	q.Set("ids", strings.Join(ids, ","))
	u.RawQuery = q.Encode()

	var body audioFeaturesResponse
	if err := c.getJSON(ctx, session, u.String(), &body); err != nil {
		return nil, err
	}
	return body.AudioFeatures, nil
}
