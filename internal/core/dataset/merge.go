package dataset

import (
	"fmt"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
)

// Merge attaches fetched feature vectors to the rows they were requested
// for. results must be the fetcher output for the rows' track ids, in the
// same order. The input rows are not modified.
func Merge(rows []domain.TrackFeatureRow, results []domain.FeatureResult) ([]domain.TrackFeatureRow, error) {
	if len(rows) != len(results) {
		return nil, fmt.Errorf("dataset: merge: %d rows but %d feature results", len(rows), len(results))
	}

	out := make([]domain.TrackFeatureRow, len(rows))
	for i, row := range rows {
		if results[i].ID != row.TrackID {
			return nil, fmt.Errorf("dataset: merge: position %d has features for %q, want %q", i, results[i].ID, row.TrackID)
		}
		merged := row.Clone()
		merged.Features = nil
		if f := results[i].Features; f != nil {
			v := *f
			merged.Features = &v
		}
		out[i] = merged
	}
	return out, nil
}

// TrackIDs returns the track ids of rows in order.
func TrackIDs(rows []domain.TrackFeatureRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.TrackID
	}
	return ids
}
