// Package dataset turns raw track rows into a normalized training table.
package dataset

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
)

// DefaultColumns are scaled when Clean is called without explicit columns.
var DefaultColumns = []string{
	domain.ColumnDanceability,
	domain.ColumnEnergy,
	domain.ColumnLoudness,
	domain.ColumnTempo,
	domain.ColumnValence,
}

type dedupKey struct {
	name   string
	artist string
}

// Clean drops duplicate (track name, artist) rows keeping the first
// occurrence, then drops rows without popularity, then min-max scales
// columns to [0,1] over the surviving rows. Rows without a feature vector are
// kept and left without one; they do not contribute to the column ranges.
// A constant column scales to 0. The input slice is not modified.
func Clean(rows []domain.TrackFeatureRow, columns ...string) (domain.CleanedDataset, error) {
	if len(columns) == 0 {
		columns = DefaultColumns
	}
	for _, c := range columns {
		if !domain.IsFeatureColumn(c) {
			return domain.CleanedDataset{}, &domain.SchemaError{Column: c}
		}
	}

	seen := make(map[dedupKey]struct{}, len(rows))
	kept := make([]domain.TrackFeatureRow, 0, len(rows))
	for _, r := range rows {
		k := dedupKey{name: r.TrackName, artist: r.Artist}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if r.Popularity == nil {
			continue
		}
		kept = append(kept, r.Clone())
	}

	ranges := make(map[string]domain.Range, len(columns))
	for _, c := range columns {
		values := columnValues(kept, c)
		if len(values) == 0 {
			continue
		}
		rng := domain.Range{Min: floats.Min(values), Max: floats.Max(values)}
		ranges[c] = rng
		for i := range kept {
			v, ok := kept[i].Value(c)
			if !ok {
				continue
			}
			if err := kept[i].SetFeature(c, scale(v, rng)); err != nil {
				return domain.CleanedDataset{}, err
			}
		}
	}

	return domain.CleanedDataset{
		Rows:    kept,
		Columns: append([]string(nil), columns...),
		Ranges:  ranges,
	}, nil
}

func columnValues(rows []domain.TrackFeatureRow, column string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v, ok := r.Value(column); ok {
			values = append(values, v)
		}
	}
	return values
}

func scale(v float64, r domain.Range) float64 {
	span := r.Max - r.Min
	if span == 0 {
		return 0
	}
	return (v - r.Min) / span
}
