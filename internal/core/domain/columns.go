package domain

// Column names addressable by the cleaner and the model.
const (
	ColumnPopularity       = "popularity"
	ColumnDanceability     = "danceability"
	ColumnEnergy           = "energy"
	ColumnLoudness         = "loudness"
	ColumnTempo            = "tempo"
	ColumnValence          = "valence"
	ColumnAcousticness     = "acousticness"
	ColumnInstrumentalness = "instrumentalness"
	ColumnLiveness         = "liveness"
	ColumnSpeechiness      = "speechiness"
)

// FeatureColumns lists every audio-feature column in a stable order.
var FeatureColumns = []string{
	ColumnDanceability,
	ColumnEnergy,
	ColumnLoudness,
	ColumnTempo,
	ColumnValence,
	ColumnAcousticness,
	ColumnInstrumentalness,
	ColumnLiveness,
	ColumnSpeechiness,
}

func (f *AudioFeatures) field(column string) *float64 {
	switch column {
	case ColumnDanceability:
		return &f.Danceability
	case ColumnEnergy:
		return &f.Energy
	case ColumnLoudness:
		return &f.Loudness
	case ColumnTempo:
		return &f.Tempo
	case ColumnValence:
		return &f.Valence
	case ColumnAcousticness:
		return &f.Acousticness
	case ColumnInstrumentalness:
		return &f.Instrumentalness
	case ColumnLiveness:
		return &f.Liveness
	case ColumnSpeechiness:
		return &f.Speechiness
	}
	return nil
}

// IsFeatureColumn reports whether column names an audio feature.
func IsFeatureColumn(column string) bool {
	var probe AudioFeatures
	return probe.field(column) != nil
}

// IsColumn reports whether column can be read from a TrackFeatureRow.
func IsColumn(column string) bool {
	return column == ColumnPopularity || IsFeatureColumn(column)
}

// Value returns the numeric value of column. ok is false when the column is
// unknown or the value is missing for this row.
func (r TrackFeatureRow) Value(column string) (value float64, ok bool) {
	if column == ColumnPopularity {
		if r.Popularity == nil {
			return 0, false
		}
		return float64(*r.Popularity), true
	}
	if r.Features == nil {
		return 0, false
	}
	p := r.Features.field(column)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// SetFeature overwrites an audio-feature value in place. It returns a
// SchemaError for unknown columns and is a no-op for rows without features.
func (r *TrackFeatureRow) SetFeature(column string, value float64) error {
	if !IsFeatureColumn(column) {
		return &SchemaError{Column: column}
	}
	if r.Features == nil {
		return nil
	}
	*r.Features.field(column) = value
	return nil
}
