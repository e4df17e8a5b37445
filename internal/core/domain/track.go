package domain

// AudioFeatures is the per-track descriptor vector returned by the upstream
// audio-features endpoint.
type AudioFeatures struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Loudness         float64 `json:"loudness"`
	Tempo            float64 `json:"tempo"`
	Valence          float64 `json:"valence"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Speechiness      float64 `json:"speechiness"`
}

// TrackFeatureRow merges track metadata with its audio-feature vector.
// Features is nil when the upstream had no vector for the track, and
// Popularity is nil when the value is missing.
type TrackFeatureRow struct {
	TrackID     string         `json:"track_id"`
	TrackName   string         `json:"track_name"`
	Artist      string         `json:"artist"`
	Popularity  *int           `json:"popularity"`
	ReleaseDate string         `json:"release_date,omitempty"`
	Features    *AudioFeatures `json:"features"`
}

// Clone returns a copy that shares no pointers with r.
func (r TrackFeatureRow) Clone() TrackFeatureRow {
	out := r
	if r.Popularity != nil {
		p := *r.Popularity
		out.Popularity = &p
	}
	if r.Features != nil {
		f := *r.Features
		out.Features = &f
	}
	return out
}

// FeatureResult is one Batch Fetcher output entry. Features is nil when the
// upstream returned null for ID.
type FeatureResult struct {
	ID       string         `json:"id"`
	Features *AudioFeatures `json:"features"`
}

// IntPtr is a small helper for building rows with a known popularity.
func IntPtr(v int) *int {
	return &v
}
