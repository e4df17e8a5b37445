package spotify

import "github.com/ewilliams-labs/popularity/internal/core/domain"

// mapTrackToRow converts a search hit into a feature row without features.
// Only the first credited artist is kept.
func mapTrackToRow(st spotifyTrack) domain.TrackFeatureRow {
	row := domain.TrackFeatureRow{
		TrackID:     st.ID,
		TrackName:   st.Name,
		ReleaseDate: st.Album.ReleaseDate,
	}
	if len(st.Artists) > 0 {
		row.Artist = st.Artists[0].Name
	}
	if st.Popularity != nil {
		row.Popularity = domain.IntPtr(*st.Popularity)
	}
	return row
}

func mapFeaturesToDomain(f *spotifyAudioFeatures) *domain.AudioFeatures {
	if f == nil {
		return nil
	}
	return &domain.AudioFeatures{
		Danceability:     f.Danceability,
		Energy:           f.Energy,
		Loudness:         f.Loudness,
		Tempo:            f.Tempo,
		Valence:          f.Valence,
		Acousticness:     f.Acousticness,
		Instrumentalness: f.Instrumentalness,
		Liveness:         f.Liveness,
		Speechiness:      f.Speechiness,
	}
}
