package spotify

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// spotifyTrack is the subset of the track object the search endpoint returns
// that the analyzer needs.
type spotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Popularity *int            `json:"popularity"`
	Artists    []spotifyArtist `json:"artists"`
	Album      spotifyAlbum    `json:"album"`
}

type searchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyAudioFeatures struct {
	ID               string  `json:"id"`
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

// audioFeaturesResponse is parallel to the requested ids; unknown ids come
// back as null.
type audioFeaturesResponse struct {
	AudioFeatures []*spotifyAudioFeatures `json:"audio_features"`
}
