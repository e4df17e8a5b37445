package domain

import "time"

// Range holds the min/max statistics used to scale one column.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CleanedDataset is the deduplicated, popularity-non-null subset of the raw
// rows with Columns min-max scaled using Ranges.
type CleanedDataset struct {
	Rows    []TrackFeatureRow `json:"rows"`
	Columns []string          `json:"columns"`
	Ranges  map[string]Range  `json:"ranges"`
}

// Metrics are the held-out evaluation results of a trained model.
type Metrics struct {
	RMSE           float64  `json:"rmse"`
	R2             float64  `json:"r2"`
	TrainRows      int      `json:"train_rows"`
	TestRows       int      `json:"test_rows"`
	FeatureColumns []string `json:"feature_columns"`
}

// Run is one persisted analysis of an artist's catalog.
type Run struct {
	ID        string
	Artist    string
	CreatedAt time.Time
	Rows      []TrackFeatureRow
	Metrics   *Metrics
}

func NewRun(id, artist string, createdAt time.Time) (*Run, error) {
	if id == "" || artist == "" {
		return nil, ErrInvalidArgument
	}
	return &Run{
		ID:        id,
		Artist:    artist,
		CreatedAt: createdAt,
		Rows:      []TrackFeatureRow{},
	}, nil
}

// Coverage returns the fraction of rows that carry a feature vector.
func (r Run) Coverage() float64 {
	if len(r.Rows) == 0 {
		return 0
	}
	with := 0
	for _, row := range r.Rows {
		if row.Features != nil {
			with++
		}
	}
	return float64(with) / float64(len(r.Rows))
}
