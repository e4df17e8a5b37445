package model

import (
	"errors"
	"math"
	"testing"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
)

// syntheticDataset builds rows whose popularity rises with energy.
func syntheticDataset(n int) domain.CleanedDataset {
	rows := make([]domain.TrackFeatureRow, 0, n)
	for i := range n {
		e := float64(i) / float64(n)
		rows = append(rows, domain.TrackFeatureRow{
			TrackID:    string(rune('a' + i%26)),
			Popularity: domain.IntPtr(int(100 * e)),
			Features: &domain.AudioFeatures{
				Danceability: math.Mod(e*7, 1),
				Energy:       e,
				Valence:      math.Mod(e*3, 1),
				Tempo:        math.Mod(e*5, 1),
				Acousticness: 1 - e,
			},
		})
	}
	return domain.CleanedDataset{Rows: rows}
}

func TestTrain_DeterministicForSeed(t *testing.T) {
	ds := syntheticDataset(40)
	opts := DefaultOptions()
	opts.Trees = 25

	first, err := Train(ds, opts)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	for range 3 {
		again, err := Train(ds, opts)
		if err != nil {
			t.Fatalf("Train: %v", err)
		}
		if again.Metrics.RMSE != first.Metrics.RMSE || again.Metrics.R2 != first.Metrics.R2 {
			t.Fatalf("metrics differ across runs: %+v vs %+v", again.Metrics, first.Metrics)
		}
	}
}

func TestTrain_SplitSizes(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		wantTrain int
		wantTest  int
	}{
		{name: "two rows", rows: 2, wantTrain: 1, wantTest: 1},
		{name: "ten rows", rows: 10, wantTrain: 8, wantTest: 2},
		{name: "eleven rows rounds test up", rows: 11, wantTrain: 8, wantTest: 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Train(syntheticDataset(tc.rows), Options{Trees: 5, Seed: 7})
			if err != nil {
				t.Fatalf("Train: %v", err)
			}
			if m.Metrics.TrainRows != tc.wantTrain || m.Metrics.TestRows != tc.wantTest {
				t.Fatalf("split: got %d/%d, want %d/%d", m.Metrics.TrainRows, m.Metrics.TestRows, tc.wantTrain, tc.wantTest)
			}
		})
	}
}

func TestTrain_LearnsMonotoneSignal(t *testing.T) {
	m, err := Train(syntheticDataset(60), Options{Trees: 40, Seed: 42})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if m.Metrics.RMSE > 15 {
		t.Fatalf("RMSE too high for a near-noiseless signal: %v", m.Metrics.RMSE)
	}

	low, err := m.Predict(domain.TrackFeatureRow{Features: &domain.AudioFeatures{Energy: 0.05, Acousticness: 0.95}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	high, err := m.Predict(domain.TrackFeatureRow{Features: &domain.AudioFeatures{Energy: 0.95, Acousticness: 0.05}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if high <= low {
		t.Fatalf("expected higher popularity for higher energy: low=%v high=%v", low, high)
	}
}

func TestTrain_Errors(t *testing.T) {
	oneRow := syntheticDataset(1)
	withoutFeatures := domain.CleanedDataset{Rows: []domain.TrackFeatureRow{
		{TrackID: "a", Popularity: domain.IntPtr(1)},
		{TrackID: "b", Popularity: domain.IntPtr(2)},
		{TrackID: "c", Popularity: domain.IntPtr(3), Features: &domain.AudioFeatures{}},
	}}

	tests := []struct {
		name   string
		ds     domain.CleanedDataset
		opts   Options
		target error
	}{
		{name: "empty dataset", ds: domain.CleanedDataset{}, target: domain.ErrInsufficientData},
		{name: "single row", ds: oneRow, target: domain.ErrInsufficientData},
		{name: "rows without features are unusable", ds: withoutFeatures, target: domain.ErrInsufficientData},
		{name: "unknown feature column", ds: syntheticDataset(10), opts: Options{FeatureColumns: []string{"mood"}}, target: domain.ErrSchema},
		{name: "unknown target column", ds: syntheticDataset(10), opts: Options{TargetColumn: "plays"}, target: domain.ErrSchema},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Train(tc.ds, tc.opts)
			if !errors.Is(err, tc.target) {
				t.Fatalf("expected %v, got %v", tc.target, err)
			}
		})
	}
}

func TestPredict_MissingFeature(t *testing.T) {
	m, err := Train(syntheticDataset(10), Options{Trees: 3})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	_, err = m.Predict(domain.TrackFeatureRow{TrackID: "x"})
	if !errors.Is(err, domain.ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}
