package dataset

import (
	"testing"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
)

func TestMerge(t *testing.T) {
	rows := []domain.TrackFeatureRow{
		{TrackID: "a", TrackName: "A", Artist: "X", Popularity: domain.IntPtr(50)},
		{TrackID: "b", TrackName: "B", Artist: "X", Popularity: domain.IntPtr(40)},
		{TrackID: "c", TrackName: "C", Artist: "X", Popularity: nil},
	}
	results := []domain.FeatureResult{
		{ID: "a", Features: &domain.AudioFeatures{Energy: 0.9}},
		{ID: "b"},
		{ID: "c", Features: &domain.AudioFeatures{Energy: 0.1}},
	}

	merged, err := Merge(rows, results)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(merged) != 3 {
		t.Fatalf("length: got %d", len(merged))
	}
	if merged[0].Features == nil || merged[0].Features.Energy != 0.9 {
		t.Errorf("a: got %+v", merged[0].Features)
	}
	if merged[1].Features != nil {
		t.Errorf("b should have no features")
	}
	if merged[2].Popularity != nil || merged[2].Features == nil {
		t.Errorf("c: got %+v", merged[2])
	}

	results[0].Features.Energy = 0
	if merged[0].Features.Energy != 0.9 {
		t.Errorf("merged row shares the feature vector with its input")
	}
	if rows[0].Features != nil {
		t.Errorf("input rows were modified")
	}
}

func TestMerge_Mismatch(t *testing.T) {
	rows := []domain.TrackFeatureRow{{TrackID: "a"}, {TrackID: "b"}}

	tests := []struct {
		name    string
		results []domain.FeatureResult
	}{
		{name: "length", results: []domain.FeatureResult{{ID: "a"}}},
		{name: "order", results: []domain.FeatureResult{{ID: "b"}, {ID: "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Merge(rows, tt.results); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestTrackIDs(t *testing.T) {
	got := TrackIDs([]domain.TrackFeatureRow{{TrackID: "x"}, {TrackID: "y"}})
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Fatalf("got %v", got)
	}
}
