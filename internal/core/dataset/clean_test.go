package dataset

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
)

func row(id, name, artist string, popularity *int, f *domain.AudioFeatures) domain.TrackFeatureRow {
	return domain.TrackFeatureRow{TrackID: id, TrackName: name, Artist: artist, Popularity: popularity, Features: f}
}

func features(dance, energy, loud, tempo, valence float64) *domain.AudioFeatures {
	return &domain.AudioFeatures{Danceability: dance, Energy: energy, Loudness: loud, Tempo: tempo, Valence: valence}
}

func sampleRows() []domain.TrackFeatureRow {
	return []domain.TrackFeatureRow{
		row("a", "Song A", "Artist", domain.IntPtr(80), features(0.2, 0.4, -10, 100, 0.1)),
		row("b", "Song B", "Artist", domain.IntPtr(60), features(0.6, 0.8, -5, 140, 0.5)),
		row("a2", "Song A", "Artist", domain.IntPtr(10), features(0.9, 0.9, -1, 180, 0.9)),
		row("c", "Song C", "Artist", nil, features(0.4, 0.6, -7, 120, 0.3)),
		row("d", "Song D", "Artist", domain.IntPtr(40), features(1.0, 0.6, -7, 120, 0.3)),
		row("e", "Song E", "Artist", domain.IntPtr(20), nil),
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name    string
		rows    []domain.TrackFeatureRow
		wantIDs []string
	}{
		{
			name:    "drops duplicates keeping first and drops missing popularity",
			rows:    sampleRows(),
			wantIDs: []string{"a", "b", "d", "e"},
		},
		{
			name: "duplicate key is per artist",
			rows: []domain.TrackFeatureRow{
				row("x", "Intro", "One", domain.IntPtr(1), nil),
				row("y", "Intro", "Two", domain.IntPtr(2), nil),
			},
			wantIDs: []string{"x", "y"},
		},
		{
			name: "first occurrence wins even without popularity",
			rows: []domain.TrackFeatureRow{
				row("x", "Intro", "One", nil, nil),
				row("y", "Intro", "One", domain.IntPtr(2), nil),
			},
			wantIDs: []string{},
		},
		{
			name:    "empty input",
			rows:    nil,
			wantIDs: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ds, err := Clean(tc.rows)
			if err != nil {
				t.Fatalf("Clean: %v", err)
			}
			got := make([]string, 0, len(ds.Rows))
			for _, r := range ds.Rows {
				got = append(got, r.TrackID)
			}
			if !reflect.DeepEqual(got, tc.wantIDs) {
				t.Fatalf("ids: got %v, want %v", got, tc.wantIDs)
			}
			if len(ds.Rows) > len(tc.rows) {
				t.Fatalf("row count increased: %d > %d", len(ds.Rows), len(tc.rows))
			}
			for _, r := range ds.Rows {
				if r.Popularity == nil {
					t.Fatalf("row %s has nil popularity", r.TrackID)
				}
			}
		})
	}
}

func TestClean_Normalizes(t *testing.T) {
	ds, err := Clean(sampleRows())
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}

	for _, c := range DefaultColumns {
		for _, r := range ds.Rows {
			v, ok := r.Value(c)
			if !ok {
				continue
			}
			if v < 0 || v > 1 {
				t.Fatalf("column %s row %s out of range: %v", c, r.TrackID, v)
			}
		}
	}

	// tempo over surviving rows a,b,d: 100, 140, 120
	want := map[string]float64{"a": 0, "b": 1, "d": 0.5}
	for _, r := range ds.Rows {
		w, ok := want[r.TrackID]
		if !ok {
			continue
		}
		if math.Abs(r.Features.Tempo-w) > 1e-9 {
			t.Fatalf("tempo %s: got %v, want %v", r.TrackID, r.Features.Tempo, w)
		}
	}

	if got := ds.Ranges[domain.ColumnTempo]; got.Min != 100 || got.Max != 140 {
		t.Fatalf("tempo range: got %+v", got)
	}

	last := ds.Rows[len(ds.Rows)-1]
	if last.TrackID != "e" || last.Features != nil {
		t.Fatalf("row without features should be kept as absent, got %+v", last)
	}
}

func TestClean_ConstantColumnScalesToZero(t *testing.T) {
	rows := []domain.TrackFeatureRow{
		row("a", "A", "X", domain.IntPtr(1), features(0.5, 0.5, -3, 120, 0.5)),
		row("b", "B", "X", domain.IntPtr(2), features(0.5, 0.5, -3, 120, 0.5)),
	}
	ds, err := Clean(rows, domain.ColumnEnergy)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	for _, r := range ds.Rows {
		if r.Features.Energy != 0 {
			t.Fatalf("constant column: got %v, want 0", r.Features.Energy)
		}
		if r.Features.Tempo != 120 {
			t.Fatalf("unrequested column changed: %v", r.Features.Tempo)
		}
	}
}

func TestClean_Idempotent(t *testing.T) {
	first, err := Clean(sampleRows())
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	second, err := Clean(first.Rows)
	if err != nil {
		t.Fatalf("Clean again: %v", err)
	}
	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Fatalf("clean is not idempotent:\nfirst  %+v\nsecond %+v", first.Rows, second.Rows)
	}
}

func TestClean_DoesNotMutateInput(t *testing.T) {
	rows := sampleRows()
	if _, err := Clean(rows); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if rows[0].Features.Tempo != 100 {
		t.Fatalf("input mutated: tempo %v", rows[0].Features.Tempo)
	}
}

func TestClean_SchemaError(t *testing.T) {
	_, err := Clean(sampleRows(), domain.ColumnEnergy, "mood")
	var schemaErr *domain.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if schemaErr.Column != "mood" {
		t.Fatalf("column: got %q, want %q", schemaErr.Column, "mood")
	}
}
