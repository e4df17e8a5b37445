package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestTokenSet_Stale(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{name: "well before expiry", expiresAt: now.Add(time.Hour), want: false},
		{name: "exactly at margin", expiresAt: now.Add(RefreshMargin), want: false},
		{name: "inside margin", expiresAt: now.Add(29 * time.Second), want: true},
		{name: "already expired", expiresAt: now.Add(-time.Minute), want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := TokenSet{AccessToken: "a", ExpiresAt: tc.expiresAt}
			if got := ts.Stale(now); got != tc.want {
				t.Fatalf("Stale: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTrackFeatureRow_Value(t *testing.T) {
	row := TrackFeatureRow{
		TrackID:    "t1",
		Popularity: IntPtr(42),
		Features:   &AudioFeatures{Energy: 0.7, Tempo: 120},
	}

	tests := []struct {
		name   string
		row    TrackFeatureRow
		column string
		want   float64
		wantOK bool
	}{
		{name: "popularity", row: row, column: ColumnPopularity, want: 42, wantOK: true},
		{name: "feature", row: row, column: ColumnTempo, want: 120, wantOK: true},
		{name: "unknown column", row: row, column: "mood", wantOK: false},
		{name: "missing features", row: TrackFeatureRow{TrackID: "t2"}, column: ColumnEnergy, wantOK: false},
		{name: "missing popularity", row: TrackFeatureRow{TrackID: "t3"}, column: ColumnPopularity, wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.row.Value(tc.column)
			if ok != tc.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tc.wantOK)
			}
			if ok && math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("value: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTrackFeatureRow_CloneIsIndependent(t *testing.T) {
	orig := TrackFeatureRow{Popularity: IntPtr(10), Features: &AudioFeatures{Energy: 0.5}}
	c := orig.Clone()
	if err := c.SetFeature(ColumnEnergy, 0.9); err != nil {
		t.Fatalf("SetFeature: %v", err)
	}
	*c.Popularity = 99

	if orig.Features.Energy != 0.5 {
		t.Fatalf("original energy mutated: %v", orig.Features.Energy)
	}
	if *orig.Popularity != 10 {
		t.Fatalf("original popularity mutated: %v", *orig.Popularity)
	}
}

func TestTrackFeatureRow_SetFeatureUnknown(t *testing.T) {
	row := TrackFeatureRow{Features: &AudioFeatures{}}
	err := row.SetFeature("popularity", 1)
	if !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestNewRun(t *testing.T) {
	if _, err := NewRun("", "Artist", time.Now()); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty id, got %v", err)
	}
	r, err := NewRun("run-1", "Artist", time.Now())
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	if r.Coverage() != 0 {
		t.Fatalf("empty run coverage: got %v, want 0", r.Coverage())
	}
	r.Rows = []TrackFeatureRow{{TrackID: "a", Features: &AudioFeatures{}}, {TrackID: "b"}}
	if got := r.Coverage(); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("coverage: got %v, want 0.5", got)
	}
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "configuration", err: &ConfigurationError{Err: errors.New("CLIENT_ID missing")}, target: ErrConfiguration},
		{name: "authorization", err: &AuthorizationRequiredError{AuthorizeURL: "https://example.test"}, target: ErrAuthorizationRequired},
		{name: "exchange", err: &ExchangeError{Err: errors.New("bad code")}, target: ErrExchangeFailed},
		{name: "rate limited", err: &RateLimitedError{Attempts: 3}, target: ErrRateLimited},
		{name: "server", err: &UpstreamServerError{Status: 502, Attempts: 4}, target: ErrUpstreamServer},
		{name: "status", err: &UpstreamStatusError{Status: 404}, target: ErrUpstreamStatus},
		{name: "schema", err: &SchemaError{Column: "mood"}, target: ErrSchema},
		{name: "insufficient", err: &InsufficientDataError{Rows: 1, Min: 2}, target: ErrInsufficientData},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := errors.Join(errors.New("context"), tc.err)
			if !errors.Is(wrapped, tc.target) {
				t.Fatalf("errors.Is(%v, %v) = false", wrapped, tc.target)
			}
		})
	}

	var authErr *AuthorizationRequiredError
	if !errors.As(errors.Join(&AuthorizationRequiredError{AuthorizeURL: "u"}), &authErr) || authErr.AuthorizeURL != "u" {
		t.Fatalf("errors.As did not recover the authorize URL")
	}
}
