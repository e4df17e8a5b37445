package spotify

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		min    time.Duration
		max    time.Duration
	}{
		{name: "absent", header: "", min: 0, max: 0},
		{name: "seconds", header: "2", min: 2 * time.Second, max: 2 * time.Second},
		{name: "garbage", header: "soon", min: 0, max: 0},
		{name: "negative", header: "-3", min: 0, max: 0},
		{name: "http date", header: time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat), min: 80 * time.Second, max: 91 * time.Second},
		{name: "date in the past", header: time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat), min: 0, max: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}
			got := parseRetryAfter(resp)
			if got < tt.min || got > tt.max {
				t.Fatalf("parseRetryAfter(%q): got %v, want [%v, %v]", tt.header, got, tt.min, tt.max)
			}
		})
	}
}

func TestNextBackoff(t *testing.T) {
	got := time.Second
	var seq []time.Duration
	for i := 0; i < 8; i++ {
		seq = append(seq, got)
		got = nextBackoff(got, 30*time.Second)
	}

	want := []time.Duration{1, 2, 4, 8, 16, 30, 30, 30}
	for i := range want {
		if seq[i] != want[i]*time.Second {
			t.Fatalf("step %d: got %v, want %v (sequence %v)", i, seq[i], want[i]*time.Second, seq)
		}
	}
}

func TestSleepWithContext(t *testing.T) {
	if err := sleepWithContext(context.Background(), 0); err != nil {
		t.Fatalf("zero delay: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sleepWithContext(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
