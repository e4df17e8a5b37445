package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/popularity/internal/core/dataset"
	"github.com/ewilliams-labs/popularity/internal/core/domain"
	"github.com/ewilliams-labs/popularity/internal/core/model"
	"github.com/ewilliams-labs/popularity/internal/core/mood"
	"github.com/ewilliams-labs/popularity/internal/core/ports"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// AnalyzeRequest describes one artist analysis.
type AnalyzeRequest struct {
	Artist    string
	Limit     int
	Train     bool
	BatchSize int
}

// AnalyzeResult carries every stage of an analysis. Metrics and Moods are
// nil unless training was requested.
type AnalyzeResult struct {
	RunID   string
	Rows    []domain.TrackFeatureRow
	Cleaned domain.CleanedDataset
	Metrics *domain.Metrics
	Moods   *mood.Result
}

// Analyzer coordinates the session manager, the Spotify provider and the run
// repository.
type Analyzer struct {
	sessions ports.SessionManager
	spotify  ports.SpotifyProvider
	runs     ports.RunRepository
	logger   *zap.Logger

	modelOpts model.Options
	now       func() time.Time
	newID     func() string
}

// NewAnalyzer constructs an Analyzer. runs may be nil, in which case results
// are not persisted.
func NewAnalyzer(sessions ports.SessionManager, spotify ports.SpotifyProvider, runs ports.RunRepository, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		sessions:  sessions,
		spotify:   spotify,
		runs:      runs,
		logger:    logger,
		modelOpts: model.DefaultOptions(),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Analyze searches the artist's tracks, fetches their audio features, cleans
// the merged table and optionally fits the popularity model.
func (a *Analyzer) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResult, error) {
	artist := strings.TrimSpace(req.Artist)
	if artist == "" {
		return AnalyzeResult{}, fmt.Errorf("service: artist is required: %w", domain.ErrInvalidArgument)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	// 1. Resolve a session or hand back the login link
	res, err := a.sessions.GetSession(ctx)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("service: failed to load session: %w", err)
	}
	if res.NeedsAuthorization() {
		return AnalyzeResult{}, &domain.AuthorizationRequiredError{AuthorizeURL: res.AuthorizeURL}
	}
	session := *res.Session

	// 2. Search, then fetch features for every hit
	rows, err := a.spotify.SearchTracksByArtist(ctx, session, artist, limit)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("service: failed to search tracks: %w", err)
	}

	features, err := a.spotify.FetchFeatures(ctx, session, dataset.TrackIDs(rows), req.BatchSize)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("service: failed to fetch audio features: %w", err)
	}

	merged, err := dataset.Merge(rows, features)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("service: %w", err)
	}

	// 3. Clean, and train when asked
	cleaned, err := dataset.Clean(merged)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("service: failed to clean rows: %w", err)
	}

	out := AnalyzeResult{Rows: merged, Cleaned: cleaned}
	if req.Train {
		trained, err := model.Train(cleaned, a.modelOpts)
		if err != nil {
			return AnalyzeResult{}, fmt.Errorf("service: failed to train model: %w", err)
		}
		metrics := trained.Metrics
		out.Metrics = &metrics

		groups, err := mood.Group(cleaned, mood.DefaultGroups)
		if err != nil {
			return AnalyzeResult{}, fmt.Errorf("service: failed to group moods: %w", err)
		}
		out.Moods = &groups
	}

	// 4. Persist
	run, err := domain.NewRun(a.newID(), artist, a.now())
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("service: %w", err)
	}
	run.Rows = merged
	run.Metrics = out.Metrics
	out.RunID = run.ID

	if a.runs != nil {
		if err := a.runs.SaveRun(ctx, *run); err != nil {
			return AnalyzeResult{}, fmt.Errorf("service: failed to save run: %w", err)
		}
	}

	a.logger.Info("service: analysis complete",
		zap.String("run_id", run.ID),
		zap.String("artist", artist),
		zap.Int("rows", len(merged)),
		zap.Int("cleaned_rows", len(cleaned.Rows)),
		zap.Float64("coverage", run.Coverage()),
		zap.Bool("trained", out.Metrics != nil),
	)
	return out, nil
}

// GetRun loads a previously persisted analysis.
func (a *Analyzer) GetRun(ctx context.Context, id string) (domain.Run, error) {
	if a.runs == nil {
		return domain.Run{}, domain.ErrNotFound
	}
	run, err := a.runs.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Run{}, err
		}
		return domain.Run{}, fmt.Errorf("service: failed to load run: %w", err)
	}
	return run, nil
}

// ListRuns returns persisted analyses for artist, newest first.
func (a *Analyzer) ListRuns(ctx context.Context, artist string) ([]domain.Run, error) {
	if a.runs == nil {
		return []domain.Run{}, nil
	}
	runs, err := a.runs.ListRuns(ctx, artist)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list runs: %w", err)
	}
	return runs, nil
}
