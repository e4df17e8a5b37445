// Package sqlite provides a SQLite-backed implementation of the run repository port.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/popularity/internal/core/domain"
	"github.com/ewilliams-labs/popularity/internal/core/ports"
)

// Adapter implements the repository port for SQLite
type Adapter struct {
	db *sql.DB
}

var _ ports.RunRepository = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// One connection: SQLite has a single writer, and each new connection to
	// ":memory:" would otherwise see its own empty database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// SaveRun stores run and replaces any rows previously saved under its id.
func (a *Adapter) SaveRun(ctx context.Context, run domain.Run) error {
	if run.ID == "" {
		return errors.New("failed to save run: empty id")
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		rmse, r2            sql.NullFloat64
		trainRows, testRows sql.NullInt64
		featureColumns      sql.NullString
	)
	if m := run.Metrics; m != nil {
		rmse = sql.NullFloat64{Float64: m.RMSE, Valid: true}
		r2 = sql.NullFloat64{Float64: m.R2, Valid: true}
		trainRows = sql.NullInt64{Int64: int64(m.TrainRows), Valid: true}
		testRows = sql.NullInt64{Int64: int64(m.TestRows), Valid: true}
		cols, err := json.Marshal(m.FeatureColumns)
		if err != nil {
			return fmt.Errorf("failed to encode feature columns: %w", err)
		}
		featureColumns = sql.NullString{String: string(cols), Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, artist, created_at, rmse, r2, train_rows, test_rows, feature_columns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			artist=excluded.artist,
			created_at=excluded.created_at,
			rmse=excluded.rmse,
			r2=excluded.r2,
			train_rows=excluded.train_rows,
			test_rows=excluded.test_rows,
			feature_columns=excluded.feature_columns;
	`, run.ID, run.Artist, run.CreatedAt.UTC().UnixNano(), rmse, r2, trainRows, testRows, featureColumns); err != nil {
		return fmt.Errorf("failed to save run metadata: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_tracks WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("failed to clear old rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_tracks (
			run_id, position, track_id, track_name, artist, popularity, release_date, has_features,
			danceability, energy, loudness, tempo, valence, acousticness, instrumentalness, liveness, speechiness
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range run.Rows {
		var popularity sql.NullInt64
		if r.Popularity != nil {
			popularity = sql.NullInt64{Int64: int64(*r.Popularity), Valid: true}
		}
		var f domain.AudioFeatures
		if r.Features != nil {
			f = *r.Features
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID, i, r.TrackID, r.TrackName, r.Artist, popularity, r.ReleaseDate, r.Features != nil,
			f.Danceability, f.Energy, f.Loudness, f.Tempo, f.Valence,
			f.Acousticness, f.Instrumentalness, f.Liveness, f.Speechiness,
		); err != nil {
			return fmt.Errorf("failed to save row %s: %w", r.TrackID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// GetRun loads a run and its rows in their original order.
func (a *Adapter) GetRun(ctx context.Context, id string) (domain.Run, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, artist, created_at, rmse, r2, train_rows, test_rows, feature_columns
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Run{}, domain.ErrNotFound
		}
		return domain.Run{}, fmt.Errorf("failed to load run: %w", err)
	}

	run.Rows, err = a.loadRows(ctx, run.ID)
	if err != nil {
		return domain.Run{}, err
	}
	return run, nil
}

// ListRuns returns runs newest first. An empty artist lists every run;
// otherwise the artist is matched case-insensitively.
func (a *Adapter) ListRuns(ctx context.Context, artist string) ([]domain.Run, error) {
	query := `
		SELECT id, artist, created_at, rmse, r2, train_rows, test_rows, feature_columns
		FROM runs`
	var args []any
	if strings.TrimSpace(artist) != "" {
		query += " WHERE artist = ? COLLATE NOCASE"
		args = append(args, strings.TrimSpace(artist))
	}
	query += " ORDER BY created_at DESC, id ASC"

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := []domain.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	// the single connection must be free before loading rows
	rows.Close()

	for i := range runs {
		runs[i].Rows, err = a.loadRows(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (domain.Run, error) {
	var (
		run                 domain.Run
		createdAt           int64
		rmse, r2            sql.NullFloat64
		trainRows, testRows sql.NullInt64
		featureColumns      sql.NullString
	)
	if err := s.Scan(&run.ID, &run.Artist, &createdAt, &rmse, &r2, &trainRows, &testRows, &featureColumns); err != nil {
		return domain.Run{}, err
	}
	run.CreatedAt = time.Unix(0, createdAt).UTC()

	if rmse.Valid {
		m := &domain.Metrics{
			RMSE:      rmse.Float64,
			R2:        r2.Float64,
			TrainRows: int(trainRows.Int64),
			TestRows:  int(testRows.Int64),
		}
		if featureColumns.Valid && featureColumns.String != "" {
			if err := json.Unmarshal([]byte(featureColumns.String), &m.FeatureColumns); err != nil {
				return domain.Run{}, fmt.Errorf("failed to decode feature columns: %w", err)
			}
		}
		run.Metrics = m
	}
	return run, nil
}

func (a *Adapter) loadRows(ctx context.Context, runID string) ([]domain.TrackFeatureRow, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT track_id, track_name, artist, popularity, release_date, has_features,
			danceability, energy, loudness, tempo, valence, acousticness, instrumentalness, liveness, speechiness
		FROM run_tracks
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run rows: %w", err)
	}
	defer rows.Close()

	out := []domain.TrackFeatureRow{}
	for rows.Next() {
		var (
			r           domain.TrackFeatureRow
			popularity  sql.NullInt64
			releaseDate sql.NullString
			hasFeatures bool
			f           domain.AudioFeatures
		)
		if err := rows.Scan(
			&r.TrackID, &r.TrackName, &r.Artist, &popularity, &releaseDate, &hasFeatures,
			&f.Danceability, &f.Energy, &f.Loudness, &f.Tempo, &f.Valence,
			&f.Acousticness, &f.Instrumentalness, &f.Liveness, &f.Speechiness,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if popularity.Valid {
			r.Popularity = domain.IntPtr(int(popularity.Int64))
		}
		if releaseDate.Valid {
			r.ReleaseDate = releaseDate.String
		}
		if hasFeatures {
			r.Features = &f
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run rows: %w", err)
	}
	return out, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		artist TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		rmse REAL,
		r2 REAL,
		train_rows INTEGER,
		test_rows INTEGER,
		feature_columns TEXT
	);

	CREATE INDEX IF NOT EXISTS runs_artist_idx ON runs (artist COLLATE NOCASE, created_at);

	CREATE TABLE IF NOT EXISTS run_tracks (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		track_id TEXT NOT NULL,
		track_name TEXT NOT NULL,
		artist TEXT NOT NULL,
		popularity INTEGER,
		release_date TEXT,
		has_features INTEGER NOT NULL DEFAULT 0,
		danceability REAL,
		energy REAL,
		loudness REAL,
		tempo REAL,
		valence REAL,
		acousticness REAL,
		instrumentalness REAL,
		liveness REAL,
		speechiness REAL,
		PRIMARY KEY (run_id, position),
		FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
	);
	`
	_, err := a.db.Exec(query)
	return err
}
