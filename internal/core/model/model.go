// Package model fits a tree-ensemble regressor that predicts a numeric column
// (popularity by default) from audio features.
package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ewilliams-labs/popularity/internal/core/domain"
)

// MinRows is the smallest dataset that can be split into train and test.
const MinRows = 2

// DefaultFeatureColumns are used when Options.FeatureColumns is empty.
var DefaultFeatureColumns = []string{
	domain.ColumnDanceability,
	domain.ColumnEnergy,
	domain.ColumnValence,
	domain.ColumnTempo,
	domain.ColumnAcousticness,
}

// Options configures Train. Zero values fall back to DefaultOptions.
type Options struct {
	FeatureColumns  []string
	TargetColumn    string
	TestFraction    float64
	Seed            int64
	Trees           int
	MaxDepth        int // 0 grows until leaves are pure
	MinSamplesSplit int
	MinSamplesLeaf  int
}

func DefaultOptions() Options {
	return Options{
		FeatureColumns:  DefaultFeatureColumns,
		TargetColumn:    domain.ColumnPopularity,
		TestFraction:    0.2,
		Seed:            42,
		Trees:           150,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if len(o.FeatureColumns) == 0 {
		o.FeatureColumns = d.FeatureColumns
	}
	if o.TargetColumn == "" {
		o.TargetColumn = d.TargetColumn
	}
	if o.TestFraction <= 0 || o.TestFraction >= 1 {
		o.TestFraction = d.TestFraction
	}
	if o.Trees <= 0 {
		o.Trees = d.Trees
	}
	if o.MinSamplesSplit < 2 {
		o.MinSamplesSplit = d.MinSamplesSplit
	}
	if o.MinSamplesLeaf < 1 {
		o.MinSamplesLeaf = d.MinSamplesLeaf
	}
	return o
}

// TrainedModel is a fitted regressor with the columns it was trained on and
// its held-out metrics.
type TrainedModel struct {
	FeatureColumns []string
	TargetColumn   string
	Metrics        domain.Metrics

	forest *forest
}

// Predict estimates the target for row. It returns a SchemaError naming the
// first feature the row is missing.
func (m *TrainedModel) Predict(row domain.TrackFeatureRow) (float64, error) {
	x := make([]float64, len(m.FeatureColumns))
	for i, c := range m.FeatureColumns {
		v, ok := row.Value(c)
		if !ok {
			return 0, &domain.SchemaError{Column: c}
		}
		x[i] = v
	}
	return m.forest.predict(x), nil
}

// Train splits ds with a seeded shuffle, fits the ensemble on the training
// part and reports RMSE and R² on the held-out part. Rows missing any
// requested column are skipped. Identical inputs and seed give identical
// models and metrics.
func Train(ds domain.CleanedDataset, opts Options) (*TrainedModel, error) {
	opts = opts.withDefaults()
	for _, c := range opts.FeatureColumns {
		if !domain.IsFeatureColumn(c) {
			return nil, &domain.SchemaError{Column: c}
		}
	}
	if !domain.IsColumn(opts.TargetColumn) {
		return nil, &domain.SchemaError{Column: opts.TargetColumn}
	}

	x, y := matrix(ds.Rows, opts.FeatureColumns, opts.TargetColumn)
	if len(y) < MinRows {
		return nil, &domain.InsufficientDataError{Rows: len(y), Min: MinRows}
	}

	// #nosec G404 -- deterministic split and bootstrap, not security-sensitive
	rng := rand.New(rand.NewSource(opts.Seed))
	trainIdx, testIdx := split(len(y), opts.TestFraction, rng)

	f := fitForest(pick(x, trainIdx), pickValues(y, trainIdx), opts.Trees, treeConfig{
		maxDepth:        opts.MaxDepth,
		minSamplesSplit: opts.MinSamplesSplit,
		minSamplesLeaf:  opts.MinSamplesLeaf,
	}, rng)

	actual := pickValues(y, testIdx)
	predicted := make([]float64, len(testIdx))
	for i, row := range pick(x, testIdx) {
		predicted[i] = f.predict(row)
	}

	return &TrainedModel{
		FeatureColumns: append([]string(nil), opts.FeatureColumns...),
		TargetColumn:   opts.TargetColumn,
		Metrics: domain.Metrics{
			RMSE:           rmse(predicted, actual),
			R2:             rSquared(predicted, actual),
			TrainRows:      len(trainIdx),
			TestRows:       len(testIdx),
			FeatureColumns: append([]string(nil), opts.FeatureColumns...),
		},
		forest: f,
	}, nil
}

func matrix(rows []domain.TrackFeatureRow, features []string, target string) ([][]float64, []float64) {
	x := make([][]float64, 0, len(rows))
	y := make([]float64, 0, len(rows))
rows:
	for _, r := range rows {
		tv, ok := r.Value(target)
		if !ok {
			continue
		}
		vec := make([]float64, len(features))
		for i, c := range features {
			v, ok := r.Value(c)
			if !ok {
				continue rows
			}
			vec[i] = v
		}
		x = append(x, vec)
		y = append(y, tv)
	}
	return x, y
}

// split returns shuffled train and test indices. The test side gets
// ceil(n*fraction) rows and both sides keep at least one row.
func split(n int, fraction float64, rng *rand.Rand) ([]int, []int) {
	perm := rng.Perm(n)
	nTest := int(math.Ceil(float64(n) * fraction))
	nTest = max(1, min(nTest, n-1))
	return perm[nTest:], perm[:nTest]
}

func pick(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = x[j]
	}
	return out
}

func pickValues(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}

func rmse(predicted, actual []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	return floats.Distance(predicted, actual, 2) / math.Sqrt(float64(len(actual)))
}

// rSquared is 0 when it is undefined (fewer than two held-out rows or a
// constant held-out target).
func rSquared(predicted, actual []float64) float64 {
	if len(actual) < 2 || stat.Variance(actual, nil) == 0 {
		return 0
	}
	r2 := stat.RSquaredFrom(predicted, actual, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		return 0
	}
	return r2
}
