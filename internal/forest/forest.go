// Package forest implements a bagged ensemble of CART regression trees.
//
// Trees are grown on bootstrap samples, every feature is considered at each
// split (visited in a random order), and splits minimize squared error.
// Given the same seed, Fit produces the same forest.
package forest

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNotFitted         = errors.New("forest: model is not fitted")
	ErrEmptyInput        = errors.New("forest: empty training data")
	ErrDimensionMismatch = errors.New("forest: dimension mismatch")
	ErrInvalidParams     = errors.New("forest: invalid parameters")
)

const defaultEstimators = 100

// Option configures a Regressor.
type Option func(*Regressor)

func WithEstimators(n int) Option {
	return func(r *Regressor) { r.nEstimators = n }
}

func WithSeed(seed uint64) Option {
	return func(r *Regressor) { r.seed = seed }
}

// WithMaxDepth limits tree depth. Zero means unlimited.
func WithMaxDepth(d int) Option {
	return func(r *Regressor) { r.maxDepth = d }
}

func WithMinSamplesSplit(n int) Option {
	return func(r *Regressor) { r.minSamplesSplit = n }
}

func WithMinSamplesLeaf(n int) Option {
	return func(r *Regressor) { r.minSamplesLeaf = n }
}

// Regressor is a random forest for a single numeric target.
type Regressor struct {
	nEstimators     int
	seed            uint64
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int

	nFeatures   int
	trees       []*tree
	importances []float64
}

// New returns an unfitted Regressor.
func New(opts ...Option) *Regressor {
	r := &Regressor{
		nEstimators:     defaultEstimators,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Regressor) validate() error {
	switch {
	case r.nEstimators < 1:
		return fmt.Errorf("%w: estimators must be positive, got %d", ErrInvalidParams, r.nEstimators)
	case r.maxDepth < 0:
		return fmt.Errorf("%w: max depth must not be negative, got %d", ErrInvalidParams, r.maxDepth)
	case r.minSamplesSplit < 2:
		return fmt.Errorf("%w: min samples split must be at least 2, got %d", ErrInvalidParams, r.minSamplesSplit)
	case r.minSamplesLeaf < 1:
		return fmt.Errorf("%w: min samples leaf must be at least 1, got %d", ErrInvalidParams, r.minSamplesLeaf)
	}
	return nil
}

// Fit grows the ensemble on X (rows are samples) and y.
func (r *Regressor) Fit(X *mat.Dense, y []float64) error {
	if err := r.validate(); err != nil {
		return err
	}
	if X == nil || len(y) == 0 {
		return ErrEmptyInput
	}
	rows, cols := X.Dims()
	if rows != len(y) {
		return fmt.Errorf("%w: %d rows but %d targets", ErrDimensionMismatch, rows, len(y))
	}

	samples := make([][]float64, rows)
	for i := range samples {
		samples[i] = X.RawRowView(i)
	}

	rng := rand.New(rand.NewPCG(r.seed, r.seed^0xda3e39cb94b95bdb))
	b := &builder{
		x:               samples,
		y:               y,
		nFeatures:       cols,
		maxDepth:        r.maxDepth,
		minSamplesSplit: r.minSamplesSplit,
		minSamplesLeaf:  r.minSamplesLeaf,
		rng:             rng,
	}

	trees := make([]*tree, 0, r.nEstimators)
	total := make([]float64, cols)
	for t := 0; t < r.nEstimators; t++ {
		idx := make([]int, rows)
		for i := range idx {
			idx[i] = rng.IntN(rows)
		}

		b.importance = make([]float64, cols)
		tr := &tree{}
		b.grow(tr, idx, 0)
		trees = append(trees, tr)

		if sum := floats.Sum(b.importance); sum > 0 {
			floats.Scale(1/sum, b.importance)
			floats.Add(total, b.importance)
		}
	}

	if sum := floats.Sum(total); sum > 0 {
		floats.Scale(1/sum, total)
	}

	r.nFeatures = cols
	r.trees = trees
	r.importances = total
	return nil
}

// Predict returns the mean of the per-tree predictions for one sample.
func (r *Regressor) Predict(x []float64) (float64, error) {
	if len(r.trees) == 0 {
		return 0, ErrNotFitted
	}
	if len(x) != r.nFeatures {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrDimensionMismatch, len(x), r.nFeatures)
	}

	var sum float64
	for _, t := range r.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(r.trees)), nil
}

// PredictBatch predicts every row of X.
func (r *Regressor) PredictBatch(X *mat.Dense) ([]float64, error) {
	rows, _ := X.Dims()
	out := make([]float64, rows)
	for i := range out {
		v, err := r.Predict(X.RawRowView(i))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Score returns the coefficient of determination of the predictions on X.
func (r *Regressor) Score(X *mat.Dense, y []float64) (float64, error) {
	rows, _ := X.Dims()
	if rows != len(y) {
		return 0, fmt.Errorf("%w: %d rows but %d targets", ErrDimensionMismatch, rows, len(y))
	}
	if rows == 0 {
		return 0, ErrEmptyInput
	}

	pred, err := r.PredictBatch(X)
	if err != nil {
		return 0, err
	}

	if rows == 1 || stat.Variance(y, nil) == 0 {
		if floats.Equal(pred, y) {
			return 1, nil
		}
		return 0, nil
	}
	return stat.RSquaredFrom(pred, y, nil), nil
}

// FeatureImportances returns impurity-decrease importances summing to one,
// or all zeros when no tree ever split. Nil before Fit.
func (r *Regressor) FeatureImportances() []float64 {
	if r.importances == nil {
		return nil
	}
	out := make([]float64, len(r.importances))
	copy(out, r.importances)
	return out
}

// Estimators returns the number of fitted trees.
func (r *Regressor) Estimators() int {
	return len(r.trees)
}
