package forest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// stepData returns 40 rows where y depends only on whether x0 < 0.5.
func stepData() (*mat.Dense, []float64) {
	const n = 40
	x := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x.Set(i, 0, float64(i)/n)
		x.Set(i, 1, float64((i*7)%10))
		if i < n/2 {
			y[i] = 10
		} else {
			y[i] = 20
		}
	}
	return x, y
}

func TestFitStepFunction(t *testing.T) {
	x, y := stepData()
	r := New(WithEstimators(25), WithSeed(42))
	require.NoError(t, r.Fit(x, y))
	assert.Equal(t, 25, r.Estimators())

	low, err := r.Predict([]float64{0.1, 3})
	require.NoError(t, err)
	assert.InDelta(t, 10, low, 1e-9)

	high, err := r.Predict([]float64{0.9, 3})
	require.NoError(t, err)
	assert.InDelta(t, 20, high, 1e-9)

	score, err := r.Score(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1, score, 1e-9)

	imp := r.FeatureImportances()
	require.Len(t, imp, 2)
	assert.InDelta(t, 1, imp[0], 1e-9)
	assert.InDelta(t, 0, imp[1], 1e-9)
}

func TestFitIsDeterministic(t *testing.T) {
	x, y := stepData()
	for i := 0; i < x.RawMatrix().Rows; i++ {
		y[i] += float64(i%3) * 0.5
	}

	a := New(WithEstimators(10), WithSeed(7))
	b := New(WithEstimators(10), WithSeed(7))
	require.NoError(t, a.Fit(x, y))
	require.NoError(t, b.Fit(x, y))

	pa, err := a.PredictBatch(x)
	require.NoError(t, err)
	pb, err := b.PredictBatch(x)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
	assert.Equal(t, a.FeatureImportances(), b.FeatureImportances())
}

func TestMaxDepthLimitsTree(t *testing.T) {
	const n = 32
	x := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x.Set(i, 0, float64(i))
		y[i] = float64(i)
	}

	r := New(WithEstimators(1), WithSeed(1), WithMaxDepth(1))
	require.NoError(t, r.Fit(x, y))
	assert.LessOrEqual(t, len(r.trees[0].nodes), 3)

	deep := New(WithEstimators(1), WithSeed(1))
	require.NoError(t, deep.Fit(x, y))
	assert.Greater(t, len(deep.trees[0].nodes), 3)
}

func TestConstantTargetNeverSplits(t *testing.T) {
	x, _ := stepData()
	y := make([]float64, x.RawMatrix().Rows)
	for i := range y {
		y[i] = 5
	}

	r := New(WithEstimators(3))
	require.NoError(t, r.Fit(x, y))
	assert.Equal(t, []float64{0, 0}, r.FeatureImportances())

	v, err := r.Predict([]float64{0.3, 1})
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
}

func TestErrors(t *testing.T) {
	x, y := stepData()

	_, err := New().Predict([]float64{1, 2})
	assert.ErrorIs(t, err, ErrNotFitted)
	assert.Nil(t, New().FeatureImportances())

	assert.ErrorIs(t, New().Fit(x, y[:3]), ErrDimensionMismatch)
	assert.ErrorIs(t, New().Fit(x, nil), ErrEmptyInput)
	assert.ErrorIs(t, New(WithEstimators(0)).Fit(x, y), ErrInvalidParams)
	assert.ErrorIs(t, New(WithMinSamplesSplit(1)).Fit(x, y), ErrInvalidParams)
	assert.ErrorIs(t, New(WithMinSamplesLeaf(0)).Fit(x, y), ErrInvalidParams)
	assert.ErrorIs(t, New(WithMaxDepth(-1)).Fit(x, y), ErrInvalidParams)

	r := New(WithEstimators(2))
	require.NoError(t, r.Fit(x, y))
	_, err = r.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = r.Score(x, y[:5])
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
