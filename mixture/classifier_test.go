package mixture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/igmn/core/model"
	"github.com/YuminosukeSato/igmn/drift"
	"github.com/YuminosukeSato/igmn/pkg/errors"
	"github.com/YuminosukeSato/igmn/pkg/log"
)

// twoBlobs returns n samples around (0, 0) labelled 0 followed by n samples
// around (5, 5) labelled 1.
func twoBlobs(t *testing.T, n int, seed uint64) (*mat.Dense, *mat.Dense) {
	t.Helper()
	a := gaussianSamples(t, n, []float64{0, 0}, []float64{0.25, 0.25}, seed)
	b := gaussianSamples(t, n, []float64{5, 5}, []float64{0.25, 0.25}, seed+100)

	X := mat.NewDense(2*n, 2, nil)
	y := mat.NewDense(2*n, 1, nil)
	for i := 0; i < n; i++ {
		X.SetRow(i, a.RawRowView(i))
		X.SetRow(n+i, b.RawRowView(i))
		y.Set(n+i, 0, 1)
	}
	return X, y
}

func quietClassifier(t *testing.T, opts ...ClassifierOption) *Classifier {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelError)
	c, err := NewClassifier(2, 2, append([]ClassifierOption{WithClassifierLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestClassifier_FitPredict(t *testing.T) {
	X, y := twoBlobs(t, 100, 1)
	Xtest, ytest := twoBlobs(t, 50, 2)

	c := quietClassifier(t)
	require.False(t, c.IsFitted())
	require.NoError(t, c.Fit(X, y))
	assert.True(t, c.IsFitted())
	assert.Equal(t, 200, c.NIterations())

	score, err := c.Score(Xtest, ytest)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score, 0.95)

	pred, err := c.Predict(Xtest)
	require.NoError(t, err)
	rows, cols := pred.Dims()
	assert.Equal(t, 100, rows)
	assert.Equal(t, 1, cols)
}

func TestClassifier_PredictProba(t *testing.T) {
	X, y := twoBlobs(t, 100, 3)
	c := quietClassifier(t)
	require.NoError(t, c.Fit(X, y))

	proba, err := c.PredictProba(mat.NewDense(2, 2, []float64{0, 0, 5, 5}))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		p := mat.Row(nil, i, proba)
		assert.InDelta(t, 1.0, floats.Sum(p), 1e-9)
		for _, v := range p {
			assert.GreaterOrEqual(t, v, 0.0)
		}
		assert.Equal(t, i, floats.MaxIdx(p))
	}
}

func TestClassifier_FeatureRangeFromWarmupRows(t *testing.T) {
	X, y := twoBlobs(t, 20, 4)
	c := quietClassifier(t)
	require.Nil(t, c.Model())

	require.NoError(t, c.PartialFit(X, y, []int{0, 1}))

	dataRange := c.Model().DataRange()
	require.Len(t, dataRange, 4)
	assert.Greater(t, dataRange[0], 3.0)
	assert.Equal(t, []float64{1, 1}, dataRange[2:])
}

func TestClassifier_SingleRowStreamDerivesRangeFromWarmup(t *testing.T) {
	X, y := twoBlobs(t, 100, 9)
	c := quietClassifier(t)

	// one row per batch, classes alternating
	batches := make(chan *model.Batch, 200)
	truth := make([]float64, 0, 200)
	for k := 0; k < 100; k++ {
		for _, i := range []int{k, 100 + k} {
			batches <- &model.Batch{X: X.Slice(i, i+1, 0, 2), Y: y.Slice(i, i+1, 0, 1)}
			truth = append(truth, y.At(i, 0))
		}
	}
	close(batches)

	var preds []float64
	for p := range c.FitPredictStream(context.Background(), batches) {
		preds = append(preds, p.At(0, 0))
	}
	require.Len(t, preds, 200)

	for i := 0; i < DefaultWarmupLimit; i++ {
		assert.Equal(t, -1.0, preds[i], "row %d is still in the warm-up", i)
	}
	assert.Equal(t, 200, c.NIterations())

	dataRange := c.Model().DataRange()
	assert.Greater(t, dataRange[0], 4.0)
	assert.Greater(t, dataRange[1], 4.0)
	assert.LessOrEqual(t, c.Model().Size(), 8)

	correct := 0
	for i := 100; i < 200; i++ {
		if preds[i] == truth[i] {
			correct++
		}
	}
	assert.GreaterOrEqual(t, correct, 85)
}

func TestClassifier_PartialFitWaitsForWarmup(t *testing.T) {
	X, y := twoBlobs(t, 10, 10)
	c := quietClassifier(t, WithWarmupLimit(15))

	require.NoError(t, c.PartialFit(X.Slice(0, 8, 0, 2), y.Slice(0, 8, 0, 1), nil))
	assert.Nil(t, c.Model())
	assert.False(t, c.IsFitted())
	_, err := c.Predict(X)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	require.NoError(t, c.PartialFit(X.Slice(8, 20, 0, 2), y.Slice(8, 20, 0, 1), nil))
	require.NotNil(t, c.Model())
	assert.Equal(t, 20, c.NIterations())

	// Fit does not wait for the limit
	require.NoError(t, c.Fit(X.Slice(0, 4, 0, 2), y.Slice(0, 4, 0, 1)))
	assert.Equal(t, 4, c.NIterations())

	_, err = NewClassifier(2, 2, WithWarmupLimit(0))
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestClassifier_FixedFeatureRange(t *testing.T) {
	c := quietClassifier(t, WithFeatureRange([]float64{8, 8}), WithModelOptions(WithTau(0.2)))
	require.NotNil(t, c.Model())
	assert.Equal(t, []float64{8, 8, 1, 1}, c.Model().DataRange())
	assert.Equal(t, 0.2, c.Model().Config().Tau)

	_, err := NewClassifier(2, 2, WithFeatureRange([]float64{1}))
	assert.Error(t, err)
}

func TestClassifier_Errors(t *testing.T) {
	_, err := NewClassifier(0, 2)
	assert.Error(t, err)
	_, err = NewClassifier(2, 1)
	assert.Error(t, err)

	c := quietClassifier(t)

	_, err = c.Predict(mat.NewDense(1, 2, nil))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	X, y := twoBlobs(t, 5, 5)
	require.NoError(t, c.Fit(X, y))

	_, err = c.Predict(mat.NewDense(1, 3, nil))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	err = c.PartialFit(X, mat.NewDense(10, 1, []float64{0, 1, 2, 0, 0, 0, 0, 0, 0, 0}), nil)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	err = c.PartialFit(X, y, []int{0, 7})
	assert.Error(t, err)

	err = c.PartialFit(X, nil, nil)
	assert.Error(t, err)
}

// driftOnCall reports a drift on the n-th update.
type driftOnCall struct {
	n, calls, resets int
}

func (d *driftOnCall) Update(correct bool) drift.Result {
	d.calls++
	return drift.Result{Drift: d.calls == d.n}
}

func (d *driftOnCall) Reset() { d.resets++ }

func TestClassifier_FitPredictStream(t *testing.T) {
	X, y := twoBlobs(t, 40, 6)
	detector := &driftOnCall{n: -1}
	c := quietClassifier(t, WithDriftDetector(detector), WithFeatureRange([]float64{8, 8}))

	batches := make(chan *model.Batch, 4)
	for _, idx := range [][2]int{{0, 20}, {40, 60}, {20, 40}, {60, 80}} {
		batches <- &model.Batch{
			X: X.Slice(idx[0], idx[1], 0, 2),
			Y: y.Slice(idx[0], idx[1], 0, 1),
		}
	}
	close(batches)

	var preds []mat.Matrix
	for p := range c.FitPredictStream(context.Background(), batches) {
		preds = append(preds, p)
	}
	require.Len(t, preds, 4)

	// nothing learned before the first batch
	for i := 0; i < 20; i++ {
		assert.Equal(t, -1.0, preds[0].At(i, 0))
	}
	// the last two batches come from classes seen before
	for _, b := range []struct {
		pred  mat.Matrix
		label float64
	}{{preds[2], 0}, {preds[3], 1}} {
		correct := 0
		for i := 0; i < 20; i++ {
			if b.pred.At(i, 0) == b.label {
				correct++
			}
		}
		assert.GreaterOrEqual(t, correct, 18)
	}

	// only predictions of a fitted model reach the detector
	assert.Equal(t, 60, detector.calls)
	assert.Equal(t, 80, c.NIterations())
}

func TestClassifier_DriftResetsModel(t *testing.T) {
	X, y := twoBlobs(t, 10, 7)
	detector := &driftOnCall{n: 5}
	c := quietClassifier(t, WithDriftDetector(detector))

	batches := make(chan *model.Batch, 2)
	batches <- &model.Batch{X: X.Slice(0, 20, 0, 2), Y: y.Slice(0, 20, 0, 1)}
	batches <- &model.Batch{X: X.Slice(0, 20, 0, 2), Y: y.Slice(0, 20, 0, 1)}
	close(batches)

	for range c.FitPredictStream(context.Background(), batches) {
	}

	// the drift on the second batch dropped the first batch
	assert.Equal(t, 20, c.NIterations())
	assert.Equal(t, 0, detector.resets)
}

func TestClassifier_WorksWithDDM(t *testing.T) {
	X, y := twoBlobs(t, 30, 8)
	c := quietClassifier(t, WithDriftDetector(drift.NewDDM(drift.WithMinNumInstances(5))))

	batches := make(chan *model.Batch, 3)
	for i := 0; i < 3; i++ {
		batches <- &model.Batch{X: X, Y: y}
	}
	close(batches)

	n := 0
	for range c.FitPredictStream(context.Background(), batches) {
		n++
	}
	assert.Equal(t, 3, n)
	assert.True(t, c.IsFitted())
}
