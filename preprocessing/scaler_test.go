package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/igmn/pkg/errors"
)

func TestMinMaxScaler_FitTransform(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		0, 10,
		5, 20,
		10, 30,
	})

	scaler := NewMinMaxScalerDefault()
	got, err := scaler.FitTransform(X)
	require.NoError(t, err)

	want := mat.NewDense(3, 2, []float64{
		0, 0,
		0.5, 0.5,
		1, 1,
	})
	assert.True(t, mat.EqualApprox(got, want, 1e-12), "got %v", mat.Formatted(got))
	assert.Equal(t, []float64{10, 20}, scaler.DataRange())
}

func TestMinMaxScaler_InverseTransform(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		-1, 2,
		0, 4,
		3, 8,
	})

	scaler, err := NewMinMaxScaler(-1, 1)
	require.NoError(t, err)

	scaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	back, err := scaler.InverseTransform(scaled)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(back, X, 1e-12))
}

func TestMinMaxScaler_ConstantFeatureHasUnitRange(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{
		3, 1,
		3, 2,
	})

	scaler := NewMinMaxScalerDefault()
	require.NoError(t, scaler.Fit(X))
	assert.Equal(t, []float64{1, 1}, scaler.DataRange())
}

func TestMinMaxScaler_PartialFitWidensRange(t *testing.T) {
	scaler := NewMinMaxScalerDefault()
	require.NoError(t, scaler.PartialFit(mat.NewDense(1, 1, []float64{2})))
	require.NoError(t, scaler.PartialFit(mat.NewDense(2, 1, []float64{-3, 7})))

	assert.Equal(t, []float64{-3}, scaler.DataMin)
	assert.Equal(t, []float64{7}, scaler.DataMax)
	assert.Equal(t, []float64{10}, scaler.DataRange())
}

func TestMinMaxScaler_Errors(t *testing.T) {
	_, err := NewMinMaxScaler(1, 1)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	scaler := NewMinMaxScalerDefault()
	_, err = scaler.Transform(mat.NewDense(1, 1, []float64{1}))
	assert.Error(t, err)

	require.NoError(t, scaler.Fit(mat.NewDense(1, 2, []float64{1, 2})))
	_, err = scaler.Transform(mat.NewDense(1, 3, []float64{1, 2, 3}))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	err = scaler.PartialFit(&mat.Dense{})
	assert.Error(t, err)
}

func TestMinMaxScaler_PartialFitRejectsBatchAtomically(t *testing.T) {
	scaler := NewMinMaxScalerDefault()
	require.NoError(t, scaler.PartialFit(mat.NewDense(2, 1, []float64{0, 1})))

	err := scaler.PartialFit(mat.NewDense(3, 1, []float64{-5, 9, math.NaN()}))
	var valueErr *errors.ValueError
	require.True(t, errors.As(err, &valueErr))
	assert.Equal(t, []float64{0}, scaler.DataMin)
	assert.Equal(t, []float64{1}, scaler.DataMax)

	fresh := NewMinMaxScalerDefault()
	require.Error(t, fresh.PartialFit(mat.NewDense(1, 2, []float64{1, math.Inf(1)})))
	assert.False(t, fresh.IsFitted())
	assert.Zero(t, fresh.NFeatures)
}

func TestMinMaxScaler_ConstantFeatures(t *testing.T) {
	scaler := NewMinMaxScalerDefault()
	require.NoError(t, scaler.PartialFit(mat.NewDense(1, 3, []float64{1, 2, 3})))
	assert.Equal(t, []int{0, 1, 2}, scaler.ConstantFeatures())

	require.NoError(t, scaler.PartialFit(mat.NewDense(1, 3, []float64{1, 5, 0})))
	assert.Equal(t, []int{0}, scaler.ConstantFeatures())
}
