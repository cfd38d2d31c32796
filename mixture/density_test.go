package mixture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestGaussianDensity(t *testing.T) {
	tests := []struct {
		name string
		x    *mat.VecDense
		mean *mat.VecDense
		cov  *mat.SymDense
		want float64
	}{
		{
			name: "standard normal at the mean",
			x:    vec(0),
			mean: vec(0),
			cov:  mat.NewSymDense(1, []float64{1}),
			want: 1 / math.Sqrt(2*math.Pi),
		},
		{
			name: "scaled 2d",
			x:    vec(1, 2),
			mean: vec(0, 0),
			cov:  mat.NewSymDense(2, []float64{2, 0, 0, 4}),
			// exp(-0.5·(1/2 + 4/4)) / (2π·sqrt(8))
			want: math.Exp(-0.75) / (2 * math.Pi * math.Sqrt(8)),
		},
		{
			name: "negative determinant is zero",
			x:    vec(0, 0),
			mean: vec(0, 0),
			cov:  mat.NewSymDense(2, []float64{1, 2, 2, 1}),
			want: 0,
		},
		{
			name: "singular is zero",
			x:    vec(0, 0),
			mean: vec(0, 0),
			cov:  mat.NewSymDense(2, []float64{1, 1, 1, 1}),
			want: 0,
		},
		{
			name: "underflow is zero",
			x:    vec(1e3),
			mean: vec(0),
			cov:  mat.NewSymDense(1, []float64{1e-4}),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gaussianDensity(tt.x, tt.mean, tt.cov)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestFactorize_SingularHasNoInverse(t *testing.T) {
	g := factorize(mat.NewSymDense(2, []float64{1, 1, 1, 1}))
	assert.Nil(t, g.inv)

	g = factorize(mat.NewSymDense(2, []float64{2, 0, 0, 2}))
	if assert.NotNil(t, g.inv) {
		assert.InDelta(t, 0.5, g.inv.At(0, 0), 1e-12)
	}
	assert.InDelta(t, 2*math.Pi*2, g.norm, 1e-12)
}
