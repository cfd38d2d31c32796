package mixture

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/YuminosukeSato/igmn/pkg/log"
)

// quietModel builds a model whose logs go to an in-memory logger.
func quietModel(t *testing.T, dataRange []float64, opts ...Option) (*IGMN, *log.TestLogger) {
	t.Helper()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	m, err := NewIGMN(dataRange, append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return m, logger
}

// gaussianSamples draws n rows from N(mu, diag(variance)).
func gaussianSamples(t *testing.T, n int, mu, variance []float64, seed uint64) *mat.Dense {
	t.Helper()
	d := len(mu)
	cov := mat.NewSymDense(d, nil)
	for i, v := range variance {
		cov.SetSym(i, i, v)
	}
	dist, ok := distmv.NewNormal(mu, cov, rand.NewPCG(seed, seed+1))
	require.True(t, ok)

	out := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		out.SetRow(i, dist.Rand(nil))
	}
	return out
}

// withComponents replaces the model state with hand-built components.
func withComponents(m *IGMN, comps ...*component) {
	m.components = comps
	m.SetFitted()
}

func vec(values ...float64) *mat.VecDense {
	return mat.NewVecDense(len(values), values)
}

func row(X mat.Matrix, i int) *mat.VecDense {
	_, c := X.Dims()
	v := mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		v.SetVec(j, X.At(i, j))
	}
	return v
}

// explodingVector panics on element access.
type explodingVector struct{ n int }

func (v explodingVector) Dims() (int, int)    { return v.n, 1 }
func (v explodingVector) At(i, j int) float64 { panic("boom") }
func (v explodingVector) T() mat.Matrix       { return mat.Transpose{Matrix: v} }
func (v explodingVector) Len() int            { return v.n }
func (v explodingVector) AtVec(i int) float64 { panic("boom") }
