package mixture

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/igmn/core/parallel"
	"github.com/YuminosukeSato/igmn/pkg/errors"
	"github.com/YuminosukeSato/igmn/pkg/log"
)

// conditional holds the factors of p(b | a) for one component when the first
// alpha dimensions are observed:
//
//	E[b | a] = μB + ΣABᵀ·ΣAA⁻¹·(a − μA)
type conditional struct {
	meanA *mat.VecDense
	meanB *mat.VecDense
	// gauss evaluates N(a; μA, ΣAA).
	gauss gaussian
	// gain is ΣABᵀ·ΣAA⁻¹ (β×α), nil when ΣAA is singular.
	gain *mat.Dense
}

func newConditional(c *component, alpha int) conditional {
	d := c.mean.Len()
	beta := d - alpha

	covAA := c.cov.SliceSym(0, alpha)
	covAB := mat.NewDense(alpha, beta, nil)
	for i := 0; i < alpha; i++ {
		for k := 0; k < beta; k++ {
			covAB.Set(i, k, c.cov.At(i, alpha+k))
		}
	}

	cond := conditional{
		meanA: mat.VecDenseCopyOf(c.mean.SliceVec(0, alpha)),
		meanB: mat.VecDenseCopyOf(c.mean.SliceVec(alpha, d)),
		gauss: factorize(covAA),
	}
	if cond.gauss.inv != nil {
		cond.gain = mat.NewDense(beta, alpha, nil)
		cond.gain.Mul(covAB.T(), cond.gauss.inv)
	}
	return cond
}

// estimate returns E[b | a] for this component. With a singular ΣAA it is μB.
func (c conditional) estimate(a mat.Vector) *mat.VecDense {
	out := mat.VecDenseCopyOf(c.meanB)
	if c.gain == nil {
		return out
	}

	var diff mat.VecDense
	diff.SubVec(a, c.meanA)

	var corr mat.VecDense
	corr.MulVec(c.gain, &diff)
	out.AddVec(out, &corr)
	return out
}

// recallFactors returns the conditional factors of every component for the
// given prefix length. The caller holds at least the read lock.
func (m *IGMN) recallFactors(alpha int) []conditional {
	if factors, ok := m.cache.get(alpha); ok && len(factors) == len(m.components) {
		return factors
	}

	factors := make([]conditional, len(m.components))
	parallel.For(len(factors), m.parallelThreshold, func(j int) {
		factors[j] = newConditional(m.components[j], alpha)
	})
	m.cache.add(alpha, factors)

	m.logger.Debug("recall factors computed",
		log.ObservedDimsKey, alpha,
		log.ComponentsKey, len(factors),
	)
	for j, f := range factors {
		if f.gain == nil {
			m.logger.Debug("observed block is singular, recalling the component mean",
				log.ObservedDimsKey, alpha,
				log.ComponentIndexKey, j,
				"error", errors.ErrSingularMatrix,
			)
		}
	}
	return factors
}

// Recall estimates the D−len(x) trailing dimensions of a sample whose first
// len(x) dimensions are x. The estimate is the posterior-weighted mean of the
// per-component conditional expectations.
func (m *IGMN) Recall(x mat.Vector) (out *mat.VecDense, err error) {
	defer errors.Recover(&err, "IGMN.Recall")

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.recall("IGMN.Recall", x)
}

// recall is Recall without locking.
func (m *IGMN) recall(op string, x mat.Vector) (*mat.VecDense, error) {
	if x == nil {
		return nil, errors.NewValueError(op, "input vector is nil")
	}
	alpha := x.Len()
	if alpha < 1 || alpha >= m.dimension {
		return nil, errors.NewDimensionError(op, m.dimension-1, alpha, 1)
	}
	if err := errors.CheckVector(op, x); err != nil {
		return nil, err
	}
	if len(m.components) == 0 {
		return nil, errors.NewNotFittedError("IGMN", "Recall")
	}

	factors := m.recallFactors(alpha)

	weights := make([]float64, len(factors))
	estimates := make([]*mat.VecDense, len(factors))
	for j, f := range factors {
		weights[j] = f.gauss.density(x, f.meanA) + m.eta
		estimates[j] = f.estimate(x)
	}

	sum := floats.Sum(weights)
	if sum > 0 && errors.IsFinite(sum) {
		floats.Scale(1/sum, weights)
	} else {
		for j := range weights {
			weights[j] = 1 / float64(len(weights))
		}
	}

	out := mat.NewVecDense(m.dimension-alpha, nil)
	for j, est := range estimates {
		out.AddScaledVec(out, weights[j], est)
	}
	return out, nil
}

// Classify recalls the trailing dimensions of x and returns them as a one-hot
// vector marking the largest entry.
func (m *IGMN) Classify(x mat.Vector) (out *mat.VecDense, err error) {
	defer errors.Recover(&err, "IGMN.Classify")

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.classify("IGMN.Classify", x)
}

func (m *IGMN) classify(op string, x mat.Vector) (*mat.VecDense, error) {
	est, err := m.recall(op, x)
	if err != nil {
		return nil, err
	}
	return oneHot(est.Len(), floats.MaxIdx(est.RawVector().Data)), nil
}

func oneHot(n, idx int) *mat.VecDense {
	v := mat.NewVecDense(n, nil)
	v.SetVec(idx, 1)
	return v
}
