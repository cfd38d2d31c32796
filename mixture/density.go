package mixture

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/igmn/pkg/errors"
)

// gaussian holds what is needed to evaluate N(·; μ, Σ) for a fixed Σ.
type gaussian struct {
	// inv is Σ⁻¹, nil when Σ is exactly singular.
	inv *mat.Dense
	// norm is (2π)^(n/2)·sqrt(det Σ), the density denominator.
	norm float64
}

// factorize inverts cov and computes the density denominator. An
// ill-conditioned but invertible covariance is kept; an exactly singular one
// leaves inv nil and every density under it evaluates to 0.
func factorize(cov mat.Symmetric) gaussian {
	n := cov.SymmetricDim()
	g := gaussian{
		norm: math.Pow(2*math.Pi, float64(n)/2) * math.Sqrt(mat.Det(cov)),
	}

	inv := mat.NewDense(n, n, nil)
	if err := inv.Inverse(cov); err != nil {
		// gonum reports exact singularity as an infinite condition number.
		cond, ok := err.(mat.Condition)
		if !ok || math.IsInf(float64(cond), 1) {
			return g
		}
	}
	g.inv = inv
	return g
}

// density evaluates exp(-½(x−μ)ᵀΣ⁻¹(x−μ)) / norm. NaN and ±Inf results
// (negative determinant, overflow) are reported as 0.
func (g gaussian) density(x, mean mat.Vector) float64 {
	if g.inv == nil {
		return 0
	}

	diff := mat.NewVecDense(x.Len(), nil)
	diff.SubVec(x, mean)

	var z mat.VecDense
	z.MulVec(g.inv, diff)

	return errors.FiniteOrZero(math.Exp(-0.5*mat.Dot(diff, &z)) / g.norm)
}

// gaussianDensity is the one-shot form of factorize + density.
func gaussianDensity(x, mean mat.Vector, cov mat.Symmetric) float64 {
	return factorize(cov).density(x, mean)
}
