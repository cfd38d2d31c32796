package mixture

import (
	"gonum.org/v1/gonum/mat"
)

// component is one Gaussian of the mixture. All of its statistics live in
// the same record so a component exists with all of them or not at all.
type component struct {
	prior float64
	mean  *mat.VecDense
	cov   *mat.SymDense
	sp    float64 // accumulated posterior
	age   int
}

// newComponent centers a component on x with a copy of initialCov.
// prior is left unnormalized until the next updatePriors.
func newComponent(x mat.Vector, initialCov *mat.SymDense) *component {
	mean := mat.NewVecDense(x.Len(), nil)
	mean.CopyVec(x)

	cov := mat.NewSymDense(initialCov.SymmetricDim(), nil)
	cov.CopySym(initialCov)

	return &component{
		prior: 1,
		mean:  mean,
		cov:   cov,
		sp:    1,
		age:   1,
	}
}

// update applies one recursive estimation step with responsibility post:
//
//	w  = post / sp
//	μ' = μ + w(x − μ)
//	Σ' = Σ − ΔΔᵀ + w(rrᵀ − Σ),  Δ = μ' − μ, r = x − μ'
func (c *component) update(x mat.Vector, post float64) {
	c.age++
	c.sp += post
	w := post / c.sp

	old := mat.VecDenseCopyOf(c.mean)

	var step mat.VecDense
	step.SubVec(x, old)
	c.mean.AddScaledVec(old, w, &step)

	// Δ is taken from the stored mean rather than reused from step.
	var shift mat.VecDense
	shift.SubVec(c.mean, old)

	var residual mat.VecDense
	residual.SubVec(x, c.mean)

	c.cov.ScaleSym(1-w, c.cov)
	c.cov.SymRankOne(c.cov, -1, &shift)
	c.cov.SymRankOne(c.cov, w, &residual)
}

// ComponentSnapshot is a deep copy of one component's statistics.
type ComponentSnapshot struct {
	Prior                float64
	Mean                 []float64
	Covariance           *mat.SymDense
	AccumulatedPosterior float64
	Age                  int
}

func (c *component) snapshot() ComponentSnapshot {
	cov := mat.NewSymDense(c.cov.SymmetricDim(), nil)
	cov.CopySym(c.cov)

	return ComponentSnapshot{
		Prior:                c.prior,
		Mean:                 mat.Col(nil, 0, c.mean),
		Covariance:           cov,
		AccumulatedPosterior: c.sp,
		Age:                  c.age,
	}
}
