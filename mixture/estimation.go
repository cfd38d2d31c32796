package mixture

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/igmn/core/parallel"
	"github.com/YuminosukeSato/igmn/pkg/errors"
	"github.com/YuminosukeSato/igmn/pkg/log"
)

// componentLikelihood returns N(x; μj, Σj) + eta and the density denominator
// of component j.
func (m *IGMN) componentLikelihood(j int, x mat.Vector) (float64, float64) {
	c := m.components[j]
	g := factorize(c.cov)
	return g.density(x, c.mean) + m.eta, g.norm
}

// computeLikelihood fills likelihood and normalizers for every component.
func (m *IGMN) computeLikelihood(x mat.Vector) {
	n := len(m.components)
	m.likelihood = resize(m.likelihood, n)
	m.normalizers = resize(m.normalizers, n)

	parallel.For(n, m.parallelThreshold, func(j int) {
		m.likelihood[j], m.normalizers[j] = m.componentLikelihood(j, x)
	})
}

// hasAcceptableDistribution reports whether at least one component explains
// the last input well enough. It is false for an empty model.
func (m *IGMN) hasAcceptableDistribution() bool {
	for j := range m.components {
		if m.likelihood[j] >= m.minDensity(m.normalizers[j]) {
			return true
		}
	}
	return false
}

// addComponent appends a component centered on x with the initial
// covariance.
func (m *IGMN) addComponent(x mat.Vector) {
	m.components = append(m.components, newComponent(x, m.initialCov))
}

// updatePriors sets prior_j = sp_j / Σ sp.
func (m *IGMN) updatePriors() {
	if len(m.components) == 0 {
		return
	}
	total := 0.0
	for _, c := range m.components {
		total += c.sp
	}
	if total <= 0 || !errors.IsFinite(total) {
		errors.Warn(errors.NewNumericalInstabilityError("priors", m.accumulatedPosteriors(), m.steps))
		uniform := 1 / float64(len(m.components))
		for _, c := range m.components {
			c.prior = uniform
		}
		return
	}
	for _, c := range m.components {
		c.prior = c.sp / total
	}
}

func (m *IGMN) accumulatedPosteriors() []float64 {
	sp := make([]float64, len(m.components))
	for j, c := range m.components {
		sp[j] = c.sp
	}
	return sp
}

// computePosterior fills posterior from likelihood and the current priors.
func (m *IGMN) computePosterior() {
	m.posterior = resize(m.posterior, len(m.components))
	m.normalizePosterior(m.posterior, m.likelihood)
}

// normalizePosterior writes p(j|x) = like_j·prior_j / Σ like·prior into dst.
// When the evidence is zero or not finite the priors are used instead.
func (m *IGMN) normalizePosterior(dst, like []float64) {
	for j, c := range m.components {
		dst[j] = like[j] * c.prior
	}

	sum := floats.Sum(dst)
	if sum > 0 && errors.IsFinite(sum) {
		floats.Scale(1/sum, dst)
		return
	}

	errors.Warn(errors.NewNumericalInstabilityError("posterior", append([]float64(nil), like...), m.steps))
	m.logger.Warn("posterior fell back to priors",
		log.StepKey, m.steps,
		log.ErrorCodeKey, log.ErrorNormalization,
	)
	for j, c := range m.components {
		dst[j] = c.prior
	}
}

// incrementalEstimation updates the first n components with their
// posterior for x.
func (m *IGMN) incrementalEstimation(x mat.Vector, n int) {
	parallel.For(n, m.parallelThreshold, func(j int) {
		m.components[j].update(x, m.posterior[j])
	})
}

// removeSpuriousComponents drops every component older than vMin whose
// accumulated posterior is still below spMin. Survivors keep their order.
func (m *IGMN) removeSpuriousComponents() {
	removed := 0
	for j := len(m.components) - 1; j >= 0; j-- {
		c := m.components[j]
		if float64(c.age) <= m.vMin || c.sp >= m.spMin {
			continue
		}

		m.logger.Debug("component removed",
			log.StepKey, m.steps,
			log.ComponentIndexKey, j,
			log.AgeKey, c.age,
			log.AccumulatedPosteriorKey, c.sp,
		)

		m.components = slices.Delete(m.components, j, j+1)
		m.likelihood = slices.Delete(m.likelihood, j, j+1)
		m.posterior = slices.Delete(m.posterior, j, j+1)
		m.normalizers = slices.Delete(m.normalizers, j, j+1)
		removed++
	}

	if removed > 0 && len(m.components) > 0 {
		m.updatePriors()
	}
}

// resize returns s with length n, reusing its storage when possible.
func resize(s []float64, n int) []float64 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]float64, n)
}
