package mixture

import (
	"github.com/YuminosukeSato/igmn/pkg/log"
)

const (
	// DefaultTau is the default novelty threshold.
	DefaultTau = 0.1
	// DefaultDelta is the default initial covariance scale.
	DefaultDelta = 0.1
	// DefaultEta is the floor added to every density. It keeps posteriors
	// and recall weights defined when all densities underflow, and is small
	// enough to be invisible next to any density a real observation produces.
	DefaultEta = 1e-300
	// DefaultParallelThreshold is the component count above which per-component
	// work is spread over goroutines.
	DefaultParallelThreshold = 32
	// DefaultRecallCacheSize is the number of observed-prefix lengths whose
	// recall factors are kept between two learning steps.
	DefaultRecallCacheSize = 8
)

// Option configures an IGMN.
type Option func(*IGMN)

// WithTau sets the novelty threshold. An input is novel when its density
// under every component falls below tau / ((2π)^(D/2)·sqrt(det Σ)), so larger
// values make the test stricter and create more components.
func WithTau(tau float64) Option {
	return func(m *IGMN) {
		m.tau = tau
	}
}

// WithDelta sets the initial covariance scale relative to the data range.
func WithDelta(delta float64) Option {
	return func(m *IGMN) {
		m.delta = delta
	}
}

// WithSpMin sets the accumulated posterior below which an old component is
// removed. Defaults to D+1.
func WithSpMin(spMin float64) Option {
	return func(m *IGMN) {
		m.spMin = spMin
	}
}

// WithVMin sets the age a component must exceed before it can be removed.
// Defaults to 2·D.
func WithVMin(vMin float64) Option {
	return func(m *IGMN) {
		m.vMin = vMin
	}
}

// WithEta overrides DefaultEta.
func WithEta(eta float64) Option {
	return func(m *IGMN) {
		m.eta = eta
	}
}

// WithParallelThreshold sets the component count above which likelihood,
// estimation and recall loops run in parallel. A negative value disables
// parallel execution.
func WithParallelThreshold(n int) Option {
	return func(m *IGMN) {
		m.parallelThreshold = n
	}
}

// WithRecallCacheSize sets how many observed-prefix lengths keep their recall
// factors cached. 0 disables the cache.
func WithRecallCacheSize(n int) Option {
	return func(m *IGMN) {
		m.recallCacheSize = n
	}
}

// WithUpdateNewComponents makes a component created by Learn also go through
// the estimation step for the observation that created it. By default a new
// component is born holding that observation (mean = x, sp = 1, age = 1) and
// is left as is until the next step.
func WithUpdateNewComponents(enabled bool) Option {
	return func(m *IGMN) {
		m.updateNewComponents = enabled
	}
}

// WithLogger sets the logger used for component lifecycle events.
func WithLogger(logger log.Logger) Option {
	return func(m *IGMN) {
		m.logger = logger
	}
}
