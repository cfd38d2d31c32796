package mixture

import (
	"fmt"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/igmn/core/model"
	"github.com/YuminosukeSato/igmn/pkg/errors"
	"github.com/YuminosukeSato/igmn/pkg/log"
)

// IGMN is an Incremental Gaussian Mixture Network.
type IGMN struct {
	model.BaseEstimator

	mu sync.RWMutex

	// fixed at construction
	dimension  int
	dataRange  []float64
	initialCov *mat.SymDense

	// hyperparameters
	tau                 float64
	delta               float64
	spMin               float64
	vMin                float64
	eta                 float64
	parallelThreshold   int
	recallCacheSize     int
	updateNewComponents bool

	components []*component

	// transient, aligned with components during a learning step
	likelihood  []float64
	posterior   []float64
	normalizers []float64

	steps  int
	cache  *recallCache
	logger log.Logger
}

// Evaluation is the read-only scoring of one input: p(x|j) (with eta) and
// p(j|x) for every component j.
type Evaluation struct {
	Likelihood []float64
	Posterior  []float64
}

// NewIGMN creates an empty model for vectors of dimension len(dataRange).
// dataRange holds the expected span of each dimension and sizes the initial
// covariance of new components.
func NewIGMN(dataRange []float64, opts ...Option) (*IGMN, error) {
	d := len(dataRange)
	m := &IGMN{
		dimension:         d,
		dataRange:         append([]float64(nil), dataRange...),
		tau:               DefaultTau,
		delta:             DefaultDelta,
		spMin:             float64(d + 1),
		vMin:              float64(2 * d),
		eta:               DefaultEta,
		parallelThreshold: DefaultParallelThreshold,
		recallCacheSize:   DefaultRecallCacheSize,
	}

	for _, opt := range opts {
		opt(m)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}

	if m.logger == nil {
		m.logger = log.GetLoggerWithName("mixture.igmn")
	}
	m.logger = m.logger.With(log.ModelNameKey, "IGMN", log.FeaturesKey, d)

	cache, err := newRecallCache(m.recallCacheSize)
	if err != nil {
		return nil, err
	}
	m.cache = cache

	// diag((dataRange·delta)²)
	m.initialCov = mat.NewSymDense(d, nil)
	for i, r := range m.dataRange {
		s := r * m.delta
		m.initialCov.SetSym(i, i, s*s)
	}

	return m, nil
}

func (m *IGMN) validate() error {
	if m.dimension == 0 {
		return errors.NewValidationError("dataRange", "must not be empty", m.dataRange)
	}
	for i, r := range m.dataRange {
		if !errors.IsFinite(r) || r <= 0 {
			return errors.NewValidationError(fmt.Sprintf("dataRange[%d]", i), "must be finite and positive", r)
		}
	}
	checks := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"tau", m.tau, true},
		{"delta", m.delta, true},
		{"eta", m.eta, true},
		{"spMin", m.spMin, false},
		{"vMin", m.vMin, false},
	}
	for _, c := range checks {
		if !errors.IsFinite(c.value) {
			return errors.NewValidationError(c.name, "must be finite", c.value)
		}
		if c.positive && c.value <= 0 {
			return errors.NewValidationError(c.name, "must be positive", c.value)
		}
		if !c.positive && c.value < 0 {
			return errors.NewValidationError(c.name, "must not be negative", c.value)
		}
	}
	if m.recallCacheSize < 0 {
		return errors.NewValidationError("recallCacheSize", "must not be negative", m.recallCacheSize)
	}
	return nil
}

// checkSample validates a full-dimension observation.
func (m *IGMN) checkSample(op string, x mat.Vector) error {
	if x == nil {
		return errors.NewValueError(op, "input vector is nil")
	}
	if x.Len() != m.dimension {
		return errors.NewDimensionError(op, m.dimension, x.Len(), 1)
	}
	return errors.CheckVector(op, x)
}

// Learn updates the model with one observation of length D.
func (m *IGMN) Learn(x mat.Vector) (err error) {
	defer errors.Recover(&err, "IGMN.Learn")

	if err := m.checkSample("IGMN.Learn", x); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.learn(x)
	return nil
}

// learn runs one learning step. The caller holds the write lock and has
// validated x.
func (m *IGMN) learn(x mat.Vector) {
	m.cache.purge()
	m.steps++

	m.computeLikelihood(x)

	// Components that existed before this step take part in the estimation.
	participants := len(m.components)
	if !m.hasAcceptableDistribution() {
		m.addComponent(x)

		j := len(m.components) - 1
		like, norm := m.componentLikelihood(j, x)
		m.likelihood = append(m.likelihood, like)
		m.normalizers = append(m.normalizers, norm)
		m.updatePriors()

		m.logger.Debug("component created",
			log.StepKey, m.steps,
			log.ComponentIndexKey, j,
			log.ComponentsKey, len(m.components),
		)

		if m.updateNewComponents {
			participants = len(m.components)
		}
	}

	m.computePosterior()
	m.incrementalEstimation(x, participants)
	m.updatePriors()
	m.removeSpuriousComponents()

	if len(m.components) > 0 {
		m.SetFitted()
	} else {
		m.ResetState()
	}
}

// Train learns every row of X in order. The resulting state is the same as
// calling Learn on each row. A failing row stops training; the rows before it
// stay learned.
func (m *IGMN) Train(X mat.Matrix) (err error) {
	defer errors.Recover(&err, "IGMN.Train")

	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("IGMN.Train", "empty data", errors.ErrEmptyData)
	}
	if cols != m.dimension {
		return errors.NewDimensionError("IGMN.Train", m.dimension, cols, 1)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.trainRows("IGMN.Train", log.OperationTrain, rows, func(i int, dst *mat.VecDense) {
		for j := 0; j < cols; j++ {
			dst.SetVec(j, X.At(i, j))
		}
	})
}

// trainRows learns rows produced by fill. The caller holds the write lock.
func (m *IGMN) trainRows(op, operation string, rows int, fill func(i int, dst *mat.VecDense)) error {
	start := time.Now()
	row := mat.NewVecDense(m.dimension, nil)

	for i := 0; i < rows; i++ {
		fill(i, row)
		if err := errors.CheckVector(op, row); err != nil {
			return errors.NewModelError(op, fmt.Sprintf("row %d", i), err)
		}
		m.learn(row)
	}

	m.logger.Info("training completed",
		log.OperationKey, operation,
		log.SamplesKey, rows,
		log.ComponentsKey, len(m.components),
		log.StepKey, m.steps,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Call scores x against the current model without changing it.
func (m *IGMN) Call(x mat.Vector) (ev Evaluation, err error) {
	defer errors.Recover(&err, "IGMN.Call")

	if err := m.checkSample("IGMN.Call", x); err != nil {
		return Evaluation{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.components)
	if n == 0 {
		return Evaluation{}, errors.NewNotFittedError("IGMN", "Call")
	}

	like := make([]float64, n)
	for j := range m.components {
		like[j], _ = m.componentLikelihood(j, x)
	}
	post := make([]float64, n)
	m.normalizePosterior(post, like)

	return Evaluation{Likelihood: like, Posterior: post}, nil
}

// Reset drops every component and transient buffer. Hyperparameters and the
// data range are kept.
func (m *IGMN) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetLocked()
}

func (m *IGMN) resetLocked() {
	m.components = nil
	m.likelihood = nil
	m.posterior = nil
	m.normalizers = nil
	m.steps = 0
	m.cache.purge()
	m.ResetState()

	m.logger.Debug("model reset", log.OperationKey, log.OperationReset)
}

// ===========================================================================
// read-only views
// ===========================================================================

// Size returns the number of components.
func (m *IGMN) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.components)
}

// Dimension returns D.
func (m *IGMN) Dimension() int {
	return m.dimension
}

// DataRange returns a copy of the per-dimension spans.
func (m *IGMN) DataRange() []float64 {
	return append([]float64(nil), m.dataRange...)
}

// IsFitted reports whether the model holds at least one component.
func (m *IGMN) IsFitted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.BaseEstimator.IsFitted()
}

// NIterations returns the number of learning steps since construction or
// the last Reset.
func (m *IGMN) NIterations() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.steps
}

// Priors returns a copy of the mixture weights.
func (m *IGMN) Priors() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	priors := make([]float64, len(m.components))
	for j, c := range m.components {
		priors[j] = c.prior
	}
	return priors
}

// Likelihood returns a copy of p(x|j) from the last learning step.
func (m *IGMN) Likelihood() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]float64(nil), m.likelihood...)
}

// Posterior returns a copy of p(j|x) from the last learning step.
func (m *IGMN) Posterior() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]float64(nil), m.posterior...)
}

// Components returns deep copies of every component.
func (m *IGMN) Components() []ComponentSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ComponentSnapshot, len(m.components))
	for j, c := range m.components {
		out[j] = c.snapshot()
	}
	return out
}

// String implements fmt.Stringer.
func (m *IGMN) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("IGMN(dimension=%d, components=%d, tau=%g, delta=%g, spMin=%g, vMin=%g)",
		m.dimension, len(m.components), m.tau, m.delta, m.spMin, m.vMin)
}

// minDensity is the acceptance threshold for a component whose density
// denominator is norm.
func (m *IGMN) minDensity(norm float64) float64 {
	if norm == 0 {
		return math.Inf(1)
	}
	return m.tau / norm
}
