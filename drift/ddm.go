// Package drift detects concept drift in a stream of prediction outcomes.
package drift

import (
	"math"
	"sync"

	"github.com/YuminosukeSato/igmn/pkg/log"
)

// DDM (Drift Detection Method) watches the online error rate of a learner.
// J. Gama, P. Medas, G. Castillo, P. Rodrigues (2004) "Learning with Drift
// Detection".
//
// With p the error rate and s = sqrt(p(1-p)/n), DDM remembers the minimum of
// p+s. A warning is raised when p+s exceeds pMin + warningLevel·sMin and a
// drift when it exceeds pMin + outControlLevel·sMin. After a drift the
// statistics start over.
//
// Only states with s > 0 become the reference minimum. An error-free run has
// s = 0 and would make any single error look out of control.
type DDM struct {
	minNumInstances int
	warningLevel    float64
	outControlLevel float64

	numInstances int
	numErrors    int
	errorRate    float64
	stdDev       float64
	minErrorRate float64
	minStdDev    float64

	warning bool
	drifts  int

	logger log.Logger
	mu     sync.Mutex
}

// Result is the outcome of one Update.
type Result struct {
	Warning   bool
	Drift     bool
	ErrorRate float64
}

// Option configures a DDM.
type Option func(*DDM)

// WithMinNumInstances sets how many outcomes are observed before any
// detection. Default 30.
func WithMinNumInstances(n int) Option {
	return func(d *DDM) {
		d.minNumInstances = n
	}
}

// WithWarningLevel sets the warning multiplier of sMin. Default 2.
func WithWarningLevel(level float64) Option {
	return func(d *DDM) {
		d.warningLevel = level
	}
}

// WithOutControlLevel sets the drift multiplier of sMin. Default 3.
func WithOutControlLevel(level float64) Option {
	return func(d *DDM) {
		d.outControlLevel = level
	}
}

// WithLogger replaces the default "drift.ddm" logger.
func WithLogger(l log.Logger) Option {
	return func(d *DDM) {
		d.logger = l
	}
}

// NewDDM creates a DDM.
func NewDDM(opts ...Option) *DDM {
	d := &DDM{
		minNumInstances: 30,
		warningLevel:    2.0,
		outControlLevel: 3.0,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.GetLoggerWithName("drift.ddm")
	}
	d.restart()
	return d
}

// Update records whether the latest prediction was correct.
func (d *DDM) Update(correct bool) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.numInstances++
	if !correct {
		d.numErrors++
	}

	n := float64(d.numInstances)
	d.errorRate = float64(d.numErrors) / n
	d.stdDev = math.Sqrt(d.errorRate * (1 - d.errorRate) / n)

	res := Result{ErrorRate: d.errorRate}
	if d.numInstances < d.minNumInstances {
		return res
	}

	level := d.errorRate + d.stdDev
	if d.stdDev > 0 && level <= d.minErrorRate+d.minStdDev {
		d.minErrorRate = d.errorRate
		d.minStdDev = d.stdDev
	}

	if level > d.minErrorRate+d.outControlLevel*d.minStdDev {
		res.Drift = true
		d.drifts++
		d.logger.Info("concept drift detected",
			log.ErrorRateKey, d.errorRate,
			log.SamplesKey, d.numInstances,
		)
		d.restart()
		return res
	}

	d.warning = level > d.minErrorRate+d.warningLevel*d.minStdDev
	res.Warning = d.warning
	return res
}

// Reset clears every statistic, including the drift count.
func (d *DDM) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.restart()
	d.drifts = 0
}

func (d *DDM) restart() {
	d.numInstances = 0
	d.numErrors = 0
	d.errorRate = 0
	d.stdDev = 0
	d.minErrorRate = math.Inf(1)
	d.minStdDev = math.Inf(1)
	d.warning = false
}

// Statistics is a snapshot of the detector state.
type Statistics struct {
	NumInstances int
	NumErrors    int
	ErrorRate    float64
	StdDev       float64
	MinErrorRate float64
	MinStdDev    float64
	Warning      bool
	Drifts       int
}

// Statistics returns the current state.
func (d *DDM) Statistics() Statistics {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Statistics{
		NumInstances: d.numInstances,
		NumErrors:    d.numErrors,
		ErrorRate:    d.errorRate,
		StdDev:       d.stdDev,
		MinErrorRate: d.minErrorRate,
		MinStdDev:    d.minStdDev,
		Warning:      d.warning,
		Drifts:       d.drifts,
	}
}
