package mixture

import (
	"context"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/igmn/core/model"
	"github.com/YuminosukeSato/igmn/drift"
	"github.com/YuminosukeSato/igmn/metrics"
	"github.com/YuminosukeSato/igmn/pkg/errors"
	"github.com/YuminosukeSato/igmn/pkg/log"
	"github.com/YuminosukeSato/igmn/preprocessing"
)

// DriftDetector is notified of every prequential outcome. *drift.DDM
// satisfies it.
type DriftDetector interface {
	Update(correct bool) drift.Result
	Reset()
}

// Classifier is a supervised wrapper around IGMN. Each training sample is
// learned as the joint vector [x, onehot(y)] and labels are predicted with
// Classify on x.
type Classifier struct {
	mu sync.RWMutex

	nFeatures int
	nClasses  int

	// featureRange is nil until fixed by WithFeatureRange or derived at the
	// end of the warm-up.
	featureRange []float64
	fixedRange   bool

	// Without a fixed range, rows are held back until warmupLimit rows are
	// pending.
	warmup      *preprocessing.MinMaxScaler
	pending     [][]float64
	warmupLimit int

	modelOpts []Option
	model     *IGMN
	detector  DriftDetector
	logger    log.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// DefaultWarmupLimit is the number of rows a classifier without a fixed
// feature range collects before it derives the spans and builds its model.
const DefaultWarmupLimit = 20

// WithFeatureRange fixes the span of every feature. Without it the spans are
// the observed min/max width of the warm-up rows (see WithWarmupLimit).
func WithFeatureRange(featureRange []float64) ClassifierOption {
	return func(c *Classifier) {
		c.featureRange = append([]float64(nil), featureRange...)
		c.fixedRange = true
	}
}

// WithWarmupLimit sets how many rows PartialFit and the streams buffer
// before the feature spans are derived from them and the IGMN is built.
// Until then the classifier is not fitted. Features that did not vary get
// span 1. Fit never waits: it derives the spans from the whole dataset.
func WithWarmupLimit(n int) ClassifierOption {
	return func(c *Classifier) {
		c.warmupLimit = n
	}
}

// WithModelOptions passes options to the underlying IGMN.
func WithModelOptions(opts ...Option) ClassifierOption {
	return func(c *Classifier) {
		c.modelOpts = append(c.modelOpts, opts...)
	}
}

// WithDriftDetector resets the model whenever the detector reports a drift
// during FitPredictStream.
func WithDriftDetector(d DriftDetector) ClassifierOption {
	return func(c *Classifier) {
		c.detector = d
	}
}

// WithClassifierLogger replaces the default logger.
func WithClassifierLogger(l log.Logger) ClassifierOption {
	return func(c *Classifier) {
		c.logger = l
	}
}

// NewClassifier creates a classifier for nFeatures inputs and labels
// 0..nClasses-1.
func NewClassifier(nFeatures, nClasses int, opts ...ClassifierOption) (*Classifier, error) {
	if nFeatures < 1 {
		return nil, errors.NewValidationError("nFeatures", "must be at least 1", nFeatures)
	}
	if nClasses < 2 {
		return nil, errors.NewValidationError("nClasses", "must be at least 2", nClasses)
	}

	c := &Classifier{nFeatures: nFeatures, nClasses: nClasses, warmupLimit: DefaultWarmupLimit}
	for _, opt := range opts {
		opt(c)
	}
	if c.warmupLimit < 1 {
		return nil, errors.NewValidationError("warmupLimit", "must be at least 1", c.warmupLimit)
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("mixture.classifier")
	}
	c.logger = c.logger.With(log.ModelNameKey, "IGMNClassifier")

	if c.fixedRange {
		if len(c.featureRange) != nFeatures {
			return nil, errors.NewDimensionError("NewClassifier", nFeatures, len(c.featureRange), 1)
		}
		if err := c.buildModel(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// buildModel creates the IGMN over [features, one-hot classes]. Class
// columns span 1.
func (c *Classifier) buildModel() error {
	dataRange := make([]float64, c.nFeatures+c.nClasses)
	copy(dataRange, c.featureRange)
	for j := c.nFeatures; j < len(dataRange); j++ {
		dataRange[j] = 1
	}

	opts := append([]Option{WithLogger(c.logger)}, c.modelOpts...)
	m, err := NewIGMN(dataRange, opts...)
	if err != nil {
		return err
	}
	c.model = m
	return nil
}

// learnJoint learns the rows [x, onehot(y)]. Without a fixed range they
// go through the warm-up buffer until the model exists.
func (c *Classifier) learnJoint(X mat.Matrix, labels []int) error {
	joint := c.joint(X, labels)
	if c.model != nil {
		return c.model.PartialFit(joint, nil, nil)
	}
	if c.fixedRange {
		if err := c.buildModel(); err != nil {
			return err
		}
		return c.model.PartialFit(joint, nil, nil)
	}

	if c.warmup == nil {
		c.warmup = preprocessing.NewMinMaxScalerDefault()
	}
	if err := c.warmup.PartialFit(X); err != nil {
		return err
	}
	for i := range labels {
		c.pending = append(c.pending, mat.Row(nil, i, joint))
	}
	if len(c.pending) < c.warmupLimit {
		return nil
	}
	return c.flushWarmup()
}

// flushWarmup derives the feature spans from the buffered rows, builds the
// model and learns the rows in arrival order.
func (c *Classifier) flushWarmup() error {
	if c.warmup == nil {
		return nil
	}
	if constant := c.warmup.ConstantFeatures(); len(constant) > 0 {
		c.logger.Info("features did not vary during warm-up, using span 1",
			log.SamplesKey, len(c.pending),
			"features", constant,
		)
	}
	c.featureRange = c.warmup.DataRange()

	rows := mat.NewDense(len(c.pending), c.nFeatures+c.nClasses, nil)
	for i, r := range c.pending {
		rows.SetRow(i, r)
	}
	c.warmup, c.pending = nil, nil

	if err := c.buildModel(); err != nil {
		return err
	}
	return c.model.PartialFit(rows, nil, nil)
}

func (c *Classifier) checkFeatures(op string, X mat.Matrix) (int, error) {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if cols != c.nFeatures {
		return 0, errors.NewDimensionError(op, c.nFeatures, cols, 1)
	}
	return rows, nil
}

// labels reads y (rows × 1) as class indices.
func (c *Classifier) labels(op string, y mat.Matrix, rows int) ([]int, error) {
	if y == nil {
		return nil, errors.NewValueError(op, "labels are required")
	}
	yRows, yCols := y.Dims()
	if yRows != rows {
		return nil, errors.NewDimensionError(op, rows, yRows, 0)
	}
	if yCols != 1 {
		return nil, errors.NewDimensionError(op, 1, yCols, 1)
	}

	out := make([]int, rows)
	for i := range out {
		v := y.At(i, 0)
		label := int(v)
		if float64(label) != v || label < 0 || label >= c.nClasses {
			return nil, errors.NewValidationError("y", "labels must be integers in [0, nClasses)", v)
		}
		out[i] = label
	}
	return out, nil
}

// joint builds the rows [x, onehot(y)].
func (c *Classifier) joint(X mat.Matrix, labels []int) *mat.Dense {
	out := mat.NewDense(len(labels), c.nFeatures+c.nClasses, nil)
	for i, label := range labels {
		for j := 0; j < c.nFeatures; j++ {
			out.Set(i, j, X.At(i, j))
		}
		out.Set(i, c.nFeatures+label, 1)
	}
	return out
}

// Fit discards what was learned and learns X with labels y.
func (c *Classifier) Fit(X, y mat.Matrix) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
	if err := c.partialFit("Classifier.Fit", X, y, nil); err != nil {
		return err
	}
	return c.flushWarmup()
}

// PartialFit continues learning from X with labels y. classes, when given,
// must list labels inside [0, nClasses).
func (c *Classifier) PartialFit(X, y mat.Matrix, classes []int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.partialFit("Classifier.PartialFit", X, y, classes)
}

func (c *Classifier) partialFit(op string, X, y mat.Matrix, classes []int) error {
	for _, k := range classes {
		if k < 0 || k >= c.nClasses {
			return errors.NewValidationError("classes", "label outside [0, nClasses)", k)
		}
	}

	rows, err := c.checkFeatures(op, X)
	if err != nil {
		return err
	}
	labels, err := c.labels(op, y, rows)
	if err != nil {
		return err
	}
	return c.learnJoint(X, labels)
}

// predictLabels classifies every row of X. The caller holds c.mu.
func (c *Classifier) predictLabels(op string, X mat.Matrix) ([]int, error) {
	rows, err := c.checkFeatures(op, X)
	if err != nil {
		return nil, err
	}
	if c.model == nil {
		return nil, errors.NewNotFittedError("IGMNClassifier", op)
	}

	c.model.mu.RLock()
	defer c.model.mu.RUnlock()

	out := make([]int, rows)
	row := mat.NewVecDense(c.nFeatures, nil)
	for i := range out {
		for j := 0; j < c.nFeatures; j++ {
			row.SetVec(j, X.At(i, j))
		}
		onehot, err := c.model.classify(op, row)
		if err != nil {
			return nil, err
		}
		out[i] = floats.MaxIdx(onehot.RawVector().Data)
	}
	return out, nil
}

// Predict returns the predicted label of every row as a rows × 1 matrix.
func (c *Classifier) Predict(X mat.Matrix) (pred mat.Matrix, err error) {
	defer errors.Recover(&err, "Classifier.Predict")

	c.mu.RLock()
	defer c.mu.RUnlock()

	labels, err := c.predictLabels("Classifier.Predict", X)
	if err != nil {
		return nil, err
	}
	return labelMatrix(labels), nil
}

// PredictProba returns the recalled class scores of every row, clipped at 0
// and normalized to sum to 1. A row with no positive score is uniform.
func (c *Classifier) PredictProba(X mat.Matrix) (proba mat.Matrix, err error) {
	defer errors.Recover(&err, "Classifier.PredictProba")

	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.checkFeatures("Classifier.PredictProba", X)
	if err != nil {
		return nil, err
	}
	if c.model == nil {
		return nil, errors.NewNotFittedError("IGMNClassifier", "PredictProba")
	}

	scores, err := c.model.Predict(X)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(rows, c.nClasses, nil)
	p := make([]float64, c.nClasses)
	for i := 0; i < rows; i++ {
		for k := range p {
			p[k] = math.Max(scores.At(i, k), 0)
		}
		if sum := floats.Sum(p); sum > 0 {
			floats.Scale(1/sum, p)
		} else {
			for k := range p {
				p[k] = 1 / float64(c.nClasses)
			}
		}
		out.SetRow(i, p)
	}
	return out, nil
}

// Score returns the accuracy of Predict(X) against y.
func (c *Classifier) Score(X, y mat.Matrix) (score float64, err error) {
	defer errors.Recover(&err, "Classifier.Score")

	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.checkFeatures("Classifier.Score", X)
	if err != nil {
		return 0, err
	}
	truth, err := c.labels("Classifier.Score", y, rows)
	if err != nil {
		return 0, err
	}
	pred, err := c.predictLabels("Classifier.Score", X)
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy(truth, pred)
}

// Reset forgets everything learned. Derived feature spans and buffered
// warm-up rows are dropped too, and a new warm-up starts with the next batch.
func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	if c.detector != nil {
		c.detector.Reset()
	}
}

func (c *Classifier) reset() {
	if !c.fixedRange {
		c.model = nil
		c.featureRange = nil
		c.warmup, c.pending = nil, nil
		return
	}
	if c.model != nil {
		c.model.Reset()
	}
}

// NIterations returns the number of samples learned since the last reset.
func (c *Classifier) NIterations() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.model == nil {
		return 0
	}
	return c.model.NIterations()
}

// IsFitted reports whether the classifier can predict.
func (c *Classifier) IsFitted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model != nil && c.model.IsFitted()
}

// Model returns the underlying IGMN, nil before the first fit.
func (c *Classifier) Model() *IGMN {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// FitStream learns every batch received on dataChan.
func (c *Classifier) FitStream(ctx context.Context, dataChan <-chan *model.Batch) error {
	batches := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-dataChan:
			if !ok {
				return nil
			}
			if batch == nil {
				continue
			}
			if err := c.PartialFit(batch.X, batch.Y, nil); err != nil {
				return errors.Wrapf(err, "batch %d", batches)
			}
			batches++
		}
	}
}

// PredictStream emits Predict for every matrix received on inputChan.
// Matrices that cannot be classified are logged and skipped.
func (c *Classifier) PredictStream(ctx context.Context, inputChan <-chan mat.Matrix) <-chan mat.Matrix {
	outputChan := make(chan mat.Matrix)

	go func() {
		defer close(outputChan)

		for {
			select {
			case <-ctx.Done():
				return
			case X, ok := <-inputChan:
				if !ok {
					return
				}
				pred, err := c.Predict(X)
				if err != nil {
					c.logger.Error("prediction failed", log.OperationKey, log.OperationStream, "error", err)
					continue
				}
				select {
				case outputChan <- pred:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return outputChan
}

// FitPredictStream runs test-then-train over dataChan: every batch is
// classified with the current model, the prediction is emitted, and then the
// batch is learned. Rows predicted before the model holds any component,
// including the warm-up rows, get label -1. Labelled batches predicted by a fitted model feed the drift
// detector; a drift resets the model before the batch is learned.
func (c *Classifier) FitPredictStream(ctx context.Context, dataChan <-chan *model.Batch) <-chan mat.Matrix {
	outputChan := make(chan mat.Matrix)

	go func() {
		defer close(outputChan)

		for {
			select {
			case <-ctx.Done():
				return
			case batch, ok := <-dataChan:
				if !ok {
					return
				}
				if batch == nil {
					continue
				}

				pred, err := c.testThenTrain(batch)
				if err != nil {
					c.logger.Error("prequential step failed", log.OperationKey, log.OperationStream, "error", err)
					if pred == nil {
						continue
					}
				}

				select {
				case outputChan <- pred:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return outputChan
}

func (c *Classifier) testThenTrain(batch *model.Batch) (pred mat.Matrix, err error) {
	defer errors.Recover(&err, "Classifier.FitPredictStream")

	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.checkFeatures("Classifier.FitPredictStream", batch.X)
	if err != nil {
		return nil, err
	}

	labels := make([]int, rows)
	fitted := c.model != nil && c.model.IsFitted()
	if fitted {
		if labels, err = c.predictLabels("Classifier.FitPredictStream", batch.X); err != nil {
			return nil, err
		}
	} else {
		for i := range labels {
			labels[i] = -1
		}
	}
	pred = labelMatrix(labels)

	if batch.Y == nil {
		return pred, nil
	}

	truth, err := c.labels("Classifier.FitPredictStream", batch.Y, rows)
	if err != nil {
		return pred, err
	}

	if c.detector != nil && fitted {
		for i := range truth {
			if c.detector.Update(truth[i] == labels[i]).Drift {
				c.logger.Info("drift detected, resetting model",
					log.OperationKey, log.OperationReset,
					log.RowKey, i,
				)
				c.reset()
				break
			}
		}
	}

	return pred, c.learnJoint(batch.X, truth)
}

func labelMatrix(labels []int) *mat.Dense {
	out := mat.NewDense(len(labels), 1, nil)
	for i, label := range labels {
		out.Set(i, 0, float64(label))
	}
	return out
}
