// Package log defines standard attribute keys for mixture model operations.
//
// Keys follow the hierarchical "category.name" convention so that log
// pipelines can filter on a prefix (e.g. every "mixture." field).
package log

// Model and Operation Context
const (
	// ModelNameKey identifies the model type, e.g. "IGMN" or "IGMNClassifier".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: the Operation* constants below.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package emitted the record.
	ComponentKey = "ml.component"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the dimension of the samples.
	FeaturesKey = "data.features"

	// RowKey identifies the row of a dataset that triggered an event.
	RowKey = "data.row"
)

// Mixture state
const (
	// ComponentsKey records the number of Gaussian components after an event.
	ComponentsKey = "mixture.components"

	// ComponentIndexKey identifies the component an event refers to.
	ComponentIndexKey = "mixture.component"

	// AgeKey records the age of a component.
	AgeKey = "mixture.age"

	// AccumulatedPosteriorKey records a component's accumulated posterior.
	AccumulatedPosteriorKey = "mixture.sp"

	// ObservedDimsKey records the observed prefix length used by recall.
	ObservedDimsKey = "mixture.alpha"

	// StepKey records the learning step counter.
	StepKey = "training.step"
)

// Performance and evaluation
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy.
	AccuracyKey = "metrics.accuracy"

	// ErrorRateKey records the error rate tracked by a drift detector.
	ErrorRateKey = "metrics.error_rate"
)

// Error context
const (
	// ErrorCodeKey provides a structured error code.
	ErrorCodeKey = "error.code"
)

// Standard attribute values.
const (
	OperationLearn      = "learn"
	OperationTrain      = "train"
	OperationRecall     = "recall"
	OperationClassify   = "classify"
	OperationReset      = "reset"
	OperationPartialFit = "partial_fit"
	OperationStream     = "stream"

	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorNoComponents      = "NO_COMPONENTS"
	ErrorNormalization     = "NORMALIZATION_FALLBACK"
)
