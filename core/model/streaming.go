package model

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// Batch represents a data batch for streaming learning.
// Y may be nil for unsupervised streams.
type Batch struct {
	X mat.Matrix // Feature matrix
	Y mat.Matrix // Target matrix
}

// StreamingEstimator provides channel-based streaming learning interface
type StreamingEstimator interface {
	IncrementalEstimator

	// FitStream trains the model from a data stream
	// Continues learning until the context is canceled or the channel is closed
	FitStream(ctx context.Context, dataChan <-chan *Batch) error

	// PredictStream performs real-time predictions on input stream
	// Output channel is closed when input channel is closed
	PredictStream(ctx context.Context, inputChan <-chan mat.Matrix) <-chan mat.Matrix
}

// PrequentialEstimator predicts each batch before learning from it
// (test-then-train).
type PrequentialEstimator interface {
	StreamingEstimator

	// FitPredictStream emits the prediction made for each batch before the
	// batch is learned.
	FitPredictStream(ctx context.Context, dataChan <-chan *Batch) <-chan mat.Matrix
}
