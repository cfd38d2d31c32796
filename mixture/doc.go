// Package mixture implements the Incremental Gaussian Mixture Network (IGMN),
// an online mixture-of-Gaussians learner that sees every observation once.
//
// Each call to Learn scores the observation against the current components,
// creates a new component when no existing one explains it well enough
// (the novelty test governed by tau), then moves every component's mean and
// covariance toward the observation in proportion to its posterior
// responsibility. Components that grow old without gathering enough evidence
// are dropped.
//
// The learned joint density supports recall: given the leading α dimensions
// of a vector, Recall predicts the remaining ones by Gaussian-mixture
// conditional regression. Classify turns that prediction into a one-hot
// label when the trailing dimensions encode classes, and Classifier wraps the
// whole workflow behind a Fit/Predict API.
//
//	m, err := mixture.NewIGMN([]float64{10, 10, 1},
//	    mixture.WithTau(0.1),
//	    mixture.WithDelta(0.1),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := m.Train(samples); err != nil { // rows = samples
//	    return err
//	}
//	y, err := m.Recall(mat.NewVecDense(2, []float64{3.2, 4.1}))
//
// Learn, Train, Reset and PartialFit take the model's write lock; Call,
// Recall, Classify, Predict and the snapshot accessors take the read lock and
// may run concurrently with one another.
package mixture
