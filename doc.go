// Package igmn is an online mixture-of-Gaussians library for Go built around
// the Incremental Gaussian Mixture Network (IGMN).
//
// An IGMN learns the joint density of a stream of numeric vectors in a
// single pass without storing the stream. Components are created when an
// observation is novel, updated in proportion to their posterior
// responsibility, and pruned when they stop gathering evidence. The learned
// density answers regression and classification queries by conditioning on
// the observed leading dimensions.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/igmn/mixture"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    // two dimensions: x spans 10, y spans 20
//	    m, err := mixture.NewIGMN([]float64{10, 20})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    for i := 0; i < 100; i++ {
//	        x := float64(i) / 10
//	        if err := m.Learn(mat.NewVecDense(2, []float64{x, 2*x + 1})); err != nil {
//	            log.Fatal(err)
//	        }
//	    }
//
//	    y, err := m.Recall(mat.NewVecDense(1, []float64{4}))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("y(4) ≈", y.AtVec(0))
//	}
//
// # Packages
//
//   - mixture: the IGMN model, its Classifier wrapper and YAML configuration
//   - drift: concept drift detection (DDM) for prequential streams
//   - metrics: evaluation metrics (MSE, RMSE, R², accuracy)
//   - preprocessing: MinMaxScaler, also used to derive data ranges
//   - core/model: estimator interfaces shared by the models
//   - core/parallel: per-component parallel loops
//   - pkg/errors: structured errors and warnings
//   - pkg/log: structured logging backed by zerolog
//
// # scikit-learn Compatibility
//
// IGMN and Classifier expose Fit, PartialFit, Predict and Score, as well as
// channel-based FitStream, PredictStream and FitPredictStream:
//
//	clf, _ := mixture.NewClassifier(4, 3,
//	    mixture.WithDriftDetector(drift.NewDDM()),
//	)
//	for pred := range clf.FitPredictStream(ctx, batches) {
//	    // predictions made before each batch was learned
//	}
package igmn
