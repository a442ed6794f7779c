// Package stumpboost provides AdaBoost over axis-aligned decision stumps for
// two-dimensional, two-class point sets.
//
// stumpboost follows a scikit-learn-like API so that the boosted classifier
// can be fitted, scored, saved and inspected the same way as other estimators,
// while the round-by-round engine underneath stays available for callers who
// need the raw ensemble.
//
// # Features
//
//   - Exhaustive stump search over a regular threshold grid, parallelized for
//     large sweeps
//   - Deterministic boosting with per-round callbacks and early stopping
//   - Prefix evaluation: any first k stumps of an ensemble form a classifier
//   - Margins, staged accuracy and decision-region plots
//   - Structured errors and logging throughout
//
// # Installation
//
//	go get github.com/YuminosukeSato/stumpboost
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/stumpboost/dataset"
//	    "github.com/YuminosukeSato/stumpboost/sklearn/ensemble"
//	)
//
//	func main() {
//	    X, y, err := dataset.Generate(dataset.Config{N: 200, Shape: dataset.ShapeCircle, Seed: 1})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    clf := ensemble.NewAdaBoostClassifier(
//	        ensemble.WithNEstimators(100),
//	        ensemble.WithResolution(50),
//	    )
//	    if err := clf.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    acc, err := clf.Score(X, y)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("Training accuracy:", acc)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - sklearn/tree: DecisionStump and the weighted StumpFitter
//   - sklearn/ensemble: BoostingEngine, Ensemble, callbacks and AdaBoostClassifier
//   - dataset: Synthetic point sets and .npy import/export
//   - metrics: Accuracy, classification error and margin statistics
//   - visualization: Decision-region, learning-curve and margin plots
//   - core/model: Core interfaces, state management and persistence
//   - core/parallel: Parallel processing utilities
//   - pkg/errors, pkg/log: Structured errors and logging
//
// # Low-level API
//
// The engine works directly on labels in {-1, +1}:
//
//	engine := ensemble.NewBoostingEngine()
//	ens, err := engine.Run(X, y, 50, 100)
//	if err != nil {
//	    // ens still holds every completed round
//	}
//	for k, score := range ens.Staged(0.3, -0.2) {
//	    fmt.Println(k, score)
//	}
//
// # Performance
//
//   - The stump sweep is split across CPU cores once its grid exceeds a
//     configurable threshold
//   - Batch prediction is parallelized for large inputs
//   - Results do not depend on the number of workers
//
// # License
//
// stumpboost is released under the MIT License.
package stumpboost
