package ensemble

import (
	"github.com/YuminosukeSato/stumpboost/pkg/log"
)

// Default hyperparameters of AdaBoostClassifier.
const (
	DefaultNEstimators = 50
	DefaultResolution  = 100
)

// config is shared by BoostingEngine and AdaBoostClassifier. The engine takes
// rounds and resolution as Run arguments and ignores nEstimators and
// resolution.
type config struct {
	nEstimators       int
	resolution        int
	parallelThreshold int
	workers           int
	stopOnPerfectFit  bool
	callbacks         []Callback
	logger            log.Logger
}

// Option configures a BoostingEngine or an AdaBoostClassifier.
type Option func(*config)

// WithNEstimators sets the number of boosting rounds of an AdaBoostClassifier.
func WithNEstimators(n int) Option {
	return func(c *config) {
		c.nEstimators = n
	}
}

// WithResolution sets the stump sweep resolution of an AdaBoostClassifier.
func WithResolution(resolution int) Option {
	return func(c *config) {
		c.resolution = resolution
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCallbacks appends per-round callbacks.
func WithCallbacks(callbacks ...Callback) Option {
	return func(c *config) {
		c.callbacks = append(c.callbacks, callbacks...)
	}
}

// WithParallelThreshold sets the sweep size above which stump positions are
// evaluated concurrently. See tree.StumpFitter.ParallelThreshold.
func WithParallelThreshold(threshold int) Option {
	return func(c *config) {
		c.parallelThreshold = threshold
	}
}

// WithWorkers caps the goroutines used per sweep.
func WithWorkers(workers int) Option {
	return func(c *config) {
		c.workers = workers
	}
}

// WithStopOnPerfectFit makes a round whose best stump has zero weighted error
// end training normally instead of failing. That stump is appended with
// alpha 1 as the last round.
func WithStopOnPerfectFit(stop bool) Option {
	return func(c *config) {
		c.stopOnPerfectFit = stop
	}
}
