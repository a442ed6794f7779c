// Package log defines standard attribute keys for boosting operations.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples", "boost.alpha") so that log lines from the fitter, the
// engine and the demo program can be filtered the same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model.
	// Examples: "AdaBoostClassifier", "DecisionStump"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "staged_score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging.
	// Examples: "tree.stump", "ensemble.engine", "dataset"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of points in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of coordinates per point.
	FeaturesKey = "data.features"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy in [0, 1].
	AccuracyKey = "metrics.accuracy"

	// ErrorRateKey records the unweighted misclassification rate in [0, 1].
	ErrorRateKey = "metrics.error_rate"

	// IterationKey records the boosting round.
	IterationKey = "training.iteration"
)

// Boosting
const (
	// AxisKey records the axis a stump splits on ("horizontal" or "vertical").
	AxisKey = "boost.axis"

	// ThresholdKey records a stump's split coordinate.
	ThresholdKey = "boost.threshold"

	// PolarityKey records a stump's polarity (+1 or -1).
	PolarityKey = "boost.polarity"

	// AlphaKey records a stump's confidence 0.5*ln((1-ε)/ε).
	AlphaKey = "boost.alpha"

	// EpsilonKey records a stump's weighted training error.
	EpsilonKey = "boost.epsilon"

	// ResolutionKey records the sweep resolution of the stump search.
	ResolutionKey = "boost.resolution"

	// RoundsKey records the requested number of boosting rounds.
	RoundsKey = "boost.rounds"

	// MarginKey records a margin statistic.
	MarginKey = "boost.margin"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides helpful suggestions for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Configuration
const (
	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit         = "fit"
	OperationPredict     = "predict"
	OperationScore       = "score"
	OperationStagedScore = "staged_score"

	PhaseTraining   = "training"
	PhaseTesting    = "testing"
	PhaseInference  = "inference"
	PhaseGeneration = "generation"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorDegenerateFit     = "DEGENERATE_FIT"
	ErrorInvariant         = "INVARIANT_VIOLATION"
)
