package ensemble

import (
	"time"

	"github.com/YuminosukeSato/stumpboost/pkg/log"
	"github.com/YuminosukeSato/stumpboost/sklearn/tree"
)

// CallbackEnv is what a Callback sees after each boosting round.
type CallbackEnv struct {
	// Round is the zero-based index of the round just completed.
	Round int

	// Stump is the stump appended in this round.
	Stump tree.DecisionStump

	// WeightedError is the stump's ε under the round's distribution.
	WeightedError float64

	// TrainingError is the fraction of training points the ensemble of
	// Round+1 stumps misclassifies.
	TrainingError float64

	// Misclassified is the number of points the stump alone got wrong.
	Misclassified int

	Ensemble *Ensemble

	// Distribution is the point weighting after this round's update. It is
	// owned by the engine and must not be modified.
	Distribution *Distribution

	BeginTime time.Time
	EndTime   time.Time

	// StopTraining ends boosting after this round when set by a callback.
	StopTraining bool
}

// Callback is called by the engine after every round. A returned error aborts
// the run.
type Callback func(env *CallbackEnv) error

// Metric names written by RecordEvaluation.
const (
	MetricWeightedError = "weighted_error"
	MetricTrainingError = "training_error"
	MetricAlpha         = "alpha"
)

// RecordEvaluation appends the per-round weighted error, training error and
// alpha to history.
func RecordEvaluation(history *map[string][]float64) Callback {
	return func(env *CallbackEnv) error {
		if *history == nil {
			*history = make(map[string][]float64)
		}
		h := *history
		h[MetricWeightedError] = append(h[MetricWeightedError], env.WeightedError)
		h[MetricTrainingError] = append(h[MetricTrainingError], env.TrainingError)
		h[MetricAlpha] = append(h[MetricAlpha], env.Stump.Alpha)
		return nil
	}
}

// EarlyStoppingOnZeroError stops boosting once the ensemble classifies every
// training point correctly.
func EarlyStoppingOnZeroError() Callback {
	return func(env *CallbackEnv) error {
		if env.TrainingError == 0 {
			env.StopTraining = true
		}
		return nil
	}
}

// LogEvaluation logs round statistics at Info level every period rounds.
func LogEvaluation(logger log.Logger, period int) Callback {
	if period < 1 {
		period = 1
	}
	return func(env *CallbackEnv) error {
		if (env.Round+1)%period != 0 {
			return nil
		}
		logger.Info("Boosting round",
			log.IterationKey, env.Round,
			log.AxisKey, env.Stump.Axis.String(),
			log.ThresholdKey, env.Stump.Threshold,
			log.AlphaKey, env.Stump.Alpha,
			log.EpsilonKey, env.WeightedError,
			log.ErrorRateKey, env.TrainingError,
			log.DurationMsKey, env.EndTime.Sub(env.BeginTime).Milliseconds(),
		)
		return nil
	}
}

// TimeLimit stops boosting after the first round that ends past maxDuration
// from when the callback was created.
func TimeLimit(maxDuration time.Duration) Callback {
	startTime := time.Now()
	return func(env *CallbackEnv) error {
		if time.Since(startTime) > maxDuration {
			env.StopTraining = true
		}
		return nil
	}
}

// CallbackList runs callbacks in order.
type CallbackList struct {
	callbacks []Callback
	stop      bool
}

// NewCallbackList creates a new callback list
func NewCallbackList(callbacks ...Callback) *CallbackList {
	return &CallbackList{callbacks: callbacks}
}

// AfterRound runs every callback on env. Callbacks after one that sets
// StopTraining still run.
func (cl *CallbackList) AfterRound(env *CallbackEnv) error {
	for _, cb := range cl.callbacks {
		if err := cb(env); err != nil {
			return err
		}
	}
	if env.StopTraining {
		cl.stop = true
	}
	return nil
}

// ShouldStop returns whether training should stop
func (cl *CallbackList) ShouldStop() bool {
	return cl.stop
}
