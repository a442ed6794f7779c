// Package ensemble implements AdaBoost over axis-aligned decision stumps: the
// round-by-round BoostingEngine, the Ensemble it produces, and a
// scikit-learn style AdaBoostClassifier on top of both.
package ensemble

import (
	"context"
	"time"

	sberrors "github.com/YuminosukeSato/stumpboost/pkg/errors"
	"github.com/YuminosukeSato/stumpboost/pkg/log"
	"github.com/YuminosukeSato/stumpboost/sklearn/tree"
	"gonum.org/v1/gonum/mat"
)

// BoostingEngine runs AdaBoost rounds. Rounds are strictly sequential; each
// round sees the distribution left by the previous one.
type BoostingEngine struct {
	cfg config

	// fitStump replaces the stump fitter when set; tests use it to inject
	// stumps the grid sweep would not produce.
	fitStump func(X mat.Matrix, y mat.Vector, weights []float64) (*tree.DecisionStump, error)
}

// NewBoostingEngine creates an engine. By default it logs through the
// "ensemble.boosting" component logger.
func NewBoostingEngine(opts ...Option) *BoostingEngine {
	b := &BoostingEngine{}
	for _, opt := range opts {
		opt(&b.cfg)
	}
	if b.cfg.logger == nil {
		b.cfg.logger = log.GetLoggerWithName("ensemble.boosting")
	}
	return b
}

// Run is RunContext with context.Background().
func (b *BoostingEngine) Run(X mat.Matrix, y mat.Vector, rounds, resolution int) (*Ensemble, error) {
	return b.RunContext(context.Background(), X, y, rounds, resolution)
}

// RunContext boosts for up to rounds rounds, starting from the uniform
// distribution over the rows of X (N×2) with labels y in {-1, +1}.
//
// The returned ensemble is never nil once inputs are validated. When a round
// fails, the ensemble holds the stumps of every completed round and the error
// is returned alongside it: fit failures (including *errors.DegenerateFitError
// tagged with the round) and *errors.InvariantViolationError both end the run
// this way. A callback setting StopTraining or a cancelled ctx ends the run
// early without error.
func (b *BoostingEngine) RunContext(ctx context.Context, X mat.Matrix, y mat.Vector, rounds, resolution int) (ens *Ensemble, err error) {
	const op = "BoostingEngine.Run"
	defer sberrors.Recover(&err, op)

	if X == nil || y == nil {
		return nil, sberrors.NewValueError(op, "X and y must not be nil")
	}
	if rounds < 1 {
		return nil, sberrors.NewValidationError("rounds", "must be at least 1", rounds)
	}
	if resolution < 1 {
		return nil, sberrors.NewValidationError("resolution", "must be at least 1", resolution)
	}
	n, cols := X.Dims()
	if n == 0 {
		return nil, sberrors.NewModelError(op, "empty data", sberrors.ErrEmptyData)
	}
	if cols != 2 {
		return nil, sberrors.NewDimensionError(op, 2, cols, 1)
	}
	if y.Len() != n {
		return nil, sberrors.NewDimensionError(op, n, y.Len(), 0)
	}

	x1 := mat.Col(nil, 0, X)
	x2 := mat.Col(nil, 1, X)
	labels := make([]float64, n)
	for i := range labels {
		labels[i] = y.AtVec(i)
	}

	fitter := &tree.StumpFitter{
		Resolution:        resolution,
		ParallelThreshold: b.cfg.parallelThreshold,
		Workers:           b.cfg.workers,
	}
	fit := fitter.Fit
	if b.fitStump != nil {
		fit = b.fitStump
	}
	dist := UniformDistribution(n)
	ens = &Ensemble{stumps: make([]tree.DecisionStump, 0, rounds)}
	cbs := NewCallbackList(b.cfg.callbacks...)
	scores := make([]float64, n)

	b.cfg.logger.Info("Boosting started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.RoundsKey, rounds,
		log.ResolutionKey, resolution,
	)
	start := time.Now()

	for t := 0; t < rounds; t++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			b.cfg.logger.Warn("Boosting cancelled", log.IterationKey, t, log.ErrAttrKey, ctxErr)
			break
		}
		roundStart := time.Now()

		stump, fitErr := fit(X, y, dist.view())
		perfect := false
		if fitErr != nil {
			var dfe *sberrors.DegenerateFitError
			if b.cfg.stopOnPerfectFit && sberrors.As(fitErr, &dfe) && dfe.Epsilon <= 0 && stump != nil {
				stump.Alpha = 1
				perfect = true
			} else {
				fitErr = sberrors.WithRound(fitErr, t)
				b.cfg.logger.Error("Stump fit failed",
					log.IterationKey, t,
					log.ErrorCodeKey, errorCode(fitErr),
					log.ErrAttrKey, fitErr,
				)
				return ens, fitErr
			}
		}
		if !stump.Axis.Valid() {
			ierr := sberrors.NewInvariantViolationError(op, t, "stump has no valid axis")
			b.cfg.logger.Error("Boosting stopped", log.IterationKey, t, log.ErrorCodeKey, log.ErrorInvariant, log.ErrAttrKey, ierr)
			return ens, ierr
		}

		missed := 0
		if !perfect {
			if missed, err = dist.Update(*stump, x1, x2, labels, t); err != nil {
				b.cfg.logger.Error("Reweighting failed", log.IterationKey, t, log.ErrAttrKey, err)
				return ens, err
			}
		}
		// Only a round whose reweighting succeeded contributes its stump.
		ens.append(*stump)

		wrong := 0
		for i := range scores {
			scores[i] += stump.Alpha * stump.Vote(x1[i], x2[i])
			if label(scores[i]) != labels[i] {
				wrong++
			}
		}
		trainErr := float64(wrong) / float64(n)

		b.cfg.logger.Debug("Round fitted",
			log.IterationKey, t,
			log.AxisKey, stump.Axis.String(),
			log.ThresholdKey, stump.Threshold,
			log.PolarityKey, int(stump.Polarity),
			log.AlphaKey, stump.Alpha,
			log.EpsilonKey, stump.Epsilon,
			log.ErrorRateKey, trainErr,
		)

		env := &CallbackEnv{
			Round:         t,
			Stump:         *stump,
			WeightedError: stump.Epsilon,
			TrainingError: trainErr,
			Misclassified: missed,
			Ensemble:      ens,
			Distribution:  dist,
			BeginTime:     roundStart,
			EndTime:       time.Now(),
		}
		if err := cbs.AfterRound(env); err != nil {
			return ens, sberrors.Wrapf(err, "callback failed at round %d", t)
		}
		if perfect {
			b.cfg.logger.Info("Perfect stump found, stopping", log.IterationKey, t)
			break
		}
		if cbs.ShouldStop() {
			b.cfg.logger.Info("Boosting stopped by callback", log.IterationKey, t)
			break
		}
	}

	b.cfg.logger.Info("Boosting finished",
		log.RoundsKey, ens.Len(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return ens, nil
}

func errorCode(err error) string {
	var dfe *sberrors.DegenerateFitError
	var ve *sberrors.ValidationError
	var de *sberrors.DimensionError
	switch {
	case sberrors.As(err, &dfe):
		return log.ErrorDegenerateFit
	case sberrors.As(err, &de):
		return log.ErrorDimensionMismatch
	case sberrors.Is(err, sberrors.ErrEmptyData):
		return log.ErrorEmptyData
	case sberrors.As(err, &ve):
		return log.ErrorInvalidInput
	default:
		return ""
	}
}
