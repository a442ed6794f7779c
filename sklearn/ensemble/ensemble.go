package ensemble

import (
	"iter"
	"math"

	"github.com/YuminosukeSato/stumpboost/core/parallel"
	sberrors "github.com/YuminosukeSato/stumpboost/pkg/errors"
	"github.com/YuminosukeSato/stumpboost/sklearn/tree"
	"gonum.org/v1/gonum/mat"
)

// Ensemble is an ordered, append-only sequence of fitted stumps. Every
// evaluation method takes a prefix length k and uses the first k stumps; k is
// clamped to [0, Len()].
type Ensemble struct {
	stumps []tree.DecisionStump
}

// NewEnsemble builds an ensemble from stumps in round order.
func NewEnsemble(stumps ...tree.DecisionStump) *Ensemble {
	e := &Ensemble{stumps: make([]tree.DecisionStump, len(stumps))}
	copy(e.stumps, stumps)
	return e
}

func (e *Ensemble) append(s tree.DecisionStump) {
	e.stumps = append(e.stumps, s)
}

// Len returns the number of stumps.
func (e *Ensemble) Len() int {
	if e == nil {
		return 0
	}
	return len(e.stumps)
}

// Stump returns the stump fitted in round i (zero-based).
func (e *Ensemble) Stump(i int) tree.DecisionStump {
	return e.stumps[i]
}

// Stumps returns a copy of the stumps in round order.
func (e *Ensemble) Stumps() []tree.DecisionStump {
	out := make([]tree.DecisionStump, e.Len())
	if e != nil {
		copy(out, e.stumps)
	}
	return out
}

// Prefix returns a new ensemble holding the first k stumps.
func (e *Ensemble) Prefix(k int) *Ensemble {
	return NewEnsemble(e.prefix(k)...)
}

// prefix returns the first k stumps without copying. A nil ensemble has none.
func (e *Ensemble) prefix(k int) []tree.DecisionStump {
	if e == nil {
		return nil
	}
	return e.stumps[:e.clamp(k)]
}

func (e *Ensemble) clamp(k int) int {
	n := e.Len()
	switch {
	case k < 0:
		return 0
	case k > n:
		return n
	default:
		return k
	}
}

// TotalAlpha returns the sum of the first k confidences.
func (e *Ensemble) TotalAlpha(k int) float64 {
	var total float64
	for _, s := range e.prefix(k) {
		total += s.Alpha
	}
	return total
}

// DecisionFunction returns Σ alpha_j * polarity_j * sign(coord_j - threshold_j)
// over the first k stumps.
func (e *Ensemble) DecisionFunction(k int, x1, x2 float64) float64 {
	var score float64
	for _, s := range e.prefix(k) {
		score += s.Alpha * s.Vote(x1, x2)
	}
	return score
}

// Predict returns the sign of the k-prefix score. A zero score is +1.
func (e *Ensemble) Predict(k int, x1, x2 float64) float64 {
	return label(e.DecisionFunction(k, x1, x2))
}

// Margin returns label * score / TotalAlpha(k), a value in [-1, 1]. When the
// total confidence is below errors.MinDenominator the margin is undefined;
// Margin then emits an UndefinedMetricWarning and returns 0.
func (e *Ensemble) Margin(k int, x1, x2, y float64) float64 {
	total := e.TotalAlpha(k)
	if math.Abs(total) < sberrors.MinDenominator {
		sberrors.Warn(sberrors.NewUndefinedMetricWarning("margin", "zero total confidence", 0))
	}
	return sberrors.SafeDivide(y*e.DecisionFunction(k, x1, x2), total)
}

// Staged yields (prefix length, cumulative score) for prefix lengths
// 1..Len(), folding one stump per step.
func (e *Ensemble) Staged(x1, x2 float64) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		var score float64
		for i, s := range e.Stumps() {
			score += s.Alpha * s.Vote(x1, x2)
			if !yield(i+1, score) {
				return
			}
		}
	}
}

func label(score float64) float64 {
	if score < 0 {
		return -1
	}
	return 1
}

// batchThreshold is the number of stump evaluations below which batch
// scoring stays on the calling goroutine.
const batchThreshold = 1 << 14

// DecisionFunctionMatrix scores every row of X (N×2) with the k-prefix.
func (e *Ensemble) DecisionFunctionMatrix(k int, X mat.Matrix) (*mat.VecDense, error) {
	const op = "Ensemble.DecisionFunctionMatrix"

	rows, cols := X.Dims()
	if rows == 0 {
		return nil, sberrors.NewModelError(op, "empty data", sberrors.ErrEmptyData)
	}
	if cols != 2 {
		return nil, sberrors.NewDimensionError(op, 2, cols, 1)
	}

	k = e.clamp(k)
	scores := make([]float64, rows)
	parallel.ParallelizeWithThreshold(rows, rows*k, batchThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			scores[i] = e.DecisionFunction(k, X.At(i, 0), X.At(i, 1))
		}
	})
	return mat.NewVecDense(rows, scores), nil
}

// PredictMatrix labels every row of X (N×2) with the k-prefix.
func (e *Ensemble) PredictMatrix(k int, X mat.Matrix) (*mat.VecDense, error) {
	scores, err := e.DecisionFunctionMatrix(k, X)
	if err != nil {
		return nil, err
	}
	for i := 0; i < scores.Len(); i++ {
		scores.SetVec(i, label(scores.AtVec(i)))
	}
	return scores, nil
}
