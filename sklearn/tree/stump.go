// Package tree implements axis-aligned decision stumps over two-dimensional
// points: single-threshold rules on x1 or x2 found by an exhaustive grid sweep
// under a per-point weight distribution.
package tree

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/stumpboost/core/parallel"
	sberrors "github.com/YuminosukeSato/stumpboost/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Axis selects the coordinate a stump splits on.
type Axis int

const (
	// AxisUnknown is the zero value and never produced by a successful fit.
	AxisUnknown Axis = iota
	// AxisHorizontal splits on x1: the sweep moves along the horizontal axis.
	AxisHorizontal
	// AxisVertical splits on x2.
	AxisVertical
)

// String returns "horizontal", "vertical" or "unknown".
func (a Axis) String() string {
	switch a {
	case AxisHorizontal:
		return "horizontal"
	case AxisVertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// Valid reports whether a is horizontal or vertical.
func (a Axis) Valid() bool {
	return a == AxisHorizontal || a == AxisVertical
}

// Feature returns the column index of the split coordinate, or -1.
func (a Axis) Feature() int {
	switch a {
	case AxisHorizontal:
		return 0
	case AxisVertical:
		return 1
	default:
		return -1
	}
}

// AxisFromFeature is the inverse of Axis.Feature.
func AxisFromFeature(feature int) Axis {
	switch feature {
	case 0:
		return AxisHorizontal
	case 1:
		return AxisVertical
	default:
		return AxisUnknown
	}
}

// Polarity is the label assigned to points whose coordinate exceeds the threshold.
type Polarity int

const (
	PolarityNegative Polarity = -1
	PolarityPositive Polarity = 1
)

// Float returns the polarity as ±1.
func (p Polarity) Float() float64 {
	return float64(p)
}

func (p Polarity) String() string {
	if p == PolarityNegative {
		return "-1"
	}
	return "+1"
}

// DecisionStump is a single-threshold rule: points with coordinate greater
// than Threshold on Axis vote Polarity, points below vote -Polarity.
type DecisionStump struct {
	Axis      Axis
	Threshold float64
	Polarity  Polarity

	// Alpha is the stump's vote weight, 0.5*ln((1-ε)/ε).
	Alpha float64

	// Epsilon is the weighted training error at fit time, as a fraction of
	// the total weight.
	Epsilon float64
}

// Coordinate returns the coordinate of (x1, x2) the stump looks at.
func (s DecisionStump) Coordinate(x1, x2 float64) float64 {
	if s.Axis == AxisVertical {
		return x2
	}
	return x1
}

// Vote returns polarity*sign(coord-threshold): +1, -1, or 0 for a point
// lying exactly on the threshold.
func (s DecisionStump) Vote(x1, x2 float64) float64 {
	return s.Polarity.Float() * sign(s.Coordinate(x1, x2)-s.Threshold)
}

// Predict returns the stump's label for a point. Points on the threshold are
// labeled +1.
func (s DecisionStump) Predict(x1, x2 float64) float64 {
	if s.Vote(x1, x2) < 0 {
		return -1
	}
	return 1
}

// Misclassifies reports whether the rule disagrees with label. Points lying
// exactly on the threshold count as neither error, as in the sweep.
func (s DecisionStump) Misclassifies(x1, x2, label float64) bool {
	return (s.Coordinate(x1, x2)-s.Threshold)*label*s.Polarity.Float() < 0
}

func (s DecisionStump) String() string {
	name := "x1"
	if s.Axis == AxisVertical {
		name = "x2"
	}
	return fmt.Sprintf("%s > %.4g => %s (alpha=%.4f, eps=%.4f)", name, s.Threshold, s.Polarity, s.Alpha, s.Epsilon)
}

// Confidence returns 0.5*ln((1-ε)/ε), infinite for ε ∈ {0, 1}.
func Confidence(epsilon float64) float64 {
	return 0.5 * math.Log((1-epsilon)/epsilon)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// DefaultParallelThreshold is the amount of work (positions × points) below
// which the sweep runs on the calling goroutine.
const DefaultParallelThreshold = 1 << 15

// StumpFitter searches the grid of axis-aligned split positions.
type StumpFitter struct {
	// Resolution is the number of grid steps per axis; resolution+1 positions
	// are evaluated.
	Resolution int

	// ParallelThreshold is the work size above which sweep positions are
	// evaluated concurrently. Zero means DefaultParallelThreshold, a negative
	// value disables parallelism.
	ParallelThreshold int

	// Workers caps the number of goroutines; non-positive means one per CPU.
	Workers int
}

// NewStumpFitter returns a fitter with the given resolution.
func NewStumpFitter(resolution int) *StumpFitter {
	return &StumpFitter{Resolution: resolution}
}

// FitStump is NewStumpFitter(resolution).Fit(X, y, weights).
func FitStump(X mat.Matrix, y mat.Vector, weights []float64, resolution int) (*DecisionStump, error) {
	return NewStumpFitter(resolution).Fit(X, y, weights)
}

// SearchStump is NewStumpFitter(resolution).Search(X, y, weights).
func SearchStump(X mat.Matrix, y mat.Vector, weights []float64, resolution int) (*DecisionStump, error) {
	return NewStumpFitter(resolution).Search(X, y, weights)
}

// Fit searches for the best stump and sets its confidence.
//
// A best stump with ε == 0 or ε == 1 has no finite confidence; Fit then
// returns the stump found (Alpha left at zero) together with a
// *errors.DegenerateFitError.
func (f *StumpFitter) Fit(X mat.Matrix, y mat.Vector, weights []float64) (*DecisionStump, error) {
	const op = "StumpFitter.Fit"

	stump, err := f.search(op, X, y, weights)
	if err != nil {
		return nil, err
	}
	if stump.Epsilon <= 0 || stump.Epsilon >= 1 {
		return stump, sberrors.NewDegenerateFitError(op, stump.Epsilon, -1, stump.Axis.String(), stump.Threshold)
	}

	stump.Alpha = Confidence(stump.Epsilon)
	if err := sberrors.CheckScalar(op, stump.Alpha, 0); err != nil {
		return nil, err
	}
	return stump, nil
}

// Search returns the stump with the lowest weighted error over the grid of
// 4*(resolution+1) candidates, with Alpha unset. It accepts ε == 0.
//
// Ties are resolved as in a left-to-right sequential scan: within a position
// horizontal beats vertical and polarity +1 beats -1; across positions the
// first position reaching the minimum wins.
func (f *StumpFitter) Search(X mat.Matrix, y mat.Vector, weights []float64) (*DecisionStump, error) {
	return f.search("StumpFitter.Search", X, y, weights)
}

type sweepInput struct {
	x1, x2, labels, weights []float64
	total                   float64
}

type candidate struct {
	axis      Axis
	polarity  Polarity
	threshold float64
	err       float64
}

func (f *StumpFitter) search(op string, X mat.Matrix, y mat.Vector, weights []float64) (*DecisionStump, error) {
	in, err := validate(op, X, y, weights, f.Resolution)
	if err != nil {
		return nil, err
	}

	res := f.Resolution
	width, start1 := gridOrigin(in.x1, res)
	height, start2 := gridOrigin(in.x2, res)

	positions := res + 1
	cands := make([]candidate, positions)
	sweep := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			s1 := start1 + float64(i)*width
			s2 := start2 + float64(i)*height
			cands[i] = evaluatePosition(in, s1, s2)
		}
	}

	threshold := f.ParallelThreshold
	switch {
	case threshold == 0:
		threshold = DefaultParallelThreshold
	case threshold < 0:
		threshold = math.MaxInt
	}
	work := positions * len(in.labels)
	if work <= threshold {
		sweep(0, positions)
	} else {
		parallel.ParallelizeN(positions, f.Workers, sweep)
	}

	// Fixed-order reduction; strict < keeps the first position on ties.
	best := candidate{err: math.Inf(1)}
	for _, c := range cands {
		if c.err < best.err {
			best = c
		}
	}
	if !best.axis.Valid() {
		return nil, sberrors.NewInvariantViolationError(op, -1, "no candidate axis selected")
	}

	return &DecisionStump{
		Axis:      best.axis,
		Threshold: best.threshold,
		Polarity:  best.polarity,
		Epsilon:   best.err / in.total,
	}, nil
}

// gridOrigin returns the step size and first sweep position for one axis.
// The first position sits half a step below the minimum. An axis with zero
// range uses a unit step so that thresholds still fall between points.
func gridOrigin(coords []float64, resolution int) (step, start float64) {
	lo, hi := floats.Min(coords), floats.Max(coords)
	step = (hi - lo) / float64(resolution)
	if step == 0 {
		step = 1
	}
	return step, lo - step/2
}

// evaluatePosition computes the four weighted errors at sweep position
// (s1, s2) and returns the best of them.
func evaluatePosition(in sweepInput, s1, s2 float64) candidate {
	var horzRight, horzLeft, vertUp, vertDown float64
	for j, label := range in.labels {
		w := in.weights[j]

		d1 := (in.x1[j] - s1) * label
		if d1 < 0 {
			horzRight += w
		} else if d1 > 0 {
			horzLeft += w
		}

		d2 := (in.x2[j] - s2) * label
		if d2 < 0 {
			vertUp += w
		} else if d2 > 0 {
			vertDown += w
		}
	}

	horz := candidate{axis: AxisHorizontal, polarity: PolarityPositive, threshold: s1, err: horzRight}
	if horzRight > horzLeft {
		horz.polarity = PolarityNegative
		horz.err = horzLeft
	}
	vert := candidate{axis: AxisVertical, polarity: PolarityPositive, threshold: s2, err: vertUp}
	if vertUp > vertDown {
		vert.polarity = PolarityNegative
		vert.err = vertDown
	}

	if horz.err <= vert.err {
		return horz
	}
	return vert
}

// validate checks shapes and values and copies the inputs into flat slices.
func validate(op string, X mat.Matrix, y mat.Vector, weights []float64, resolution int) (sweepInput, error) {
	if X == nil || y == nil {
		return sweepInput{}, sberrors.NewValueError(op, "X and y must not be nil")
	}
	if resolution < 1 {
		return sweepInput{}, sberrors.NewValidationError("resolution", "must be at least 1", resolution)
	}

	rows, cols := X.Dims()
	if rows == 0 {
		return sweepInput{}, sberrors.NewModelError(op, "empty data", sberrors.ErrEmptyData)
	}
	if cols != 2 {
		return sweepInput{}, sberrors.NewDimensionError(op, 2, cols, 1)
	}
	if y.Len() != rows {
		return sweepInput{}, sberrors.NewDimensionError(op, rows, y.Len(), 0)
	}
	if len(weights) != rows {
		return sweepInput{}, sberrors.NewDimensionError(op, rows, len(weights), 0)
	}

	in := sweepInput{
		x1:      mat.Col(nil, 0, X),
		x2:      mat.Col(nil, 1, X),
		labels:  make([]float64, rows),
		weights: weights,
	}
	for i := 0; i < rows; i++ {
		if !isFinite(in.x1[i]) || !isFinite(in.x2[i]) {
			return sweepInput{}, sberrors.NewValidationError("X", "coordinates must be finite", [2]float64{in.x1[i], in.x2[i]})
		}
		label := y.AtVec(i)
		if label != 1 && label != -1 {
			return sweepInput{}, sberrors.NewValidationError("y", "labels must be +1 or -1", label)
		}
		in.labels[i] = label

		w := weights[i]
		if w < 0 || !isFinite(w) {
			return sweepInput{}, sberrors.NewValidationError("weights", "must be finite and non-negative", w)
		}
	}

	in.total = floats.Sum(weights)
	if !(in.total > 0) || !isFinite(in.total) {
		return sweepInput{}, sberrors.NewValidationError("weights", "must sum to a positive finite value", in.total)
	}
	return in, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// PredictMatrix applies the stump to every row of X (N×2).
func (s DecisionStump) PredictMatrix(X mat.Matrix) (*mat.VecDense, error) {
	rows, cols := X.Dims()
	if cols != 2 {
		return nil, sberrors.NewDimensionError("DecisionStump.PredictMatrix", 2, cols, 1)
	}
	out := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		out.SetVec(i, s.Predict(X.At(i, 0), X.At(i, 1)))
	}
	return out, nil
}
