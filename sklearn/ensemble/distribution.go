package ensemble

import (
	"math"

	sberrors "github.com/YuminosukeSato/stumpboost/pkg/errors"
	"github.com/YuminosukeSato/stumpboost/sklearn/tree"
	"gonum.org/v1/gonum/floats"
)

// Distribution is the per-point importance weighting boosting maintains
// between rounds. It always sums to one after construction or Update.
type Distribution struct {
	weights []float64
}

// UniformDistribution returns 1/n on every point.
func UniformDistribution(n int) *Distribution {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return &Distribution{weights: w}
}

// Len returns the number of points.
func (d *Distribution) Len() int {
	return len(d.weights)
}

// At returns the weight of point i.
func (d *Distribution) At(i int) float64 {
	return d.weights[i]
}

// Sum returns the total weight.
func (d *Distribution) Sum() float64 {
	return floats.Sum(d.weights)
}

// Weights returns a copy of the weights.
func (d *Distribution) Weights() []float64 {
	out := make([]float64, len(d.weights))
	copy(out, d.weights)
	return out
}

// view exposes the backing slice to the engine without a copy.
func (d *Distribution) view() []float64 {
	return d.weights
}

// Update applies the exponential rule for one fitted stump: weights of
// misclassified points are multiplied by exp(alpha), all others by
// exp(-alpha), then the distribution is renormalized. Points exactly on the
// threshold count as correctly classified. It returns the number of
// misclassified points.
func (d *Distribution) Update(stump tree.DecisionStump, x1, x2, labels []float64, round int) (int, error) {
	const op = "Distribution.Update"

	if len(x1) != len(d.weights) || len(x2) != len(d.weights) || len(labels) != len(d.weights) {
		return 0, sberrors.NewDimensionError(op, len(d.weights), len(labels), 0)
	}
	if err := sberrors.CheckScalar(op, stump.Alpha, round); err != nil {
		return 0, err
	}

	up := math.Exp(stump.Alpha)
	down := math.Exp(-stump.Alpha)

	missed := 0
	for i, label := range labels {
		if stump.Misclassifies(x1[i], x2[i], label) {
			d.weights[i] *= up
			missed++
		} else {
			d.weights[i] *= down
		}
	}

	return missed, d.normalize(round)
}

func (d *Distribution) normalize(round int) error {
	const op = "Distribution.normalize"

	sum := floats.Sum(d.weights)
	if !(sum > 0) || math.IsInf(sum, 0) {
		return sberrors.NewNumericalInstabilityError(op, []float64{sum}, round)
	}
	floats.Scale(1/sum, d.weights)
	return sberrors.CheckNumericalStability(op, d.weights, round)
}
