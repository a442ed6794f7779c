package ensemble

import (
	"math"
	"testing"

	sberrors "github.com/YuminosukeSato/stumpboost/pkg/errors"
	"github.com/YuminosukeSato/stumpboost/sklearn/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func handEnsemble() *Ensemble {
	return NewEnsemble(
		tree.DecisionStump{Axis: tree.AxisHorizontal, Threshold: 0, Polarity: tree.PolarityPositive, Alpha: 1.0},
		tree.DecisionStump{Axis: tree.AxisVertical, Threshold: 0.5, Polarity: tree.PolarityNegative, Alpha: 0.5},
		tree.DecisionStump{Axis: tree.AxisVertical, Threshold: -0.5, Polarity: tree.PolarityPositive, Alpha: 0.25},
	)
}

func TestEnsemble_DecisionFunction(t *testing.T) {
	e := handEnsemble()

	tests := []struct {
		name   string
		k      int
		x1, x2 float64
		want   float64
	}{
		{"empty prefix", 0, 1, 1, 0},
		{"one stump", 1, 1, 1, 1},
		{"two stumps", 2, 1, 1, 0.5},
		{"all stumps", 3, 1, 1, 0.75},
		{"negative side", 3, -1, 0, -1 + 0.5 + 0.25},
		{"k clamped high", 10, 1, 1, 0.75},
		{"k clamped low", -3, 1, 1, 0},
		{"on threshold abstains", 1, 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, e.DecisionFunction(tt.k, tt.x1, tt.x2), 1e-12)
		})
	}
}

func TestEnsemble_PredictZeroScoreIsPositive(t *testing.T) {
	e := NewEnsemble(
		tree.DecisionStump{Axis: tree.AxisHorizontal, Threshold: 0, Polarity: tree.PolarityPositive, Alpha: 1},
		tree.DecisionStump{Axis: tree.AxisVertical, Threshold: 0, Polarity: tree.PolarityPositive, Alpha: 1},
	)
	assert.Equal(t, 0.0, e.DecisionFunction(2, 1, -1))
	assert.Equal(t, 1.0, e.Predict(2, 1, -1))
	assert.Equal(t, -1.0, e.Predict(2, -1, -1))
	assert.Equal(t, 1.0, e.Predict(0, -1, -1))
}

func TestEnsemble_StagedMatchesDirect(t *testing.T) {
	X, y := noisyPoints(11, 120)
	ens, err := quietEngine().Run(X, y, 12, 30)
	require.NoError(t, err)

	rows, _ := X.Dims()
	for i := 0; i < rows; i++ {
		x1, x2 := X.At(i, 0), X.At(i, 1)
		n := 0
		for k, score := range ens.Staged(x1, x2) {
			n++
			assert.Equal(t, n, k)
			assert.InDelta(t, ens.DecisionFunction(k, x1, x2), score, 1e-12)
		}
		assert.Equal(t, ens.Len(), n)
	}
}

func TestEnsemble_StagedStopsEarly(t *testing.T) {
	e := handEnsemble()
	var seen []int
	for k := range e.Staged(1, 1) {
		seen = append(seen, k)
		if k == 2 {
			break
		}
	}
	assert.Equal(t, []int{1, 2}, seen)
}

func TestEnsemble_MarginsBounded(t *testing.T) {
	X, y := noisyPoints(13, 150)
	ens, err := quietEngine().Run(X, y, 20, 30)
	require.NoError(t, err)

	rows, _ := X.Dims()
	for _, k := range []int{1, 5, 20} {
		for i := 0; i < rows; i++ {
			m := ens.Margin(k, X.At(i, 0), X.At(i, 1), y.AtVec(i))
			assert.GreaterOrEqual(t, m, -1.0-1e-12)
			assert.LessOrEqual(t, m, 1.0+1e-12)
		}
	}
}

func TestEnsemble_MarginUndefinedWarns(t *testing.T) {
	var warnings []error
	sberrors.SetZerologWarnFunc(func(w error) { warnings = append(warnings, w) })
	defer sberrors.SetZerologWarnFunc(nil)

	e := handEnsemble()
	assert.Equal(t, 0.0, e.Margin(0, 1, 1, 1))
	require.Len(t, warnings, 1)

	var umw *sberrors.UndefinedMetricWarning
	assert.True(t, sberrors.As(warnings[0], &umw))

	assert.InDelta(t, 0.75/1.75, e.Margin(3, 1, 1, 1), 1e-12)
	assert.InDelta(t, -0.75/1.75, e.Margin(3, 1, 1, -1), 1e-12)
}

func TestEnsemble_PrefixAndCopies(t *testing.T) {
	e := handEnsemble()

	p := e.Prefix(2)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, e.Stumps()[:2], p.Stumps())
	assert.Equal(t, 3, e.Prefix(99).Len())
	assert.InDelta(t, 1.5, e.TotalAlpha(2), 1e-12)

	stumps := e.Stumps()
	stumps[0].Alpha = 100
	assert.Equal(t, 1.0, e.Stump(0).Alpha, "Stumps must return a copy")

	var nilEns *Ensemble
	assert.Equal(t, 0, nilEns.Len())
}

func TestEnsemble_NilIsEmpty(t *testing.T) {
	var warnings []error
	sberrors.SetZerologWarnFunc(func(w error) { warnings = append(warnings, w) })
	defer sberrors.SetZerologWarnFunc(nil)

	var e *Ensemble
	assert.NotPanics(t, func() {
		assert.Equal(t, 0.0, e.TotalAlpha(3))
		assert.Equal(t, 0.0, e.DecisionFunction(3, 1, 1))
		assert.Equal(t, 1.0, e.Predict(3, 1, 1))
		assert.Equal(t, 0, e.Prefix(3).Len())
		assert.Empty(t, e.Stumps())
		assert.Equal(t, 0.0, e.Margin(3, 1, 1, 1))

		n := 0
		for range e.Staged(1, 1) {
			n++
		}
		assert.Zero(t, n)
	})
	assert.Len(t, warnings, 1)
}

func TestEnsemble_MarginNegligibleConfidence(t *testing.T) {
	var warnings []error
	sberrors.SetZerologWarnFunc(func(w error) { warnings = append(warnings, w) })
	defer sberrors.SetZerologWarnFunc(nil)

	e := NewEnsemble(tree.DecisionStump{Axis: tree.AxisHorizontal, Polarity: tree.PolarityPositive, Alpha: 1e-12})
	assert.Equal(t, 0.0, e.Margin(1, 1, 0, 1))
	assert.Len(t, warnings, 1)
}

func TestEnsemble_MatrixEvaluation(t *testing.T) {
	e := handEnsemble()
	X := mat.NewDense(3, 2, []float64{
		1, 1,
		-1, 0,
		-1, -1,
	})

	scores, err := e.DecisionFunctionMatrix(3, X)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.75, -0.25, -0.75}, scores.RawVector().Data, 1e-12)

	pred, err := e.PredictMatrix(3, X)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -1, -1}, pred.RawVector().Data)

	_, err = e.PredictMatrix(3, mat.NewDense(2, 3, nil))
	var de *sberrors.DimensionError
	assert.True(t, sberrors.As(err, &de))

	_, err = e.DecisionFunctionMatrix(3, &mat.Dense{})
	assert.True(t, sberrors.Is(err, sberrors.ErrEmptyData))
}

func TestDistribution_Update(t *testing.T) {
	d := UniformDistribution(4)
	assert.InDelta(t, 1.0, d.Sum(), 1e-12)

	stump := tree.DecisionStump{Axis: tree.AxisHorizontal, Threshold: 0, Polarity: tree.PolarityPositive, Alpha: 0.5}
	x1 := []float64{-1, -0.5, 0.5, 1}
	x2 := []float64{0, 0, 0, 0}
	labels := []float64{-1, -1, 1, -1}

	missed, err := d.Update(stump, x1, x2, labels, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, missed)
	assert.InDelta(t, 1.0, d.Sum(), 1e-12)
	assert.InDelta(t, math.Exp(1), d.At(3)/d.At(0), 1e-12)

	_, err = d.Update(stump, x1[:2], x2, labels, 1)
	var de *sberrors.DimensionError
	assert.True(t, sberrors.As(err, &de))

	stump.Alpha = math.Inf(1)
	_, err = d.Update(stump, x1, x2, labels, 2)
	var nie *sberrors.NumericalInstabilityError
	assert.True(t, sberrors.As(err, &nie))
}

func TestDistribution_OnThresholdCountsAsCorrect(t *testing.T) {
	d := UniformDistribution(2)
	stump := tree.DecisionStump{Axis: tree.AxisVertical, Threshold: 0, Polarity: tree.PolarityPositive, Alpha: 0.3}

	missed, err := d.Update(stump, []float64{0, 0}, []float64{0, 1}, []float64{-1, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, missed)
	assert.InDelta(t, 0.5, d.At(0), 1e-12)
}
