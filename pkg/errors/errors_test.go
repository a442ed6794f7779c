package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "invalid input",
			err:     fmt.Errorf("test error"),
			wantMsg: "stumpboost: Fit: invalid input: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "stumpboost: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			assert.Equal(t, tt.wantMsg, err.Error())

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			assert.True(t, strings.Contains(formatted, "errors_test.go"), "expected stack trace to contain test file name")

			var modelErr *ModelError
			assert.True(t, As(err, &modelErr))
		})
	}
}

func TestModelErrorUnwrapsEmptyData(t *testing.T) {
	err := NewModelError("FitStump", "empty data", ErrEmptyData)
	assert.True(t, Is(err, ErrEmptyData))
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("FitStump", 2, 3, 1)

	assert.Equal(t, "stumpboost: FitStump: dimension mismatch on axis 1 (features). Expected 2, got 3", err.Error())

	var dimErr *DimensionError
	require.True(t, As(err, &dimErr))
	assert.Equal(t, 2, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Got)
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("resolution", "must be at least 1", 0)
	assert.Equal(t, "stumpboost: validation failed for parameter 'resolution': must be at least 1 (got: 0)", err.Error())

	var valErr *ValidationError
	require.True(t, As(err, &valErr))
	assert.Equal(t, "resolution", valErr.ParamName)
}

func TestDegenerateFitError(t *testing.T) {
	err := NewDegenerateFitError("FitStump", 0, -1, "horizontal", -0.75)

	var dfe *DegenerateFitError
	require.True(t, As(err, &dfe))
	assert.Equal(t, 0.0, dfe.Epsilon)
	assert.Equal(t, -1, dfe.Round)
	assert.Contains(t, err.Error(), "degenerate stump at round -1")

	withRound := WithRound(err, 7)
	var dfe2 *DegenerateFitError
	require.True(t, As(withRound, &dfe2))
	assert.Equal(t, 7, dfe2.Round)
	assert.Equal(t, -1, dfe.Round, "original error must not be mutated")

	other := NewValueError("x", "y")
	assert.Equal(t, other, WithRound(other, 3))
}

func TestInvariantViolationError(t *testing.T) {
	err := NewInvariantViolationError("BoostingEngine.Run", 4, "no winning axis")
	assert.Equal(t, "stumpboost: BoostingEngine.Run: internal invariant violated at round 4: no winning axis", err.Error())

	var ive *InvariantViolationError
	assert.True(t, As(err, &ive))
}

func TestMarshalZerologObject(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	dfe := &DegenerateFitError{Op: "FitStump", Epsilon: 1, Round: 2, Axis: "vertical", Threshold: 0.5}
	logger.Error().EmbedObject(dfe).Msg("fit failed")

	out := buf.String()
	assert.Contains(t, out, `"type":"DegenerateFitError"`)
	assert.Contains(t, out, `"round":2`)
	assert.Contains(t, out, `"axis":"vertical"`)
}

func TestWarnDispatch(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	SetZerologWarnFunc(nil)
	Warn(NewConvergenceWarning("AdaBoost", 3, "early stop"))
	require.Len(t, got, 1)
	assert.Equal(t, "AdaBoost stopped after 3 rounds: early stop", got[0].Error())

	var viaZerolog []error
	SetZerologWarnFunc(func(w error) { viaZerolog = append(viaZerolog, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewUndefinedMetricWarning("margin", "zero total confidence", 0))
	assert.Len(t, got, 1, "fallback handler must not be called when zerolog sink is set")
	assert.Len(t, viaZerolog, 1)
}

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("weights", []float64{0.1, 0.9}, 0))

	err := CheckNumericalStability("weights", []float64{0.1, math.NaN(), math.Inf(1)}, 3)
	require.Error(t, err)
	var nie *NumericalInstabilityError
	require.True(t, As(err, &nie))
	assert.Equal(t, 3, nie.Iteration)
	assert.Len(t, nie.Values, 2)

	assert.NoError(t, CheckScalar("alpha", 0.4, 0))
	assert.Error(t, CheckScalar("alpha", math.Inf(-1), 0))
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 2.0, SafeDivide(4, 2))
	assert.Equal(t, 0.0, SafeDivide(4, 0))
	assert.Equal(t, 0.0, SafeDivide(4, 1e-12))
}
