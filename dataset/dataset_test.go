package dataset

import (
	"path/filepath"
	"testing"

	sberrors "github.com/YuminosukeSato/stumpboost/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := Config{N: 100, Shape: ShapeCircle, Noise: 0.1, Seed: 7}

	X1, y1, err := Generate(cfg)
	require.NoError(t, err)
	X2, y2, err := Generate(cfg)
	require.NoError(t, err)
	assert.True(t, mat.Equal(X1, X2))
	assert.True(t, mat.Equal(y1, y2))

	cfg.Seed = 8
	X3, _, err := Generate(cfg)
	require.NoError(t, err)
	assert.False(t, mat.Equal(X1, X3))
}

func TestGenerate_Shapes(t *testing.T) {
	tests := []struct {
		shape Shape
		rule  func(x1, x2 float64) bool
	}{
		{ShapeAxis, func(x1, x2 float64) bool { return x1 > 0 }},
		{ShapeDiagonal, func(x1, x2 float64) bool { return x2 > x1 }},
		{ShapeCircle, func(x1, x2 float64) bool { return x1*x1+x2*x2 < 0.36 }},
		{ShapeQuadrants, func(x1, x2 float64) bool { return x1*x2 > 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.shape.String(), func(t *testing.T) {
			X, y, err := Generate(Config{N: 300, Shape: tt.shape, Seed: 1})
			require.NoError(t, err)

			pos := 0
			for i := 0; i < y.Len(); i++ {
				x1, x2 := X.At(i, 0), X.At(i, 1)
				assert.GreaterOrEqual(t, x1, -1.0)
				assert.LessOrEqual(t, x1, 1.0)
				want := -1.0
				if tt.rule(x1, x2) {
					want = 1
					pos++
				}
				assert.Equal(t, want, y.AtVec(i))
			}
			assert.Greater(t, pos, 0)
			assert.Less(t, pos, 300)
		})
	}
}

func TestGenerate_Noise(t *testing.T) {
	cfg := Config{N: 2000, Shape: ShapeAxis, Noise: 0.2, Seed: 3}
	X, y, err := Generate(cfg)
	require.NoError(t, err)

	flipped := 0
	for i := 0; i < y.Len(); i++ {
		if y.AtVec(i) != cfg.Label(X.At(i, 0), X.At(i, 1)) {
			flipped++
		}
	}
	assert.InDelta(t, 0.2, float64(flipped)/2000, 0.04)
}

func TestGenerate_CustomBox(t *testing.T) {
	X, _, err := Generate(Config{N: 50, Shape: ShapeAxis, Min: 2, Max: 3, Seed: 4})
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		assert.GreaterOrEqual(t, X.At(i, 1), 2.0)
		assert.LessOrEqual(t, X.At(i, 1), 3.0)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		param string
	}{
		{"no points", Config{N: 0}, "n"},
		{"inverted box", Config{N: 1, Min: 1, Max: -1}, "max"},
		{"too noisy", Config{N: 1, Noise: 0.7}, "noise"},
		{"unknown shape", Config{N: 1, Shape: Shape(42)}, "shape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Generate(tt.cfg)
			var ve *sberrors.ValidationError
			require.True(t, sberrors.As(err, &ve))
			assert.Equal(t, tt.param, ve.ParamName)
		})
	}
}

func TestParseShape(t *testing.T) {
	for s, name := range shapeNames {
		got, err := ParseShape(name)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseShape("Circle")
	require.NoError(t, err)
	assert.Equal(t, ShapeCircle, got)

	_, err = ParseShape("spiral")
	assert.Error(t, err)
}

func TestTrainTest(t *testing.T) {
	cfg := Config{N: 80, Shape: ShapeDiagonal, Seed: 5}
	Xtr, ytr, Xte, yte, err := TrainTest(cfg, 40)
	require.NoError(t, err)

	r, _ := Xtr.Dims()
	assert.Equal(t, 80, r)
	assert.Equal(t, 80, ytr.Len())
	r, _ = Xte.Dims()
	assert.Equal(t, 40, r)
	assert.Equal(t, 40, yte.Len())
	assert.NotEqual(t, Xtr.At(0, 0), Xte.At(0, 0))

	_, _, _, _, err = TrainTest(cfg, 0)
	assert.Error(t, err)
}

func TestNPYRoundTrip(t *testing.T) {
	X, y, err := Generate(Config{N: 25, Shape: ShapeQuadrants, Seed: 9})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "points.npy")
	require.NoError(t, SaveNPY(path, X, y))

	X2, y2, err := LoadNPY(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(X, X2))
	assert.True(t, mat.Equal(y, y2))
}

func TestNPYErrors(t *testing.T) {
	dir := t.TempDir()

	err := SaveNPY(filepath.Join(dir, "bad.npy"), mat.NewDense(2, 3, nil), mat.NewVecDense(2, nil))
	var de *sberrors.DimensionError
	assert.True(t, sberrors.As(err, &de))

	curve := filepath.Join(dir, "curve.npy")
	require.NoError(t, SaveVectorNPY(curve, []float64{0.5, 0.25, 0.125}))
	_, _, err = LoadNPY(curve)
	assert.True(t, sberrors.As(err, &de), "an N×1 file is not a point set")

	assert.True(t, sberrors.Is(SaveVectorNPY(curve, nil), sberrors.ErrEmptyData))

	_, _, err = LoadNPY(filepath.Join(dir, "missing.npy"))
	assert.Error(t, err)
}
