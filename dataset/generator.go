// Package dataset generates labeled two-dimensional point sets for boosting
// experiments and moves them to and from .npy files.
package dataset

import (
	"math"
	"math/rand/v2"
	"strings"

	sberrors "github.com/YuminosukeSato/stumpboost/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Shape selects the labeling rule of a generated set.
type Shape int

const (
	// ShapeAxis labels x1 > 0 as +1. A single stump separates it.
	ShapeAxis Shape = iota
	// ShapeDiagonal labels x2 > x1 as +1.
	ShapeDiagonal
	// ShapeCircle labels points inside Radius of the box center as +1.
	ShapeCircle
	// ShapeQuadrants labels x1*x2 > 0 as +1 (XOR of the axes).
	ShapeQuadrants
)

var shapeNames = map[Shape]string{
	ShapeAxis:      "axis",
	ShapeDiagonal:  "diagonal",
	ShapeCircle:    "circle",
	ShapeQuadrants: "quadrants",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseShape is the inverse of Shape.String, case-insensitive.
func ParseShape(name string) (Shape, error) {
	for s, n := range shapeNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, sberrors.NewValidationError("shape", "must be one of axis, diagonal, circle, quadrants", name)
}

// Config describes a synthetic point set.
type Config struct {
	// N is the number of points.
	N int
	// Shape is the labeling rule.
	Shape Shape
	// Noise is the fraction of labels flipped after labeling, in [0, 0.5].
	Noise float64
	// Seed makes generation deterministic.
	Seed uint64
	// Min and Max bound both coordinates. Both zero means [-1, 1].
	Min, Max float64
	// Radius is used by ShapeCircle. Zero means 0.6 of the half-width, which
	// puts roughly 28% of uniform points inside.
	Radius float64
}

// withDefaults fills zero-valued bounds and radius.
func (c Config) withDefaults() Config {
	if c.Min == 0 && c.Max == 0 {
		c.Min, c.Max = -1, 1
	}
	if c.Radius == 0 {
		c.Radius = 0.6 * (c.Max - c.Min) / 2
	}
	return c
}

// Validate checks the configuration.
func (c Config) Validate() error {
	c = c.withDefaults()
	switch {
	case c.N < 1:
		return sberrors.NewValidationError("n", "must be at least 1", c.N)
	case !(c.Max > c.Min):
		return sberrors.NewValidationError("max", "must exceed min", c.Max)
	case c.Noise < 0 || c.Noise > 0.5 || math.IsNaN(c.Noise):
		return sberrors.NewValidationError("noise", "must be in [0, 0.5]", c.Noise)
	case c.Radius < 0:
		return sberrors.NewValidationError("radius", "must be non-negative", c.Radius)
	}
	if _, ok := shapeNames[c.Shape]; !ok {
		return sberrors.NewValidationError("shape", "unknown shape", int(c.Shape))
	}
	return nil
}

// Label returns the noise-free label of (x1, x2) under the config's shape.
func (c Config) Label(x1, x2 float64) float64 {
	c = c.withDefaults()
	var positive bool
	switch c.Shape {
	case ShapeAxis:
		positive = x1 > 0
	case ShapeDiagonal:
		positive = x2 > x1
	case ShapeCircle:
		mid := (c.Min + c.Max) / 2
		positive = math.Hypot(x1-mid, x2-mid) < c.Radius
	case ShapeQuadrants:
		positive = x1*x2 > 0
	}
	if positive {
		return 1
	}
	return -1
}

// Generate draws cfg.N points uniformly in the box and labels them. The same
// config always yields the same data.
func Generate(cfg Config) (*mat.Dense, *mat.VecDense, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	cfg = cfg.withDefaults()

	coords := distuv.Uniform{Min: cfg.Min, Max: cfg.Max, Src: rand.NewPCG(cfg.Seed, 1)}
	flip := distuv.Bernoulli{P: cfg.Noise, Src: rand.NewPCG(cfg.Seed, 2)}

	X := mat.NewDense(cfg.N, 2, nil)
	y := mat.NewVecDense(cfg.N, nil)
	for i := 0; i < cfg.N; i++ {
		x1, x2 := coords.Rand(), coords.Rand()
		X.Set(i, 0, x1)
		X.Set(i, 1, x2)

		label := cfg.Label(x1, x2)
		if flip.Rand() == 1 {
			label = -label
		}
		y.SetVec(i, label)
	}
	return X, y, nil
}

// TrainTest generates a training set from cfg and an independent test set of
// nTest points from the same shape under a derived seed.
func TrainTest(cfg Config, nTest int) (Xtrain *mat.Dense, ytrain *mat.VecDense, Xtest *mat.Dense, ytest *mat.VecDense, err error) {
	if nTest < 1 {
		return nil, nil, nil, nil, sberrors.NewValidationError("n_test", "must be at least 1", nTest)
	}
	if Xtrain, ytrain, err = Generate(cfg); err != nil {
		return nil, nil, nil, nil, err
	}

	testCfg := cfg
	testCfg.N = nTest
	testCfg.Seed = cfg.Seed ^ 0x9e3779b97f4a7c15
	if Xtest, ytest, err = Generate(testCfg); err != nil {
		return nil, nil, nil, nil, err
	}
	return Xtrain, ytrain, Xtest, ytest, nil
}
