// Package visualization renders boosting results with gonum/plot: decision
// regions over the input plane, per-round accuracy curves and margin
// distributions. The output format follows the file extension (.png, .svg,
// .pdf, ...).
package visualization

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/YuminosukeSato/stumpboost/metrics"
	sberrors "github.com/YuminosukeSato/stumpboost/pkg/errors"
	"github.com/YuminosukeSato/stumpboost/sklearn/ensemble"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Size is the width and height of saved figures.
var Size = 5 * vg.Inch

// GridSteps is the number of cells per axis of the decision-region heat map.
var GridSteps = 120

// regionGrid evaluates an ensemble prediction on a regular grid; it
// implements plotter.GridXYZ.
type regionGrid struct {
	ens                    *ensemble.Ensemble
	minX, maxX, minY, maxY float64
	steps                  int
	z                      []float64
}

func newRegionGrid(ens *ensemble.Ensemble, minX, maxX, minY, maxY float64, steps int) *regionGrid {
	g := &regionGrid{ens: ens, minX: minX, maxX: maxX, minY: minY, maxY: maxY, steps: steps}
	g.z = make([]float64, steps*steps)
	k := ens.Len()
	for r := 0; r < steps; r++ {
		for c := 0; c < steps; c++ {
			g.z[r*steps+c] = ens.Predict(k, g.X(c), g.Y(r))
		}
	}
	return g
}

func (g *regionGrid) Dims() (c, r int)   { return g.steps, g.steps }
func (g *regionGrid) Z(c, r int) float64 { return g.z[r*g.steps+c] }
func (g *regionGrid) X(c int) float64 {
	return g.minX + (float64(c)+0.5)*(g.maxX-g.minX)/float64(g.steps)
}
func (g *regionGrid) Y(r int) float64 {
	return g.minY + (float64(r)+0.5)*(g.maxY-g.minY)/float64(g.steps)
}

// PlotDecisionRegions draws the ensemble's ±1 regions under the labeled
// points of X (N×2) and y, and saves the figure to path.
func PlotDecisionRegions(X mat.Matrix, y mat.Vector, ens *ensemble.Ensemble, path string) error {
	const op = "visualization.PlotDecisionRegions"

	rows, cols := X.Dims()
	if rows == 0 || ens.Len() == 0 {
		return sberrors.NewModelError(op, "empty data", sberrors.ErrEmptyData)
	}
	if cols != 2 {
		return sberrors.NewDimensionError(op, 2, cols, 1)
	}
	if y.Len() != rows {
		return sberrors.NewDimensionError(op, rows, y.Len(), 0)
	}

	x1 := mat.Col(nil, 0, X)
	x2 := mat.Col(nil, 1, X)
	minX, maxX := padded(floats.Min(x1), floats.Max(x1))
	minY, maxY := padded(floats.Min(x2), floats.Max(x2))

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Decision regions (%d stumps)", ens.Len())
	p.X.Label.Text = "x1"
	p.Y.Label.Text = "x2"

	heat := plotter.NewHeatMap(newRegionGrid(ens, minX, maxX, minY, maxY, GridSteps), palette.Heat(2, 0.35))
	heat.Min, heat.Max = -1, 1
	p.Add(heat)

	var pos, neg plotter.XYs
	for i := 0; i < rows; i++ {
		pt := plotter.XY{X: x1[i], Y: x2[i]}
		if y.AtVec(i) > 0 {
			pos = append(pos, pt)
		} else {
			neg = append(neg, pt)
		}
	}
	if err := addScatter(p, "+1", pos, draw.CircleGlyph{}, color.RGBA{B: 200, A: 255}); err != nil {
		return err
	}
	if err := addScatter(p, "-1", neg, draw.CrossGlyph{}, color.RGBA{A: 255}); err != nil {
		return err
	}
	p.X.Min, p.X.Max = minX, maxX
	p.Y.Min, p.Y.Max = minY, maxY

	return save(p, path)
}

func addScatter(p *plot.Plot, name string, pts plotter.XYs, glyph draw.GlyphDrawer, c color.Color) error {
	if len(pts) == 0 {
		return nil
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return sberrors.Wrapf(err, "failed to build %s scatter", name)
	}
	s.GlyphStyle.Shape = glyph
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(s)
	p.Legend.Add(name, s)
	return nil
}

// padded widens [lo, hi] by 5% on each side, or by 0.5 when it is empty.
func padded(lo, hi float64) (float64, float64) {
	pad := 0.05 * (hi - lo)
	if pad == 0 {
		pad = 0.5
	}
	return lo - pad, hi + pad
}

// PlotLearningCurve draws accuracy against the number of stumps. test may be
// nil.
func PlotLearningCurve(train, test []float64, path string) error {
	if len(train) == 0 {
		return sberrors.NewModelError("visualization.PlotLearningCurve", "empty data", sberrors.ErrEmptyData)
	}

	p := plot.New()
	p.Title.Text = "Accuracy by ensemble size"
	p.X.Label.Text = "stumps"
	p.Y.Label.Text = "accuracy"
	p.Legend.Top = false

	lines := []interface{}{"train", curve(train)}
	if len(test) > 0 {
		lines = append(lines, "test", curve(test))
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return sberrors.Wrap(err, "failed to add learning curves")
	}
	return save(p, path)
}

// curve maps values[k-1] to the point (k, values[k-1]).
func curve(values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i] = plotter.XY{X: float64(i + 1), Y: v}
	}
	return pts
}

// PlotMarginCDF draws the empirical margin distribution for each ensemble
// size in marginsByRound, one line per key in increasing order.
func PlotMarginCDF(marginsByRound map[int][]float64, path string) error {
	const op = "visualization.PlotMarginCDF"
	if len(marginsByRound) == 0 {
		return sberrors.NewModelError(op, "empty data", sberrors.ErrEmptyData)
	}

	rounds := make([]int, 0, len(marginsByRound))
	for k := range marginsByRound {
		rounds = append(rounds, k)
	}
	sort.Ints(rounds)

	p := plot.New()
	p.Title.Text = "Margin distribution"
	p.X.Label.Text = "margin"
	p.Y.Label.Text = "cumulative fraction"
	p.Legend.Top = false
	p.Legend.Left = true

	grid := metrics.MarginGrid(201)
	var lines []interface{}
	for _, k := range rounds {
		cdf, err := metrics.MarginCDF(marginsByRound[k], grid)
		if err != nil {
			return err
		}
		pts := make(plotter.XYs, len(grid))
		for i := range grid {
			pts[i] = plotter.XY{X: grid[i], Y: cdf[i]}
		}
		lines = append(lines, fmt.Sprintf("%d stumps", k), pts)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return sberrors.Wrap(err, "failed to add margin curves")
	}
	p.X.Min, p.X.Max = -1, 1
	p.Y.Min, p.Y.Max = 0, 1
	return save(p, path)
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(Size, Size, path); err != nil {
		return sberrors.Wrapf(err, "failed to save plot to %s", path)
	}
	return nil
}
