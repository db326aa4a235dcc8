package chart

import (
	"fmt"
	"image/color"

	"github.com/leapstack-labs/boxoffice/internal/regression"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// RegOptions configures RegPlot.
type RegOptions struct {
	Axes
	Style      Style
	PointColor color.Color
	PointAlpha float64
	LineColor  color.Color
	// Level is the confidence level of the band; zero means 0.95.
	Level float64
	// Steps is the number of points sampled along the fitted line.
	Steps int
}

// RegPlot draws a scatter of y against x with the OLS fit and its
// confidence band for the mean response.
func RegPlot(x, y []float64, opts RegOptions) (*plot.Plot, *regression.Model, error) {
	model, err := regression.Fit(x, y)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fit regression: %w", err)
	}

	p := plot.New()
	opts.Style.apply(p)

	pointColor := opts.PointColor
	if pointColor == nil {
		pointColor = DefaultColor
	}
	lineColor := opts.LineColor
	if lineColor == nil {
		lineColor = pointColor
	}
	level := opts.Level
	if level == 0 {
		level = 0.95
	}
	steps := opts.Steps
	if steps < 2 {
		steps = 100
	}

	xys := make(plotter.XYs, len(x))
	lo, hi := x[0], x[0]
	for i := range x {
		xys[i].X, xys[i].Y = x[i], y[i]
		lo = min(lo, x[i])
		hi = max(hi, x[i])
	}

	grid := make([]float64, steps)
	for i := range grid {
		grid[i] = lo + (hi-lo)*float64(i)/float64(steps-1)
	}
	bandLo, bandHi := model.ConfidenceBand(grid, level)

	outline := make(plotter.XYs, 0, 2*steps)
	for i := range grid {
		outline = append(outline, plotter.XY{X: grid[i], Y: bandHi[i]})
	}
	for i := len(grid) - 1; i >= 0; i-- {
		outline = append(outline, plotter.XY{X: grid[i], Y: bandLo[i]})
	}
	band, err := plotter.NewPolygon(outline)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build confidence band: %w", err)
	}
	band.Color = WithAlpha(lineColor, 0.15)
	band.LineStyle.Width = 0

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build scatter: %w", err)
	}
	scatter.GlyphStyle = draw.GlyphStyle{
		Color:  WithAlpha(pointColor, opts.PointAlpha),
		Radius: vg.Points(2.5),
		Shape:  draw.CircleGlyph{},
	}

	fitted := make(plotter.XYs, steps)
	for i, gx := range grid {
		fitted[i].X, fitted[i].Y = gx, model.Predict(gx)
	}
	line, err := plotter.NewLine(fitted)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build regression line: %w", err)
	}
	line.Color = lineColor
	line.Width = vg.Points(1.5)

	p.Add(band, scatter, line)
	opts.Axes.apply(p)
	return p, model, nil
}
