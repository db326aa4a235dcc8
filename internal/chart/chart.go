package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Range is a fixed axis interval.
type Range struct {
	Min, Max float64
}

// Axes holds labels and limits shared by every figure.
type Axes struct {
	Title  string
	XLabel string
	YLabel string
	XRange *Range
	YRange *Range
	// XScale and YScale divide tick labels, so 1e9 prints 2.5e9 as 2.5.
	XScale float64
	YScale float64
	// TimeX treats X values as Unix seconds and labels ticks by year.
	TimeX bool
}

func (a Axes) apply(p *plot.Plot) {
	p.Title.Text = a.Title
	p.X.Label.Text = a.XLabel
	p.Y.Label.Text = a.YLabel

	if a.XRange != nil {
		p.X.Min, p.X.Max = a.XRange.Min, a.XRange.Max
	}
	if a.YRange != nil {
		p.Y.Min, p.Y.Max = a.YRange.Min, a.YRange.Max
	}

	switch {
	case a.TimeX:
		p.X.Tick.Marker = plot.TimeTicks{Format: "2006"}
	case a.XScale > 0:
		p.X.Tick.Marker = scaledTicks{scale: a.XScale}
	}
	if a.YScale > 0 {
		p.Y.Tick.Marker = scaledTicks{scale: a.YScale}
	}
}

// Point is one observation. Value drives hue and size mapping.
type Point struct {
	X, Y  float64
	Value float64
}

// ScatterOptions configures Scatter.
type ScatterOptions struct {
	Axes
	Style Style
	// Hue colours points along a colour map over Value.
	Hue bool
	// Size scales glyph radius over Value.
	Size  bool
	Color color.Color
	Alpha float64
}

const (
	minRadius = 1.5
	maxRadius = 7.0
)

// Scatter draws points, optionally mapping Value to colour and size.
func Scatter(points []Point, opts ScatterOptions) (*plot.Plot, error) {
	p := plot.New()
	opts.Style.apply(p)

	xys := make(plotter.XYs, len(points))
	lo, hi := valueRange(points)
	for i, pt := range points {
		xys[i].X, xys[i].Y = pt.X, pt.Y
	}

	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("failed to build scatter: %w", err)
	}

	base := opts.Color
	if base == nil {
		base = DefaultColor
	}
	s.GlyphStyle = draw.GlyphStyle{
		Color:  WithAlpha(base, opts.Alpha),
		Radius: vg.Points(2.5),
		Shape:  draw.CircleGlyph{},
	}

	if opts.Hue || opts.Size {
		cmap := moreland.SmoothBlueRed()
		if hi > lo {
			cmap.SetMin(lo)
			cmap.SetMax(hi)
		} else {
			cmap.SetMin(lo - 1)
			cmap.SetMax(lo + 1)
		}
		style := s.GlyphStyle
		s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			gs := style
			v := points[i].Value
			if opts.Hue {
				if c, err := cmap.At(v); err == nil {
					gs.Color = WithAlpha(c, opts.Alpha)
				}
			}
			if opts.Size {
				gs.Radius = vg.Points(scaleRadius(v, lo, hi))
			}
			return gs
		}
	}

	p.Add(s)
	opts.Axes.apply(p)
	return p, nil
}

func valueRange(points []Point) (lo, hi float64) {
	if len(points) == 0 {
		return 0, 0
	}
	lo, hi = points[0].Value, points[0].Value
	for _, pt := range points[1:] {
		lo = min(lo, pt.Value)
		hi = max(hi, pt.Value)
	}
	return lo, hi
}

func scaleRadius(v, lo, hi float64) float64 {
	if hi <= lo {
		return (minRadius + maxRadius) / 2
	}
	return minRadius + (v-lo)/(hi-lo)*(maxRadius-minRadius)
}

// Size is the output size of a rendered figure.
type Size struct {
	Width  vg.Length
	Height vg.Length
	DPI    int
}

// DefaultSize is an 8x4 inch figure at 200 dpi.
var DefaultSize = Size{Width: 8 * vg.Inch, Height: 4 * vg.Inch, DPI: 200}

// Save writes p to path. PNG output honours the DPI; other formats are
// chosen by extension.
func Save(p *plot.Plot, path string, size Size) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create plot directory: %w", err)
		}
	}

	if strings.ToLower(filepath.Ext(path)) != ".png" {
		if err := p.Save(size.Width, size.Height, path); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		return nil
	}

	dpi := size.DPI
	if dpi <= 0 {
		dpi = DefaultSize.DPI
	}
	c := vgimg.NewWith(vgimg.UseWH(size.Width, size.Height), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))

	f, err := os.Create(path) //nolint:gosec // path is built from the configured plots directory
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
