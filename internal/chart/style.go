// Package chart renders the analysis figures with gonum/plot.
package chart

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Style mirrors the seaborn axes styles used by the figures.
type Style string

// Supported styles.
const (
	StyleWhite     Style = "white"
	StyleDarkGrid  Style = "darkgrid"
	StyleWhiteGrid Style = "whitegrid"
)

var (
	darkGridBackground = color.RGBA{R: 0xea, G: 0xea, B: 0xf2, A: 0xff}
	whiteGridLines     = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}

	// DefaultColor is seaborn's first palette colour.
	DefaultColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
)

// ParseStyle validates a style name. The empty string means white.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case "", StyleWhite:
		return StyleWhite, nil
	case StyleDarkGrid, StyleWhiteGrid:
		return Style(s), nil
	default:
		return "", fmt.Errorf("unknown chart style %q (want white, darkgrid or whitegrid)", s)
	}
}

func (s Style) apply(p *plot.Plot) {
	switch s {
	case StyleDarkGrid:
		p.BackgroundColor = darkGridBackground
		grid := plotter.NewGrid()
		grid.Vertical.Color = color.White
		grid.Horizontal.Color = color.White
		grid.Vertical.Width = vg.Points(1)
		grid.Horizontal.Width = vg.Points(1)
		p.Add(grid)
	case StyleWhiteGrid:
		p.BackgroundColor = color.White
		grid := plotter.NewGrid()
		grid.Vertical.Color = whiteGridLines
		grid.Horizontal.Color = whiteGridLines
		p.Add(grid)
	default:
		p.BackgroundColor = color.White
	}
}

// Hex parses a "#rrggbb" colour.
func Hex(s string) (color.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return c, nil
}

// WithAlpha returns c with its opacity set to alpha in [0, 1].
func WithAlpha(c color.Color, alpha float64) color.Color {
	if alpha <= 0 || alpha >= 1 {
		return c
	}
	r, g, b, _ := c.RGBA()
	return color.NRGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(alpha * 255),
	}
}

// scaledTicks labels ticks in units of scale, e.g. 1e9 for "$ billions".
type scaledTicks struct {
	scale float64
}

func (s scaledTicks) Ticks(lo, hi float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(lo, hi)
	for i := range ticks {
		if ticks[i].Label == "" {
			continue
		}
		ticks[i].Label = strconv.FormatFloat(ticks[i].Value/s.scale, 'f', -1, 64)
	}
	return ticks
}
