package chart

import (
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func samplePoints() []Point {
	return []Point{
		{X: 110_000, Y: 11_000_000, Value: 11_000_000},
		{X: 3_900_000, Y: 9_000_000, Value: 9_000_000},
		{X: 50_000_000, Y: 20_000_000, Value: 20_000_000},
		{X: 425_000_000, Y: 2_783_918_982, Value: 2_783_918_982},
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    Style
		wantErr bool
	}{
		{in: "", want: StyleWhite},
		{in: "white", want: StyleWhite},
		{in: "darkgrid", want: StyleDarkGrid},
		{in: "whitegrid", want: StyleWhiteGrid},
		{in: "ticks", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStyle(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHex(t *testing.T) {
	c, err := Hex("#2f4b7c")
	require.NoError(t, err)
	r, g, b, _ := c.RGBA()
	assert.Equal(t, uint32(0x2f), r>>8)
	assert.Equal(t, uint32(0x4b), g>>8)
	assert.Equal(t, uint32(0x7c), b>>8)

	_, err = Hex("not-a-colour")
	assert.Error(t, err)
}

func TestWithAlpha(t *testing.T) {
	c := WithAlpha(color.RGBA{R: 255, A: 255}, 0.4)
	nrgba, ok := c.(color.NRGBA)
	require.True(t, ok)
	assert.Equal(t, uint8(255), nrgba.R)
	assert.Equal(t, uint8(102), nrgba.A)

	opaque := color.RGBA{G: 10, A: 255}
	assert.Equal(t, color.Color(opaque), WithAlpha(opaque, 0))
}

func TestScaledTicks(t *testing.T) {
	ticks := scaledTicks{scale: 1e9}.Ticks(0, 3e9)
	require.NotEmpty(t, ticks)
	labelled := 0
	for _, tk := range ticks {
		if tk.Label == "" {
			continue
		}
		labelled++
		v, err := strconv.ParseFloat(tk.Label, 64)
		require.NoError(t, err, "label %q", tk.Label)
		assert.InDelta(t, tk.Value/1e9, v, 1e-9)
		assert.LessOrEqual(t, v, 3.0)
	}
	assert.Positive(t, labelled)
}

func TestScaleRadius(t *testing.T) {
	assert.InDelta(t, minRadius, scaleRadius(0, 0, 10), 1e-9)
	assert.InDelta(t, maxRadius, scaleRadius(10, 0, 10), 1e-9)
	assert.InDelta(t, (minRadius+maxRadius)/2, scaleRadius(5, 5, 5), 1e-9)
}

func TestScatter_Save(t *testing.T) {
	dir := t.TempDir()

	variants := map[string]ScatterOptions{
		"plain.png": {
			Axes: Axes{
				XLabel: "Budget in $100 millions",
				YLabel: "Revenue in $ billions",
				XRange: &Range{Min: 0, Max: 450_000_000},
				YRange: &Range{Min: 0, Max: 3_000_000_000},
				XScale: 1e8,
				YScale: 1e9,
			},
		},
		"hue_size.png": {Hue: true, Size: true, Style: StyleDarkGrid},
		"time.svg":     {Axes: Axes{TimeX: true}, Style: StyleWhiteGrid},
	}

	for name, opts := range variants {
		t.Run(name, func(t *testing.T) {
			p, err := Scatter(samplePoints(), opts)
			require.NoError(t, err)

			path := filepath.Join(dir, "nested", name)
			size := Size{Width: 4 * vg.Inch, Height: 2 * vg.Inch, DPI: 72}
			require.NoError(t, Save(p, path, size))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestRegPlot(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{1.2, 1.8, 3.1, 4.2, 4.9, 6.1}
	lineColor, err := Hex("#ff7c43")
	require.NoError(t, err)

	p, model, err := RegPlot(x, y, RegOptions{
		Style:      StyleDarkGrid,
		PointAlpha: 0.3,
		LineColor:  lineColor,
	})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.InDelta(t, 1.0, model.Slope, 0.1)

	path := filepath.Join(t.TempDir(), "reg.png")
	require.NoError(t, Save(p, path, Size{Width: 4 * vg.Inch, Height: 2 * vg.Inch, DPI: 72}))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRegPlot_TooFewPoints(t *testing.T) {
	_, _, err := RegPlot([]float64{1}, []float64{1}, RegOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fit regression")
}
