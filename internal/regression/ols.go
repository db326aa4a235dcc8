// Package regression fits one-predictor ordinary least-squares models.
package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrTooFewPoints is returned when a fit has fewer than two observations.
var ErrTooFewPoints = errors.New("regression needs at least two observations")

// ErrConstantPredictor is returned when every x value is identical.
var ErrConstantPredictor = errors.New("predictor has zero variance")

// Model is a fitted y = Intercept + Slope*x line.
type Model struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	RSquared  float64 `json:"r_squared"`
	N         int     `json:"n"`

	// ResidualSE is the residual standard error, sqrt(SSE / (n-2)).
	ResidualSE float64 `json:"residual_se"`

	meanX float64
	sxx   float64
}

// Fit regresses y on x.
func Fit(x, y []float64) (*Model, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("length mismatch: %d predictors, %d responses", len(x), len(y))
	}
	if len(x) < 2 {
		return nil, ErrTooFewPoints
	}

	meanX := stat.Mean(x, nil)
	var sxx float64
	for _, v := range x {
		d := v - meanX
		sxx += d * d
	}
	if sxx == 0 {
		return nil, ErrConstantPredictor
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	m := &Model{
		Intercept: alpha,
		Slope:     beta,
		RSquared:  stat.RSquared(x, y, nil, alpha, beta),
		N:         len(x),
		meanX:     meanX,
		sxx:       sxx,
	}

	if m.N > 2 {
		residuals := make([]float64, len(y))
		for i := range y {
			residuals[i] = y[i] - m.Predict(x[i])
		}
		m.ResidualSE = math.Sqrt(floats.Dot(residuals, residuals) / float64(m.N-2))
	}
	return m, nil
}

// Predict returns the fitted value at x.
func (m *Model) Predict(x float64) float64 {
	return m.Intercept + m.Slope*x
}

// ConfidenceBand returns the lower and upper bounds of the level
// confidence interval for the mean response at each x. With two
// observations there are no residual degrees of freedom and the band
// collapses onto the line.
func (m *Model) ConfidenceBand(xs []float64, level float64) (lo, hi []float64) {
	lo = make([]float64, len(xs))
	hi = make([]float64, len(xs))

	var tcrit float64
	if m.N > 2 {
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(m.N - 2)}
		tcrit = t.Quantile(1 - (1-level)/2)
	}

	for i, x := range xs {
		fit := m.Predict(x)
		d := x - m.meanX
		se := m.ResidualSE * math.Sqrt(1/float64(m.N)+d*d/m.sxx)
		lo[i] = fit - tcrit*se
		hi[i] = fit + tcrit*se
	}
	return lo, hi
}
