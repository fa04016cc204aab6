package trend

import (
	"math"
	"testing"
	"time"

	"marketlens/internal/models"
)

func seriesFromCloses(closes []float64) []models.Candle {
	candles := make([]models.Candle, len(closes))
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		candles[i] = models.Candle{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c + 0.5,
			Low:       c - 0.5,
			Close:     c,
			Volume:    100000,
		}
	}
	return candles
}

func ramp(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + step*float64(i)
	}
	return closes
}

func TestAnalyzeShortSeries(t *testing.T) {
	a := NewDefaultAnalyzer()

	result := a.Analyze(seriesFromCloses(ramp(19, 100, 1)))

	if result.Trend != models.TrendSideways {
		t.Errorf("short series must read sideways, got %s", result.Trend)
	}
	if result.Strength != 0 {
		t.Errorf("short series strength must be zero, got %v", result.Strength)
	}
	if result.TrendLine != 0 {
		t.Errorf("short series trend line must be zero, got %v", result.TrendLine)
	}
}

func TestAnalyzeFlatSeries(t *testing.T) {
	a := NewDefaultAnalyzer()

	result := a.Analyze(seriesFromCloses(ramp(30, 100, 0)))

	if result.Trend != models.TrendSideways {
		t.Errorf("flat series must read sideways, got %s", result.Trend)
	}
	if result.Strength != 0 {
		t.Errorf("flat series strength must be zero, got %v", result.Strength)
	}
	if math.Abs(result.TrendLine-100) > 1e-9 {
		t.Errorf("flat series trend line should sit at the price, got %v", result.TrendLine)
	}
}

func TestAnalyzeSteadyUptrend(t *testing.T) {
	a := NewDefaultAnalyzer()
	closes := ramp(60, 100, 1)

	result := a.Analyze(seriesFromCloses(closes))

	if result.Trend != models.TrendUp {
		t.Errorf("expected uptrend, got %s", result.Trend)
	}
	if result.Strength < 0.9 {
		t.Errorf("steady climb should read near full strength, got %v", result.Strength)
	}
	lastClose := closes[len(closes)-1]
	if math.Abs(result.TrendLine-lastClose) > 1e-6 {
		t.Errorf("trend line should match the perfectly linear closes, got %v want %v", result.TrendLine, lastClose)
	}
}

func TestAnalyzeSteadyDowntrend(t *testing.T) {
	a := NewDefaultAnalyzer()

	result := a.Analyze(seriesFromCloses(ramp(60, 200, -1)))

	if result.Trend != models.TrendDown {
		t.Errorf("expected downtrend, got %s", result.Trend)
	}
	if result.Strength < 0.9 {
		t.Errorf("steady decline should read near full strength, got %v", result.Strength)
	}
}

// A drift too shallow for the regression threshold still reads as an
// uptrend once price sits above aligned moving averages.
func TestAnalyzeAlignmentOverride(t *testing.T) {
	a := NewDefaultAnalyzer()
	closes := ramp(60, 100, 0.0005)

	result := a.Analyze(seriesFromCloses(closes))

	if result.Trend != models.TrendUp {
		t.Errorf("aligned averages should override the weak slope, got %s", result.Trend)
	}
	if result.Strength < 0.6 {
		t.Errorf("alignment override should floor strength at 0.6, got %v", result.Strength)
	}
}

func TestLinearRegression(t *testing.T) {
	candles := seriesFromCloses([]float64{10, 12, 14, 16, 18})

	slope, intercept := linearRegression(candles)

	if math.Abs(slope-2) > 1e-9 {
		t.Errorf("slope: got %v, want 2", slope)
	}
	if math.Abs(intercept-10) > 1e-9 {
		t.Errorf("intercept: got %v, want 10", intercept)
	}
}

func TestLinearRegressionSingleBar(t *testing.T) {
	candles := seriesFromCloses([]float64{42})

	slope, intercept := linearRegression(candles)

	if slope != 0 {
		t.Errorf("single bar slope must be zero, got %v", slope)
	}
	if intercept != 42 {
		t.Errorf("single bar intercept must be the close, got %v", intercept)
	}
}
