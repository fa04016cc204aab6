// Package trend classifies the prevailing price direction and its strength.
package trend

import (
	"math"

	"marketlens/internal/analysis/indicators"
	"marketlens/internal/models"
)

// AnalyzerConfig holds the thresholds for trend classification.
type AnalyzerConfig struct {
	// MinBars is the minimum series length before a trend is reported.
	MinBars int
	// SlopeThreshold is the absolute regression slope below which the
	// series is considered sideways.
	SlopeThreshold float64
	// SlopeScale converts the regression slope into a strength in [0,1].
	SlopeScale float64
	// AlignmentMinBars is the minimum series length for the moving
	// average alignment override.
	AlignmentMinBars int
	// AlignmentFloor is the minimum strength assigned when the moving
	// averages align with price.
	AlignmentFloor float64
	// ADXPeriod and ADXThreshold control the directional-index strength
	// boost.
	ADXPeriod    int
	ADXThreshold float64
}

// DefaultAnalyzerConfig returns the standard trend-analysis settings.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinBars:          20,
		SlopeThreshold:   0.001,
		SlopeScale:       1000,
		AlignmentMinBars: 50,
		AlignmentFloor:   0.6,
		ADXPeriod:        14,
		ADXThreshold:     25,
	}
}

// Analyzer determines trend direction from a least-squares fit of the
// closes, a moving-average alignment check, and the directional index.
type Analyzer struct {
	cfg AnalyzerConfig
}

// NewAnalyzer creates an analyzer with the given configuration.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// NewDefaultAnalyzer creates an analyzer with the standard settings.
func NewDefaultAnalyzer() *Analyzer {
	return &Analyzer{cfg: DefaultAnalyzerConfig()}
}

// Analyze classifies the series. Fewer bars than MinBars always reads
// as a sideways trend with zero strength. The strongest of the three
// signals wins; strengths never average each other down.
func (a *Analyzer) Analyze(candles []models.Candle) models.TrendAnalysis {
	if len(candles) < a.cfg.MinBars {
		return models.TrendAnalysis{
			Trend:     models.TrendSideways,
			Strength:  0,
			TrendLine: 0,
		}
	}

	slope, intercept := linearRegression(candles)

	sma20 := indicators.SMAValue(candles, 20)
	sma50 := indicators.SMAValue(candles, 50)
	currentPrice := candles[len(candles)-1].Close

	trend := models.TrendSideways
	strength := 0.0

	if slope > a.cfg.SlopeThreshold {
		trend = models.TrendUp
		strength = math.Min(slope*a.cfg.SlopeScale, 1.0)
	} else if slope < -a.cfg.SlopeThreshold {
		trend = models.TrendDown
		strength = math.Min(math.Abs(slope)*a.cfg.SlopeScale, 1.0)
	}

	// Aligned moving averages override a weak or contrary slope reading.
	if len(candles) >= a.cfg.AlignmentMinBars {
		if currentPrice > sma20 && sma20 > sma50 {
			trend = models.TrendUp
			strength = math.Max(strength, a.cfg.AlignmentFloor)
		} else if currentPrice < sma20 && sma20 < sma50 {
			trend = models.TrendDown
			strength = math.Max(strength, a.cfg.AlignmentFloor)
		}
	}

	trendLine := slope*float64(len(candles)-1) + intercept

	adx := indicators.ADXValue(candles, a.cfg.ADXPeriod)
	if adx > a.cfg.ADXThreshold {
		strength = math.Max(strength, adx/100)
	}

	return models.TrendAnalysis{
		Trend:     trend,
		Strength:  strength,
		TrendLine: trendLine,
	}
}

// linearRegression fits closes against the bar index by ordinary least
// squares and returns the slope and intercept.
func linearRegression(candles []models.Candle) (slope, intercept float64) {
	n := float64(len(candles))
	var sumX, sumY, sumXY, sumX2 float64

	for i, c := range candles {
		x := float64(i)
		y := c.Close

		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
