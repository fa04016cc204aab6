// Package levels provides support and resistance detection from swing pivots.
package levels

import (
	"math"
	"sort"

	"marketlens/internal/models"
)

// AnalyzerConfig holds the tuning knobs for level detection.
type AnalyzerConfig struct {
	// MinBars is the minimum series length before any levels are reported.
	MinBars int
	// PivotLookback is the number of bars on each side a pivot must dominate.
	PivotLookback int
	// MergeThreshold is the relative distance under which adjacent levels
	// are merged into their average.
	MergeThreshold float64
	// MaxLevels caps the number of levels reported per side.
	MaxLevels int
}

// DefaultAnalyzerConfig returns the standard level-detection settings.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinBars:        20,
		PivotLookback:  5,
		MergeThreshold: 0.02,
		MaxLevels:      3,
	}
}

// Analyzer detects support and resistance levels from pivot highs and lows.
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

type pivot struct {
	price float64
	isLow bool
}

// Detect returns consolidated support levels below the current price and
// resistance levels above it, each ordered nearest-first and capped at
// the configured maximum. Series shorter than MinBars yield empty slices.
func (a *Analyzer) Detect(candles []models.Candle) models.SupportResistance {
	if len(candles) < a.cfg.MinBars {
		return models.SupportResistance{
			SupportLevels:    []float64{},
			ResistanceLevels: []float64{},
		}
	}

	pivots := a.findPivots(candles)
	currentPrice := candles[len(candles)-1].Close

	supports := []float64{}
	resistances := []float64{}

	for _, p := range pivots {
		if p.isLow && p.price < currentPrice {
			supports = append(supports, p.price)
		} else if !p.isLow && p.price > currentPrice {
			resistances = append(resistances, p.price)
		}
	}

	supports = a.consolidate(supports)
	resistances = a.consolidate(resistances)

	// Nearest-first: supports descend toward zero, resistances ascend.
	sort.Sort(sort.Reverse(sort.Float64Slice(supports)))
	sort.Float64s(resistances)

	if len(supports) > a.cfg.MaxLevels {
		supports = supports[:a.cfg.MaxLevels]
	}
	if len(resistances) > a.cfg.MaxLevels {
		resistances = resistances[:a.cfg.MaxLevels]
	}

	return models.SupportResistance{
		SupportLevels:    supports,
		ResistanceLevels: resistances,
	}
}

// findPivots scans for bars whose high (low) dominates every bar within
// the symmetric lookback window.
func (a *Analyzer) findPivots(candles []models.Candle) []pivot {
	pivots := []pivot{}
	lookback := a.cfg.PivotLookback

	for i := lookback; i < len(candles)-lookback; i++ {
		isLocalHigh := true
		isLocalLow := true

		for j := i - lookback; j <= i+lookback; j++ {
			if j == i {
				continue
			}
			if candles[j].High > candles[i].High {
				isLocalHigh = false
			}
			if candles[j].Low < candles[i].Low {
				isLocalLow = false
			}
		}

		if isLocalHigh {
			pivots = append(pivots, pivot{price: candles[i].High})
		}
		if isLocalLow {
			pivots = append(pivots, pivot{price: candles[i].Low, isLow: true})
		}
	}

	return pivots
}

// consolidate merges levels that sit within the merge threshold of the
// previously accepted level, replacing both with their average. Single
// pass over the ascending-sorted levels.
func (a *Analyzer) consolidate(levels []float64) []float64 {
	if len(levels) == 0 {
		return levels
	}

	sort.Float64s(levels)

	consolidated := []float64{levels[0]}
	for i := 1; i < len(levels); i++ {
		last := consolidated[len(consolidated)-1]
		diff := math.Abs(levels[i]-last) / last

		if diff > a.cfg.MergeThreshold {
			consolidated = append(consolidated, levels[i])
		} else {
			consolidated[len(consolidated)-1] = (last + levels[i]) / 2
		}
	}

	return consolidated
}
