// Package scoring combines component signals into a composite
// recommendation and derives actionable price ranges.
package scoring

import (
	"math"

	"marketlens/internal/models"
)

// Weights holds the contribution of each signal to the composite score.
// The raw score is divided by Divisor and clamped to [-1, 1] before the
// recommendation thresholds apply.
type Weights struct {
	RSIExtreme     float64 // RSI beyond 30/70
	RSILean        float64 // RSI beyond 40/60
	MACDCross      float64 // MACD above or below its signal line
	MAAlignment    float64 // price vs SMA20 vs SMA50 stacking
	BollingerBreak float64 // close outside the bands
	TrendScale     float64 // multiplier on trend strength
	LevelProximity float64 // price within ProximityPct of a level
	ProximityPct   float64
	WyckoffPhase     float64 // accumulation / distribution phases
	WyckoffHalfPhase float64 // markup / markdown phases
	WyckoffEvent     float64 // per-event confidence multiplier
	EffortDivergence float64 // effort-vs-result against the trend
	Divisor          float64
	BuyThreshold     float64
	SellThreshold    float64
}

// DefaultWeights returns the standard composite weights.
func DefaultWeights() Weights {
	return Weights{
		RSIExtreme:       2.0,
		RSILean:          1.0,
		MACDCross:        1.5,
		MAAlignment:      1.5,
		BollingerBreak:   1.0,
		TrendScale:       2.0,
		LevelProximity:   1.0,
		ProximityPct:     0.02,
		WyckoffPhase:     1.0,
		WyckoffHalfPhase: 0.75,
		WyckoffEvent:     0.75,
		EffortDivergence: 0.25,
		Divisor:          10,
		BuyThreshold:     0.3,
		SellThreshold:    -0.3,
	}
}

// Input carries the component outputs the scorer combines.
type Input struct {
	CurrentPrice      float64
	Indicators        models.TechnicalIndicators
	Patterns          []models.CandlestickPattern
	SupportResistance models.SupportResistance
	Trend             models.TrendAnalysis
	Wyckoff           models.WyckoffAnalysis
}

// Scorer produces composite recommendations from component signals.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// NewDefaultScorer creates a scorer with the standard weights.
func NewDefaultScorer() *Scorer {
	return &Scorer{weights: DefaultWeights()}
}

// Score combines every signal additively, normalizes by the divisor,
// clamps to [-1, 1], and cuts the result into buy/sell/hold.
func (s *Scorer) Score(in Input) (models.Recommendation, float64) {
	w := s.weights
	score := 0.0

	score += s.scoreRSI(in.Indicators.RSI)

	if in.Indicators.MACD > in.Indicators.MACDSignal {
		score += w.MACDCross
	} else {
		score -= w.MACDCross
	}

	if in.CurrentPrice > in.Indicators.SMA20 && in.Indicators.SMA20 > in.Indicators.SMA50 {
		score += w.MAAlignment
	} else if in.CurrentPrice < in.Indicators.SMA20 && in.Indicators.SMA20 < in.Indicators.SMA50 {
		score -= w.MAAlignment
	}

	if in.CurrentPrice < in.Indicators.BollingerLower {
		score += w.BollingerBreak
	} else if in.CurrentPrice > in.Indicators.BollingerUpper {
		score -= w.BollingerBreak
	}

	for _, pattern := range in.Patterns {
		switch pattern.Type {
		case models.PatternBullish:
			score += pattern.Confidence
		case models.PatternBearish:
			score -= pattern.Confidence
		}
	}

	switch in.Trend.Trend {
	case models.TrendUp:
		score += in.Trend.Strength * w.TrendScale
	case models.TrendDown:
		score -= in.Trend.Strength * w.TrendScale
	}

	if len(in.SupportResistance.SupportLevels) > 0 {
		nearest := in.SupportResistance.SupportLevels[0]
		if (in.CurrentPrice-nearest)/in.CurrentPrice < w.ProximityPct {
			score += w.LevelProximity
		}
	}
	if len(in.SupportResistance.ResistanceLevels) > 0 {
		nearest := in.SupportResistance.ResistanceLevels[0]
		if (nearest-in.CurrentPrice)/in.CurrentPrice < w.ProximityPct {
			score -= w.LevelProximity
		}
	}

	score += s.scoreWyckoff(in.Wyckoff, in.Trend)

	normalized := clamp(score/w.Divisor, -1, 1)

	recommendation := models.RecommendHold
	if normalized > w.BuyThreshold {
		recommendation = models.RecommendBuy
	} else if normalized < w.SellThreshold {
		recommendation = models.RecommendSell
	}

	return recommendation, normalized
}

func (s *Scorer) scoreRSI(rsi float64) float64 {
	w := s.weights
	switch {
	case rsi < 30:
		return w.RSIExtreme
	case rsi < 40:
		return w.RSILean
	case rsi > 70:
		return -w.RSIExtreme
	case rsi > 60:
		return -w.RSILean
	}
	return 0
}

// scoreWyckoff contributes the phase, event, and effort signals at
// reduced weight so they inform rather than dominate the composite.
func (s *Scorer) scoreWyckoff(wy models.WyckoffAnalysis, trend models.TrendAnalysis) float64 {
	w := s.weights
	score := 0.0

	switch wy.Phase {
	case models.PhaseAccumulation:
		score += w.WyckoffPhase * wy.PhaseConfidence
	case models.PhaseMarkup:
		score += w.WyckoffHalfPhase * wy.PhaseConfidence
	case models.PhaseDistribution:
		score -= w.WyckoffPhase * wy.PhaseConfidence
	case models.PhaseMarkdown:
		score -= w.WyckoffHalfPhase * wy.PhaseConfidence
	}

	for _, event := range wy.Events {
		switch event.Type {
		case models.BiasAccumulation:
			score += w.WyckoffEvent * event.Confidence
		case models.BiasDistribution:
			score -= w.WyckoffEvent * event.Confidence
		}
	}

	if wy.EffortResult == models.EffortDiverging {
		switch trend.Trend {
		case models.TrendUp:
			score -= w.EffortDivergence
		case models.TrendDown:
			score += w.EffortDivergence
		}
	}

	return score
}

// PriceRanges derives buy, half-buy, and sell bands from the detected
// levels, with Bollinger and percentage fallbacks, stretched or
// tightened by a strong trend.
func (s *Scorer) PriceRanges(
	currentPrice float64,
	indicators models.TechnicalIndicators,
	sr models.SupportResistance,
	trend models.TrendAnalysis,
) (buyRange, halfBuyRange, sellRange models.PriceRange) {
	buyMin := currentPrice
	buyMax := currentPrice

	if len(sr.SupportLevels) > 0 {
		buyMin = sr.SupportLevels[0]
	} else {
		buyMin = math.Min(indicators.BollingerLower, currentPrice*0.95)
	}

	if len(sr.SupportLevels) > 1 {
		buyMax = sr.SupportLevels[0]
	} else {
		buyMax = currentPrice * 0.98
	}

	buyRange = models.PriceRange{Min: buyMin, Max: buyMax}
	halfBuyRange = models.PriceRange{Min: buyMax, Max: currentPrice}

	sellMin := currentPrice * 1.05
	sellMax := currentPrice * 1.15

	if len(sr.ResistanceLevels) > 0 {
		sellMin = sr.ResistanceLevels[0]
		if len(sr.ResistanceLevels) > 1 {
			sellMax = sr.ResistanceLevels[1]
		} else {
			sellMax = sellMin * 1.05
		}
	}

	if trend.Trend == models.TrendUp && trend.Strength > 0.6 {
		sellMax *= 1.1
	} else if trend.Trend == models.TrendDown && trend.Strength > 0.6 {
		sellMin *= 0.95
		sellMax *= 0.95
	}

	sellRange = models.PriceRange{Min: sellMin, Max: sellMax}

	return buyRange, halfBuyRange, sellRange
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
