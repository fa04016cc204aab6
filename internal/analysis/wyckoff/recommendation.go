package wyckoff

import (
	"math"

	"marketlens/internal/models"
)

// recommend derives a buy/sell/hold action from the phase, the position
// within the trading range, recent events, and effort-vs-result. The raw
// score is normalized by ScoreDivisor and clamped to [-1, 1].
func (a *Analyzer) recommend(
	candles []models.Candle,
	phase models.WyckoffPhase,
	phaseConfidence float64,
	events []models.WyckoffEvent,
	tr models.PriceRange,
	effortResult models.EffortResult,
) (models.Recommendation, float64) {
	if len(candles) == 0 || phase == models.PhaseInsufficientData || phase == models.PhaseUnknown {
		return models.RecommendHold, 0
	}

	currentPrice := candles[len(candles)-1].Close
	score := 0.0

	// Phase is the primary signal.
	switch phase {
	case models.PhaseAccumulation:
		score += 3.0 * phaseConfidence
	case models.PhaseMarkup:
		score += 1.5 * phaseConfidence
	case models.PhaseDistribution:
		score -= 3.0 * phaseConfidence
	case models.PhaseMarkdown:
		score -= 1.5 * phaseConfidence
	}

	// Position within the trading range; the middle 40% contributes nothing.
	rangeSize := tr.Max - tr.Min
	if rangeSize > 0 {
		pricePosition := (currentPrice - tr.Min) / rangeSize
		if pricePosition < 0.3 {
			score += 2.0
		} else if pricePosition > 0.7 {
			score -= 2.0
		}
	}

	// Events inside the recent window.
	if len(candles) >= a.cfg.RecentEventBars {
		recentDate := candles[len(candles)-a.cfg.RecentEventBars].Timestamp

		for _, event := range events {
			if event.Date.Before(recentDate) {
				continue
			}
			switch event.Name {
			case EventSpring:
				score += 2.5 * event.Confidence
			case EventSignOfStrength:
				score += 2.0 * event.Confidence
			case EventSellingClimax:
				score += 1.5 * event.Confidence
			case EventUpthrust:
				score -= 2.5 * event.Confidence
			case EventSignOfWeakness:
				score -= 2.0 * event.Confidence
			case EventBuyingClimax:
				score -= 1.5 * event.Confidence
			}
		}
	}

	// Effort vs result: divergence against the recent trend warns of a
	// reversal, divergence in a downtrend marks an opportunity.
	if effortResult == models.EffortDiverging {
		if len(candles) >= a.cfg.RecentEventBars {
			recentStart := candles[len(candles)-a.cfg.RecentEventBars].Close
			if currentPrice > recentStart {
				score -= 1.5
			} else {
				score += 1.5
			}
		}
	} else if effortResult == models.EffortConfirming {
		score += 0.5
	}

	normalized := math.Max(-1, math.Min(1, score/a.cfg.ScoreDivisor))

	recommendation := models.RecommendHold
	if normalized > a.cfg.BuyThreshold {
		recommendation = models.RecommendBuy
	} else if normalized < a.cfg.SellThreshold {
		recommendation = models.RecommendSell
	}

	return recommendation, normalized
}

// calculateZones lays out buy, accumulation, distribution, and sell
// bands across the trading range, then widens them where recent events
// argue for better entries or exits.
func (a *Analyzer) calculateZones(
	candles []models.Candle,
	tr models.PriceRange,
	events []models.WyckoffEvent,
) (buyZone, accumZone, distZone, sellZone models.PriceRange) {
	rangeSize := tr.Max - tr.Min

	// Bottom 15% plus a 3% buffer below for springs.
	buyZone = models.PriceRange{
		Min: tr.Min - rangeSize*0.03,
		Max: tr.Min + rangeSize*0.15,
	}
	accumZone = models.PriceRange{
		Min: tr.Min + rangeSize*0.15,
		Max: tr.Min + rangeSize*0.35,
	}
	distZone = models.PriceRange{
		Min: tr.Max - rangeSize*0.35,
		Max: tr.Max - rangeSize*0.15,
	}
	// Top 15% plus a 3% buffer above for upthrusts.
	sellZone = models.PriceRange{
		Min: tr.Max - rangeSize*0.15,
		Max: tr.Max + rangeSize*0.03,
	}

	if len(candles) < a.cfg.RecentEventBars {
		return buyZone, accumZone, distZone, sellZone
	}

	recentDate := candles[len(candles)-a.cfg.RecentEventBars].Timestamp
	for _, event := range events {
		if event.Date.Before(recentDate) {
			continue
		}
		switch event.Name {
		case EventSpring:
			// Extend the buy zone down to just below the spring price.
			springLow := event.Price * 0.98
			if springLow < buyZone.Min {
				buyZone.Min = springLow
			}
		case EventUpthrust:
			upthrustHigh := event.Price * 1.02
			if upthrustHigh > sellZone.Max {
				sellZone.Max = upthrustHigh
			}
		case EventSellingClimax:
			buyZone.Max += rangeSize * 0.10
		case EventBuyingClimax:
			sellZone.Min -= rangeSize * 0.10
		}
	}

	return buyZone, accumZone, distZone, sellZone
}
