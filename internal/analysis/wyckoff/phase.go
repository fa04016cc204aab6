package wyckoff

import (
	"math"

	"marketlens/internal/models"
)

// determinePhase classifies the current Wyckoff phase from recent price
// action, the event tally, and the position within the trading range.
func (a *Analyzer) determinePhase(candles []models.Candle, events []models.WyckoffEvent, tr models.PriceRange) (models.WyckoffPhase, float64) {
	if len(candles) < 20 {
		return models.PhaseUnknown, 0
	}

	currentPrice := candles[len(candles)-1].Close
	recent := candles[len(candles)-20:]

	accumulationEvents := 0
	distributionEvents := 0
	for _, event := range events {
		switch event.Type {
		case models.BiasAccumulation:
			accumulationEvents++
		case models.BiasDistribution:
			distributionEvents++
		}
	}

	rangeSize := tr.Max - tr.Min
	if rangeSize == 0 {
		rangeSize = 1
	}
	pricePosition := (currentPrice - tr.Min) / rangeSize

	priceChange := (recent[len(recent)-1].Close - recent[0].Close) / recent[0].Close
	isUptrending := priceChange > a.cfg.TrendingChange
	isDowntrending := priceChange < -a.cfg.TrendingChange

	if isUptrending && pricePosition > 0.8 {
		return models.PhaseMarkup, 0.7 + float64(accumulationEvents)*0.05
	}
	if isDowntrending && pricePosition < 0.2 {
		return models.PhaseMarkdown, 0.7 + float64(distributionEvents)*0.05
	}

	if accumulationEvents > distributionEvents && pricePosition < 0.5 {
		confidence := 0.6 + float64(accumulationEvents)*0.1
		return models.PhaseAccumulation, math.Min(confidence, 0.95)
	}
	if distributionEvents > accumulationEvents && pricePosition > 0.5 {
		confidence := 0.6 + float64(distributionEvents)*0.1
		return models.PhaseDistribution, math.Min(confidence, 0.95)
	}

	// Range-bound with no event edge: lean on which half holds price.
	if !isUptrending && !isDowntrending {
		if pricePosition > 0.5 {
			return models.PhaseDistribution, 0.5
		}
		return models.PhaseAccumulation, 0.5
	}

	return models.PhaseUnknown, 0.3
}

// analyzeEffortVsResult compares volume (effort) against normalized
// price movement (result) over the trailing window. Rising volume with
// a small move, or falling volume with a large move, reads as
// divergence; aligned effort and result reads as confirmation.
func (a *Analyzer) analyzeEffortVsResult(candles []models.Candle) models.EffortResult {
	if len(candles) < a.cfg.EffortBars {
		return models.EffortUnknown
	}

	recent := candles[len(candles)-a.cfg.EffortBars:]
	half := a.cfg.EffortBars / 2

	firstHalfVolume := int64(0)
	secondHalfVolume := int64(0)
	for i := 0; i < half; i++ {
		firstHalfVolume += recent[i].Volume
		secondHalfVolume += recent[i+half].Volume
	}
	volumeIncreasing := secondHalfVolume > firstHalfVolume

	priceChange := recent[len(recent)-1].Close - recent[0].Close
	avgRange := averageBarRange(candles, len(candles)-1, a.cfg.EffortBars)
	normalizedMove := math.Abs(priceChange) / avgRange

	if volumeIncreasing && normalizedMove < a.cfg.EffortMoveThreshold {
		return models.EffortDiverging
	}
	if volumeIncreasing && normalizedMove >= a.cfg.EffortMoveThreshold {
		return models.EffortConfirming
	}
	if !volumeIncreasing && normalizedMove < a.cfg.EffortMoveThreshold {
		return models.EffortConfirming
	}
	return models.EffortDiverging
}
