package wyckoff

import (
	"math"

	"marketlens/internal/models"
)

// Event names reported by the detectors.
const (
	EventSellingClimax  = "Selling Climax"
	EventBuyingClimax   = "Buying Climax"
	EventSpring         = "Spring"
	EventUpthrust       = "Upthrust"
	EventSignOfStrength = "Sign of Strength"
	EventSignOfWeakness = "Sign of Weakness"
)

// detectEvents scans the series for structural events against the
// trading range. The first and last bars are skipped so every detector
// has trend context behind it and a reversal bar ahead of it.
func (a *Analyzer) detectEvents(candles []models.Candle, tr models.PriceRange) []models.WyckoffEvent {
	events := []models.WyckoffEvent{}
	if len(candles) < 10 {
		return events
	}

	avgVolume := averageVolume(candles, a.cfg.AvgVolumePeriod)

	for i := 5; i < len(candles)-2; i++ {
		current := candles[i]
		next := candles[i+1]

		if sc := a.detectSellingClimax(candles, i, avgVolume, tr); sc != nil {
			events = append(events, *sc)
		}
		if bc := a.detectBuyingClimax(candles, i, avgVolume, tr); bc != nil {
			events = append(events, *bc)
		}
		if spring := a.detectSpring(current, next, tr, avgVolume); spring != nil {
			events = append(events, *spring)
		}
		if ut := a.detectUpthrust(current, next, tr, avgVolume); ut != nil {
			events = append(events, *ut)
		}
		if sos := a.detectSignOfStrength(candles, i, avgVolume, tr); sos != nil {
			events = append(events, *sos)
		}
		if sow := a.detectSignOfWeakness(candles, i, avgVolume, tr); sow != nil {
			events = append(events, *sow)
		}
	}

	return events
}

// detectSellingClimax looks for panic selling at support: volume and
// spread well above baseline, a close in the lower part of the bar near
// the range low, a down leg behind it, and a reversal bar after it.
func (a *Analyzer) detectSellingClimax(candles []models.Candle, idx int, avgVolume float64, tr models.PriceRange) *models.WyckoffEvent {
	if idx < 3 || idx >= len(candles)-1 {
		return nil
	}

	current := candles[idx]
	prev := candles[idx-1]

	volumeRatio := float64(current.Volume) / avgVolume
	barRange := current.High - current.Low
	rangeRatio := barRange / averageBarRange(candles, idx, a.cfg.AvgRangePeriod)

	closePosition := 0.5
	if barRange != 0 {
		closePosition = (current.Close - current.Low) / barRange
	}

	nearSupport := current.Low <= tr.Min*1.02
	hasReversal := candles[idx+1].Close > current.Close

	trendStart := idx - a.cfg.TrendContextBars
	if trendStart < 0 {
		trendStart = 0
	}
	inDowntrend := prev.Close < candles[trendStart].Close

	if volumeRatio > a.cfg.ClimaxVolumeRatio && rangeRatio > a.cfg.ClimaxRangeRatio &&
		closePosition < a.cfg.ClimaxClosePosition && nearSupport && hasReversal && inDowntrend {
		return &models.WyckoffEvent{
			Name:       EventSellingClimax,
			Type:       models.BiasAccumulation,
			Date:       current.Timestamp,
			Price:      current.Close,
			Volume:     current.Volume,
			Confidence: a.eventConfidence(volumeRatio, rangeRatio, 0.8),
		}
	}

	return nil
}

// detectBuyingClimax mirrors the selling climax at resistance.
func (a *Analyzer) detectBuyingClimax(candles []models.Candle, idx int, avgVolume float64, tr models.PriceRange) *models.WyckoffEvent {
	if idx < 3 || idx >= len(candles)-1 {
		return nil
	}

	current := candles[idx]
	prev := candles[idx-1]

	volumeRatio := float64(current.Volume) / avgVolume
	barRange := current.High - current.Low
	rangeRatio := barRange / averageBarRange(candles, idx, a.cfg.AvgRangePeriod)

	closePosition := 0.5
	if barRange != 0 {
		closePosition = (current.Close - current.Low) / barRange
	}

	nearResistance := current.High >= tr.Max*0.98
	hasReversal := candles[idx+1].Close < current.Close

	trendStart := idx - a.cfg.TrendContextBars
	if trendStart < 0 {
		trendStart = 0
	}
	inUptrend := prev.Close > candles[trendStart].Close

	if volumeRatio > a.cfg.ClimaxVolumeRatio && rangeRatio > a.cfg.ClimaxRangeRatio &&
		closePosition > 1-a.cfg.ClimaxClosePosition && nearResistance && hasReversal && inUptrend {
		return &models.WyckoffEvent{
			Name:       EventBuyingClimax,
			Type:       models.BiasDistribution,
			Date:       current.Timestamp,
			Price:      current.Close,
			Volume:     current.Volume,
			Confidence: a.eventConfidence(volumeRatio, rangeRatio, 0.8),
		}
	}

	return nil
}

// detectSpring looks for a shallow false breakdown below support that
// closes back at the boundary and reverses on the next bar.
func (a *Analyzer) detectSpring(current, next models.Candle, tr models.PriceRange, avgVolume float64) *models.WyckoffEvent {
	brokeSupport := current.Low < tr.Min
	closedAbove := current.Close > tr.Min*0.99
	reversedUp := next.Close > current.Close && next.Close > current.Open

	if tr.Min > 0 {
		penetration := (tr.Min - current.Low) / tr.Min
		if penetration > a.cfg.SpringMaxPenetration {
			return nil
		}
	}

	if brokeSupport && closedAbove && reversedUp {
		confidence := 0.7
		if float64(current.Volume)/avgVolume > a.cfg.SpringVolumeRatio {
			confidence = 0.85
		}

		return &models.WyckoffEvent{
			Name:       EventSpring,
			Type:       models.BiasAccumulation,
			Date:       current.Timestamp,
			Price:      current.Close,
			Volume:     current.Volume,
			Confidence: confidence,
		}
	}

	return nil
}

// detectUpthrust mirrors the spring above resistance.
func (a *Analyzer) detectUpthrust(current, next models.Candle, tr models.PriceRange, avgVolume float64) *models.WyckoffEvent {
	brokeResistance := current.High > tr.Max
	closedBelow := current.Close < tr.Max*1.01
	reversedDown := next.Close < current.Close && next.Close < current.Open

	if tr.Max > 0 {
		penetration := (current.High - tr.Max) / tr.Max
		if penetration > a.cfg.SpringMaxPenetration {
			return nil
		}
	}

	if brokeResistance && closedBelow && reversedDown {
		confidence := 0.7
		if float64(current.Volume)/avgVolume > a.cfg.SpringVolumeRatio {
			confidence = 0.85
		}

		return &models.WyckoffEvent{
			Name:       EventUpthrust,
			Type:       models.BiasDistribution,
			Date:       current.Timestamp,
			Price:      current.Close,
			Volume:     current.Volume,
			Confidence: confidence,
		}
	}

	return nil
}

// detectSignOfStrength looks for a wide bullish bar on elevated volume
// pushing through the top of the range.
func (a *Analyzer) detectSignOfStrength(candles []models.Candle, idx int, avgVolume float64, tr models.PriceRange) *models.WyckoffEvent {
	if idx < 3 || idx >= len(candles) {
		return nil
	}

	current := candles[idx]
	barRange := current.High - current.Low
	if barRange == 0 {
		return nil
	}

	closePosition := (current.Close - current.Low) / barRange
	volumeRatio := float64(current.Volume) / avgVolume
	rangeRatio := barRange / averageBarRange(candles, idx, a.cfg.AvgRangePeriod)
	breakingUp := current.Close > tr.Max*0.98

	if current.Close > current.Open && closePosition > 0.7 &&
		volumeRatio > a.cfg.StrengthVolumeRatio && rangeRatio > a.cfg.StrengthRangeRatio && breakingUp {
		return &models.WyckoffEvent{
			Name:       EventSignOfStrength,
			Type:       models.BiasAccumulation,
			Date:       current.Timestamp,
			Price:      current.Close,
			Volume:     current.Volume,
			Confidence: a.eventConfidence(volumeRatio, rangeRatio, 0.75),
		}
	}

	return nil
}

// detectSignOfWeakness mirrors the sign of strength below support.
func (a *Analyzer) detectSignOfWeakness(candles []models.Candle, idx int, avgVolume float64, tr models.PriceRange) *models.WyckoffEvent {
	if idx < 3 || idx >= len(candles) {
		return nil
	}

	current := candles[idx]
	barRange := current.High - current.Low
	if barRange == 0 {
		return nil
	}

	closePosition := (current.Close - current.Low) / barRange
	volumeRatio := float64(current.Volume) / avgVolume
	rangeRatio := barRange / averageBarRange(candles, idx, a.cfg.AvgRangePeriod)
	breakingDown := current.Close < tr.Min*1.02

	if current.Close < current.Open && closePosition < 0.3 &&
		volumeRatio > a.cfg.StrengthVolumeRatio && rangeRatio > a.cfg.StrengthRangeRatio && breakingDown {
		return &models.WyckoffEvent{
			Name:       EventSignOfWeakness,
			Type:       models.BiasDistribution,
			Date:       current.Timestamp,
			Price:      current.Close,
			Volume:     current.Volume,
			Confidence: a.eventConfidence(volumeRatio, rangeRatio, 0.75),
		}
	}

	return nil
}

// eventConfidence boosts the base confidence when the volume or spread
// signal is unusually strong, capped at 0.95.
func (a *Analyzer) eventConfidence(volumeRatio, rangeRatio, base float64) float64 {
	boost := 0.0
	if volumeRatio > 2.5 {
		boost += 0.1
	}
	if rangeRatio > 2.0 {
		boost += 0.05
	}
	return math.Min(base+boost, 0.95)
}
