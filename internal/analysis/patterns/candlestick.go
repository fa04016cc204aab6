// Package patterns provides candlestick pattern detection.
package patterns

import (
	"math"

	"marketlens/internal/models"
)

// DetectorConfig holds the geometric thresholds for candlestick pattern
// detection. All ratios are relative to the candle range or body.
type DetectorConfig struct {
	// DojiBodyMax is the maximum body/range ratio for a doji.
	DojiBodyMax float64
	// DojiShadowMin is the minimum dominant-shadow/range ratio for the
	// dragonfly and gravestone variants.
	DojiShadowMin float64
	// DojiShadowMax is the maximum opposite-shadow/range ratio for the
	// dragonfly and gravestone variants.
	DojiShadowMax float64
	// SpinningTopBodyMax and SpinningTopBodyMin bound the body/range
	// ratio of a spinning top.
	SpinningTopBodyMax float64
	SpinningTopBodyMin float64
	// MarubozuBodyMin is the minimum body/range ratio for a marubozu.
	MarubozuBodyMin float64
	// MarubozuShadowMax is the maximum shadow/range ratio for a marubozu.
	MarubozuShadowMax float64
	// HammerShadowRatio is the minimum dominant-shadow/body ratio for
	// hammer-family patterns.
	HammerShadowRatio float64
	// HammerCounterShadowMax is the maximum opposite-shadow/body ratio
	// for hammer-family patterns.
	HammerCounterShadowMax float64
	// HaramiBodyMax is the maximum current-body/previous-body ratio for
	// harami patterns.
	HaramiBodyMax float64
	// StarBodyMax is the maximum middle-body/first-body ratio for
	// morning and evening stars.
	StarBodyMax float64
	// SoldierShadowMax is the maximum conviction-shadow/body ratio for
	// three soldiers and three crows.
	SoldierShadowMax float64
	// TweezerTolerance is the relative tolerance for matching highs or
	// lows in tweezer patterns.
	TweezerTolerance float64
	// TrendLookback is the number of bars used to establish trend
	// context for hanging man and inverted hammer.
	TrendLookback int
}

// DefaultDetectorConfig returns the standard detection thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		DojiBodyMax:            0.1,
		DojiShadowMin:          0.7,
		DojiShadowMax:          0.1,
		SpinningTopBodyMax:     0.3,
		SpinningTopBodyMin:     0.05,
		MarubozuBodyMin:        0.95,
		MarubozuShadowMax:      0.03,
		HammerShadowRatio:      2.0,
		HammerCounterShadowMax: 0.5,
		HaramiBodyMax:          0.5,
		StarBodyMax:            0.3,
		SoldierShadowMax:       0.3,
		TweezerTolerance:       0.002,
		TrendLookback:          5,
	}
}

// Detector detects candlestick patterns on the most recent bars of a
// series. Detection is deterministic and allocation-light; only the
// latest one, two, or three candles can produce a pattern.
type Detector struct {
	cfg DetectorConfig
}

// NewDetector creates a detector with the given configuration.
func NewDetector(cfg DetectorConfig) *Detector {
	return &Detector{cfg: cfg}
}

// NewDefaultDetector creates a detector with the standard thresholds.
func NewDefaultDetector() *Detector {
	return &Detector{cfg: DefaultDetectorConfig()}
}

// Detect evaluates the latest bars and returns every pattern found.
// Fewer than three candles yields an empty slice.
func (d *Detector) Detect(candles []models.Candle) []models.CandlestickPattern {
	patterns := []models.CandlestickPattern{}
	if len(candles) < 3 {
		return patterns
	}

	current := candles[len(candles)-1]
	prev := candles[len(candles)-2]
	third := candles[len(candles)-3]

	// Doji family: the directional variants outrank the generic doji.
	if d.isDragonflyDoji(current) {
		patterns = append(patterns, pattern("Dragonfly Doji", models.PatternBullish, 0.75))
	} else if d.isGravestoneDoji(current) {
		patterns = append(patterns, pattern("Gravestone Doji", models.PatternBearish, 0.75))
	} else if d.isDoji(current) {
		patterns = append(patterns, pattern("Doji", models.PatternNeutral, 0.7))
	}

	if d.isSpinningTop(current) {
		patterns = append(patterns, pattern("Spinning Top", models.PatternNeutral, 0.6))
	}

	if d.isBullishMarubozu(current) {
		patterns = append(patterns, pattern("Bullish Marubozu", models.PatternBullish, 0.85))
	}
	if d.isBearishMarubozu(current) {
		patterns = append(patterns, pattern("Bearish Marubozu", models.PatternBearish, 0.85))
	}

	// The hammer shape reads as a hanging man after an uptrend.
	if d.isHangingMan(current, candles) {
		patterns = append(patterns, pattern("Hanging Man", models.PatternBearish, 0.7))
	} else if d.isHammer(current) {
		patterns = append(patterns, pattern("Hammer", models.PatternBullish, 0.75))
	}

	// The inverted-hammer shape reads as a shooting star without a
	// preceding downtrend.
	if d.isInvertedHammer(current, candles) {
		patterns = append(patterns, pattern("Inverted Hammer", models.PatternBullish, 0.7))
	} else if d.isShootingStar(current) {
		patterns = append(patterns, pattern("Shooting Star", models.PatternBearish, 0.75))
	}

	if d.isBullishEngulfing(prev, current) {
		patterns = append(patterns, pattern("Bullish Engulfing", models.PatternBullish, 0.85))
	}
	if d.isBearishEngulfing(prev, current) {
		patterns = append(patterns, pattern("Bearish Engulfing", models.PatternBearish, 0.85))
	}

	if d.isPiercingLine(prev, current) {
		patterns = append(patterns, pattern("Piercing Line", models.PatternBullish, 0.75))
	}
	if d.isDarkCloudCover(prev, current) {
		patterns = append(patterns, pattern("Dark Cloud Cover", models.PatternBearish, 0.75))
	}

	if d.isBullishHarami(prev, current) {
		patterns = append(patterns, pattern("Bullish Harami", models.PatternBullish, 0.7))
	}
	if d.isBearishHarami(prev, current) {
		patterns = append(patterns, pattern("Bearish Harami", models.PatternBearish, 0.7))
	}

	if d.isTweezerTop(prev, current) {
		patterns = append(patterns, pattern("Tweezer Top", models.PatternBearish, 0.7))
	}
	if d.isTweezerBottom(prev, current) {
		patterns = append(patterns, pattern("Tweezer Bottom", models.PatternBullish, 0.7))
	}

	if d.isMorningStar(third, prev, current) {
		patterns = append(patterns, pattern("Morning Star", models.PatternBullish, 0.9))
	}
	if d.isEveningStar(third, prev, current) {
		patterns = append(patterns, pattern("Evening Star", models.PatternBearish, 0.9))
	}

	if d.isThreeWhiteSoldiers(third, prev, current) {
		patterns = append(patterns, pattern("Three White Soldiers", models.PatternBullish, 0.9))
	}
	if d.isThreeBlackCrows(third, prev, current) {
		patterns = append(patterns, pattern("Three Black Crows", models.PatternBearish, 0.9))
	}

	if d.isThreeInsideUp(third, prev, current) {
		patterns = append(patterns, pattern("Three Inside Up", models.PatternBullish, 0.85))
	}
	if d.isThreeInsideDown(third, prev, current) {
		patterns = append(patterns, pattern("Three Inside Down", models.PatternBearish, 0.85))
	}

	if d.isThreeOutsideUp(third, prev, current) {
		patterns = append(patterns, pattern("Three Outside Up", models.PatternBullish, 0.85))
	}
	if d.isThreeOutsideDown(third, prev, current) {
		patterns = append(patterns, pattern("Three Outside Down", models.PatternBearish, 0.85))
	}

	return patterns
}

func pattern(name string, dir models.PatternDirection, confidence float64) models.CandlestickPattern {
	return models.CandlestickPattern{
		Name:       name,
		Type:       dir,
		Confidence: confidence,
	}
}

// Candle geometry helpers.

func isBullish(c models.Candle) bool {
	return c.Close > c.Open
}

func isBearish(c models.Candle) bool {
	return c.Close < c.Open
}

func bodySize(c models.Candle) float64 {
	return math.Abs(c.Close - c.Open)
}

func upperShadow(c models.Candle) float64 {
	return c.High - math.Max(c.Open, c.Close)
}

func lowerShadow(c models.Candle) float64 {
	return math.Min(c.Open, c.Close) - c.Low
}

func totalRange(c models.Candle) float64 {
	return c.High - c.Low
}

func bodyMidpoint(c models.Candle) float64 {
	return (c.Open + c.Close) / 2
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// trendingUp reports whether the close rose over the trailing lookback bars.
func trendingUp(candles []models.Candle, lookback int) bool {
	if len(candles) < lookback+1 {
		return false
	}
	return candles[len(candles)-1].Close > candles[len(candles)-lookback-1].Close
}

// trendingDown reports whether the close fell over the trailing lookback bars.
func trendingDown(candles []models.Candle, lookback int) bool {
	if len(candles) < lookback+1 {
		return false
	}
	return candles[len(candles)-1].Close < candles[len(candles)-lookback-1].Close
}

// Single-candle predicates.

func (d *Detector) isDoji(c models.Candle) bool {
	r := totalRange(c)
	if r == 0 {
		return false
	}
	return bodySize(c)/r < d.cfg.DojiBodyMax
}

func (d *Detector) isDragonflyDoji(c models.Candle) bool {
	r := totalRange(c)
	if r == 0 {
		return false
	}
	return bodySize(c)/r < d.cfg.DojiBodyMax &&
		lowerShadow(c) > r*d.cfg.DojiShadowMin &&
		upperShadow(c) < r*d.cfg.DojiShadowMax
}

func (d *Detector) isGravestoneDoji(c models.Candle) bool {
	r := totalRange(c)
	if r == 0 {
		return false
	}
	return bodySize(c)/r < d.cfg.DojiBodyMax &&
		upperShadow(c) > r*d.cfg.DojiShadowMin &&
		lowerShadow(c) < r*d.cfg.DojiShadowMax
}

func (d *Detector) isSpinningTop(c models.Candle) bool {
	r := totalRange(c)
	if r == 0 {
		return false
	}
	body := bodySize(c)
	upper := upperShadow(c)
	lower := lowerShadow(c)

	smallBody := body/r < d.cfg.SpinningTopBodyMax && body/r > d.cfg.SpinningTopBodyMin
	hasShadows := upper > body*0.5 && lower > body*0.5
	shadowsBalanced := math.Abs(upper-lower) < r*0.3

	return smallBody && hasShadows && shadowsBalanced
}

func (d *Detector) isBullishMarubozu(c models.Candle) bool {
	if !isBullish(c) {
		return false
	}
	r := totalRange(c)
	if r == 0 {
		return false
	}
	return bodySize(c)/r > d.cfg.MarubozuBodyMin &&
		upperShadow(c) < r*d.cfg.MarubozuShadowMax &&
		lowerShadow(c) < r*d.cfg.MarubozuShadowMax
}

func (d *Detector) isBearishMarubozu(c models.Candle) bool {
	if !isBearish(c) {
		return false
	}
	r := totalRange(c)
	if r == 0 {
		return false
	}
	return bodySize(c)/r > d.cfg.MarubozuBodyMin &&
		upperShadow(c) < r*d.cfg.MarubozuShadowMax &&
		lowerShadow(c) < r*d.cfg.MarubozuShadowMax
}

func (d *Detector) isHammer(c models.Candle) bool {
	body := bodySize(c)
	if body == 0 {
		return false
	}
	return lowerShadow(c) > body*d.cfg.HammerShadowRatio &&
		upperShadow(c) < body*d.cfg.HammerCounterShadowMax
}

func (d *Detector) isInvertedHammer(c models.Candle, candles []models.Candle) bool {
	body := bodySize(c)
	if body == 0 {
		return false
	}
	hasShape := upperShadow(c) > body*d.cfg.HammerShadowRatio &&
		lowerShadow(c) < body*d.cfg.HammerCounterShadowMax
	return hasShape && trendingDown(candles, d.cfg.TrendLookback)
}

func (d *Detector) isHangingMan(c models.Candle, candles []models.Candle) bool {
	return d.isHammer(c) && trendingUp(candles, d.cfg.TrendLookback)
}

func (d *Detector) isShootingStar(c models.Candle) bool {
	body := bodySize(c)
	if body == 0 {
		return false
	}
	return upperShadow(c) > body*d.cfg.HammerShadowRatio &&
		lowerShadow(c) < body*d.cfg.HammerCounterShadowMax
}

// Two-candle predicates.

func (d *Detector) isBullishEngulfing(prev, current models.Candle) bool {
	if !isBearish(prev) || !isBullish(current) {
		return false
	}
	return current.Open <= prev.Close &&
		current.Close >= prev.Open &&
		bodySize(current) > bodySize(prev)
}

func (d *Detector) isBearishEngulfing(prev, current models.Candle) bool {
	if !isBullish(prev) || !isBearish(current) {
		return false
	}
	return current.Open >= prev.Close &&
		current.Close <= prev.Open &&
		bodySize(current) > bodySize(prev)
}

func (d *Detector) isPiercingLine(prev, current models.Candle) bool {
	if !isBearish(prev) || !isBullish(current) {
		return false
	}
	// Closing above the previous open would be an engulfing instead.
	return current.Open < prev.Close &&
		current.Close > bodyMidpoint(prev) &&
		current.Close < prev.Open
}

func (d *Detector) isDarkCloudCover(prev, current models.Candle) bool {
	if !isBullish(prev) || !isBearish(current) {
		return false
	}
	return current.Open > prev.Close &&
		current.Close < bodyMidpoint(prev) &&
		current.Close > prev.Open
}

func (d *Detector) isBullishHarami(prev, current models.Candle) bool {
	if !isBearish(prev) || !isBullish(current) {
		return false
	}
	return bodySize(current) < bodySize(prev)*d.cfg.HaramiBodyMax &&
		current.Open > prev.Close &&
		current.Close < prev.Open
}

func (d *Detector) isBearishHarami(prev, current models.Candle) bool {
	if !isBullish(prev) || !isBearish(current) {
		return false
	}
	return bodySize(current) < bodySize(prev)*d.cfg.HaramiBodyMax &&
		current.Open < prev.Close &&
		current.Close > prev.Open
}

func (d *Detector) isTweezerTop(prev, current models.Candle) bool {
	if !isBullish(prev) || !isBearish(current) {
		return false
	}
	avgPrice := (prev.High + current.High) / 2
	return almostEqual(prev.High, current.High, avgPrice*d.cfg.TweezerTolerance)
}

func (d *Detector) isTweezerBottom(prev, current models.Candle) bool {
	if !isBearish(prev) || !isBullish(current) {
		return false
	}
	avgPrice := (prev.Low + current.Low) / 2
	return almostEqual(prev.Low, current.Low, avgPrice*d.cfg.TweezerTolerance)
}

// Three-candle predicates.

func (d *Detector) isMorningStar(first, second, third models.Candle) bool {
	if !isBearish(first) || !isBullish(third) {
		return false
	}
	secondSmall := bodySize(second) < bodySize(first)*d.cfg.StarBodyMax
	return secondSmall && third.Close > bodyMidpoint(first)
}

func (d *Detector) isEveningStar(first, second, third models.Candle) bool {
	if !isBullish(first) || !isBearish(third) {
		return false
	}
	secondSmall := bodySize(second) < bodySize(first)*d.cfg.StarBodyMax
	return secondSmall && third.Close < bodyMidpoint(first)
}

func (d *Detector) isThreeWhiteSoldiers(first, second, third models.Candle) bool {
	if !isBullish(first) || !isBullish(second) || !isBullish(third) {
		return false
	}

	firstBody := bodySize(first)
	secondBody := bodySize(second)
	thirdBody := bodySize(third)
	if firstBody == 0 || secondBody == 0 || thirdBody == 0 {
		return false
	}

	secondOpensInFirst := second.Open >= first.Open && second.Open <= first.Close
	thirdOpensInSecond := third.Open >= second.Open && third.Open <= second.Close
	progressiveCloses := second.Close > first.Close && third.Close > second.Close

	return secondOpensInFirst && thirdOpensInSecond && progressiveCloses &&
		upperShadow(first) < firstBody*d.cfg.SoldierShadowMax &&
		upperShadow(second) < secondBody*d.cfg.SoldierShadowMax &&
		upperShadow(third) < thirdBody*d.cfg.SoldierShadowMax
}

func (d *Detector) isThreeBlackCrows(first, second, third models.Candle) bool {
	if !isBearish(first) || !isBearish(second) || !isBearish(third) {
		return false
	}

	firstBody := bodySize(first)
	secondBody := bodySize(second)
	thirdBody := bodySize(third)
	if firstBody == 0 || secondBody == 0 || thirdBody == 0 {
		return false
	}

	secondOpensInFirst := second.Open <= first.Open && second.Open >= first.Close
	thirdOpensInSecond := third.Open <= second.Open && third.Open >= second.Close
	progressiveCloses := second.Close < first.Close && third.Close < second.Close

	return secondOpensInFirst && thirdOpensInSecond && progressiveCloses &&
		lowerShadow(first) < firstBody*d.cfg.SoldierShadowMax &&
		lowerShadow(second) < secondBody*d.cfg.SoldierShadowMax &&
		lowerShadow(third) < thirdBody*d.cfg.SoldierShadowMax
}

func (d *Detector) isThreeInsideUp(first, second, third models.Candle) bool {
	if !isBearish(first) || !isBullish(second) || !isBullish(third) {
		return false
	}
	secondContained := second.Open > first.Close && second.Close < first.Open
	return secondContained && third.Close > first.Open
}

func (d *Detector) isThreeInsideDown(first, second, third models.Candle) bool {
	if !isBullish(first) || !isBearish(second) || !isBearish(third) {
		return false
	}
	secondContained := second.Open < first.Close && second.Close > first.Open
	return secondContained && third.Close < first.Open
}

func (d *Detector) isThreeOutsideUp(first, second, third models.Candle) bool {
	if !isBearish(first) || !isBullish(second) || !isBullish(third) {
		return false
	}
	engulfing := second.Open <= first.Close && second.Close >= first.Open
	return engulfing && third.Close > second.Close
}

func (d *Detector) isThreeOutsideDown(first, second, third models.Candle) bool {
	if !isBullish(first) || !isBearish(second) || !isBearish(third) {
		return false
	}
	engulfing := second.Open >= first.Close && second.Close <= first.Open
	return engulfing && third.Close < second.Close
}
