// Package wyckoff implements Wyckoff method analysis: trading range
// detection, structural events, phase determination, effort-vs-result,
// and the derived recommendation and trading zones.
package wyckoff

import (
	"marketlens/internal/models"
)

// Config holds the thresholds for Wyckoff analysis.
type Config struct {
	// MinBars is the minimum series length for any analysis.
	MinBars int
	// RangeLookback caps the number of trailing bars used to detect the
	// trading range.
	RangeLookback int
	// SwingWindow is the number of bars on each side a swing point must
	// dominate.
	SwingWindow int

	// AvgVolumePeriod and AvgRangePeriod size the baselines that event
	// volume and spread are compared against.
	AvgVolumePeriod int
	AvgRangePeriod  int

	// ClimaxVolumeRatio, ClimaxRangeRatio, and ClimaxClosePosition gate
	// selling and buying climaxes.
	ClimaxVolumeRatio   float64
	ClimaxRangeRatio    float64
	ClimaxClosePosition float64

	// SpringMaxPenetration is the deepest relative break beyond the range
	// boundary that still reads as a spring or upthrust.
	SpringMaxPenetration float64
	// SpringVolumeRatio is the volume ratio above which a spring or
	// upthrust earns its higher confidence.
	SpringVolumeRatio float64

	// StrengthVolumeRatio and StrengthRangeRatio gate signs of strength
	// and weakness.
	StrengthVolumeRatio float64
	StrengthRangeRatio  float64

	// TrendContextBars is the lookback for the trend leading into an event.
	TrendContextBars int
	// RecentEventBars is the window treated as "recent" for scoring and
	// zone adjustments.
	RecentEventBars int

	// TrendingChange is the relative price change over the phase window
	// that reads as trending.
	TrendingChange float64

	// EffortBars is the window for effort-vs-result analysis and
	// EffortMoveThreshold the normalized price move separating a small
	// result from a large one.
	EffortBars          int
	EffortMoveThreshold float64

	// ScoreDivisor normalizes the raw recommendation score and
	// BuyThreshold/SellThreshold cut the normalized score into actions.
	ScoreDivisor  float64
	BuyThreshold  float64
	SellThreshold float64
}

// DefaultConfig returns the standard Wyckoff analysis thresholds.
func DefaultConfig() Config {
	return Config{
		MinBars:              30,
		RangeLookback:        60,
		SwingWindow:          2,
		AvgVolumePeriod:      20,
		AvgRangePeriod:       10,
		ClimaxVolumeRatio:    2.0,
		ClimaxRangeRatio:     1.5,
		ClimaxClosePosition:  0.3,
		SpringMaxPenetration: 0.03,
		SpringVolumeRatio:    1.5,
		StrengthVolumeRatio:  1.5,
		StrengthRangeRatio:   1.3,
		TrendContextBars:     5,
		RecentEventBars:      10,
		TrendingChange:       0.05,
		EffortBars:           10,
		EffortMoveThreshold:  2.0,
		ScoreDivisor:         9.0,
		BuyThreshold:         0.4,
		SellThreshold:        -0.4,
	}
}

// Analyzer performs Wyckoff method analysis over a candle series.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer with the given configuration.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// NewDefaultAnalyzer creates an analyzer with the standard thresholds.
func NewDefaultAnalyzer() *Analyzer {
	return &Analyzer{cfg: DefaultConfig()}
}

// Analyze runs the full Wyckoff pipeline. Series shorter than MinBars
// produce the insufficient_data result rather than an error.
func (a *Analyzer) Analyze(candles []models.Candle) models.WyckoffAnalysis {
	if len(candles) < a.cfg.MinBars {
		return models.WyckoffAnalysis{
			Phase:          models.PhaseInsufficientData,
			Events:         []models.WyckoffEvent{},
			EffortResult:   models.EffortUnknown,
			Recommendation: models.RecommendHold,
		}
	}

	tradingRange := a.detectTradingRange(candles)
	events := a.detectEvents(candles, tradingRange)
	phase, phaseConfidence := a.determinePhase(candles, events, tradingRange)
	effortResult := a.analyzeEffortVsResult(candles)

	recommendation, score := a.recommend(candles, phase, phaseConfidence, events, tradingRange, effortResult)
	buyZone, accumZone, distZone, sellZone := a.calculateZones(candles, tradingRange, events)

	return models.WyckoffAnalysis{
		Phase:               phase,
		PhaseConfidence:     phaseConfidence,
		Events:              events,
		TradingRange:        tradingRange,
		EffortResult:        effortResult,
		Recommendation:      recommendation,
		RecommendationScore: score,
		BuyZone:             buyZone,
		AccumulationZone:    accumZone,
		DistributionZone:    distZone,
		SellZone:            sellZone,
	}
}

// detectTradingRange derives consolidation boundaries from the mean of
// swing highs and lows over the trailing lookback window, falling back
// to the window extremes when no swings exist.
func (a *Analyzer) detectTradingRange(candles []models.Candle) models.PriceRange {
	if len(candles) < 20 {
		return models.PriceRange{}
	}

	lookback := len(candles)
	if lookback > a.cfg.RangeLookback {
		lookback = a.cfg.RangeLookback
	}
	recent := candles[len(candles)-lookback:]

	w := a.cfg.SwingWindow
	var highs, lows []float64

	for i := w; i < len(recent)-w; i++ {
		isSwingHigh := true
		isSwingLow := true
		for j := i - w; j <= i+w; j++ {
			if j == i {
				continue
			}
			if recent[j].High >= recent[i].High {
				isSwingHigh = false
			}
			if recent[j].Low <= recent[i].Low {
				isSwingLow = false
			}
		}
		if isSwingHigh {
			highs = append(highs, recent[i].High)
		}
		if isSwingLow {
			lows = append(lows, recent[i].Low)
		}
	}

	var rangeHigh, rangeLow float64
	if len(highs) > 0 {
		rangeHigh = meanOf(highs)
	} else {
		rangeHigh = maxHigh(recent)
	}
	if len(lows) > 0 {
		rangeLow = meanOf(lows)
	} else {
		rangeLow = minLow(recent)
	}

	return models.PriceRange{Min: rangeLow, Max: rangeHigh}
}

// averageVolume computes the mean volume over the trailing lookback bars.
func averageVolume(candles []models.Candle, lookback int) float64 {
	if len(candles) < lookback {
		lookback = len(candles)
	}
	if lookback == 0 {
		return 0
	}

	total := int64(0)
	for i := len(candles) - lookback; i < len(candles); i++ {
		total += candles[i].Volume
	}
	return float64(total) / float64(lookback)
}

// averageBarRange computes the mean high-low spread of the bars before idx.
func averageBarRange(candles []models.Candle, idx, lookback int) float64 {
	start := idx - lookback
	if start < 0 {
		start = 0
	}
	count := idx - start
	if count == 0 {
		return 1
	}

	total := 0.0
	for i := start; i < idx; i++ {
		total += candles[i].High - candles[i].Low
	}
	return total / float64(count)
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maxHigh(candles []models.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	m := candles[0].High
	for _, c := range candles {
		if c.High > m {
			m = c.High
		}
	}
	return m
}

func minLow(candles []models.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	m := candles[0].Low
	for _, c := range candles {
		if c.Low < m {
			m = c.Low
		}
	}
	return m
}
