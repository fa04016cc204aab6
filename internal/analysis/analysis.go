// Package analysis orchestrates the technical-analysis pipeline:
// indicators, candlestick patterns, support/resistance, trend, Wyckoff,
// and the composite recommendation.
package analysis

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"marketlens/internal/analysis/indicators"
	"marketlens/internal/analysis/levels"
	"marketlens/internal/analysis/patterns"
	"marketlens/internal/analysis/scoring"
	"marketlens/internal/analysis/trend"
	"marketlens/internal/analysis/wyckoff"
	apperrors "marketlens/internal/errors"
	"marketlens/internal/models"
)

// Config aggregates the per-component settings.
type Config struct {
	Detector DetectorConfig
	Levels   levels.AnalyzerConfig
	Trend    trend.AnalyzerConfig
	Wyckoff  wyckoff.Config
	Weights  scoring.Weights
}

// DetectorConfig aliases the pattern detector configuration so callers
// can tune everything through a single struct.
type DetectorConfig = patterns.DetectorConfig

// DefaultConfig returns the standard settings for every component.
func DefaultConfig() Config {
	return Config{
		Detector: patterns.DefaultDetectorConfig(),
		Levels:   levels.DefaultAnalyzerConfig(),
		Trend:    trend.DefaultAnalyzerConfig(),
		Wyckoff:  wyckoff.DefaultConfig(),
		Weights:  scoring.DefaultWeights(),
	}
}

// Analyzer runs the full analysis pipeline. It is deterministic: the
// same candles and timestamp always produce the same report.
type Analyzer struct {
	detector *patterns.Detector
	levels   *levels.Analyzer
	trend    *trend.Analyzer
	wyckoff  *wyckoff.Analyzer
	scorer   *scoring.Scorer
	logger   zerolog.Logger
}

// NewAnalyzer creates an analyzer from the given configuration.
func NewAnalyzer(cfg Config, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		detector: patterns.NewDetector(cfg.Detector),
		levels:   levels.NewAnalyzer(cfg.Levels),
		trend:    trend.NewAnalyzer(cfg.Trend),
		wyckoff:  wyckoff.NewAnalyzer(cfg.Wyckoff),
		scorer:   scoring.NewScorer(cfg.Weights),
		logger:   logger.With().Str("component", "analysis").Logger(),
	}
}

// NewDefaultAnalyzer creates an analyzer with the standard settings.
func NewDefaultAnalyzer(logger zerolog.Logger) *Analyzer {
	return NewAnalyzer(DefaultConfig(), logger)
}

// Analyze produces a full report for the candle series. The timestamp
// is injected by the caller and recorded verbatim. An empty series is
// the only hard failure; every component degrades to a neutral result
// on short input.
func (a *Analyzer) Analyze(ctx context.Context, symbol string, candles []models.Candle, at time.Time) (*models.AnalysisReport, error) {
	if len(candles) == 0 {
		return nil, apperrors.NewDataError("candles", symbol, "empty price series", apperrors.ErrNoData)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	currentPrice := candles[len(candles)-1].Close

	snapshot := indicators.Snapshot(candles)
	detected := a.detector.Detect(candles)
	sr := a.levels.Detect(candles)
	trendAnalysis := a.trend.Analyze(candles)
	wyckoffAnalysis := a.wyckoff.Analyze(candles)

	recommendation, score := a.scorer.Score(scoring.Input{
		CurrentPrice:      currentPrice,
		Indicators:        snapshot,
		Patterns:          detected,
		SupportResistance: sr,
		Trend:             trendAnalysis,
		Wyckoff:           wyckoffAnalysis,
	})

	buyRange, halfBuyRange, sellRange := a.scorer.PriceRanges(currentPrice, snapshot, sr, trendAnalysis)

	a.logger.Debug().
		Str("symbol", symbol).
		Int("bars", len(candles)).
		Float64("price", currentPrice).
		Str("recommendation", string(recommendation)).
		Float64("score", score).
		Msg("analysis complete")

	return &models.AnalysisReport{
		Symbol:              symbol,
		GeneratedAt:         at,
		CurrentPrice:        currentPrice,
		Indicators:          snapshot,
		Patterns:            detected,
		SupportResistance:   sr,
		Trend:               trendAnalysis,
		Wyckoff:             wyckoffAnalysis,
		BuyRange:            buyRange,
		HalfBuyRange:        halfBuyRange,
		SellRange:           sellRange,
		Recommendation:      recommendation,
		RecommendationScore: score,
		PriceHistory:        candles,
	}, nil
}
