// Package models provides domain models for the analysis engine.
package models

import (
	"time"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time `json:"date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Recommendation is a closed buy/sell/hold vocabulary.
type Recommendation string

const (
	RecommendBuy  Recommendation = "buy"
	RecommendSell Recommendation = "sell"
	RecommendHold Recommendation = "hold"
)

// TrendDirection classifies the prevailing price direction.
type TrendDirection string

const (
	TrendUp       TrendDirection = "uptrend"
	TrendDown     TrendDirection = "downtrend"
	TrendSideways TrendDirection = "sideways"
)

// PatternDirection represents the directional bias of a candlestick pattern.
type PatternDirection string

const (
	PatternBullish PatternDirection = "bullish"
	PatternBearish PatternDirection = "bearish"
	PatternNeutral PatternDirection = "neutral"
)

// WyckoffPhase represents the market phase under the Wyckoff method.
type WyckoffPhase string

const (
	PhaseAccumulation     WyckoffPhase = "accumulation"
	PhaseMarkup           WyckoffPhase = "markup"
	PhaseDistribution     WyckoffPhase = "distribution"
	PhaseMarkdown         WyckoffPhase = "markdown"
	PhaseUnknown          WyckoffPhase = "unknown"
	PhaseInsufficientData WyckoffPhase = "insufficient_data"
)

// WyckoffBias classifies an event as accumulation- or distribution-side.
type WyckoffBias string

const (
	BiasAccumulation WyckoffBias = "accumulation"
	BiasDistribution WyckoffBias = "distribution"
)

// EffortResult describes how volume (effort) relates to price movement (result).
type EffortResult string

const (
	EffortConfirming EffortResult = "confirming"
	EffortDiverging  EffortResult = "diverging"
	EffortUnknown    EffortResult = "unknown"
)

// TechnicalIndicators is a point-in-time snapshot of the standard indicator set.
type TechnicalIndicators struct {
	RSI            float64 `json:"rsi"`
	MACD           float64 `json:"macd"`
	MACDSignal     float64 `json:"macd_signal"`
	MACDHistogram  float64 `json:"macd_histogram"`
	SMA20          float64 `json:"sma_20"`
	SMA50          float64 `json:"sma_50"`
	SMA200         float64 `json:"sma_200"`
	EMA12          float64 `json:"ema_12"`
	EMA26          float64 `json:"ema_26"`
	BollingerUpper float64 `json:"bollinger_upper"`
	BollingerMid   float64 `json:"bollinger_mid"`
	BollingerLower float64 `json:"bollinger_lower"`
}

// CandlestickPattern is a detected candlestick formation on the latest bars.
type CandlestickPattern struct {
	Name       string           `json:"name"`
	Type       PatternDirection `json:"type"`
	Confidence float64          `json:"confidence"`
}

// SupportResistance holds detected price levels, ordered nearest-first.
type SupportResistance struct {
	SupportLevels    []float64 `json:"support_levels"`
	ResistanceLevels []float64 `json:"resistance_levels"`
}

// TrendAnalysis describes direction, strength in [0,1], and the fitted
// regression value at the latest bar.
type TrendAnalysis struct {
	Trend     TrendDirection `json:"trend"`
	Strength  float64        `json:"strength"`
	TrendLine float64        `json:"trend_line"`
}

// PriceRange is an inclusive [Min, Max] price band.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// WyckoffEvent is a structural event detected within the trading range.
type WyckoffEvent struct {
	Name       string      `json:"name"`
	Type       WyckoffBias `json:"type"`
	Date       time.Time   `json:"date"`
	Price      float64     `json:"price"`
	Volume     int64       `json:"volume"`
	Confidence float64     `json:"confidence"`
}

// WyckoffAnalysis is the full output of the Wyckoff method analysis.
type WyckoffAnalysis struct {
	Phase               WyckoffPhase   `json:"phase"`
	PhaseConfidence     float64        `json:"phase_confidence"`
	Events              []WyckoffEvent `json:"events"`
	TradingRange        PriceRange     `json:"trading_range"`
	EffortResult        EffortResult   `json:"effort_result"`
	Recommendation      Recommendation `json:"recommendation"`
	RecommendationScore float64        `json:"recommendation_score"`
	BuyZone             PriceRange     `json:"buy_zone"`
	AccumulationZone    PriceRange     `json:"accumulation_zone"`
	DistributionZone    PriceRange     `json:"distribution_zone"`
	SellZone            PriceRange     `json:"sell_zone"`
}

// AnalysisReport is the composite output of a full analysis run.
type AnalysisReport struct {
	Symbol              string               `json:"symbol"`
	GeneratedAt         time.Time            `json:"generated_at"`
	CurrentPrice        float64              `json:"current_price"`
	Indicators          TechnicalIndicators  `json:"indicators"`
	Patterns            []CandlestickPattern `json:"patterns"`
	SupportResistance   SupportResistance    `json:"support_resistance"`
	Trend               TrendAnalysis        `json:"trend"`
	Wyckoff             WyckoffAnalysis      `json:"wyckoff"`
	BuyRange            PriceRange           `json:"buy_range"`
	HalfBuyRange        PriceRange           `json:"half_buy_range"`
	SellRange           PriceRange           `json:"sell_range"`
	Recommendation      Recommendation       `json:"recommendation"`
	RecommendationScore float64              `json:"recommendation_score"`
	PriceHistory        []Candle             `json:"price_history"`
}
