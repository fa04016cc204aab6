package indicators

import (
	"marketlens/internal/models"
)

// Standard periods for the snapshot indicator set.
const (
	rsiPeriod       = 14
	macdFastPeriod  = 12
	macdSlowPeriod  = 26
	macdSignal      = 9
	bollingerPeriod = 20
	bollingerMult   = 2.0
)

// SMAValue computes the simple moving average of closes at the latest
// bar, or 0 when the series is shorter than the period.
func SMAValue(candles []models.Candle, period int) float64 {
	return smaAt(closePrices(candles), period)
}

// ADXValue computes the directional index at the latest bar, or 0 when
// the series is shorter than period+1 bars.
func ADXValue(candles []models.Candle, period int) float64 {
	return adxAt(candles, period)
}

// Snapshot computes the standard indicator set at the latest bar.
// Indicators with too little history degrade to neutral values (50 for
// RSI, 0 everywhere else) rather than failing.
func Snapshot(candles []models.Candle) models.TechnicalIndicators {
	closes := closePrices(candles)

	macd, signal, histogram := macdAt(closes, macdFastPeriod, macdSlowPeriod, macdSignal)
	upper, middle, lower := bollingerAt(closes, bollingerPeriod, bollingerMult)

	return models.TechnicalIndicators{
		RSI:            rsiAt(closes, rsiPeriod),
		MACD:           macd,
		MACDSignal:     signal,
		MACDHistogram:  histogram,
		SMA20:          smaAt(closes, 20),
		SMA50:          smaAt(closes, 50),
		SMA200:         smaAt(closes, 200),
		EMA12:          emaAt(closes, macdFastPeriod),
		EMA26:          emaAt(closes, macdSlowPeriod),
		BollingerUpper: upper,
		BollingerMid:   middle,
		BollingerLower: lower,
	}
}
