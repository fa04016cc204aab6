package indicators

import (
	"fmt"

	"marketlens/internal/models"
)

// BollingerBands calculates Bollinger Bands around an SMA using the
// population standard deviation of the window.
type BollingerBands struct {
	period int
	stdDev float64
}

// NewBollingerBands creates a new Bollinger Bands indicator.
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{
		period: period,
		stdDev: stdDev,
	}
}

func (b *BollingerBands) Name() string {
	return fmt.Sprintf("BollingerBands_%d_%.1f", b.period, b.stdDev)
}

func (b *BollingerBands) Period() int {
	return b.period
}

func (b *BollingerBands) Calculate(candles []models.Candle) (map[string][]float64, error) {
	if b.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < b.period {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	closes := closePrices(candles)

	middle := make([]float64, n)
	upper := make([]float64, n)
	lower := make([]float64, n)

	for i := b.period - 1; i < n; i++ {
		window := closes[i-b.period+1 : i+1]
		m := mean(window)
		sd := stdDev(window)

		middle[i] = m
		upper[i] = m + b.stdDev*sd
		lower[i] = m - b.stdDev*sd
	}

	return map[string][]float64{
		"middle": middle,
		"upper":  upper,
		"lower":  lower,
	}, nil
}

// bollingerAt computes the bands over the trailing window at the final bar.
// Returns zeros when the series is shorter than the period.
func bollingerAt(closes []float64, period int, mult float64) (upper, middle, lower float64) {
	if len(closes) < period {
		return 0, 0, 0
	}

	window := closes[len(closes)-period:]
	middle = mean(window)
	sd := stdDev(window)

	upper = middle + mult*sd
	lower = middle - mult*sd
	return upper, middle, lower
}
