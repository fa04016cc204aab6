package indicators

import (
	"fmt"

	"marketlens/internal/models"
)

// RSI calculates the Relative Strength Index using a simple trailing
// average of gains and losses over the period.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI_%d", r.period)
}

func (r *RSI) Period() int {
	return r.period
}

func (r *RSI) Calculate(candles []models.Candle) ([]float64, error) {
	if r.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < r.period+1 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	result := make([]float64, n)
	closes := closePrices(candles)

	// Bars before the warm-up window carry the neutral value.
	for i := 0; i < r.period; i++ {
		result[i] = 50
	}

	for i := r.period; i < n; i++ {
		result[i] = rsiAt(closes[:i+1], r.period)
	}

	return result, nil
}

// rsiAt computes RSI from the trailing period changes of the close series.
// Fewer than period+1 closes yields the neutral 50; zero average loss
// saturates at 100.
func rsiAt(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50
	}

	gains := 0.0
	losses := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}
