// Package candles provides shared helpers for OHLCV candle series.
package candles

import (
	"fmt"
	"sort"

	"marketlens/internal/models"
)

// Validate checks a candle series for structural problems: non-positive
// prices, inverted high/low, bodies outside the high/low range, and
// out-of-order timestamps. It returns the first problem found.
func Validate(series []models.Candle) error {
	for i, c := range series {
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			return fmt.Errorf("candle %d: non-positive price", i)
		}
		if c.High < c.Low {
			return fmt.Errorf("candle %d: high %.4f below low %.4f", i, c.High, c.Low)
		}
		if c.Open > c.High || c.Open < c.Low {
			return fmt.Errorf("candle %d: open %.4f outside [%.4f, %.4f]", i, c.Open, c.Low, c.High)
		}
		if c.Close > c.High || c.Close < c.Low {
			return fmt.Errorf("candle %d: close %.4f outside [%.4f, %.4f]", i, c.Close, c.Low, c.High)
		}
		if c.Volume < 0 {
			return fmt.Errorf("candle %d: negative volume", i)
		}
		if i > 0 && c.Timestamp.Before(series[i-1].Timestamp) {
			return fmt.Errorf("candle %d: timestamp before predecessor", i)
		}
	}
	return nil
}

// Sort orders a series by timestamp ascending, in place.
func Sort(series []models.Candle) {
	sort.Slice(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})
}

// Dedupe removes candles sharing a timestamp with their predecessor,
// keeping the last occurrence. The input must be sorted.
func Dedupe(series []models.Candle) []models.Candle {
	if len(series) < 2 {
		return series
	}
	out := series[:0]
	for i, c := range series {
		if i+1 < len(series) && series[i+1].Timestamp.Equal(c.Timestamp) {
			continue
		}
		out = append(out, c)
	}
	return out
}
