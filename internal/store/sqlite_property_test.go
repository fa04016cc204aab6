package store

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"marketlens/internal/models"
)

// Property: For any valid candle data, saving candles to the database and then
// retrieving them should produce equivalent candle data (round-trip consistency).
func TestProperty_CandleRoundTripConsistency(t *testing.T) {
	dbPath := "test_candles_property.db"
	defer os.Remove(dbPath)

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"AAPL", "MSFT", "GOOG", "AMZN", "NVDA", "META", "TSLA", "NFLX", "AMD", "INTC"}

	timeframeGen := gen.OneConstOf("1min", "5min", "15min", "30min", "1hour", "1day")

	// 1-20 candles per run
	countGen := gen.IntRange(1, 20)

	priceGen := gen.Float64Range(100.0, 5000.0)
	volumeGen := gen.Int64Range(1000, 1000000)

	properties.Property("Candle round-trip: save then retrieve produces equivalent data", prop.ForAll(
		func(symbolIdx int, timeframe string, count int, basePrice float64, baseVolume int64) bool {
			ctx := context.Background()
			symbol := symbols[symbolIdx%len(symbols)]

			// Unique symbol+timeframe combo to avoid conflicts between runs
			uniqueSymbol := fmt.Sprintf("%s_%d", symbol, time.Now().UnixNano()%10000)

			candles := generateTestCandles(count, basePrice, baseVolume)

			err := store.SaveCandles(ctx, uniqueSymbol, timeframe, candles)
			if err != nil {
				t.Logf("Failed to save candles: %v", err)
				return false
			}

			from := candles[0].Timestamp.Add(-time.Second)
			to := candles[len(candles)-1].Timestamp.Add(time.Second)
			retrieved, err := store.GetCandles(ctx, uniqueSymbol, timeframe, from, to)
			if err != nil {
				t.Logf("Failed to get candles: %v", err)
				return false
			}

			if len(retrieved) != len(candles) {
				t.Logf("Count mismatch: expected %d, got %d", len(candles), len(retrieved))
				return false
			}

			for i, orig := range candles {
				ret := retrieved[i]
				if !candlesEqual(orig, ret) {
					t.Logf("Candle mismatch at index %d: original=%+v, retrieved=%+v", i, orig, ret)
					return false
				}
			}

			return true
		},
		gen.IntRange(0, len(symbols)-1),
		timeframeGen,
		countGen,
		priceGen,
		volumeGen,
	))

	properties.Property("Empty candles: saving empty slice should succeed", prop.ForAll(
		func(symbolIdx int, timeframe string) bool {
			ctx := context.Background()
			symbol := symbols[symbolIdx%len(symbols)]
			uniqueSymbol := fmt.Sprintf("%s_empty_%d", symbol, time.Now().UnixNano()%10000)

			err := store.SaveCandles(ctx, uniqueSymbol, timeframe, []models.Candle{})
			return err == nil
		},
		gen.IntRange(0, len(symbols)-1),
		timeframeGen,
	))

	properties.TestingRun(t)
}

func TestReportRoundTrip(t *testing.T) {
	dbPath := "test_reports.db"
	defer os.Remove(dbPath)

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	generatedAt := time.Date(2025, 6, 2, 15, 30, 0, 0, time.UTC)

	report := &models.AnalysisReport{
		Symbol:       "AAPL",
		GeneratedAt:  generatedAt,
		CurrentPrice: 187.45,
		Indicators: models.TechnicalIndicators{
			RSI:   62.3,
			SMA20: 184.1,
			SMA50: 179.8,
		},
		Patterns: []models.CandlestickPattern{
			{Name: "Hammer", Type: models.PatternBullish, Confidence: 0.75},
		},
		Trend:               models.TrendAnalysis{Trend: models.TrendUp, Strength: 0.7, TrendLine: 186.9},
		BuyRange:            models.PriceRange{Min: 180.0, Max: 183.7},
		HalfBuyRange:        models.PriceRange{Min: 183.7, Max: 187.45},
		SellRange:           models.PriceRange{Min: 195.0, Max: 204.75},
		Recommendation:      models.RecommendBuy,
		RecommendationScore: 0.42,
	}

	if err := store.SaveReport(ctx, report); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	latest, err := store.LatestReport(ctx, "AAPL")
	if err != nil {
		t.Fatalf("LatestReport failed: %v", err)
	}
	if latest.Symbol != "AAPL" || latest.Recommendation != models.RecommendBuy {
		t.Errorf("unexpected report: %+v", latest)
	}
	if !latest.GeneratedAt.Equal(generatedAt) {
		t.Errorf("generated_at mismatch: %v", latest.GeneratedAt)
	}
	if !floatEqual(latest.RecommendationScore, 0.42, 1e-9) {
		t.Errorf("score mismatch: %v", latest.RecommendationScore)
	}
	if len(latest.Patterns) != 1 || latest.Patterns[0].Name != "Hammer" {
		t.Errorf("patterns not preserved: %+v", latest.Patterns)
	}

	// Filtering by recommendation
	reports, err := store.GetReports(ctx, ReportFilter{Symbol: "AAPL", Recommendation: models.RecommendBuy})
	if err != nil {
		t.Fatalf("GetReports failed: %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("expected 1 report, got %d", len(reports))
	}

	// Missing symbol yields a data error
	if _, err := store.LatestReport(ctx, "MISSING"); err == nil {
		t.Error("expected error for missing symbol")
	}
}

// generateTestCandles creates valid candles for testing
func generateTestCandles(count int, basePrice float64, baseVolume int64) []models.Candle {
	candles := make([]models.Candle, count)
	baseTime := time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		variation := float64(i%10) * 0.01 * basePrice
		open := basePrice + variation
		close := basePrice + variation*0.5

		// Ensure high >= max(open, close) and low <= min(open, close)
		high := math.Max(open, close) * 1.01
		low := math.Min(open, close) * 0.99

		candles[i] = models.Candle{
			Timestamp: baseTime.Add(time.Duration(i) * time.Minute),
			Open:      roundToDecimal(open, 2),
			High:      roundToDecimal(high, 2),
			Low:       roundToDecimal(low, 2),
			Close:     roundToDecimal(close, 2),
			Volume:    baseVolume + int64(i*1000),
		}
	}

	return candles
}

// roundToDecimal rounds a float to specified decimal places
func roundToDecimal(val float64, places int) float64 {
	multiplier := math.Pow(10, float64(places))
	return math.Round(val*multiplier) / multiplier
}

// candlesEqual compares two candles for equality with floating point tolerance.
func candlesEqual(a, b models.Candle) bool {
	const tolerance = 0.01

	if !a.Timestamp.Equal(b.Timestamp) {
		return false
	}
	if !floatEqual(a.Open, b.Open, tolerance) {
		return false
	}
	if !floatEqual(a.High, b.High, tolerance) {
		return false
	}
	if !floatEqual(a.Low, b.Low, tolerance) {
		return false
	}
	if !floatEqual(a.Close, b.Close, tolerance) {
		return false
	}
	if a.Volume != b.Volume {
		return false
	}
	return true
}

// floatEqual compares two floats with a tolerance.
func floatEqual(a, b, tolerance float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
