package patterns

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"marketlens/internal/models"
)

func candleAt(day int, o, h, l, c float64) models.Candle {
	return models.Candle{
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    100000,
	}
}

// flatPrefix returns n neutral candles that trigger no trend context.
func flatPrefix(n int) []models.Candle {
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = candleAt(i, 100, 100.6, 99.4, 100)
	}
	return candles
}

func hasPattern(detected []models.CandlestickPattern, name string) bool {
	for _, p := range detected {
		if p.Name == name {
			return true
		}
	}
	return false
}

func findPattern(t *testing.T, detected []models.CandlestickPattern, name string) models.CandlestickPattern {
	t.Helper()
	for _, p := range detected {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("pattern %q not detected in %v", name, detected)
	return models.CandlestickPattern{}
}

func TestDetectShortSeries(t *testing.T) {
	d := NewDefaultDetector()

	for n := 0; n < 3; n++ {
		detected := d.Detect(flatPrefix(n))
		if detected == nil {
			t.Fatalf("Detect must return an empty slice, got nil for %d candles", n)
		}
		if len(detected) != 0 {
			t.Errorf("expected no patterns on %d candles, got %v", n, detected)
		}
	}
}

// Any candle whose body is under a tenth of its range must read as some
// member of the doji family, and never more than one member at once.
func TestProperty_SmallBodyIsDoji(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	d := NewDefaultDetector()

	properties.Property("small body reads as a doji variant", prop.ForAll(
		func(low, barRange, bodyFrac, lowerFrac float64) bool {
			open := low + lowerFrac*barRange
			close := open + bodyFrac*barRange
			doji := candleAt(10, open, low+barRange, low, close)

			series := append(flatPrefix(10), doji)
			detected := d.Detect(series)

			variants := 0
			for _, name := range []string{"Doji", "Dragonfly Doji", "Gravestone Doji"} {
				if hasPattern(detected, name) {
					variants++
				}
			}
			return variants == 1
		},
		gen.Float64Range(50, 150),
		gen.Float64Range(1, 20),
		gen.Float64Range(0, 0.09),
		gen.Float64Range(0, 0.9),
	))

	properties.TestingRun(t)
}

func TestDojiVariantsOutrankPlainDoji(t *testing.T) {
	d := NewDefaultDetector()

	tests := []struct {
		name    string
		candle  models.Candle
		want    string
		dir     models.PatternDirection
		conf    float64
		exclude string
	}{
		{
			name:    "dragonfly",
			candle:  candleAt(10, 100, 100.5, 92, 100.2),
			want:    "Dragonfly Doji",
			dir:     models.PatternBullish,
			conf:    0.75,
			exclude: "Doji",
		},
		{
			name:    "gravestone",
			candle:  candleAt(10, 100, 108, 99.5, 99.8),
			want:    "Gravestone Doji",
			dir:     models.PatternBearish,
			conf:    0.75,
			exclude: "Doji",
		},
		{
			name:   "plain doji",
			candle: candleAt(10, 100, 105, 95, 100.5),
			want:   "Doji",
			dir:    models.PatternNeutral,
			conf:   0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := append(flatPrefix(10), tt.candle)
			detected := d.Detect(series)

			p := findPattern(t, detected, tt.want)
			if p.Type != tt.dir {
				t.Errorf("direction: got %s, want %s", p.Type, tt.dir)
			}
			if p.Confidence != tt.conf {
				t.Errorf("confidence: got %v, want %v", p.Confidence, tt.conf)
			}
			if tt.exclude != "" && hasPattern(detected, tt.exclude) {
				t.Errorf("%s should suppress %s", tt.want, tt.exclude)
			}
		})
	}
}

// The hammer shape flips meaning with its trend context: after an
// advance it is a hanging man, otherwise a hammer.
func TestHammerVersusHangingMan(t *testing.T) {
	d := NewDefaultDetector()
	hammerShape := func(day int) models.Candle {
		return candleAt(day, 101, 101.2, 96, 100)
	}

	t.Run("no trend reads as hammer", func(t *testing.T) {
		series := append(flatPrefix(10), hammerShape(10))
		detected := d.Detect(series)
		if !hasPattern(detected, "Hammer") {
			t.Errorf("expected Hammer, got %v", detected)
		}
		if hasPattern(detected, "Hanging Man") {
			t.Error("Hanging Man must not fire without an uptrend")
		}
	})

	t.Run("after uptrend reads as hanging man", func(t *testing.T) {
		series := make([]models.Candle, 0, 11)
		for i := 0; i < 10; i++ {
			close := 90 + float64(i)
			series = append(series, candleAt(i, close-0.5, close+0.5, close-1, close))
		}
		series = append(series, hammerShape(10))

		detected := d.Detect(series)
		hm := findPattern(t, detected, "Hanging Man")
		if hm.Type != models.PatternBearish {
			t.Errorf("Hanging Man should be bearish, got %s", hm.Type)
		}
		if hasPattern(detected, "Hammer") {
			t.Error("Hanging Man must suppress Hammer")
		}
	})
}

// The inverted-hammer shape flips the other way: it needs a preceding
// decline, otherwise it is a shooting star.
func TestInvertedHammerVersusShootingStar(t *testing.T) {
	d := NewDefaultDetector()
	shape := func(day int) models.Candle {
		return candleAt(day, 99, 104, 98.9, 100)
	}

	t.Run("no trend reads as shooting star", func(t *testing.T) {
		series := append(flatPrefix(10), shape(10))
		detected := d.Detect(series)
		if !hasPattern(detected, "Shooting Star") {
			t.Errorf("expected Shooting Star, got %v", detected)
		}
		if hasPattern(detected, "Inverted Hammer") {
			t.Error("Inverted Hammer must not fire without a downtrend")
		}
	})

	t.Run("after downtrend reads as inverted hammer", func(t *testing.T) {
		series := make([]models.Candle, 0, 11)
		for i := 0; i < 10; i++ {
			close := 110 - float64(i)
			series = append(series, candleAt(i, close+0.5, close+1, close-0.5, close))
		}
		series = append(series, shape(10))

		detected := d.Detect(series)
		ih := findPattern(t, detected, "Inverted Hammer")
		if ih.Type != models.PatternBullish {
			t.Errorf("Inverted Hammer should be bullish, got %s", ih.Type)
		}
		if hasPattern(detected, "Shooting Star") {
			t.Error("Inverted Hammer must suppress Shooting Star")
		}
	})
}

func TestTwoCandlePatterns(t *testing.T) {
	d := NewDefaultDetector()

	tests := []struct {
		name    string
		prev    models.Candle
		current models.Candle
		want    string
		dir     models.PatternDirection
		conf    float64
	}{
		{
			name:    "bullish engulfing",
			prev:    candleAt(9, 100, 100.4, 97.6, 98),
			current: candleAt(10, 97.5, 101, 97.3, 100.5),
			want:    "Bullish Engulfing",
			dir:     models.PatternBullish,
			conf:    0.85,
		},
		{
			name:    "bearish engulfing",
			prev:    candleAt(9, 98, 100.4, 97.6, 100),
			current: candleAt(10, 100.5, 100.7, 97, 97.5),
			want:    "Bearish Engulfing",
			dir:     models.PatternBearish,
			conf:    0.85,
		},
		{
			name:    "piercing line",
			prev:    candleAt(9, 102, 102.4, 97.6, 98),
			current: candleAt(10, 97.5, 101.5, 97.3, 101),
			want:    "Piercing Line",
			dir:     models.PatternBullish,
			conf:    0.75,
		},
		{
			name:    "dark cloud cover",
			prev:    candleAt(9, 98, 102.4, 97.6, 102),
			current: candleAt(10, 102.5, 102.7, 98.5, 99),
			want:    "Dark Cloud Cover",
			dir:     models.PatternBearish,
			conf:    0.75,
		},
		{
			name:    "bullish harami",
			prev:    candleAt(9, 104, 104.4, 95.6, 96),
			current: candleAt(10, 98, 100.5, 97.8, 100),
			want:    "Bullish Harami",
			dir:     models.PatternBullish,
			conf:    0.7,
		},
		{
			name:    "tweezer bottom",
			prev:    candleAt(9, 102, 102.4, 96, 98),
			current: candleAt(10, 98.5, 101, 96.001, 100.5),
			want:    "Tweezer Bottom",
			dir:     models.PatternBullish,
			conf:    0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := append(flatPrefix(9), tt.prev, tt.current)
			detected := d.Detect(series)

			p := findPattern(t, detected, tt.want)
			if p.Type != tt.dir {
				t.Errorf("direction: got %s, want %s", p.Type, tt.dir)
			}
			if p.Confidence != tt.conf {
				t.Errorf("confidence: got %v, want %v", p.Confidence, tt.conf)
			}
		})
	}
}

func TestThreeCandlePatterns(t *testing.T) {
	d := NewDefaultDetector()

	tests := []struct {
		name  string
		third models.Candle
		prev  models.Candle
		curr  models.Candle
		want  string
		dir   models.PatternDirection
		conf  float64
	}{
		{
			name:  "morning star",
			third: candleAt(8, 100, 100.4, 95.6, 96),
			prev:  candleAt(9, 95.5, 96.2, 95.2, 95.8),
			curr:  candleAt(10, 96, 99.5, 95.8, 99),
			want:  "Morning Star",
			dir:   models.PatternBullish,
			conf:  0.9,
		},
		{
			name:  "evening star",
			third: candleAt(8, 96, 100.4, 95.6, 100),
			prev:  candleAt(9, 100.5, 100.9, 100.1, 100.7),
			curr:  candleAt(10, 100, 100.2, 96.5, 97),
			want:  "Evening Star",
			dir:   models.PatternBearish,
			conf:  0.9,
		},
		{
			name:  "three white soldiers",
			third: candleAt(8, 100, 103.2, 99.8, 103),
			prev:  candleAt(9, 102, 105.3, 101.8, 105),
			curr:  candleAt(10, 104, 107.2, 103.8, 107),
			want:  "Three White Soldiers",
			dir:   models.PatternBullish,
			conf:  0.9,
		},
		{
			name:  "three black crows",
			third: candleAt(8, 103, 103.2, 99.8, 100),
			prev:  candleAt(9, 101, 101.2, 97.8, 98),
			curr:  candleAt(10, 99, 99.2, 95.8, 96),
			want:  "Three Black Crows",
			dir:   models.PatternBearish,
			conf:  0.9,
		},
		{
			name:  "three inside up",
			third: candleAt(8, 104, 104.4, 95.6, 96),
			prev:  candleAt(9, 98, 101.5, 97.8, 101),
			curr:  candleAt(10, 101, 105.5, 100.8, 105),
			want:  "Three Inside Up",
			dir:   models.PatternBullish,
			conf:  0.85,
		},
		{
			name:  "three outside down",
			third: candleAt(8, 100, 101.4, 99.6, 101),
			prev:  candleAt(9, 101.5, 101.7, 99.3, 99.5),
			curr:  candleAt(10, 99, 99.2, 97.8, 98),
			want:  "Three Outside Down",
			dir:   models.PatternBearish,
			conf:  0.85,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := append(flatPrefix(8), tt.third, tt.prev, tt.curr)
			detected := d.Detect(series)

			p := findPattern(t, detected, tt.want)
			if p.Type != tt.dir {
				t.Errorf("direction: got %s, want %s", p.Type, tt.dir)
			}
			if p.Confidence != tt.conf {
				t.Errorf("confidence: got %v, want %v", p.Confidence, tt.conf)
			}
		})
	}
}

func TestMarubozu(t *testing.T) {
	d := NewDefaultDetector()

	bull := candleAt(10, 100, 105.05, 99.95, 105)
	detected := d.Detect(append(flatPrefix(10), bull))
	p := findPattern(t, detected, "Bullish Marubozu")
	if p.Type != models.PatternBullish || p.Confidence != 0.85 {
		t.Errorf("unexpected bullish marubozu: %+v", p)
	}

	bear := candleAt(10, 105, 105.05, 99.95, 100)
	detected = d.Detect(append(flatPrefix(10), bear))
	p = findPattern(t, detected, "Bearish Marubozu")
	if p.Type != models.PatternBearish || p.Confidence != 0.85 {
		t.Errorf("unexpected bearish marubozu: %+v", p)
	}
}
