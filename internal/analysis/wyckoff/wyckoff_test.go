package wyckoff

import (
	"testing"
	"time"

	"marketlens/internal/models"
)

func bar(day int, o, h, l, c float64, volume int64) models.Candle {
	return models.Candle{
		Timestamp: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    volume,
	}
}

// rangeBound returns n bars oscillating between roughly 100 and 106 with
// swing lows at 100 and swing highs at 106 every six bars.
func rangeBound(n int) []models.Candle {
	offsets := []float64{2, 1, 0, 1, 2, 3}
	candles := make([]models.Candle, n)
	for i := range candles {
		low := 100 + offsets[i%6]
		candles[i] = bar(i, low+1, low+3, low, low+2, 100000)
	}
	return candles
}

func TestAnalyzeInsufficientData(t *testing.T) {
	a := NewDefaultAnalyzer()

	result := a.Analyze(rangeBound(29))

	if result.Phase != models.PhaseInsufficientData {
		t.Errorf("expected insufficient_data, got %s", result.Phase)
	}
	if result.Events == nil || len(result.Events) != 0 {
		t.Errorf("expected empty events, got %v", result.Events)
	}
	if result.EffortResult != models.EffortUnknown {
		t.Errorf("expected unknown effort, got %s", result.EffortResult)
	}
	if result.Recommendation != models.RecommendHold {
		t.Errorf("expected hold, got %s", result.Recommendation)
	}
	if result.PhaseConfidence != 0 || result.RecommendationScore != 0 {
		t.Error("insufficient data must not carry confidence or score")
	}
}

func TestDetectTradingRange(t *testing.T) {
	a := NewDefaultAnalyzer()

	tr := a.detectTradingRange(rangeBound(40))

	// Swing lows sit at 100, swing highs at 106
	if tr.Min < 99 || tr.Min > 101 {
		t.Errorf("range low should be near 100, got %v", tr.Min)
	}
	if tr.Max < 105 || tr.Max > 107 {
		t.Errorf("range high should be near 106, got %v", tr.Max)
	}

	if got := a.detectTradingRange(rangeBound(19)); got != (models.PriceRange{}) {
		t.Errorf("short series should yield an empty range, got %+v", got)
	}
}

// A decline into support ending in a high-volume wide-spread bar that
// closes weak and reverses must register a selling climax with strong
// confidence.
func TestDetectSellingClimax(t *testing.T) {
	a := NewDefaultAnalyzer()

	candles := rangeBound(30)
	// Markdown leg into support
	for i := 0; i < 7; i++ {
		close := 105 - 1.5*float64(i)
		candles = append(candles, bar(30+i, close+0.5, close+0.7, close-0.7, close, 100000))
	}
	// Climactic bar: five times average volume, wide spread, weak close
	candles = append(candles, bar(37, 96, 97, 90, 91, 500000))
	// Reversal and follow-through
	candles = append(candles, bar(38, 91, 94.5, 91, 94, 150000))
	candles = append(candles, bar(39, 94, 95.5, 94, 95, 120000))

	result := a.Analyze(candles)

	var climax *models.WyckoffEvent
	for i := range result.Events {
		if result.Events[i].Name == EventSellingClimax {
			climax = &result.Events[i]
			break
		}
	}
	if climax == nil {
		t.Fatalf("no selling climax detected, events: %v", result.Events)
	}
	if climax.Type != models.BiasAccumulation {
		t.Errorf("selling climax must read as accumulation, got %s", climax.Type)
	}
	if climax.Confidence < 0.8 {
		t.Errorf("confidence should be at least 0.8, got %v", climax.Confidence)
	}
	if climax.Volume != 500000 {
		t.Errorf("event should carry the climactic volume, got %d", climax.Volume)
	}
}

// A shallow false breakdown that recovers the boundary and reverses on
// the next bar reads as a spring.
func TestDetectSpring(t *testing.T) {
	a := NewDefaultAnalyzer()

	candles := rangeBound(36)
	// Break below the range low by about 1.5%, close back at the boundary
	candles = append(candles, bar(36, 100.5, 100.8, 98.6, 100.2, 130000))
	// Reversal bar
	candles = append(candles, bar(37, 100.3, 102.5, 100.2, 102.2, 140000))
	candles = append(candles, bar(38, 102.2, 103, 101.8, 102.5, 110000))

	result := a.Analyze(candles)

	found := false
	for _, e := range result.Events {
		if e.Name == EventSpring {
			found = true
			if e.Type != models.BiasAccumulation {
				t.Errorf("spring must read as accumulation, got %s", e.Type)
			}
		}
	}
	if !found {
		t.Fatalf("no spring detected, events: %v", result.Events)
	}
}

func TestDetectSpringRejectsDeepBreak(t *testing.T) {
	a := NewDefaultAnalyzer()
	tr := models.PriceRange{Min: 100, Max: 110}

	// 8% penetration is a breakdown, not a spring
	current := bar(0, 100.5, 100.8, 92, 100.2, 130000)
	next := bar(1, 100.3, 102.5, 100.2, 102.2, 140000)

	if event := a.detectSpring(current, next, tr, 100000); event != nil {
		t.Errorf("deep break must not read as a spring, got %+v", event)
	}
}

func TestAnalyzeMarkdownPhase(t *testing.T) {
	a := NewDefaultAnalyzer()

	// Range then a sustained markdown leg holding the lows
	candles := rangeBound(30)
	for i := 0; i < 25; i++ {
		close := 104 - 1.2*float64(i)
		candles = append(candles, bar(30+i, close+0.4, close+0.8, close-0.8, close, 100000))
	}

	result := a.Analyze(candles)

	if result.Phase != models.PhaseMarkdown {
		t.Errorf("expected markdown, got %s (confidence %v)", result.Phase, result.PhaseConfidence)
	}
	if result.PhaseConfidence < 0.7 {
		t.Errorf("markdown confidence should be at least 0.7, got %v", result.PhaseConfidence)
	}
}

func TestEffortVersusResult(t *testing.T) {
	a := NewDefaultAnalyzer()

	t.Run("rising volume with no progress diverges", func(t *testing.T) {
		candles := rangeBound(30)
		// Replace the last 10 bars: flat price, volume ramping up
		for i := 20; i < 30; i++ {
			candles[i] = bar(i, 103, 103.5, 102.5, 103, int64(100000+20000*i))
		}
		if got := a.analyzeEffortVsResult(candles); got != models.EffortDiverging {
			t.Errorf("expected diverging, got %s", got)
		}
	})

	t.Run("rising volume with a strong move confirms", func(t *testing.T) {
		candles := rangeBound(30)
		for i := 20; i < 30; i++ {
			close := 103 + 1.5*float64(i-20)
			candles[i] = bar(i, close-0.4, close+0.5, close-0.5, close, int64(100000+20000*i))
		}
		if got := a.analyzeEffortVsResult(candles); got != models.EffortConfirming {
			t.Errorf("expected confirming, got %s", got)
		}
	})

	t.Run("short series is unknown", func(t *testing.T) {
		if got := a.analyzeEffortVsResult(rangeBound(9)); got != models.EffortUnknown {
			t.Errorf("expected unknown, got %s", got)
		}
	})
}

func TestAnalyzeZonesOrdering(t *testing.T) {
	a := NewDefaultAnalyzer()

	result := a.Analyze(rangeBound(60))

	tr := result.TradingRange
	if tr.Min >= tr.Max {
		t.Fatalf("degenerate trading range: %+v", tr)
	}

	zones := map[string]models.PriceRange{
		"buy":          result.BuyZone,
		"accumulation": result.AccumulationZone,
		"distribution": result.DistributionZone,
		"sell":         result.SellZone,
	}
	for name, z := range zones {
		if z.Min > z.Max {
			t.Errorf("%s zone inverted: %+v", name, z)
		}
	}
	if result.BuyZone.Min > result.SellZone.Max {
		t.Error("buy zone should sit below the sell zone")
	}
}
