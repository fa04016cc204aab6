package indicators

import (
	"fmt"

	"marketlens/internal/models"
)

// SMA calculates Simple Moving Average.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator.
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

func (s *SMA) Name() string {
	return fmt.Sprintf("SMA_%d", s.period)
}

func (s *SMA) Period() int {
	return s.period
}

func (s *SMA) Calculate(candles []models.Candle) ([]float64, error) {
	if s.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < s.period {
		return nil, ErrInsufficientData
	}

	result := make([]float64, len(candles))
	closes := closePrices(candles)

	for i := s.period - 1; i < len(candles); i++ {
		result[i] = mean(closes[i-s.period+1 : i+1])
	}

	return result, nil
}

// EMA calculates Exponential Moving Average, seeded with the SMA of the
// first period closes.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator.
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA_%d", e.period)
}

func (e *EMA) Period() int {
	return e.period
}

func (e *EMA) Calculate(candles []models.Candle) ([]float64, error) {
	if e.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < e.period {
		return nil, ErrInsufficientData
	}

	result := make([]float64, len(candles))
	closes := closePrices(candles)

	multiplier := 2.0 / float64(e.period+1)
	result[e.period-1] = mean(closes[:e.period])
	for i := e.period; i < len(candles); i++ {
		result[i] = (closes[i]-result[i-1])*multiplier + result[i-1]
	}

	return result, nil
}

// MACD calculates Moving Average Convergence Divergence.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator.
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD_%d_%d_%d", m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

func (m *MACD) Period() int {
	return m.slowPeriod + m.signalPeriod
}

func (m *MACD) Calculate(candles []models.Candle) (map[string][]float64, error) {
	if m.fastPeriod <= 0 || m.slowPeriod <= 0 || m.signalPeriod <= 0 {
		return nil, ErrInvalidPeriod
	}
	if m.fastPeriod >= m.slowPeriod {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < m.slowPeriod {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	closes := closePrices(candles)

	macdLine := make([]float64, n)
	signalLine := make([]float64, n)
	histogram := make([]float64, n)

	for i := m.slowPeriod - 1; i < n; i++ {
		macdLine[i] = emaAt(closes[:i+1], m.fastPeriod) - emaAt(closes[:i+1], m.slowPeriod)
	}

	// The signal line smooths the MACD values that accumulate one bar
	// after the slow EMA first settles.
	for i := m.slowPeriod; i < n; i++ {
		macdVals := macdLine[m.slowPeriod : i+1]
		if len(macdVals) >= m.signalPeriod {
			signalLine[i] = emaAt(macdVals, m.signalPeriod)
		}
		histogram[i] = macdLine[i] - signalLine[i]
	}

	return map[string][]float64{
		"macd":      macdLine,
		"signal":    signalLine,
		"histogram": histogram,
	}, nil
}

// ADX calculates the directional index from simple averages of directional
// movement and true range over the trailing period.
type ADX struct {
	period int
}

// NewADX creates a new ADX indicator.
func NewADX(period int) *ADX {
	return &ADX{period: period}
}

func (a *ADX) Name() string {
	return fmt.Sprintf("ADX_%d", a.period)
}

func (a *ADX) Period() int {
	return a.period
}

func (a *ADX) Calculate(candles []models.Candle) ([]float64, error) {
	if a.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < a.period+1 {
		return nil, ErrInsufficientData
	}

	result := make([]float64, len(candles))
	for i := a.period; i < len(candles); i++ {
		result[i] = adxAt(candles[:i+1], a.period)
	}

	return result, nil
}

// emaAt computes the EMA over the full series, seeded with the SMA of the
// first period values. Returns 0 when the series is shorter than the period.
func emaAt(values []float64, period int) float64 {
	if len(values) < period {
		return 0
	}

	multiplier := 2.0 / float64(period+1)
	ema := mean(values[:period])
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*multiplier + ema
	}
	return ema
}

// smaAt computes the SMA of the trailing period values.
// Returns 0 when the series is shorter than the period.
func smaAt(values []float64, period int) float64 {
	if len(values) < period {
		return 0
	}
	return mean(values[len(values)-period:])
}

// macdAt computes the MACD line, signal line, and histogram at the final
// bar. Everything is 0 below the slow period; the signal stays 0 until
// enough MACD values have accumulated.
func macdAt(closes []float64, fast, slow, signal int) (macd, sig, histogram float64) {
	if len(closes) < slow {
		return 0, 0, 0
	}

	macd = emaAt(closes, fast) - emaAt(closes, slow)

	var macdLine []float64
	for i := slow; i < len(closes); i++ {
		macdLine = append(macdLine, emaAt(closes[:i+1], fast)-emaAt(closes[:i+1], slow))
	}

	if len(macdLine) >= signal {
		sig = emaAt(macdLine, signal)
	}

	histogram = macd - sig
	return macd, sig, histogram
}

// adxAt computes the directional index at the final bar from simple
// averages of +DM, -DM, and true range across the trailing period.
func adxAt(candles []models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 0
	}

	n := len(candles)
	plusDM := make([]float64, n-1)
	minusDM := make([]float64, n-1)
	tr := make([]float64, n-1)

	for i := 1; i < n; i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low

		if upMove > downMove && upMove > 0 {
			plusDM[i-1] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i-1] = downMove
		}

		tr[i-1] = trueRange(candles[i], candles[i-1])
	}

	avgPlusDM := mean(plusDM[len(plusDM)-period:])
	avgMinusDM := mean(minusDM[len(minusDM)-period:])
	avgTR := mean(tr[len(tr)-period:])

	if avgTR == 0 {
		return 0
	}

	plusDI := (avgPlusDM / avgTR) * 100
	minusDI := (avgMinusDM / avgTR) * 100

	if plusDI+minusDI == 0 {
		return 0
	}

	return abs(plusDI-minusDI) / (plusDI + minusDI) * 100
}
