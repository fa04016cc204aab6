// Package scan runs the analysis pipeline across every stored symbol.
package scan

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"marketlens/internal/analysis"
	"marketlens/internal/models"
	"marketlens/internal/store"
)

// Result is the outcome of scanning a single symbol.
type Result struct {
	Symbol              string                `json:"symbol"`
	CurrentPrice        float64               `json:"current_price"`
	Trend               models.TrendDirection `json:"trend"`
	Phase               models.WyckoffPhase   `json:"phase"`
	Recommendation      models.Recommendation `json:"recommendation"`
	RecommendationScore float64               `json:"recommendation_score"`
	Bars                int                   `json:"bars"`
	Err                 error                 `json:"-"`
}

// Scanner analyzes stored symbols concurrently.
type Scanner struct {
	analyzer    *analysis.Analyzer
	store       store.DataStore
	concurrency int
	logger      zerolog.Logger
}

// NewScanner creates a scanner. Concurrency below 1 defaults to 4.
func NewScanner(analyzer *analysis.Analyzer, dataStore store.DataStore, concurrency int, logger zerolog.Logger) *Scanner {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Scanner{
		analyzer:    analyzer,
		store:       dataStore,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "scan").Logger(),
	}
}

// Scan analyzes every stored symbol for the timeframe and returns the
// results sorted by score, strongest buy first. Symbols that fail to
// analyze are returned with Err set rather than aborting the scan.
func (s *Scanner) Scan(ctx context.Context, timeframe string, days int, at time.Time) ([]Result, error) {
	symbols, err := s.store.ListSymbols(ctx)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, nil
	}

	from := at.AddDate(0, 0, -days)

	jobs := make(chan string)
	results := make(chan Result, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				results <- s.scanOne(ctx, symbol, timeframe, from, at)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, symbol := range symbols {
			select {
			case jobs <- symbol:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	out := make([]Result, 0, len(symbols))
	for r := range results {
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].RecommendationScore > out[j].RecommendationScore
	})

	return out, ctx.Err()
}

func (s *Scanner) scanOne(ctx context.Context, symbol, timeframe string, from, at time.Time) Result {
	candles, err := s.store.GetCandles(ctx, symbol, timeframe, from, at)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Failed to load candles")
		return Result{Symbol: symbol, Err: err}
	}
	if len(candles) == 0 {
		return Result{Symbol: symbol}
	}

	report, err := s.analyzer.Analyze(ctx, symbol, candles, at)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Analysis failed")
		return Result{Symbol: symbol, Err: err}
	}

	return Result{
		Symbol:              symbol,
		CurrentPrice:        report.CurrentPrice,
		Trend:               report.Trend.Trend,
		Phase:               report.Wyckoff.Phase,
		Recommendation:      report.Recommendation,
		RecommendationScore: report.RecommendationScore,
		Bars:                len(candles),
	}
}
