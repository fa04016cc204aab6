// Package store provides data persistence implementations.
package store

import (
	"context"
	"time"

	"marketlens/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Candles
	SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol, timeframe string, from, to time.Time) ([]models.Candle, error)
	GetCandlesFreshness(ctx context.Context, symbol, timeframe string) (time.Time, error)
	ListSymbols(ctx context.Context) ([]string, error)

	// Reports
	SaveReport(ctx context.Context, report *models.AnalysisReport) error
	GetReports(ctx context.Context, filter ReportFilter) ([]models.AnalysisReport, error)
	LatestReport(ctx context.Context, symbol string) (*models.AnalysisReport, error)

	// Lifecycle
	Close() error
}

// ReportFilter specifies criteria for querying stored reports.
type ReportFilter struct {
	Symbol         string
	Recommendation models.Recommendation
	StartDate      time.Time
	EndDate        time.Time
	Limit          int
}
