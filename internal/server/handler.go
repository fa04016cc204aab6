package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"marketlens/internal/analysis"
	apperrors "marketlens/internal/errors"
	"marketlens/internal/logging"
	"marketlens/internal/models"
	"marketlens/internal/store"
	pkgcandles "marketlens/pkg/candles"
)

const defaultDaysBack = 200

// Handler serves the analysis API.
type Handler struct {
	analyzer *analysis.Analyzer
	store    store.DataStore
	logger   zerolog.Logger
	now      func() time.Time
}

// NewHandler creates an API handler.
func NewHandler(analyzer *analysis.Analyzer, dataStore store.DataStore, logger zerolog.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		store:    dataStore,
		logger:   logger.With().Str("component", "api").Logger(),
		now:      time.Now,
	}
}

// AnalyzeRequest is the request body for POST /api/analyze. Candles may be
// supplied inline; otherwise they are loaded from the store.
type AnalyzeRequest struct {
	Symbol       string          `json:"symbol"`
	Timeframe    string          `json:"timeframe,omitempty"`
	DaysBack     int             `json:"days_back,omitempty"`
	PriceHistory []models.Candle `json:"price_history,omitempty"`
	Persist      bool            `json:"persist,omitempty"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AnalyzeSymbol runs the full analysis pipeline for one symbol.
func (h *Handler) AnalyzeSymbol(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Symbol == "" {
		respondWithError(w, http.StatusBadRequest, "Symbol is required")
		return
	}
	if req.Timeframe == "" {
		req.Timeframe = "1day"
	}
	if req.DaysBack <= 0 {
		req.DaysBack = defaultDaysBack
	}

	ctx := r.Context()
	candles := req.PriceHistory
	if len(candles) > 0 {
		if err := pkgcandles.Validate(candles); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid price history: "+err.Error())
			return
		}
	}
	if len(candles) == 0 {
		if h.store == nil {
			respondWithError(w, http.StatusBadRequest, "No price history supplied and no store configured")
			return
		}
		to := h.now()
		from := to.AddDate(0, 0, -req.DaysBack)
		stored, err := h.store.GetCandles(ctx, req.Symbol, req.Timeframe, from, to)
		if err != nil {
			h.logger.Error().Err(err).Str("symbol", req.Symbol).Msg("Failed to load candles")
			respondWithError(w, http.StatusInternalServerError, "Failed to load price history")
			return
		}
		candles = stored
	}

	if len(candles) == 0 {
		respondWithError(w, http.StatusNotFound, "No data found for symbol: "+req.Symbol)
		return
	}

	report, err := h.analyzer.Analyze(ctx, req.Symbol, candles, h.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrNoData) {
			respondWithError(w, http.StatusNotFound, "No data found for symbol: "+req.Symbol)
			return
		}
		h.logger.Error().Err(err).Str("symbol", req.Symbol).Msg("Analysis failed")
		respondWithError(w, http.StatusInternalServerError, "Failed to analyze symbol")
		return
	}

	if req.Persist && h.store != nil {
		if err := h.store.SaveReport(ctx, report); err != nil {
			h.logger.Warn().Err(err).Str("symbol", req.Symbol).Msg("Failed to persist report")
		}
	}

	logging.LogAnalysis(h.logger, req.Symbol, len(candles), string(report.Recommendation), report.RecommendationScore)
	respondWithJSON(w, http.StatusOK, report)
}

// GetReports returns stored reports for a symbol, most recent first.
func (h *Handler) GetReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if h.store == nil {
		respondWithError(w, http.StatusServiceUnavailable, "No store configured")
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		respondWithError(w, http.StatusBadRequest, "Symbol parameter is required")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	reports, err := h.store.GetReports(r.Context(), store.ReportFilter{Symbol: symbol, Limit: limit})
	if err != nil {
		h.logger.Error().Err(err).Str("symbol", symbol).Msg("Failed to load reports")
		respondWithError(w, http.StatusInternalServerError, "Failed to load reports")
		return
	}
	if reports == nil {
		reports = []models.AnalysisReport{}
	}

	respondWithJSON(w, http.StatusOK, reports)
}

// HealthCheck reports server liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   h.now().Format(time.RFC3339),
	})
}

// Routes builds the HTTP routing table with CORS and request logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/health", h.HealthCheck)
	mux.HandleFunc("/api/analyze", h.AnalyzeSymbol)
	mux.HandleFunc("/api/reports", h.GetReports)

	return h.logRequests(enableCORS(mux))
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogRequest(h.logger, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to encode response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
