// Package valuation exposes the DCF engine and synergy adjuster over HTTP.
package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/ingest"
	"dcf_valuation/pkg/core/report"
	"dcf_valuation/pkg/core/synergy"
	coreval "dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
)

var (
	provider ingest.Provider
	cfg      config.Config
)

// InitHandler wires the data provider and model configuration into the
// package-level handlers.
func InitHandler(p ingest.Provider, c config.Config) {
	provider = p
	cfg = c
}

// DCFRequest asks for a standalone valuation.
type DCFRequest struct {
	Ticker         string  `json:"ticker"`
	TerminalGrowth float64 `json:"terminal_growth"` // capped server-side
}

// PassSummary is one valuation pass (base or calibrated).
type PassSummary struct {
	StartingGrowth  float64   `json:"starting_growth"`
	WACC            float64   `json:"wacc"`
	TerminalValue   float64   `json:"terminal_value"`
	EnterpriseValue float64   `json:"enterprise_value"`
	EquityValue     float64   `json:"equity_value"`
	ImpliedPrice    float64   `json:"implied_price"`
	MarginOfSafety  *float64  `json:"margin_of_safety,omitempty"`
	FCF             []float64 `json:"fcf"`
	PresentValues   []float64 `json:"present_values"`
	PVTerminal      float64   `json:"pv_terminal"`
}

// DCFResponse carries both the base pass and, when a market quote exists,
// the pass calibrated to the implied growth rate.
type DCFResponse struct {
	Ticker         string    `json:"ticker"`
	HistCAGR       float64   `json:"hist_cagr"`
	TerminalGrowth float64   `json:"terminal_growth"`
	Schedule       []float64 `json:"schedule"`
	MarketPrice    *float64  `json:"market_price,omitempty"`

	Base          PassSummary  `json:"base"`
	ImpliedGrowth *float64     `json:"implied_growth,omitempty"`
	Calibrated    *PassSummary `json:"calibrated,omitempty"`
}

// HandleDCF runs the full pipeline: fetch, value, back-solve implied growth,
// rebuild calibrated.
func HandleDCF(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}

	var req DCFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Ticker == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	engine, err := buildEngine(ctx, strings.ToUpper(req.Ticker), req.TerminalGrowth)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := DCFResponse{
		Ticker:         engine.Ticker,
		HistCAGR:       engine.Drivers.HistCAGR,
		TerminalGrowth: engine.TerminalGrowth,
		Schedule:       engine.Forecast.Schedule,
		Base:           summarize(engine),
	}
	if engine.Market.HasPrice() {
		price := engine.Market.Price
		resp.MarketPrice = &price

		ig, err := engine.FindImpliedGrowth(price)
		if err != nil {
			writeError(w, err)
			return
		}
		// Pin the engine to the solved rate; the solver leaves it at its
		// last probe.
		if err := engine.Rebuild(ig); err != nil {
			writeError(w, err)
			return
		}
		calibrated := summarize(engine)
		resp.ImpliedGrowth = &ig
		resp.Calibrated = &calibrated
	}

	writeJSON(w, resp)
}

// SynergyRequest values an acquirer, optionally a target, and applies a
// synergy scenario on top.
type SynergyRequest struct {
	Acquirer       string   `json:"acquirer"`
	Target         string   `json:"target,omitempty"`
	TerminalGrowth float64  `json:"terminal_growth"`
	CostSavings    float64  `json:"cost_savings"`
	RevenueBoost   float64  `json:"revenue_boost"`
	PhaseInYears   int      `json:"phase_in_years"`
	NewDebtRatio   *float64 `json:"new_debt_ratio,omitempty"`
}

// SynergyResponse returns the untouched base snapshot next to the adjusted
// one so callers can diff them.
type SynergyResponse struct {
	Base     *coreval.Snapshot `json:"base"`
	Adjusted *coreval.Snapshot `json:"adjusted"`
}

// HandleSynergy applies a merger scenario to a fresh valuation.
func HandleSynergy(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}

	var req SynergyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Acquirer == "" {
		http.Error(w, "acquirer is required", http.StatusBadRequest)
		return
	}
	if req.PhaseInYears <= 0 {
		req.PhaseInYears = synergy.DefaultPhaseInYears
	}

	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	acquirer, err := buildEngine(ctx, strings.ToUpper(req.Acquirer), req.TerminalGrowth)
	if err != nil {
		writeError(w, err)
		return
	}

	in := synergy.Input{
		CostSavings:  req.CostSavings,
		RevenueBoost: req.RevenueBoost,
		PhaseInYears: req.PhaseInYears,
		NewDebtRatio: req.NewDebtRatio,
	}
	if req.Target != "" {
		target, err := buildEngine(ctx, strings.ToUpper(req.Target), req.TerminalGrowth)
		if err != nil {
			writeError(w, err)
			return
		}
		in.Target = target.Snapshot()
	}

	base := acquirer.Snapshot()
	adjusted, err := synergy.NewAdjuster(acquirer).ApplySynergies(in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, SynergyResponse{Base: base, Adjusted: adjusted})
}

// HandleReport serves the Markdown (or HTML) report for a ticker.
// GET /api/valuation/report?ticker=AAPL&tgr=0.03&format=html
func HandleReport(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ticker := strings.ToUpper(r.URL.Query().Get("ticker"))
	if ticker == "" {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}
	tgr := 0.03
	if raw := r.URL.Query().Get("tgr"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid tgr", http.StatusBadRequest)
			return
		}
		tgr = v
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	engine, err := buildEngine(ctx, ticker, tgr)
	if err != nil {
		writeError(w, err)
		return
	}

	md := report.Markdown(engine)
	if r.URL.Query().Get("format") == "html" {
		html, err := report.RenderHTML(md)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, md)
}

func buildEngine(ctx context.Context, ticker string, terminalGrowth float64) (*coreval.Engine, error) {
	hist, market, err := provider.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return coreval.NewEngine(hist, market, terminalGrowth, cfg)
}

func summarize(e *coreval.Engine) PassSummary {
	s := PassSummary{
		StartingGrowth:  e.StartingGrowth(),
		WACC:            e.WACC,
		TerminalValue:   e.TerminalValue,
		EnterpriseValue: e.EnterpriseValue,
		EquityValue:     e.EquityValue(),
		ImpliedPrice:    e.ImpliedPrice,
		FCF:             e.Forecast.FCF,
		PresentValues:   e.PVFCF,
		PVTerminal:      e.PVTerminal,
	}
	if mos := e.MarginOfSafety(); !math.IsNaN(mos) {
		s.MarginOfSafety = &mos
	}
	return s
}

func allowPost(w http.ResponseWriter, r *http.Request) bool {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	var dataErr *models.DataError
	var valErr *coreval.ValuationError
	switch {
	case errors.As(err, &dataErr):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &valErr):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		log.Error().Err(err).Msg("valuation request failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}
