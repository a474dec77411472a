package valuation

import (
	"math"

	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/forecast"
	"dcf_valuation/pkg/models"
)

// Engine owns one company's historicals, market data and the latest computed
// valuation. Construction runs a full build, so the engine is consistent the
// moment NewEngine returns. Rebuild always recomputes every derived field
// from scratch; there is no partial recompute path.
type Engine struct {
	Ticker      string
	Historicals models.HistoricalFinancials
	Market      models.MarketSnapshot
	Config      config.Config

	// Fixed at construction.
	Beta           float64          // clamped to the configured range
	TerminalGrowth float64          // user input, capped
	Drivers        forecast.Drivers // estimated from history

	// Latest computed state, replaced wholesale by Rebuild.
	Forecast        forecast.Forecast
	WACC            float64
	TerminalValue   float64
	EnterpriseValue float64
	PVFCF           []float64
	PVTerminal      float64
	ImpliedPrice    float64
}

// NewEngine validates the inputs, estimates the forecast drivers, resolves
// the starting growth rate (analyst estimate, else the configured default)
// and runs the initial build.
//
// Returns *models.DataError when the revenue history is too short and
// *ValuationError when the computed WACC cannot support the terminal growth.
func NewEngine(hist models.HistoricalFinancials, market models.MarketSnapshot, terminalGrowth float64, cfg config.Config) (*Engine, error) {
	drivers, err := forecast.EstimateDrivers(hist, cfg.Forecast.CapexHaircut)
	if err != nil {
		return nil, err
	}

	beta := market.Beta
	if beta == 0 {
		beta = cfg.Beta.Default
	}
	beta = math.Min(math.Max(beta, cfg.Beta.Min), cfg.Beta.Max)

	e := &Engine{
		Ticker:         hist.Ticker,
		Historicals:    hist,
		Market:         market,
		Config:         cfg,
		Beta:           beta,
		TerminalGrowth: math.Min(terminalGrowth, cfg.Forecast.TerminalGrowthCap),
		Drivers:        drivers,
	}

	start := forecast.ParseGrowthEstimate(market.AnalystGrowth5Y, cfg.Forecast.DefaultStartingGrowth)
	if err := e.Rebuild(start); err != nil {
		return nil, err
	}
	return e, nil
}

// StartingGrowth returns the growth rate the current forecast was built at.
func (e *Engine) StartingGrowth() float64 {
	return e.Forecast.StartingGrowth
}

// Rebuild recomputes the forecast and every downstream valuation figure for
// the given starting growth rate. On error the engine keeps its previous
// state.
func (e *Engine) Rebuild(startingGrowth float64) error {
	f := forecast.Build(forecast.Input{
		BaseRevenue:    e.Historicals.BaseRevenue(),
		Drivers:        e.Drivers,
		StartingGrowth: startingGrowth,
		TerminalGrowth: e.TerminalGrowth,
		Years:          e.Config.Forecast.ProjectionYears,
		ConvergeStart:  e.Config.Forecast.ConvergeStart,
	})

	debtWeight, equityWeight := CapitalWeights(e.Market.TotalDebt, e.Market.MarketCap)
	costOfEquity := CostOfEquityCAPM(e.Config.Market.RiskFreeRate, e.Beta, e.Config.Market.MarketReturn)
	wacc := WACC(e.Config.Market.PreTaxCostOfDebt, e.Drivers.TaxRate, debtWeight, costOfEquity, equityWeight)

	disc, err := Discount(DiscountInput{FCF: f.FCF, WACC: wacc, TerminalGrowth: e.TerminalGrowth})
	if err != nil {
		return err
	}

	e.Forecast = f
	e.WACC = wacc
	e.TerminalValue = disc.TerminalValue
	e.EnterpriseValue = disc.EnterpriseValue
	e.PVFCF = disc.PVFCF
	e.PVTerminal = disc.PVTerminal
	e.ImpliedPrice = SharePrice(disc.EnterpriseValue, e.Market.TotalDebt, e.Market.TotalCash,
		e.Market.DilutedShares, e.Market.SharesOutstanding)
	return nil
}

// EquityValue is the enterprise value net of debt, gross of cash.
func (e *Engine) EquityValue() float64 {
	return e.EnterpriseValue - e.Market.TotalDebt + e.Market.TotalCash
}

// MarginOfSafety is the relative gap between the implied and market price.
// NaN when the snapshot has no usable quote.
func (e *Engine) MarginOfSafety() float64 {
	if !e.Market.HasPrice() {
		return math.NaN()
	}
	return (e.ImpliedPrice - e.Market.Price) / e.Market.Price
}
