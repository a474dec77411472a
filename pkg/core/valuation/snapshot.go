package valuation

import "dcf_valuation/pkg/core/forecast"

// Snapshot is a value-type copy of a computed valuation: numeric series and
// scalars only, with no live data-provider handles. Mutating a snapshot
// never affects the engine it was taken from.
type Snapshot struct {
	Ticker   string            `json:"ticker"`
	Forecast forecast.Forecast `json:"forecast"`

	WACC            float64 `json:"wacc"`
	TerminalValue   float64 `json:"terminal_value"`
	EnterpriseValue float64 `json:"enterprise_value"`
	ImpliedPrice    float64 `json:"implied_price"`

	Beta           float64 `json:"beta"`
	RiskFreeRate   float64 `json:"risk_free_rate"`
	MarketReturn   float64 `json:"market_return"`
	CostOfDebt     float64 `json:"cost_of_debt"`
	TerminalGrowth float64 `json:"terminal_growth"`
	TaxRate        float64 `json:"tax_rate"`

	Debt              float64 `json:"debt"`
	Cash              float64 `json:"cash"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	DilutedShares     float64 `json:"diluted_shares"`
	Price             float64 `json:"price"` // 0 when there is no market quote
}

// Snapshot deep-copies the engine's numeric state.
func (e *Engine) Snapshot() *Snapshot {
	price := e.Market.Price
	if !e.Market.HasPrice() {
		price = 0
	}
	return &Snapshot{
		Ticker:            e.Ticker,
		Forecast:          e.Forecast.Clone(),
		WACC:              e.WACC,
		TerminalValue:     e.TerminalValue,
		EnterpriseValue:   e.EnterpriseValue,
		ImpliedPrice:      e.ImpliedPrice,
		Beta:              e.Beta,
		RiskFreeRate:      e.Config.Market.RiskFreeRate,
		MarketReturn:      e.Config.Market.MarketReturn,
		CostOfDebt:        e.Config.Market.PreTaxCostOfDebt,
		TerminalGrowth:    e.TerminalGrowth,
		TaxRate:           e.Drivers.TaxRate,
		Debt:              e.Market.TotalDebt,
		Cash:              e.Market.TotalCash,
		SharesOutstanding: e.Market.SharesOutstanding,
		DilutedShares:     e.Market.DilutedShares,
		Price:             price,
	}
}

// EquityValue is the enterprise value net of debt, gross of cash.
func (s *Snapshot) EquityValue() float64 {
	return s.EnterpriseValue - s.Debt + s.Cash
}

// Rediscount recomputes terminal value, enterprise value and implied share
// price from the snapshot's current FCF series and WACC. Used after a
// consumer has rewritten parts of the forecast.
func (s *Snapshot) Rediscount() error {
	disc, err := Discount(DiscountInput{
		FCF:            s.Forecast.FCF,
		WACC:           s.WACC,
		TerminalGrowth: s.TerminalGrowth,
	})
	if err != nil {
		return err
	}
	s.TerminalValue = disc.TerminalValue
	s.EnterpriseValue = disc.EnterpriseValue
	s.ImpliedPrice = SharePrice(s.EnterpriseValue, s.Debt, s.Cash, s.DilutedShares, s.SharesOutstanding)
	return nil
}
