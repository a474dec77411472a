package models

import (
	"encoding/json"
	"math"
)

// HistoricalFinancials holds the reported line items used to calibrate a
// forecast. All series are ordered oldest -> newest (reversed from the
// provider's most-recent-first layout) and immutable once fetched.
type HistoricalFinancials struct {
	Ticker string `json:"ticker"`

	// Income statement, up to the 4 most recent fiscal years.
	Revenue []float64 `json:"revenue"`
	EBIT    []float64 `json:"ebit"`

	// Tax provision, last 3 fiscal years.
	TaxProvision []float64 `json:"tax_provision"`

	// Cash flow statement, up to the 4 most recent fiscal years.
	DepreciationAmortization []float64 `json:"depreciation_amortization"`
	CapitalExpenditure       []float64 `json:"capital_expenditure"`
	ChangeInWorkingCapital   []float64 `json:"change_in_working_capital"`
}

// BaseRevenue returns the most recent reported revenue, the anchor for the
// projection. Zero when no history is present.
func (h HistoricalFinancials) BaseRevenue() float64 {
	if len(h.Revenue) == 0 {
		return 0
	}
	return h.Revenue[len(h.Revenue)-1]
}

// MarketSnapshot carries point-in-time market data for a company. Every
// field is optional at the provider level; missing values are filled with
// the documented defaults (beta 1.28, market cap 0, debt 0, cash 0,
// shares 1, price NaN).
type MarketSnapshot struct {
	Beta              float64 `json:"beta"`
	MarketCap         float64 `json:"market_cap"`
	TotalDebt         float64 `json:"total_debt"`
	TotalCash         float64 `json:"total_cash"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	Price             float64 `json:"price"`

	// Optional enrichments. Empty / zero means "not available".
	AnalystGrowth5Y string  `json:"analyst_growth_5y,omitempty"` // e.g. "8.50%"
	DilutedShares   float64 `json:"diluted_shares,omitempty"`    // weighted-average diluted shares
}

// HasPrice reports whether the snapshot carries a usable market quote.
func (m MarketSnapshot) HasPrice() bool {
	return !math.IsNaN(m.Price) && m.Price > 0
}

// marketSnapshotJSON mirrors MarketSnapshot with a nullable price, since
// encoding/json rejects the NaN sentinel used for "no quote".
type marketSnapshotJSON struct {
	Beta              float64  `json:"beta"`
	MarketCap         float64  `json:"market_cap"`
	TotalDebt         float64  `json:"total_debt"`
	TotalCash         float64  `json:"total_cash"`
	SharesOutstanding float64  `json:"shares_outstanding"`
	Price             *float64 `json:"price,omitempty"`
	AnalystGrowth5Y   string   `json:"analyst_growth_5y,omitempty"`
	DilutedShares     float64  `json:"diluted_shares,omitempty"`
}

func (m MarketSnapshot) MarshalJSON() ([]byte, error) {
	out := marketSnapshotJSON{
		Beta:              m.Beta,
		MarketCap:         m.MarketCap,
		TotalDebt:         m.TotalDebt,
		TotalCash:         m.TotalCash,
		SharesOutstanding: m.SharesOutstanding,
		AnalystGrowth5Y:   m.AnalystGrowth5Y,
		DilutedShares:     m.DilutedShares,
	}
	if !math.IsNaN(m.Price) {
		out.Price = &m.Price
	}
	return json.Marshal(out)
}

func (m *MarketSnapshot) UnmarshalJSON(b []byte) error {
	var in marketSnapshotJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	m.Beta = in.Beta
	m.MarketCap = in.MarketCap
	m.TotalDebt = in.TotalDebt
	m.TotalCash = in.TotalCash
	m.SharesOutstanding = in.SharesOutstanding
	m.AnalystGrowth5Y = in.AnalystGrowth5Y
	m.DilutedShares = in.DilutedShares
	m.Price = math.NaN()
	if in.Price != nil {
		m.Price = *in.Price
	}
	return nil
}
