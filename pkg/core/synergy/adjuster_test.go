package synergy

import (
	"errors"
	"math"
	"testing"

	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/forecast"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
)

const tol = 1e-9

// flatSnapshot is a hand-checkable base: flat $100 revenue, $30 EBIT, 20%
// tax, so FCF is $24 every year.
func flatSnapshot() *valuation.Snapshot {
	rep := func(v float64) []float64 {
		out := make([]float64, 4)
		for i := range out {
			out[i] = v
		}
		return out
	}
	return &valuation.Snapshot{
		Ticker: "ACQ",
		Forecast: forecast.Forecast{
			Schedule: rep(0),
			Revenue:  rep(100),
			EBIT:     rep(30),
			Tax:      rep(6),
			DA:       rep(10),
			Capex:    rep(5),
			NWC:      rep(5),
			FCF:      rep(24),
		},
		WACC:              0.10,
		TerminalGrowth:    0.03,
		TaxRate:           0.20,
		Beta:              1.0,
		RiskFreeRate:      0.04,
		MarketReturn:      0.08,
		CostOfDebt:        0.03,
		SharesOutstanding: 10,
	}
}

func baseEngine(t *testing.T) *valuation.Engine {
	t.Helper()
	hist := models.HistoricalFinancials{
		Ticker:                   "ACQ",
		Revenue:                  []float64{100e9, 110e9, 121e9, 133.1e9},
		EBIT:                     []float64{25e9, 27.5e9, 30.25e9, 33.275e9},
		TaxProvision:             []float64{5.5e9, 6.05e9, 6.655e9},
		DepreciationAmortization: []float64{5e9, 5.5e9, 6.05e9, 6.655e9},
		CapitalExpenditure:       []float64{-8e9, -8.8e9, -9.68e9, -10.648e9},
		ChangeInWorkingCapital:   []float64{-2e9, -2.2e9, -2.42e9, -2.662e9},
	}
	market := models.MarketSnapshot{
		Beta:              1.0,
		MarketCap:         100e9,
		SharesOutstanding: 1e9,
		Price:             math.NaN(),
		AnalystGrowth5Y:   "10%",
	}
	e, err := valuation.NewEngine(hist, market, 0.03, config.Default())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestApplySynergiesPhaseIn(t *testing.T) {
	adj := &Adjuster{base: flatSnapshot()}
	sy, err := adj.ApplySynergies(Input{CostSavings: 0.10, RevenueBoost: 0.10, PhaseInYears: 2})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	f := sy.Forecast

	// Year 1, half phased: revenue 100*1.05 = 105, opex 60 cut 5%:
	// EBIT = 105 - 57 - 10 = 38. Year 2, fully phased: 110 - 54 - 10 = 46.
	if math.Abs(f.Revenue[0]-105) > tol || math.Abs(f.EBIT[0]-38) > tol {
		t.Errorf("year 1: expected revenue 105 / EBIT 38, got %f / %f", f.Revenue[0], f.EBIT[0])
	}
	if math.Abs(f.Revenue[1]-110) > tol || math.Abs(f.EBIT[1]-46) > tol {
		t.Errorf("year 2: expected revenue 110 / EBIT 46, got %f / %f", f.Revenue[1], f.EBIT[1])
	}

	// Years past the window keep their pre-synergy values.
	for yr := 2; yr < 4; yr++ {
		if f.Revenue[yr] != 100 || f.EBIT[yr] != 30 {
			t.Errorf("year %d: expected untouched 100/30, got %f/%f", yr+1, f.Revenue[yr], f.EBIT[yr])
		}
	}

	// Tax and FCF recomputed everywhere: FCF = 0.8*EBIT + 10 - 5 - 5.
	expFCF := []float64{30.4, 36.8, 24, 24}
	for i, exp := range expFCF {
		if math.Abs(f.Tax[i]-0.2*f.EBIT[i]) > tol {
			t.Errorf("year %d: tax not recomputed: %f", i+1, f.Tax[i])
		}
		if math.Abs(f.FCF[i]-exp) > tol {
			t.Errorf("year %d: expected FCF %f, got %f", i+1, exp, f.FCF[i])
		}
	}

	// The rollup matches an independent discounting of the adjusted series.
	disc, err := valuation.Discount(valuation.DiscountInput{FCF: expFCF, WACC: 0.10, TerminalGrowth: 0.03})
	if err != nil {
		t.Fatalf("discount: %v", err)
	}
	if math.Abs(sy.EnterpriseValue-disc.EnterpriseValue) > 1e-6 {
		t.Errorf("expected EV %f, got %f", disc.EnterpriseValue, sy.EnterpriseValue)
	}
	if math.Abs(sy.ImpliedPrice-disc.EnterpriseValue/10) > 1e-6 {
		t.Errorf("expected price %f, got %f", disc.EnterpriseValue/10, sy.ImpliedPrice)
	}
}

func TestApplySynergiesLeavesBaseUntouched(t *testing.T) {
	e := baseEngine(t)
	before := e.Snapshot()

	_, err := NewAdjuster(e).ApplySynergies(Input{CostSavings: 0.05, RevenueBoost: 0.03, PhaseInYears: 3})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	for i := range before.Forecast.Revenue {
		if e.Forecast.Revenue[i] != before.Forecast.Revenue[i] {
			t.Fatalf("year %d: base revenue changed", i+1)
		}
		if e.Forecast.FCF[i] != before.Forecast.FCF[i] {
			t.Fatalf("year %d: base FCF changed", i+1)
		}
	}
	if e.EnterpriseValue != before.EnterpriseValue || e.ImpliedPrice != before.ImpliedPrice {
		t.Fatal("base valuation rollup changed")
	}
}

func TestApplySynergiesNewDebtRatio(t *testing.T) {
	adj := &Adjuster{base: flatSnapshot()}
	ratio := 0.4
	sy, err := adj.ApplySynergies(Input{PhaseInYears: 2, NewDebtRatio: &ratio})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	// Nil target blends the base against itself, so beta stays 1.0:
	// WACC = 0.4*0.03*0.8 + 0.6*0.08 = 0.0576.
	if math.Abs(sy.WACC-0.0576) > tol {
		t.Errorf("expected WACC 0.0576, got %f", sy.WACC)
	}

	// Cheaper capital on the same cash flows raises the valuation.
	disc, _ := valuation.Discount(valuation.DiscountInput{FCF: sy.Forecast.FCF, WACC: 0.10, TerminalGrowth: 0.03})
	if sy.EnterpriseValue <= disc.EnterpriseValue {
		t.Errorf("expected EV above the 10%%-WACC figure, got %f vs %f", sy.EnterpriseValue, disc.EnterpriseValue)
	}
}

func TestMergedWACC(t *testing.T) {
	acq := flatSnapshot()
	acq.EnterpriseValue = 100

	tgt := flatSnapshot()
	tgt.EnterpriseValue = 300
	tgt.Beta = 2.0

	// Blended beta = (1*100 + 2*300) / 400 = 1.75, k_e = 0.04 + 1.75*0.04
	// = 0.11, WACC = 0.5*0.03*0.8 + 0.5*0.11 = 0.067.
	wacc, err := (&Adjuster{base: acq}).MergedWACC(tgt, 0.5)
	if err != nil {
		t.Fatalf("merged wacc: %v", err)
	}
	if math.Abs(wacc-0.067) > tol {
		t.Errorf("expected 0.067, got %f", wacc)
	}
}

func TestMergedWACCZeroEquity(t *testing.T) {
	acq := flatSnapshot()
	tgt := flatSnapshot() // both have zero enterprise value, debt and cash

	_, err := (&Adjuster{base: acq}).MergedWACC(tgt, 0.3)
	var valErr *valuation.ValuationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValuationError, got %v", err)
	}
}
