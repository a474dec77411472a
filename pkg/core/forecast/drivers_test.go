package forecast

import (
	"errors"
	"math"
	"testing"

	"dcf_valuation/pkg/models"
)

const tol = 1e-9

func testHistory() models.HistoricalFinancials {
	// 10% revenue growth, 25% margin, 20% tax, clean ratios.
	return models.HistoricalFinancials{
		Ticker:                   "TEST",
		Revenue:                  []float64{100, 110, 121, 133.1},
		EBIT:                     []float64{25, 27.5, 30.25, 33.275},
		TaxProvision:             []float64{5.5, 6.05, 6.655},
		DepreciationAmortization: []float64{5, 5.5, 6.05, 6.655},
		CapitalExpenditure:       []float64{-8, -8.8, -9.68, -10.648},
		ChangeInWorkingCapital:   []float64{-2, -2.2, -2.42, -2.662},
	}
}

func TestEstimateDrivers(t *testing.T) {
	d, err := EstimateDrivers(testHistory(), 0.8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name     string
		got, exp float64
	}{
		{"hist CAGR", d.HistCAGR, 0.10},
		{"EBIT margin", d.EBITMargin, 0.25},
		{"tax rate", d.TaxRate, 0.20},
		{"D&A ratio", d.DARatio, 0.05},
		{"capex ratio", d.CapexRatio, 0.08 * 0.8},
		{"NWC ratio", d.NWCRatio, 0.02},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.exp) > tol {
			t.Errorf("%s: expected %f, got %f", c.name, c.exp, c.got)
		}
	}
}

func TestEstimateDriversMarginWeights(t *testing.T) {
	// Margins 20%, 20%, 30% oldest->newest: a flat mean would give 23.33%,
	// the 0.2/0.3/0.5 weighting gives 25%.
	hist := testHistory()
	hist.Revenue = []float64{90, 100, 110, 121}
	hist.EBIT = []float64{18, 20, 22, 36.3}

	d, err := EstimateDrivers(hist, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d.EBITMargin-0.25) > tol {
		t.Errorf("expected weighted margin 0.25, got %f", d.EBITMargin)
	}
}

func TestEstimateDriversShortSeries(t *testing.T) {
	// Cash flow series shorter than revenue align on the newest entries.
	hist := testHistory()
	hist.DepreciationAmortization = []float64{6.05, 6.655} // 5% of the last two revenues

	d, err := EstimateDrivers(hist, 0.8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d.DARatio-0.05) > tol {
		t.Errorf("expected D&A ratio 0.05 from 2-period overlap, got %f", d.DARatio)
	}
}

func TestEstimateDriversInsufficientHistory(t *testing.T) {
	hist := models.HistoricalFinancials{Ticker: "NEW", Revenue: []float64{100}}
	_, err := EstimateDrivers(hist, 0.8)
	if err == nil {
		t.Fatal("expected error for single-period history")
	}
	var dataErr *models.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("expected DataError, got %T", err)
	}
	if dataErr.Field != "revenue" {
		t.Errorf("expected revenue field in error, got %q", dataErr.Field)
	}
}

func TestParseGrowthEstimate(t *testing.T) {
	cases := []struct {
		raw      string
		expected float64
	}{
		{"8.50%", 0.085},
		{"25.5%", 0.255},
		{" 12.0% ", 0.12},
		{"7", 0.07},
		{"", 0.07},
		{"N/A", 0.07},
		{"--", 0.07},
	}
	for _, c := range cases {
		if got := ParseGrowthEstimate(c.raw, 0.07); math.Abs(got-c.expected) > tol {
			t.Errorf("ParseGrowthEstimate(%q): expected %f, got %f", c.raw, c.expected, got)
		}
	}
}
