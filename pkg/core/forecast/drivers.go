package forecast

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"dcf_valuation/pkg/models"
)

// Drivers are the flat margins and ratios estimated from reported history.
// They are fixed at engine construction and applied unchanged across every
// forecast year.
type Drivers struct {
	HistCAGR   float64 `json:"hist_cagr"`   // compound revenue growth over the reported window
	EBITMargin float64 `json:"ebit_margin"` // weighted average, biased to the most recent year
	TaxRate    float64 `json:"tax_rate"`    // mean tax provision / EBIT
	DARatio    float64 `json:"da_ratio"`    // mean |D&A| / revenue
	CapexRatio float64 `json:"capex_ratio"` // mean |capex| / revenue, after the haircut
	NWCRatio   float64 `json:"nwc_ratio"`   // mean |ΔNWC| / revenue
}

// ebitMarginWeights bias the margin estimate toward the most recent year.
// The other ratios deliberately stay unweighted means; do not unify the two
// schemes without treating it as a model change.
var ebitMarginWeights = []float64{0.2, 0.3, 0.5}

// EstimateDrivers derives the forecast drivers from historical financials.
// It requires at least two revenue periods; everything else degrades to the
// overlap available. Series are aligned on their newest entries.
func EstimateDrivers(hist models.HistoricalFinancials, capexHaircut float64) (Drivers, error) {
	rev := hist.Revenue
	if len(rev) < 2 {
		return Drivers{}, &models.DataError{
			Ticker: hist.Ticker,
			Field:  "revenue",
			Reason: fmt.Sprintf("need at least 2 periods to compute growth, got %d", len(rev)),
		}
	}

	var d Drivers

	// 1. Historical compound growth over the reported window.
	periods := float64(len(rev) - 1)
	d.HistCAGR = math.Pow(rev[len(rev)-1]/rev[0], 1/periods) - 1

	// 2. EBIT margin: weighted average of the last 3 EBIT/revenue ratios.
	margins := tailRatios(hist.EBIT, rev, 3)
	d.EBITMargin = weightedMean(margins, ebitMarginWeights)

	// 3. Effective tax rate: unweighted mean of tax provision / EBIT.
	d.TaxRate = mean(tailRatios(hist.TaxProvision, hist.EBIT, 3))

	// 4. Ratio-to-revenue drivers over up to 4 periods, absolute values so
	// sign conventions in the cash flow statement don't flip the forecast.
	d.DARatio = mean(tailAbsRatios(hist.DepreciationAmortization, rev, 4))
	d.CapexRatio = mean(tailAbsRatios(hist.CapitalExpenditure, rev, 4)) * capexHaircut
	d.NWCRatio = mean(tailAbsRatios(hist.ChangeInWorkingCapital, rev, 4))

	return d, nil
}

// ParseGrowthEstimate converts an analyst growth string such as "8.50%" into
// a fraction. Missing or malformed input falls back silently; this path must
// never fail.
func ParseGrowthEstimate(raw string, fallback float64) float64 {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return fallback
	}
	return v / 100
}

// tailRatios pairs the newest min(n, len) entries of two series and returns
// num[i]/den[i], oldest first.
func tailRatios(num, den []float64, n int) []float64 {
	if len(num) < n {
		n = len(num)
	}
	if len(den) < n {
		n = len(den)
	}
	out := make([]float64, 0, n)
	for i := n; i > 0; i-- {
		out = append(out, num[len(num)-i]/den[len(den)-i])
	}
	return out
}

func tailAbsRatios(num, den []float64, n int) []float64 {
	ratios := tailRatios(num, den, n)
	for i, r := range ratios {
		ratios[i] = math.Abs(r)
	}
	return ratios
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// weightedMean applies the tail of `weights` when fewer values are present,
// renormalizing so the weights always sum to one.
func weightedMean(vals, weights []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	w := weights
	if len(vals) < len(w) {
		w = w[len(w)-len(vals):]
	}
	var sum, wsum float64
	for i, v := range vals {
		sum += v * w[i]
		wsum += w[i]
	}
	return sum / wsum
}
