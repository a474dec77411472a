package valuation

import "fmt"

// DiscountInput carries the forecast cash flows and rates for a single
// discounting pass.
type DiscountInput struct {
	FCF            []float64
	WACC           float64
	TerminalGrowth float64
}

// DiscountResult holds the discounted outputs.
type DiscountResult struct {
	TerminalValue   float64   // undiscounted Gordon perpetuity
	PVFCF           []float64 // per-year present values
	PVTerminal      float64   // terminal value discounted to today
	EnterpriseValue float64   // Σ PVFCF + PVTerminal
}

// TerminalValueGordon computes the Gordon growth perpetuity on the final
// forecast year.
//
// FORMULA: TV = FCF_n × (1 + g) / (WACC - g)
//
// WACC must strictly exceed the terminal growth rate; otherwise the
// perpetuity is undefined and a ValuationError is returned instead of a
// non-finite or negative value.
func TerminalValueGordon(finalFCF, wacc, growth float64) (float64, error) {
	if wacc <= growth {
		return 0, &ValuationError{
			Op:     "terminal value",
			Reason: fmt.Sprintf("WACC %.4f must exceed terminal growth %.4f", wacc, growth),
		}
	}
	return finalFCF * (1 + growth) / (wacc - growth), nil
}

// Discount runs the full two-stage DCF: per-year present values of the
// explicit forecast plus the discounted terminal value.
func Discount(in DiscountInput) (DiscountResult, error) {
	if len(in.FCF) == 0 {
		return DiscountResult{}, &ValuationError{Op: "discount", Reason: "empty cash flow series"}
	}

	tv, err := TerminalValueGordon(in.FCF[len(in.FCF)-1], in.WACC, in.TerminalGrowth)
	if err != nil {
		return DiscountResult{}, err
	}

	res := DiscountResult{
		TerminalValue: tv,
		PVFCF:         PresentValues(in.FCF, in.WACC),
		PVTerminal:    PresentValue(tv, in.WACC, len(in.FCF)),
	}
	for _, pv := range res.PVFCF {
		res.EnterpriseValue += pv
	}
	res.EnterpriseValue += res.PVTerminal
	return res, nil
}

// SharePrice converts an enterprise value into an implied per-share figure.
//
// FORMULA: (EV - debt + cash) / shares
//
// The share count prefers the weighted-average diluted figure when the
// provider reported one, falling back to static shares outstanding. The
// fallback never fails; a missing count degrades to 1 share.
func SharePrice(enterpriseValue, debt, cash, dilutedShares, sharesOutstanding float64) float64 {
	shares := dilutedShares
	if shares <= 0 {
		shares = sharesOutstanding
	}
	if shares <= 0 {
		shares = 1
	}
	return (enterpriseValue - debt + cash) / shares
}
