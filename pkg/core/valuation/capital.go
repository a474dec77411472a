// Package valuation implements the discounted-cash-flow core: cost of
// capital, terminal value, enterprise value, implied share price, and the
// engine that ties them to a forecast.
package valuation

import "math"

// CostOfEquityCAPM calculates the required return on equity using CAPM.
//
// FORMULA: r_e = r_f + β × (r_m - r_f)
func CostOfEquityCAPM(riskFreeRate, beta, marketReturn float64) float64 {
	return riskFreeRate + beta*(marketReturn-riskFreeRate)
}

// CapitalWeights splits the capital structure into debt and equity weights.
// An empty structure (debt + equity == 0) defaults to all-equity so the
// caller never divides by zero.
func CapitalWeights(debt, equity float64) (debtWeight, equityWeight float64) {
	total := debt + equity
	if total == 0 {
		return 0, 1
	}
	return debt / total, equity / total
}

// WACC calculates the Weighted Average Cost of Capital.
//
// FORMULA: WACC = w_d × k_d × (1 - T) + w_e × k_e
func WACC(costOfDebt, taxRate, debtWeight, costOfEquity, equityWeight float64) float64 {
	return debtWeight*costOfDebt*(1-taxRate) + equityWeight*costOfEquity
}

// PresentValue discounts a single cash flow received after `periods` years.
//
// FORMULA: PV = CF / (1 + r)^t
func PresentValue(cashFlow, discountRate float64, periods int) float64 {
	if periods < 0 {
		return 0
	}
	return cashFlow / math.Pow(1+discountRate, float64(periods))
}

// PresentValues discounts a series of end-of-period cash flows, returning
// the per-period present values.
func PresentValues(cashFlows []float64, discountRate float64) []float64 {
	pvs := make([]float64, len(cashFlows))
	for t, cf := range cashFlows {
		pvs[t] = PresentValue(cf, discountRate, t+1)
	}
	return pvs
}
