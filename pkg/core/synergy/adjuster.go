// Package synergy applies merger adjustments on top of a completed
// valuation: phased cost savings and revenue uplift, plus an optional
// capital-structure change, recomputed through the full DCF stack.
package synergy

import (
	"dcf_valuation/pkg/core/valuation"
)

// Adjuster perturbs an independent snapshot of a base valuation. The engine
// it was constructed from is never mutated; isolation comes from the one
// deep copy taken here, not from locking.
type Adjuster struct {
	base *valuation.Snapshot
}

// NewAdjuster snapshots the completed base valuation.
func NewAdjuster(base *valuation.Engine) *Adjuster {
	return &Adjuster{base: base.Snapshot()}
}

// Base exposes the adjuster's working snapshot.
func (a *Adjuster) Base() *valuation.Snapshot {
	return a.base
}

// MergedWACC blends acquirer and target betas by equity value and recomputes
// the cost of capital at the new target debt ratio, using the acquirer's tax
// rate and fixed cost of debt.
//
// Returns a ValuationError when the combined equity value is zero, since the
// beta blend is undefined.
func (a *Adjuster) MergedWACC(target *valuation.Snapshot, newDebtRatio float64) (float64, error) {
	acq := a.base
	acqEquity := acq.EquityValue()
	tgtEquity := target.EquityValue()
	total := acqEquity + tgtEquity
	if total == 0 {
		return 0, &valuation.ValuationError{Op: "merged wacc", Reason: "combined equity value is zero"}
	}

	blendedBeta := (acq.Beta*acqEquity + target.Beta*tgtEquity) / total
	costOfEquity := valuation.CostOfEquityCAPM(acq.RiskFreeRate, blendedBeta, acq.MarketReturn)

	debtWeight := newDebtRatio
	equityWeight := 1 - newDebtRatio
	return valuation.WACC(acq.CostOfDebt, acq.TaxRate, debtWeight, costOfEquity, equityWeight), nil
}

// Input describes one synergy scenario.
type Input struct {
	CostSavings  float64  `json:"cost_savings"`   // fraction of operating expense removed at full phase-in
	RevenueBoost float64  `json:"revenue_boost"`  // fraction of revenue added at full phase-in
	PhaseInYears int      `json:"phase_in_years"` // window over which both scale linearly
	NewDebtRatio *float64 `json:"new_debt_ratio,omitempty"`

	// Target is the merger counterpart used for beta blending when the debt
	// ratio changes. Nil blends the base against itself, which leaves beta
	// unchanged and only reweights the capital structure.
	Target *valuation.Snapshot `json:"-"`
}

// ApplySynergies mutates the adjuster's snapshot in place and returns it.
//
// For each year inside the phase-in window: revenue scales up linearly
// toward the full boost, the implied operating expense (revenue - EBIT -
// D&A, taken from the snapshot's pre-adjustment values) scales down linearly
// toward the full savings, and EBIT is recomputed from the adjusted pieces.
// Years beyond the window keep their converged pre-synergy values. Tax, FCF
// and enterprise value are then recomputed over the whole horizon, the WACC
// is replaced via MergedWACC when a new debt ratio was supplied, and the
// implied share price is refreshed last.
func (a *Adjuster) ApplySynergies(in Input) (*valuation.Snapshot, error) {
	sy := a.base
	f := &sy.Forecast

	if in.PhaseInYears < 0 {
		in.PhaseInYears = 0
	}

	// 1. Phase in revenue uplift and cost savings.
	for yr := 0; yr < len(f.Revenue) && yr < in.PhaseInYears; yr++ {
		frac := float64(yr+1) / float64(in.PhaseInYears)

		// Opex implied by the pre-adjustment forecast for this year.
		opex := f.Revenue[yr] - f.EBIT[yr] - f.DA[yr]

		f.Revenue[yr] *= 1 + in.RevenueBoost*frac
		f.EBIT[yr] = f.Revenue[yr] - opex*(1-in.CostSavings*frac) - f.DA[yr]
	}

	// 2. Recompute tax and FCF across the whole horizon.
	for i := range f.EBIT {
		f.Tax[i] = f.EBIT[i] * sy.TaxRate
		f.FCF[i] = f.EBIT[i] - f.Tax[i] + f.DA[i] - f.Capex[i] - f.NWC[i]
	}

	// 3. Re-discount at the existing WACC.
	if err := sy.Rediscount(); err != nil {
		return nil, err
	}

	// 4. Optional capital-structure change: blend betas, rebuild WACC and
	// discount again.
	if in.NewDebtRatio != nil {
		target := in.Target
		if target == nil {
			target = sy
		}
		wacc, err := a.MergedWACC(target, *in.NewDebtRatio)
		if err != nil {
			return nil, err
		}
		sy.WACC = wacc
		if err := sy.Rediscount(); err != nil {
			return nil, err
		}
	}

	return sy, nil
}
