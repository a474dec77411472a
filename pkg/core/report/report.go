// Package report renders valuation results for the console and for the API
// (Markdown, optionally converted to HTML).
package report

import (
	"fmt"
	"io"

	"dcf_valuation/pkg/core/valuation"
)

// mosTargets are the margin-of-safety levels quoted against the market price.
var mosTargets = []float64{0.10, 0.20, 0.30}

// WriteStandalone prints the full standalone valuation: growth inputs and
// schedule, implied price and margin of safety, the year-by-year discounted
// cash flows, and the enterprise / equity rollup.
func WriteStandalone(w io.Writer, e *valuation.Engine) {
	// 1. Growth inputs
	fmt.Fprintf(w, "Historical CAGR:      %6.2f%%\n", e.Drivers.HistCAGR*100)
	fmt.Fprintf(w, "Starting Growth:      %6.2f%%\n", e.StartingGrowth()*100)
	fmt.Fprintf(w, "Terminal Growth Cap:  %6.2f%%\n", e.TerminalGrowth*100)
	fmt.Fprintln(w, "Year-by-Year Growth Schedule:")
	for i, g := range e.Forecast.Schedule {
		fmt.Fprintf(w, " Year %3d: %6.2f%%\n", i+1, g*100)
	}
	fmt.Fprintln(w)

	// 2. Implied price and margin of safety
	fmt.Fprintf(w, "Implied Price:    $%.2f\n", e.ImpliedPrice)
	if e.Market.HasPrice() {
		fmt.Fprintf(w, "MoS vs Market:    %6.2f%%\n\n", e.MarginOfSafety()*100)
		for _, pct := range mosTargets {
			fmt.Fprintf(w, " Target for %d%% MoS: $%.2f\n", int(pct*100), e.Market.Price*(1+pct))
		}
	} else {
		fmt.Fprintln(w, "MoS vs Market:    n/a (no market quote)")
	}
	fmt.Fprintln(w)

	writeCashFlows(w, e)
}

// WriteCalibrated prints the valuation again after the engine has been
// rebuilt at the implied growth rate.
func WriteCalibrated(w io.Writer, e *valuation.Engine, impliedGrowth float64) {
	fmt.Fprintln(w, "=== DCF WITH IMPLIED GROWTH ===")
	fmt.Fprintf(w, "Implied Growth:   %6.2f%%\n", impliedGrowth*100)
	fmt.Fprintf(w, "Implied Price:    $%.2f\n", e.ImpliedPrice)
	if e.Market.HasPrice() {
		fmt.Fprintf(w, "MoS vs Market:    %6.2f%%\n", e.MarginOfSafety()*100)
	}
	fmt.Fprintln(w)
	writeCashFlows(w, e)
}

func writeCashFlows(w io.Writer, e *valuation.Engine) {
	// 3. Discounted cash flows
	fmt.Fprintln(w, "Yearly Discounted Cash Flows:")
	for i, fcf := range e.Forecast.FCF {
		fmt.Fprintf(w, " Year %3d: FCF = $%.0f, PV = $%.0f\n", i+1, fcf, e.PVFCF[i])
	}
	fmt.Fprintf(w, "\nPV of Terminal Value: $%.0f\n\n", e.PVTerminal)

	// 4. Rollup
	fmt.Fprintf(w, "Standalone EV:     $%.1fB\n", e.EnterpriseValue/1e9)
	fmt.Fprintf(w, "Standalone Equity: $%.1fB\n", e.EquityValue()/1e9)
}

// Markdown renders the standalone valuation as a Markdown document for the
// API report endpoint.
func Markdown(e *valuation.Engine) string {
	var b []byte
	add := func(format string, args ...interface{}) {
		b = append(b, fmt.Sprintf(format, args...)...)
	}

	add("# DCF Valuation: %s\n\n", e.Ticker)
	add("| Metric | Value |\n|---|---|\n")
	add("| Historical CAGR | %.2f%% |\n", e.Drivers.HistCAGR*100)
	add("| Starting Growth | %.2f%% |\n", e.StartingGrowth()*100)
	add("| Terminal Growth | %.2f%% |\n", e.TerminalGrowth*100)
	add("| WACC | %.2f%% |\n", e.WACC*100)
	add("| Terminal Value | $%.0f |\n", e.TerminalValue)
	add("| Enterprise Value | $%.0f |\n", e.EnterpriseValue)
	add("| Equity Value | $%.0f |\n", e.EquityValue())
	add("| Implied Price | $%.2f |\n", e.ImpliedPrice)
	if e.Market.HasPrice() {
		add("| Market Price | $%.2f |\n", e.Market.Price)
		add("| Margin of Safety | %.2f%% |\n", e.MarginOfSafety()*100)
	}
	add("\n## Forecast\n\n")
	add("| Year | Growth | Revenue | EBIT | FCF | PV |\n|---|---|---|---|---|---|\n")
	for i := range e.Forecast.FCF {
		add("| %d | %.2f%% | %.0f | %.0f | %.0f | %.0f |\n",
			i+1, e.Forecast.Schedule[i]*100, e.Forecast.Revenue[i],
			e.Forecast.EBIT[i], e.Forecast.FCF[i], e.PVFCF[i])
	}
	add("\nPV of terminal value: $%.0f\n", e.PVTerminal)
	return string(b)
}
