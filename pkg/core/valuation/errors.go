package valuation

import "fmt"

// ValuationError reports a mathematically undefined result: a discount rate
// at or below the terminal growth rate, a non-positive solver target, or a
// zero combined equity value when blending betas. These are surfaced rather
// than letting non-finite numbers propagate downstream.
type ValuationError struct {
	Op     string
	Reason string
}

func (e *ValuationError) Error() string {
	return fmt.Sprintf("valuation: %s: %s", e.Op, e.Reason)
}
