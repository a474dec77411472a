package valuation

import (
	"fmt"
	"math"
)

// FindImpliedGrowth back-solves the starting growth rate that reproduces the
// target (observed market) price, by bisection over the configured bracket.
//
// Precondition: implied price is monotonically increasing in starting growth,
// which holds whenever WACC exceeds the terminal growth rate. The target
// must be positive. The solver never fails on non-convergence; after the
// iteration cap it returns its best midpoint.
//
// The engine is left rebuilt at the last candidate rate; callers that need a
// specific calibration should Rebuild with the returned value.
func (e *Engine) FindImpliedGrowth(target float64) (float64, error) {
	if math.IsNaN(target) || target <= 0 {
		return 0, &ValuationError{
			Op:     "implied growth",
			Reason: fmt.Sprintf("target price must be positive, got %v", target),
		}
	}

	s := e.Config.Solver
	low, high := s.Low, s.High
	mid := (low + high) / 2

	for i := 0; i < s.MaxIterations; i++ {
		mid = (low + high) / 2
		if err := e.Rebuild(mid); err != nil {
			return 0, err
		}
		if math.Abs(e.ImpliedPrice-target)/target < s.Tolerance {
			return mid, nil
		}
		if e.ImpliedPrice > target {
			high = mid
		} else {
			low = mid
		}
	}
	return mid, nil
}
