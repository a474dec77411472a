package forecast

// DynamicConverger builds a per-year growth schedule of length `steps`: the
// starting rate is held flat for the first `convergeStart` years, then the
// schedule interpolates linearly so the final year lands exactly on the
// terminal rate.
//
// Invariants: len == steps; first entry == current; last entry == expected;
// entries between convergeStart and the end are monotonic when the two rates
// differ.
func DynamicConverger(current, expected float64, steps, convergeStart int) []float64 {
	if steps <= 0 {
		return nil
	}
	if convergeStart > steps {
		convergeStart = steps
	}
	if convergeStart < 0 {
		convergeStart = 0
	}

	sched := make([]float64, steps)
	for i := 0; i < convergeStart; i++ {
		sched[i] = current
	}

	// Ramp anchored at `current`: the converging tail holds the remaining
	// steps of an even interpolation ending on `expected`.
	span := steps - convergeStart
	for i := 0; i < span; i++ {
		frac := float64(i+1) / float64(span)
		sched[convergeStart+i] = current + (expected-current)*frac
	}
	return sched
}
