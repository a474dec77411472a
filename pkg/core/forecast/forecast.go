// Package forecast projects a company's free cash flow from historical
// financials: a converging growth schedule drives revenue, and flat margins
// and ratios estimated from history drive everything below the top line.
package forecast

// Input collects everything a forecast build needs. Build is a pure function
// of this struct; rebuilding with the same input yields an identical result.
type Input struct {
	BaseRevenue    float64
	Drivers        Drivers
	StartingGrowth float64
	TerminalGrowth float64
	Years          int
	ConvergeStart  int
}

// Forecast holds the projected per-year series. Every slice has length equal
// to the projection horizon.
type Forecast struct {
	StartingGrowth float64   `json:"starting_growth"`
	Schedule       []float64 `json:"schedule"`
	Revenue        []float64 `json:"revenue"`
	EBIT           []float64 `json:"ebit"`
	Tax            []float64 `json:"tax"`
	DA             []float64 `json:"da"`
	Capex          []float64 `json:"capex"`
	NWC            []float64 `json:"nwc"`
	FCF            []float64 `json:"fcf"`
}

// Build projects the full forecast.
//
// Revenue compounds cumulatively along the growth schedule; EBIT, tax, D&A,
// capex and the working-capital change are flat fractions of each year's
// revenue (or EBIT, for tax); FCF = EBIT - Tax + D&A - Capex - ΔNWC.
func Build(in Input) Forecast {
	sched := DynamicConverger(in.StartingGrowth, in.TerminalGrowth, in.Years, in.ConvergeStart)
	f := Forecast{
		StartingGrowth: in.StartingGrowth,
		Schedule:       sched,
		Revenue:        make([]float64, in.Years),
		EBIT:           make([]float64, in.Years),
		Tax:            make([]float64, in.Years),
		DA:             make([]float64, in.Years),
		Capex:          make([]float64, in.Years),
		NWC:            make([]float64, in.Years),
		FCF:            make([]float64, in.Years),
	}

	compounded := 1.0
	for i := 0; i < in.Years; i++ {
		compounded *= 1 + sched[i]
		f.Revenue[i] = in.BaseRevenue * compounded
		f.EBIT[i] = f.Revenue[i] * in.Drivers.EBITMargin
		f.Tax[i] = f.EBIT[i] * in.Drivers.TaxRate
		f.DA[i] = f.Revenue[i] * in.Drivers.DARatio
		f.Capex[i] = f.Revenue[i] * in.Drivers.CapexRatio
		f.NWC[i] = f.Revenue[i] * in.Drivers.NWCRatio
		f.FCF[i] = f.EBIT[i] - f.Tax[i] + f.DA[i] - f.Capex[i] - f.NWC[i]
	}
	return f
}

// Horizon returns the number of projected years.
func (f Forecast) Horizon() int {
	return len(f.Schedule)
}

// Clone returns an independent deep copy; mutating the clone never touches
// the source forecast.
func (f Forecast) Clone() Forecast {
	c := f
	c.Schedule = append([]float64(nil), f.Schedule...)
	c.Revenue = append([]float64(nil), f.Revenue...)
	c.EBIT = append([]float64(nil), f.EBIT...)
	c.Tax = append([]float64(nil), f.Tax...)
	c.DA = append([]float64(nil), f.DA...)
	c.Capex = append([]float64(nil), f.Capex...)
	c.NWC = append([]float64(nil), f.NWC...)
	c.FCF = append([]float64(nil), f.FCF...)
	return c
}
