package synergy

import (
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
)

// DefaultPhaseInYears applies when a scenario file omits the window.
const DefaultPhaseInYears = 3

// LoadScenario reads a synergy scenario from an HJSON file (commented,
// trailing-comma-tolerant JSON), e.g.:
//
//	{
//	  // 4% of opex removed once fully phased in
//	  cost_savings: 0.04
//	  revenue_boost: 0.02
//	  phase_in_years: 3
//	  new_debt_ratio: 0.35
//	}
func LoadScenario(path string) (Input, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(b)
}

// ParseScenario decodes scenario bytes and fills defaults.
func ParseScenario(b []byte) (Input, error) {
	var in Input
	if err := hjson.Unmarshal(b, &in); err != nil {
		return Input{}, fmt.Errorf("parse scenario: %w", err)
	}
	if in.PhaseInYears == 0 {
		in.PhaseInYears = DefaultPhaseInYears
	}
	return in, nil
}
