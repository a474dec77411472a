// Package config holds the model configuration: market rate assumptions,
// forecast settings, beta constraints and solver bounds. Defaults match the
// standard model; a YAML file can override any subset of them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// MarketConfig holds the economy-wide rate assumptions.
type MarketConfig struct {
	RiskFreeRate     float64 `yaml:"risk_free_rate"`
	MarketReturn     float64 `yaml:"market_return"`
	PreTaxCostOfDebt float64 `yaml:"pre_tax_cost_of_debt"`
}

// ForecastConfig controls the shape of the projection.
type ForecastConfig struct {
	ProjectionYears       int     `yaml:"projection_years"`
	ConvergeStart         int     `yaml:"converge_start"`
	TerminalGrowthCap     float64 `yaml:"terminal_growth_cap"`
	DefaultStartingGrowth float64 `yaml:"default_starting_growth"`
	CapexHaircut          float64 `yaml:"capex_haircut"`
}

// BetaConfig constrains the beta pulled from market data.
type BetaConfig struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Default float64 `yaml:"default"`
}

// SolverConfig bounds the implied-growth bisection.
type SolverConfig struct {
	Low           float64 `yaml:"low"`
	High          float64 `yaml:"high"`
	Tolerance     float64 `yaml:"tolerance"`
	MaxIterations int     `yaml:"max_iterations"`
}

// Config aggregates all model settings.
type Config struct {
	Market   MarketConfig   `yaml:"market"`
	Forecast ForecastConfig `yaml:"forecast"`
	Beta     BetaConfig     `yaml:"beta"`
	Solver   SolverConfig   `yaml:"solver"`
}

// Default returns the standard model configuration.
func Default() Config {
	return Config{
		Market: MarketConfig{
			RiskFreeRate:     0.043,
			MarketReturn:     0.08,
			PreTaxCostOfDebt: 0.03,
		},
		Forecast: ForecastConfig{
			ProjectionYears:       10,
			ConvergeStart:         6,
			TerminalGrowthCap:     0.035,
			DefaultStartingGrowth: 0.07,
			CapexHaircut:          0.8, // assume 20% post-investment efficiency on capex
		},
		Beta: BetaConfig{
			Min:     0.5,
			Max:     2.5,
			Default: 1.28,
		},
		Solver: SolverConfig{
			Low:           0.0,
			High:          0.30,
			Tolerance:     1e-4,
			MaxIterations: 50,
		},
	}
}

// Load reads a YAML file over the defaults. Fields absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings that would make the model undefined.
func (c Config) Validate() error {
	if c.Forecast.ProjectionYears <= 0 {
		return fmt.Errorf("projection_years must be positive, got %d", c.Forecast.ProjectionYears)
	}
	if c.Forecast.ConvergeStart < 0 || c.Forecast.ConvergeStart > c.Forecast.ProjectionYears {
		return fmt.Errorf("converge_start %d out of range [0, %d]", c.Forecast.ConvergeStart, c.Forecast.ProjectionYears)
	}
	if c.Beta.Min > c.Beta.Max {
		return fmt.Errorf("beta min %.2f exceeds max %.2f", c.Beta.Min, c.Beta.Max)
	}
	if c.Solver.Low >= c.Solver.High {
		return fmt.Errorf("solver bracket [%.2f, %.2f] is empty", c.Solver.Low, c.Solver.High)
	}
	if c.Solver.MaxIterations <= 0 {
		return fmt.Errorf("solver max_iterations must be positive, got %d", c.Solver.MaxIterations)
	}
	return nil
}
