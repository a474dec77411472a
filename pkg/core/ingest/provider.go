// Package ingest fetches company financial statements and market data from
// external providers. The valuation core only sees materialized in-memory
// series; everything network-shaped lives here.
package ingest

import (
	"context"

	"dcf_valuation/pkg/models"
)

// Documented defaults for optional market fields. Structural series
// (revenue, EBIT) below their minimum length are hard DataError failures;
// everything here recovers silently.
const (
	DefaultBeta   = 1.28
	DefaultShares = 1.0
)

// Provider supplies a company's historical financials and market snapshot.
// Implementations must return series oldest -> newest and apply the default
// values above to missing optional fields.
type Provider interface {
	Fetch(ctx context.Context, ticker string) (models.HistoricalFinancials, models.MarketSnapshot, error)
}

// StaticProvider serves pre-materialized data, for offline runs and tests.
type StaticProvider struct {
	Financials map[string]models.HistoricalFinancials
	Market     map[string]models.MarketSnapshot
}

func (p *StaticProvider) Fetch(_ context.Context, ticker string) (models.HistoricalFinancials, models.MarketSnapshot, error) {
	hist, ok := p.Financials[ticker]
	if !ok {
		return models.HistoricalFinancials{}, models.MarketSnapshot{}, &models.DataError{
			Ticker: ticker,
			Field:  "financials",
			Reason: "no static data registered",
		}
	}
	return hist, p.Market[ticker], nil
}
