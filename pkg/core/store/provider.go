package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"dcf_valuation/pkg/core/ingest"
	"dcf_valuation/pkg/models"
)

// CachingProvider wraps a live provider with the financials cache: cache hit
// within TTL serves from storage, otherwise the inner provider is consulted
// and its result written back. Cache write failures only warn; the fetch
// still succeeds.
type CachingProvider struct {
	Inner ingest.Provider
	Cache *Cache
	TTL   time.Duration
}

func (p *CachingProvider) Fetch(ctx context.Context, ticker string) (models.HistoricalFinancials, models.MarketSnapshot, error) {
	if entry, err := p.Cache.Get(ctx, ticker, p.TTL); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("financials cache read failed")
	} else if entry != nil {
		log.Debug().Str("ticker", ticker).Time("fetched_at", entry.FetchedAt).Msg("financials cache hit")
		return entry.Financials, entry.Market, nil
	}

	hist, market, err := p.Inner.Fetch(ctx, ticker)
	if err != nil {
		return hist, market, err
	}

	if err := p.Cache.Save(ctx, hist, market); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("financials cache write failed")
	}
	return hist, market, nil
}
