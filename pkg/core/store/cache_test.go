package store

import (
	"context"
	"math"
	"testing"
	"time"

	"dcf_valuation/pkg/core/ingest"
	"dcf_valuation/pkg/models"
)

func testFinancials() (models.HistoricalFinancials, models.MarketSnapshot) {
	hist := models.HistoricalFinancials{
		Ticker:  "aapl",
		Revenue: []float64{100, 110, 121},
		EBIT:    []float64{25, 27.5, 30.25},
	}
	market := models.MarketSnapshot{
		Beta:              1.2,
		MarketCap:         2e12,
		SharesOutstanding: 1e9,
		Price:             math.NaN(), // no quote yet
		AnalystGrowth5Y:   "8.50%",
	}
	return hist, market
}

func TestFileCacheRoundTrip(t *testing.T) {
	cache := NewCache(nil, t.TempDir())
	ctx := context.Background()
	hist, market := testFinancials()

	if err := cache.Save(ctx, hist, market); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Lookups are case-insensitive on the ticker.
	entry, err := cache.Get(ctx, "AAPL", time.Hour)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry == nil {
		t.Fatal("expected cache hit")
	}
	if entry.Ticker != "AAPL" {
		t.Errorf("expected upper-cased ticker, got %q", entry.Ticker)
	}
	if len(entry.Financials.Revenue) != 3 || entry.Financials.Revenue[2] != 121 {
		t.Errorf("financials did not round-trip: %+v", entry.Financials)
	}
	if entry.Market.AnalystGrowth5Y != "8.50%" {
		t.Errorf("market snapshot did not round-trip: %+v", entry.Market)
	}
	// The NaN "no quote" sentinel survives the JSON round trip.
	if !math.IsNaN(entry.Market.Price) {
		t.Errorf("expected NaN price after round trip, got %f", entry.Market.Price)
	}
}

func TestFileCacheMissAndStale(t *testing.T) {
	cache := NewCache(nil, t.TempDir())
	ctx := context.Background()

	entry, err := cache.Get(ctx, "MSFT", time.Hour)
	if err != nil || entry != nil {
		t.Fatalf("expected clean miss, got %v / %v", entry, err)
	}

	hist, market := testFinancials()
	if err := cache.Save(ctx, hist, market); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A zero-duration TTL would disable the check; use a tiny one instead.
	time.Sleep(5 * time.Millisecond)
	entry, err = cache.Get(ctx, "AAPL", time.Millisecond)
	if err != nil || entry != nil {
		t.Fatalf("expected stale entry to miss, got %v / %v", entry, err)
	}
}

func TestCachingProvider(t *testing.T) {
	hist, market := testFinancials()
	hist.Ticker = "AAPL"
	inner := &ingest.StaticProvider{
		Financials: map[string]models.HistoricalFinancials{"AAPL": hist},
		Market:     map[string]models.MarketSnapshot{"AAPL": market},
	}
	p := &CachingProvider{
		Inner: inner,
		Cache: NewCache(nil, t.TempDir()),
		TTL:   time.Hour,
	}
	ctx := context.Background()

	got, _, err := p.Fetch(ctx, "AAPL")
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if got.Revenue[0] != 100 {
		t.Fatalf("unexpected financials: %+v", got)
	}

	// Second fetch is served from the cache: removing the inner data must
	// not matter.
	delete(inner.Financials, "AAPL")
	got, _, err = p.Fetch(ctx, "AAPL")
	if err != nil {
		t.Fatalf("cached fetch: %v", err)
	}
	if got.Revenue[0] != 100 {
		t.Fatalf("cache did not serve the stored financials: %+v", got)
	}
}

func TestCachingProviderPropagatesErrors(t *testing.T) {
	p := &CachingProvider{
		Inner: &ingest.StaticProvider{},
		Cache: NewCache(nil, t.TempDir()),
		TTL:   time.Hour,
	}
	if _, _, err := p.Fetch(context.Background(), "ZZZ"); err == nil {
		t.Fatal("expected inner provider error to propagate")
	}
}
