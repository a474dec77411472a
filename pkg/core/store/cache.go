package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"dcf_valuation/pkg/models"
)

// Cache stores fetched financials per ticker. DB (primary) + file system
// (fallback when no pool is configured).
type Cache struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewCache creates a cache. If pool is nil it falls back to a file cache in
// dir; an empty dir defaults to .cache/financials.
func NewCache(pool *pgxpool.Pool, dir string) *Cache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "financials")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("cache dir unavailable")
		}
	}
	return &Cache{pool: pool, fileDir: dir}
}

// Entry is one cached fetch.
type Entry struct {
	ID         string                      `json:"id"`
	Ticker     string                      `json:"ticker"`
	FetchedAt  time.Time                   `json:"fetched_at"`
	Financials models.HistoricalFinancials `json:"financials"`
	Market     models.MarketSnapshot       `json:"market"`
}

// Get returns the cached entry for a ticker when it is younger than maxAge.
// A miss (or stale entry) returns (nil, nil).
func (c *Cache) Get(ctx context.Context, ticker string, maxAge time.Duration) (*Entry, error) {
	var entry *Entry

	if c.pool != nil {
		query := `
			SELECT id, fetched_at, data
			FROM company_financials
			WHERE ticker = $1
			LIMIT 1
		`
		var id string
		var fetchedAt time.Time
		var dataJSON []byte
		err := c.pool.QueryRow(ctx, query, strings.ToUpper(ticker)).Scan(&id, &fetchedAt, &dataJSON)
		if err != nil {
			return nil, nil // cache miss
		}
		entry = &Entry{ID: id, Ticker: strings.ToUpper(ticker), FetchedAt: fetchedAt}
		if err := json.Unmarshal(dataJSON, entry); err != nil {
			return nil, fmt.Errorf("unmarshal cached financials: %w", err)
		}
	} else if c.fileDir != "" {
		b, err := os.ReadFile(c.tickerPath(ticker))
		if err != nil {
			return nil, nil // not found
		}
		entry = &Entry{}
		if err := json.Unmarshal(b, entry); err != nil {
			return nil, fmt.Errorf("unmarshal cached financials: %w", err)
		}
	}

	if entry == nil {
		return nil, nil
	}
	if maxAge > 0 && time.Since(entry.FetchedAt) > maxAge {
		return nil, nil // stale
	}
	return entry, nil
}

// Save upserts the latest fetch for a ticker.
func (c *Cache) Save(ctx context.Context, hist models.HistoricalFinancials, market models.MarketSnapshot) error {
	entry := Entry{
		ID:         uuid.New().String(),
		Ticker:     strings.ToUpper(hist.Ticker),
		FetchedAt:  time.Now().UTC(),
		Financials: hist,
		Market:     market,
	}
	dataJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal financials: %w", err)
	}

	if c.pool != nil {
		query := `
			INSERT INTO company_financials (id, ticker, fetched_at, data)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (ticker)
			DO UPDATE SET fetched_at = EXCLUDED.fetched_at, data = EXCLUDED.data
		`
		if _, err := c.pool.Exec(ctx, query, entry.ID, entry.Ticker, entry.FetchedAt, dataJSON); err != nil {
			return fmt.Errorf("save financials to db: %w", err)
		}
		return nil
	}

	if c.fileDir != "" {
		if err := os.WriteFile(c.tickerPath(entry.Ticker), dataJSON, 0644); err != nil {
			return fmt.Errorf("save financials to file cache: %w", err)
		}
	}
	return nil
}

func (c *Cache) tickerPath(ticker string) string {
	return filepath.Join(c.fileDir, strings.ToUpper(ticker)+".json")
}
