package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	apivaluation "dcf_valuation/pkg/api/valuation"
	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/ingest"
	"dcf_valuation/pkg/core/store"
)

func main() {
	godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Default()
	if path := os.Getenv("DCF_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("load config")
		}
		cfg = loaded
	}

	ctx := context.Background()
	pool, err := store.Connect(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if pool != nil {
		defer pool.Close()
		log.Info().Msg("financials cache backed by Postgres")
	} else {
		log.Info().Msg("DATABASE_URL not set, using file cache")
	}

	var provider ingest.Provider = &store.CachingProvider{
		Inner: ingest.NewYahooClient(),
		Cache: store.NewCache(pool, ""),
		TTL:   24 * time.Hour,
	}
	apivaluation.InitHandler(provider, cfg)

	http.HandleFunc("/api/valuation/dcf", apivaluation.HandleDCF)
	http.HandleFunc("/api/valuation/synergy", apivaluation.HandleSynergy)
	http.HandleFunc("/api/valuation/report", apivaluation.HandleReport)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	log.Info().Str("addr", addr).Msg("API server starting")
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
