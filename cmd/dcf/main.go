package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/ingest"
	"dcf_valuation/pkg/core/report"
	"dcf_valuation/pkg/core/store"
	"dcf_valuation/pkg/core/synergy"
	"dcf_valuation/pkg/core/valuation"
)

func main() {
	ticker := flag.String("ticker", "", "ticker symbol for the company (e.g. AAPL)")
	tgr := flag.Float64("tgr", 0.03, "terminal growth rate (capped at the configured ceiling)")
	configPath := flag.String("config", "", "optional YAML config overriding model defaults")
	scenarioPath := flag.String("scenario", "", "optional HJSON synergy scenario to apply")
	cacheTTL := flag.Duration("cache-ttl", 24*time.Hour, "max age of cached financials")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if *ticker == "" {
		fmt.Fprintln(os.Stderr, "usage: dcf -ticker AAPL [-tgr 0.03] [-scenario synergies.hjson]")
		os.Exit(2)
	}

	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
		cfg = loaded
	}

	ctx := context.Background()

	// Provider: Yahoo behind the financials cache (DB when DATABASE_URL is
	// set, local files otherwise).
	pool, err := store.Connect(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if pool != nil {
		defer pool.Close()
	}
	var provider ingest.Provider = &store.CachingProvider{
		Inner: ingest.NewYahooClient(),
		Cache: store.NewCache(pool, ""),
		TTL:   *cacheTTL,
	}

	hist, market, err := provider.Fetch(ctx, strings.ToUpper(*ticker))
	if err != nil {
		log.Fatal().Err(err).Str("ticker", *ticker).Msg("fetch financials")
	}

	engine, err := valuation.NewEngine(hist, market, *tgr, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build valuation")
	}

	report.WriteStandalone(os.Stdout, engine)
	fmt.Println()

	// Back-solve the growth the market is pricing in, then print the model
	// calibrated to it.
	if market.HasPrice() {
		ig, err := engine.FindImpliedGrowth(market.Price)
		if err != nil {
			log.Fatal().Err(err).Msg("solve implied growth")
		}
		fmt.Printf("Implied growth to justify $%.2f: %.2f%%\n\n", market.Price, ig*100)

		if err := engine.Rebuild(ig); err != nil {
			log.Fatal().Err(err).Msg("rebuild at implied growth")
		}
		report.WriteCalibrated(os.Stdout, engine, ig)
		fmt.Println()
	}

	if *scenarioPath != "" {
		runScenario(engine, *scenarioPath)
	}
}

func runScenario(engine *valuation.Engine, path string) {
	in, err := synergy.LoadScenario(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("load scenario")
	}

	base := engine.Snapshot()
	adjusted, err := synergy.NewAdjuster(engine).ApplySynergies(in)
	if err != nil {
		log.Fatal().Err(err).Msg("apply synergies")
	}

	fmt.Println("=== SYNERGY SCENARIO ===")
	fmt.Printf("Cost savings: %.1f%%  Revenue boost: %.1f%%  Phase-in: %d years\n",
		in.CostSavings*100, in.RevenueBoost*100, in.PhaseInYears)
	if in.NewDebtRatio != nil {
		fmt.Printf("New debt ratio: %.0f%%  (WACC %.2f%% -> %.2f%%)\n",
			*in.NewDebtRatio*100, base.WACC*100, adjusted.WACC*100)
	}
	fmt.Printf("Enterprise Value: $%.1fB -> $%.1fB\n",
		base.EnterpriseValue/1e9, adjusted.EnterpriseValue/1e9)
	fmt.Printf("Implied Price:    $%.2f -> $%.2f\n",
		base.ImpliedPrice, adjusted.ImpliedPrice)
}
