package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"dcf_valuation/pkg/models"
)

const (
	defaultQuoteBaseURL = "https://query1.finance.yahoo.com"
	defaultPageBaseURL  = "https://finance.yahoo.com"

	quoteSummaryModules = "incomeStatementHistory,cashflowStatementHistory,defaultKeyStatistics,financialData,summaryDetail,price"

	// Providers reject the default Go user agent.
	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Series lengths requested from the provider (most-recent-first on the wire).
const (
	incomeStatementYears = 4
	taxProvisionYears    = 3
	cashFlowYears        = 4
)

// YahooClient fetches statements and market data from the Yahoo Finance
// quoteSummary API, plus the analyst 5-year growth estimate scraped from the
// analysis page. It implements Provider.
type YahooClient struct {
	httpClient   *http.Client
	quoteBaseURL string
	pageBaseURL  string
}

// NewYahooClient builds a client with sane timeouts.
func NewYahooClient() *YahooClient {
	return &YahooClient{
		httpClient:   &http.Client{Timeout: 20 * time.Second},
		quoteBaseURL: defaultQuoteBaseURL,
		pageBaseURL:  defaultPageBaseURL,
	}
}

// Wire format: every numeric shows up as {"raw": 123.4, "fmt": "123.4"}.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v *rawValue) value() (float64, bool) {
	if v == nil || v.Raw == nil {
		return 0, false
	}
	return *v.Raw, true
}

func (v *rawValue) or(def float64) float64 {
	if val, ok := v.value(); ok {
		return val
	}
	return def
}

type incomeStatementEntry struct {
	TotalRevenue     *rawValue `json:"totalRevenue"`
	EBIT             *rawValue `json:"ebit"`
	IncomeTaxExpense *rawValue `json:"incomeTaxExpense"`
}

type cashFlowEntry struct {
	Depreciation           *rawValue `json:"depreciation"`
	CapitalExpenditures    *rawValue `json:"capitalExpenditures"`
	ChangeInWorkingCapital *rawValue `json:"changeInWorkingCapital"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			IncomeStatementHistory *struct {
				Statements []incomeStatementEntry `json:"incomeStatementHistory"`
			} `json:"incomeStatementHistory"`
			CashflowStatementHistory *struct {
				Statements []cashFlowEntry `json:"cashflowStatements"`
			} `json:"cashflowStatementHistory"`
			DefaultKeyStatistics *struct {
				Beta          *rawValue `json:"beta"`
				SharesOutst   *rawValue `json:"sharesOutstanding"`
				DilutedShares *rawValue `json:"weightedAverageShsOutDil"`
			} `json:"defaultKeyStatistics"`
			FinancialData *struct {
				TotalDebt *rawValue `json:"totalDebt"`
				TotalCash *rawValue `json:"totalCash"`
			} `json:"financialData"`
			SummaryDetail *struct {
				PreviousClose *rawValue `json:"previousClose"`
			} `json:"summaryDetail"`
			Price *struct {
				MarketCap *rawValue `json:"marketCap"`
			} `json:"price"`
		} `json:"result"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Fetch implements Provider. Optional market fields degrade to the
// documented defaults; a revenue history shorter than two periods is a
// DataError.
func (c *YahooClient) Fetch(ctx context.Context, ticker string) (models.HistoricalFinancials, models.MarketSnapshot, error) {
	var hist models.HistoricalFinancials
	var market models.MarketSnapshot

	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s", c.quoteBaseURL, ticker, quoteSummaryModules)
	body, err := c.get(ctx, url)
	if err != nil {
		return hist, market, fmt.Errorf("quote summary for %s: %w", ticker, err)
	}

	var resp quoteSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return hist, market, fmt.Errorf("decode quote summary for %s: %w", ticker, err)
	}
	if resp.QuoteSummary.Error != nil {
		return hist, market, &models.DataError{Ticker: ticker, Field: "quote_summary", Reason: resp.QuoteSummary.Error.Description}
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return hist, market, &models.DataError{Ticker: ticker, Field: "quote_summary", Reason: "empty result"}
	}
	res := resp.QuoteSummary.Result[0]

	hist.Ticker = ticker

	// Income statement: wire order is newest-first, the model wants
	// oldest-first.
	if res.IncomeStatementHistory != nil {
		stmts := res.IncomeStatementHistory.Statements
		for i := min(len(stmts), incomeStatementYears) - 1; i >= 0; i-- {
			if v, ok := stmts[i].TotalRevenue.value(); ok {
				hist.Revenue = append(hist.Revenue, v)
			}
			if v, ok := stmts[i].EBIT.value(); ok {
				hist.EBIT = append(hist.EBIT, v)
			}
		}
		for i := min(len(stmts), taxProvisionYears) - 1; i >= 0; i-- {
			if v, ok := stmts[i].IncomeTaxExpense.value(); ok {
				hist.TaxProvision = append(hist.TaxProvision, v)
			}
		}
	}
	if len(hist.Revenue) < 2 {
		return hist, market, &models.DataError{
			Ticker: ticker,
			Field:  "revenue",
			Reason: fmt.Sprintf("provider returned %d revenue periods, need at least 2", len(hist.Revenue)),
		}
	}

	if res.CashflowStatementHistory != nil {
		stmts := res.CashflowStatementHistory.Statements
		for i := min(len(stmts), cashFlowYears) - 1; i >= 0; i-- {
			if v, ok := stmts[i].Depreciation.value(); ok {
				hist.DepreciationAmortization = append(hist.DepreciationAmortization, v)
			}
			if v, ok := stmts[i].CapitalExpenditures.value(); ok {
				hist.CapitalExpenditure = append(hist.CapitalExpenditure, v)
			}
			if v, ok := stmts[i].ChangeInWorkingCapital.value(); ok {
				hist.ChangeInWorkingCapital = append(hist.ChangeInWorkingCapital, v)
			}
		}
	}

	market.Beta = DefaultBeta
	market.SharesOutstanding = DefaultShares
	market.Price = math.NaN()
	if ks := res.DefaultKeyStatistics; ks != nil {
		market.Beta = ks.Beta.or(DefaultBeta)
		market.SharesOutstanding = ks.SharesOutst.or(DefaultShares)
		market.DilutedShares = ks.DilutedShares.or(0)
	}
	if fd := res.FinancialData; fd != nil {
		market.TotalDebt = fd.TotalDebt.or(0)
		market.TotalCash = fd.TotalCash.or(0)
	}
	if res.Price != nil {
		market.MarketCap = res.Price.MarketCap.or(0)
	}
	if sd := res.SummaryDetail; sd != nil {
		if v, ok := sd.PreviousClose.value(); ok {
			market.Price = v
		}
	}

	// Best-effort enrichment; a missing estimate falls back downstream.
	if growth, err := c.fetchAnalystGrowth(ctx, ticker); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("analyst growth estimate unavailable")
	} else {
		market.AnalystGrowth5Y = growth
	}

	return hist, market, nil
}

// fetchAnalystGrowth scrapes the "Next 5 Years" growth estimate row off the
// analysis page.
func (c *YahooClient) fetchAnalystGrowth(ctx context.Context, ticker string) (string, error) {
	url := fmt.Sprintf("%s/quote/%s/analysis", c.pageBaseURL, ticker)
	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("parse analysis page: %w", err)
	}

	var estimate string
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return true
		}
		if strings.Contains(cells.First().Text(), "Next 5 Years") {
			estimate = strings.TrimSpace(cells.Eq(1).Text())
			return false
		}
		return true
	})
	if estimate == "" {
		return "", fmt.Errorf("no growth estimate row on analysis page")
	}
	return estimate, nil
}

func (c *YahooClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
