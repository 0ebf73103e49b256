package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"SignalScanner/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
	now     func() time.Time
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		now: time.Now,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// rawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

type yahooSummary struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				ShortName string `json:"shortName"`
				LongName  string `json:"longName"`
			} `json:"price"`
			SummaryProfile *struct {
				Sector              string `json:"sector"`
				LongBusinessSummary string `json:"longBusinessSummary"`
			} `json:"summaryProfile"`
			SummaryDetail *struct {
				TrailingPE    rawValue `json:"trailingPE"`
				DividendYield rawValue `json:"dividendYield"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics *struct {
				PriceToBook rawValue `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
			BalanceSheetHistory *struct {
				Statements []struct {
					TotalStockholderEquity rawValue `json:"totalStockholderEquity"`
					TotalAssets            rawValue `json:"totalAssets"`
				} `json:"balanceSheetStatements"`
			} `json:"balanceSheetHistory"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

type yahooSearch struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func (f *YahooFetcher) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := fmt.Sprintf("%s%s?%s", strings.TrimRight(f.BaseURL, "/"), path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

// FetchHistory returns daily bars covering the lookback window, oldest first.
func (f *YahooFetcher) FetchHistory(ctx context.Context, symbol string, lookback time.Duration) (*model.PriceSeries, error) {
	now := f.now()
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", fmt.Sprint(now.Add(-lookback).Unix()))
	q.Set("period2", fmt.Sprint(now.Unix()))

	var chart yahooChart
	if err := f.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), q, &chart); err != nil {
		return nil, unavailable(f.Name(), symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, unavailable(f.Name(), symbol, fmt.Errorf("api error: %s", chart.Chart.Error.Description))
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, unavailable(f.Name(), symbol, fmt.Errorf("no data returned"))
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	at := func(s []*float64, i int) *float64 {
		if i < len(s) {
			return s[i]
		}
		return nil
	}

	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == nil || *c == 0 {
			continue // skip null bars (holidays etc.)
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   val(at(quote.Open, i)),
			High:   val(at(quote.High, i)),
			Low:    val(at(quote.Low, i)),
			Close:  *c,
			Volume: val(at(quote.Volume, i)),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: now}, nil
}

// FetchCompany returns the fundamentals bundle. Absent fields stay zero and
// are listed in Company.Missing.
func (f *YahooFetcher) FetchCompany(ctx context.Context, symbol string) (model.Company, error) {
	q := url.Values{}
	q.Set("modules", "price,summaryProfile,summaryDetail,defaultKeyStatistics,balanceSheetHistory")

	var s yahooSummary
	if err := f.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), q, &s); err != nil {
		return model.Company{}, unavailable(f.Name(), symbol, err)
	}
	if s.QuoteSummary.Error != nil {
		return model.Company{}, unavailable(f.Name(), symbol, fmt.Errorf("api error: %s", s.QuoteSummary.Error.Description))
	}
	if len(s.QuoteSummary.Result) == 0 {
		return model.Company{}, unavailable(f.Name(), symbol, fmt.Errorf("no data returned"))
	}

	r := s.QuoteSummary.Result[0]
	c := model.Company{Symbol: symbol}
	num := func(name string, v rawValue) float64 {
		if v.Raw == nil {
			c.Missing = append(c.Missing, name)
			return 0
		}
		return *v.Raw
	}

	if r.Price != nil {
		c.ShortName = r.Price.ShortName
		c.LongName = r.Price.LongName
	}
	if r.SummaryProfile != nil {
		c.Sector = r.SummaryProfile.Sector
		c.BusinessSummary = r.SummaryProfile.LongBusinessSummary
	}

	var pe, dy rawValue
	if r.SummaryDetail != nil {
		pe, dy = r.SummaryDetail.TrailingPE, r.SummaryDetail.DividendYield
	}
	c.TrailingPE = num("trailingPE", pe)
	c.DividendYield = num("dividendYield", dy) * 100 // Yahoo reports a fraction

	var pb rawValue
	if r.DefaultKeyStatistics != nil {
		pb = r.DefaultKeyStatistics.PriceToBook
	}
	c.PriceToBook = num("priceToBook", pb)

	var equity, assets rawValue
	if r.BalanceSheetHistory != nil && len(r.BalanceSheetHistory.Statements) > 0 {
		latest := r.BalanceSheetHistory.Statements[0]
		equity, assets = latest.TotalStockholderEquity, latest.TotalAssets
	}
	c.Equity = num("equity", equity)
	c.TotalAssets = num("totalAssets", assets)

	return c, nil
}

// FetchNews returns recent headlines, newest first.
func (f *YahooFetcher) FetchNews(ctx context.Context, symbol string) ([]model.Headline, error) {
	q := url.Values{}
	q.Set("q", symbol)
	q.Set("quotesCount", "0")
	q.Set("newsCount", "5")

	var s yahooSearch
	if err := f.get(ctx, "/v1/finance/search", q, &s); err != nil {
		return nil, unavailable(f.Name(), symbol, err)
	}
	out := make([]model.Headline, 0, len(s.News))
	for _, n := range s.News {
		out = append(out, model.Headline{
			Title:       n.Title,
			Publisher:   n.Publisher,
			PublishedAt: time.Unix(n.ProviderPublishTime, 0),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out, nil
}
