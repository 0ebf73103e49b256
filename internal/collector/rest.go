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

// RESTFetcher implements Fetcher against a self-hosted JSON market-data API.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of one daily bar.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// restCompany uses pointers so absent fields can be told apart from zeros.
type restCompany struct {
	ShortName       string   `json:"short_name"`
	LongName        string   `json:"long_name"`
	Sector          string   `json:"sector"`
	BusinessSummary string   `json:"business_summary"`
	TrailingPE      *float64 `json:"trailing_pe"`
	PriceToBook     *float64 `json:"price_to_book"`
	DividendYield   *float64 `json:"dividend_yield"` // percent
	Equity          *float64 `json:"equity"`
	TotalAssets     *float64 `json:"total_assets"`
}

func (f *RESTFetcher) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func (f *RESTFetcher) FetchHistory(ctx context.Context, symbol string, lookback time.Duration) (*model.PriceSeries, error) {
	now := time.Now()
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&from=%d&to=%d",
		f.BaseURL, url.QueryEscape(symbol), now.Add(-lookback).Unix(), now.Unix())

	var raw []restBar
	if err := f.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, unavailable(f.Name(), symbol, err)
	}
	bars := make([]model.OHLCV, len(raw))
	for i, rb := range raw {
		bars[i] = model.OHLCV{
			Time:   time.Unix(rb.Timestamp, 0),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return &model.PriceSeries{Symbol: symbol, Bars: bars, FetchedAt: now}, nil
}

func (f *RESTFetcher) FetchCompany(ctx context.Context, symbol string) (model.Company, error) {
	endpoint := fmt.Sprintf("%s/api/v1/company?symbol=%s", f.BaseURL, url.QueryEscape(symbol))
	var rc restCompany
	if err := f.getJSON(ctx, endpoint, &rc); err != nil {
		return model.Company{}, unavailable(f.Name(), symbol, err)
	}

	c := model.Company{
		Symbol:          symbol,
		ShortName:       rc.ShortName,
		LongName:        rc.LongName,
		Sector:          rc.Sector,
		BusinessSummary: rc.BusinessSummary,
	}
	for _, field := range []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"trailingPE", rc.TrailingPE, &c.TrailingPE},
		{"priceToBook", rc.PriceToBook, &c.PriceToBook},
		{"dividendYield", rc.DividendYield, &c.DividendYield},
		{"equity", rc.Equity, &c.Equity},
		{"totalAssets", rc.TotalAssets, &c.TotalAssets},
	} {
		if field.src == nil {
			c.Missing = append(c.Missing, field.name)
			continue
		}
		*field.dst = *field.src
	}
	return c, nil
}

func (f *RESTFetcher) FetchNews(ctx context.Context, symbol string) ([]model.Headline, error) {
	endpoint := fmt.Sprintf("%s/api/v1/news?symbol=%s&limit=5", f.BaseURL, url.QueryEscape(symbol))
	var news []model.Headline
	if err := f.getJSON(ctx, endpoint, &news); err != nil {
		return nil, unavailable(f.Name(), symbol, err)
	}
	sort.SliceStable(news, func(i, j int) bool { return news[i].PublishedAt.After(news[j].PublishedAt) })
	return news, nil
}
