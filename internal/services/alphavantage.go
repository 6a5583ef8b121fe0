package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"stockintel/internal/config"
	"stockintel/internal/models"
)

// AlphaVantageClient covers the quote and historical-change capabilities.
// Historical lookups pick the series granularity from the requested window:
// daily up to a year, weekly up to two, monthly beyond.
type AlphaVantageClient struct {
	apiClient
	apiKey  string
	baseURL string
	cache   Cache
	cfg     config.Config
}

func NewAlphaVantageClient(cfg config.Config, cache Cache) *AlphaVantageClient {
	return &AlphaVantageClient{
		apiClient: newAPIClient("alphavantage", cfg.RequestTimeout, cfg.ProviderRate, cfg.ProviderBurst),
		apiKey:    cfg.AlphaVantageKey,
		baseURL:   cfg.AlphaVantageURL,
		cache:     cache,
		cfg:       cfg,
	}
}

func (c *AlphaVantageClient) Name() string { return "alphavantage" }

type avSeriesPayload struct {
	Daily       map[string]avBar `json:"Time Series (Daily)"`
	Weekly      map[string]avBar `json:"Weekly Time Series"`
	Monthly     map[string]avBar `json:"Monthly Time Series"`
	Information string           `json:"Information"`
	ErrorMsg    string           `json:"Error Message"`
}

type avBar struct {
	Open  string `json:"1. open"`
	High  string `json:"2. high"`
	Low   string `json:"3. low"`
	Close string `json:"4. close"`
}

func (c *AlphaVantageClient) GetQuote(ctx context.Context, ticker string) (*models.PriceSnapshot, error) {
	key := cacheKey("quote", "alphavantage", ticker)
	var cached models.PriceSnapshot
	if cacheGetJSON(ctx, c.cache, key, &cached) {
		return &cached, nil
	}

	var raw struct {
		Quote map[string]string `json:"Global Quote"`
	}
	p := url.Values{}
	p.Set("function", "GLOBAL_QUOTE")
	p.Set("symbol", ticker)
	p.Set("apikey", c.apiKey)
	if err := c.getJSON(ctx, c.baseURL, p, &raw); err != nil {
		return nil, err
	}
	if len(raw.Quote) == 0 {
		return nil, permanent(fmt.Errorf("alphavantage: no quote for %s", ticker))
	}

	f := func(k string) float64 {
		v, _ := strconv.ParseFloat(raw.Quote[k], 64)
		return v
	}
	snap := &models.PriceSnapshot{
		Ticker:         ticker,
		CurrentPrice:   f("05. price"),
		PreviousClose:  f("08. previous close"),
		Change:         f("09. change"),
		HighPriceToday: f("03. high"),
		LowPriceToday:  f("04. low"),
		OpenPriceToday: f("02. open"),
		DataSource:     "alphavantage",
	}
	if pct := raw.Quote["10. change percent"]; pct != "" {
		v, _ := strconv.ParseFloat(trimPercent(pct), 64)
		snap.ChangePercent = v
	}
	if vol, err := strconv.ParseInt(raw.Quote["06. volume"], 10, 64); err == nil {
		snap.Volume = &vol
	}
	cacheSetJSON(ctx, c.cache, key, snap, c.cfg.CacheTTLQuote)
	return snap, nil
}

func trimPercent(s string) string {
	for len(s) > 0 && s[len(s)-1] == '%' {
		s = s[:len(s)-1]
	}
	return s
}

func (c *AlphaVantageClient) GetHistorical(ctx context.Context, ticker string, daysAgo int) (*models.HistoricalChange, error) {
	if daysAgo <= 0 {
		return nil, nil
	}
	key := cacheKey("history", "alphavantage", ticker, strconv.Itoa(daysAgo))
	var cached models.HistoricalChange
	if cacheGetJSON(ctx, c.cache, key, &cached) {
		return &cached, nil
	}

	var function, outputsize string
	switch {
	case daysAgo <= 7:
		function, outputsize = "TIME_SERIES_DAILY", "compact"
	case daysAgo <= 365:
		function, outputsize = "TIME_SERIES_DAILY", "full"
	case daysAgo <= 365*2:
		function = "TIME_SERIES_WEEKLY"
	default:
		function = "TIME_SERIES_MONTHLY"
	}

	p := url.Values{}
	p.Set("function", function)
	p.Set("symbol", ticker)
	p.Set("apikey", c.apiKey)
	if outputsize != "" {
		p.Set("outputsize", outputsize)
	}
	var payload avSeriesPayload
	if err := c.getJSON(ctx, c.baseURL, p, &payload); err != nil {
		return nil, err
	}

	series := payload.Daily
	if series == nil {
		series = payload.Weekly
	}
	if series == nil {
		series = payload.Monthly
	}
	if len(series) == 0 {
		return nil, permanent(fmt.Errorf("alphavantage: no time series for %s: %s", ticker, firstNonEmpty(payload.ErrorMsg, payload.Information, "empty payload")))
	}

	bars := make([]bar, 0, len(series))
	for date, b := range series {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		closeP, _ := strconv.ParseFloat(b.Close, 64)
		high, _ := strconv.ParseFloat(b.High, 64)
		low, _ := strconv.ParseFloat(b.Low, 64)
		bars = append(bars, bar{Date: d, Close: closeP, High: high, Low: low})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	change := historicalChangeFromBars(bars, daysAgo, "alphavantage")
	if change == nil {
		return nil, permanent(fmt.Errorf("alphavantage: insufficient data points for %s over %d days", ticker, daysAgo))
	}
	cacheSetJSON(ctx, c.cache, key, change, c.cfg.CacheTTLHistory)
	return change, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
