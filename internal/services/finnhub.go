package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"stockintel/internal/config"
	"stockintel/internal/models"
)

// FinnhubClient normalizes the Finnhub API into the shared model shapes.
// It covers quotes, company news, symbol search/profile, and the earnings
// calendar.
type FinnhubClient struct {
	apiClient
	apiKey  string
	baseURL string
	cache   Cache
	cfg     config.Config
}

func NewFinnhubClient(cfg config.Config, cache Cache) *FinnhubClient {
	return &FinnhubClient{
		apiClient: newAPIClient("finnhub", cfg.RequestTimeout, cfg.ProviderRate, cfg.ProviderBurst),
		apiKey:    cfg.FinnhubAPIKey,
		baseURL:   cfg.FinnhubBaseURL,
		cache:     cache,
		cfg:       cfg,
	}
}

func (c *FinnhubClient) Name() string { return "finnhub" }

func (c *FinnhubClient) params(kv ...string) url.Values {
	v := url.Values{}
	v.Set("token", c.apiKey)
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return v
}

func (c *FinnhubClient) GetQuote(ctx context.Context, ticker string) (*models.PriceSnapshot, error) {
	key := cacheKey("quote", "finnhub", ticker)
	var cached models.PriceSnapshot
	if cacheGetJSON(ctx, c.cache, key, &cached) {
		return &cached, nil
	}

	var raw struct {
		Current       float64 `json:"c"`
		Change        float64 `json:"d"`
		ChangePercent float64 `json:"dp"`
		High          float64 `json:"h"`
		Low           float64 `json:"l"`
		Open          float64 `json:"o"`
		PreviousClose float64 `json:"pc"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/quote", c.params("symbol", ticker), &raw); err != nil {
		return nil, err
	}
	if raw.Current == 0 && raw.PreviousClose == 0 {
		return nil, permanent(fmt.Errorf("finnhub: empty quote for %s", ticker))
	}

	snap := &models.PriceSnapshot{
		Ticker:         ticker,
		CurrentPrice:   raw.Current,
		PreviousClose:  raw.PreviousClose,
		Change:         raw.Change,
		ChangePercent:  raw.ChangePercent,
		HighPriceToday: raw.High,
		LowPriceToday:  raw.Low,
		OpenPriceToday: raw.Open,
		DataSource:     "finnhub",
	}
	cacheSetJSON(ctx, c.cache, key, snap, c.cfg.CacheTTLQuote)
	return snap, nil
}

func (c *FinnhubClient) SearchTicker(ctx context.Context, companyName string) (string, error) {
	key := cacheKey("search", "finnhub", companyName)
	var cached string
	if cacheGetJSON(ctx, c.cache, key, &cached) {
		return cached, nil
	}

	var raw struct {
		Result []struct {
			Symbol string `json:"symbol"`
		} `json:"result"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/search", c.params("q", companyName), &raw); err != nil {
		return "", err
	}
	if len(raw.Result) == 0 {
		return "", nil
	}
	symbol := raw.Result[0].Symbol
	cacheSetJSON(ctx, c.cache, key, symbol, c.cfg.CacheTTLProfile)
	return symbol, nil
}

func (c *FinnhubClient) GetProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	key := cacheKey("profile", "finnhub", ticker)
	var cached models.CompanyProfile
	if cacheGetJSON(ctx, c.cache, key, &cached) {
		return &cached, nil
	}

	var raw struct {
		Name      string  `json:"name"`
		Ticker    string  `json:"ticker"`
		Exchange  string  `json:"exchange"`
		Industry  string  `json:"finnhubIndustry"`
		MarketCap float64 `json:"marketCapitalization"`
		WebURL    string  `json:"weburl"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/stock/profile2", c.params("symbol", ticker), &raw); err != nil {
		return nil, err
	}
	if raw.Name == "" && raw.Ticker == "" {
		return nil, nil
	}

	profile := &models.CompanyProfile{
		Name:      raw.Name,
		Ticker:    raw.Ticker,
		Exchange:  raw.Exchange,
		Industry:  raw.Industry,
		MarketCap: raw.MarketCap,
		WebURL:    raw.WebURL,
	}
	cacheSetJSON(ctx, c.cache, key, profile, c.cfg.CacheTTLProfile)
	return profile, nil
}

func (c *FinnhubClient) GetCompanyNews(ctx context.Context, ticker string, daysBack int) ([]models.NewsItem, error) {
	key := cacheKey("news", "finnhub", ticker, fmt.Sprintf("%d", daysBack))
	var cached []models.NewsItem
	if cacheGetJSON(ctx, c.cache, key, &cached) {
		return cached, nil
	}

	end := time.Now()
	start := end.AddDate(0, 0, -daysBack)
	var raw []struct {
		Headline string `json:"headline"`
		Summary  string `json:"summary"`
		Source   string `json:"source"`
		Datetime int64  `json:"datetime"`
		URL      string `json:"url"`
	}
	p := c.params("symbol", ticker,
		"from", start.Format("2006-01-02"),
		"to", end.Format("2006-01-02"))
	if err := c.getJSON(ctx, c.baseURL+"/company-news", p, &raw); err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(raw))
	for _, a := range raw {
		if a.Headline == "" {
			continue
		}
		items = append(items, models.NewsItem{
			Title:       a.Headline,
			Summary:     a.Summary,
			Source:      a.Source,
			PublishedAt: time.Unix(a.Datetime, 0).UTC(),
			URL:         a.URL,
		})
	}
	cacheSetJSON(ctx, c.cache, key, items, c.cfg.CacheTTLNews)
	return items, nil
}

func (c *FinnhubClient) GetEarningsCalendar(ctx context.Context, ticker string) ([]models.EarningsEvent, error) {
	key := cacheKey("earnings", "finnhub", ticker)
	var cached []models.EarningsEvent
	if cacheGetJSON(ctx, c.cache, key, &cached) {
		return cached, nil
	}

	now := time.Now()
	var raw struct {
		EarningsCalendar []struct {
			Symbol      string  `json:"symbol"`
			Date        string  `json:"date"`
			EPSEstimate float64 `json:"epsEstimate"`
			EPSActual   float64 `json:"epsActual"`
			Hour        string  `json:"hour"`
		} `json:"earningsCalendar"`
	}
	p := c.params("symbol", ticker,
		"from", now.AddDate(0, 0, -7).Format("2006-01-02"),
		"to", now.AddDate(0, 0, 30).Format("2006-01-02"))
	if err := c.getJSON(ctx, c.baseURL+"/calendar/earnings", p, &raw); err != nil {
		return nil, err
	}

	events := make([]models.EarningsEvent, 0, len(raw.EarningsCalendar))
	for _, e := range raw.EarningsCalendar {
		events = append(events, models.EarningsEvent{
			Ticker:      e.Symbol,
			Date:        e.Date,
			EPSEstimate: e.EPSEstimate,
			EPSActual:   e.EPSActual,
			Hour:        e.Hour,
		})
	}
	cacheSetJSON(ctx, c.cache, key, events, c.cfg.CacheTTLCalendar)
	return events, nil
}
