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

// TwelveDataClient is the second-ranked historical-change provider. It only
// serves daily bars, which is enough for the fallback role.
type TwelveDataClient struct {
	apiClient
	apiKey  string
	baseURL string
	cache   Cache
	cfg     config.Config
}

func NewTwelveDataClient(cfg config.Config, cache Cache) *TwelveDataClient {
	return &TwelveDataClient{
		apiClient: newAPIClient("twelvedata", cfg.RequestTimeout, cfg.ProviderRate, cfg.ProviderBurst),
		apiKey:    cfg.TwelveDataKey,
		baseURL:   cfg.TwelveDataURL,
		cache:     cache,
		cfg:       cfg,
	}
}

func (c *TwelveDataClient) Name() string { return "twelvedata" }

func (c *TwelveDataClient) GetHistorical(ctx context.Context, ticker string, daysAgo int) (*models.HistoricalChange, error) {
	if daysAgo <= 0 {
		return nil, nil
	}
	key := cacheKey("history", "twelvedata", ticker, strconv.Itoa(daysAgo))
	var cached models.HistoricalChange
	if cacheGetJSON(ctx, c.cache, key, &cached) {
		return &cached, nil
	}

	var raw struct {
		Values []struct {
			Datetime string `json:"datetime"`
			High     string `json:"high"`
			Low      string `json:"low"`
			Close    string `json:"close"`
		} `json:"values"`
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	p := url.Values{}
	p.Set("symbol", ticker)
	p.Set("interval", "1day")
	p.Set("outputsize", strconv.Itoa(daysAgo+10))
	p.Set("apikey", c.apiKey)
	if err := c.getJSON(ctx, c.baseURL+"/time_series", p, &raw); err != nil {
		return nil, err
	}
	if raw.Status == "error" || len(raw.Values) == 0 {
		return nil, permanent(fmt.Errorf("twelvedata: no series for %s: %s", ticker, raw.Message))
	}

	bars := make([]bar, 0, len(raw.Values))
	for _, v := range raw.Values {
		// Datetime may carry a time component on intraday plans.
		ds := v.Datetime
		if len(ds) > 10 {
			ds = ds[:10]
		}
		d, err := time.Parse("2006-01-02", ds)
		if err != nil {
			continue
		}
		closeP, _ := strconv.ParseFloat(v.Close, 64)
		high, _ := strconv.ParseFloat(v.High, 64)
		low, _ := strconv.ParseFloat(v.Low, 64)
		bars = append(bars, bar{Date: d, Close: closeP, High: high, Low: low})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	change := historicalChangeFromBars(bars, daysAgo, "twelvedata")
	if change == nil {
		return nil, permanent(fmt.Errorf("twelvedata: insufficient data points for %s over %d days", ticker, daysAgo))
	}
	cacheSetJSON(ctx, c.cache, key, change, c.cfg.CacheTTLHistory)
	return change, nil
}
