package services

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"stockintel/internal/config"
	"stockintel/internal/models"
)

// MarketauxClient is the secondary news source merged alongside Finnhub.
type MarketauxClient struct {
	apiClient
	apiKey  string
	baseURL string
	cache   Cache
	cfg     config.Config
}

func NewMarketauxClient(cfg config.Config, cache Cache) *MarketauxClient {
	return &MarketauxClient{
		apiClient: newAPIClient("marketaux", cfg.RequestTimeout, cfg.ProviderRate, cfg.ProviderBurst),
		apiKey:    cfg.MarketauxKey,
		baseURL:   cfg.MarketauxBaseURL,
		cache:     cache,
		cfg:       cfg,
	}
}

func (c *MarketauxClient) Name() string { return "marketaux" }

func (c *MarketauxClient) GetCompanyNews(ctx context.Context, ticker string, daysBack int) ([]models.NewsItem, error) {
	key := cacheKey("news", "marketaux", ticker, strconv.Itoa(daysBack))
	var cached []models.NewsItem
	if cacheGetJSON(ctx, c.cache, key, &cached) {
		return cached, nil
	}

	var raw struct {
		Data []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Source      string `json:"source"`
			PublishedAt string `json:"published_at"`
			URL         string `json:"url"`
			Entities    []struct {
				Sentiment float64 `json:"sentiment_score"`
			} `json:"entities"`
		} `json:"data"`
	}
	p := url.Values{}
	p.Set("symbols", ticker)
	p.Set("published_after", time.Now().AddDate(0, 0, -daysBack).Format("2006-01-02"))
	p.Set("language", "en")
	p.Set("api_token", c.apiKey)
	if err := c.getJSON(ctx, c.baseURL+"/news/all", p, &raw); err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(raw.Data))
	for _, a := range raw.Data {
		if a.Title == "" {
			continue
		}
		published, err := time.Parse("2006-01-02T15:04:05.000000Z", a.PublishedAt)
		if err != nil {
			if published, err = time.Parse(time.RFC3339, a.PublishedAt); err != nil {
				published = time.Now().UTC()
			}
		}
		item := models.NewsItem{
			Title:       a.Title,
			Summary:     a.Description,
			Source:      firstNonEmpty(a.Source, "marketaux"),
			PublishedAt: published.UTC(),
			URL:         a.URL,
		}
		if len(a.Entities) > 0 {
			item.Sentiment = sentimentFromScore(a.Entities[0].Sentiment)
		}
		items = append(items, item)
	}
	cacheSetJSON(ctx, c.cache, key, items, c.cfg.CacheTTLNews)
	return items, nil
}

func sentimentFromScore(score float64) string {
	switch {
	case score > 0.15:
		return models.SentimentPositive
	case score < -0.15:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
