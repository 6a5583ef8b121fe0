package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"stockintel/internal/models"
)

// FetchResult carries whatever the parallel fetch managed to collect.
// Any field may be nil/empty when every provider for that capability failed.
type FetchResult struct {
	Price      *models.PriceSnapshot
	News       []models.NewsItem
	Historical *models.HistoricalChange
}

// FetchCoordinator fans out the per-capability provider chains concurrently
// and gathers partial results. A capability whose providers all fail leaves
// its slot empty rather than failing the whole fetch.
type FetchCoordinator struct {
	quotes     []QuoteSource
	histories  []HistorySource
	newsFeeds  []NewsSource
	maxNews    int
	newsWindow int
}

func NewFetchCoordinator(
	quotes []QuoteSource,
	histories []HistorySource,
	newsFeeds []NewsSource,
	maxNews, newsDaysBack int,
) *FetchCoordinator {
	return &FetchCoordinator{
		quotes:     quotes,
		histories:  histories,
		newsFeeds:  newsFeeds,
		maxNews:    maxNews,
		newsWindow: newsDaysBack,
	}
}

// Fetch runs the quote, news, and historical lookups concurrently for the
// given ticker. wantHistory controls whether the historical chain runs at
// all; daysAgo sizes its lookback window.
func (f *FetchCoordinator) Fetch(ctx context.Context, ticker string, wantHistory bool, daysAgo int) FetchResult {
	var (
		res FetchResult
		wg  sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer recoverFetch("quote", ticker)
		price, source := ResolveFirst(ctx, "quote", quoteProviders(f.quotes, ticker), func(p *models.PriceSnapshot) bool {
			return p != nil && p.CurrentPrice != 0
		})
		if price != nil {
			price.DataSource = source
			res.Price = price
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer recoverFetch("news", ticker)
		res.News = f.collectNews(ctx, ticker)
	}()

	if wantHistory {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer recoverFetch("historical", ticker)
			hist, source := ResolveFirst(ctx, "historical", historyProviders(f.histories, ticker, daysAgo), validHistorical)
			if hist != nil {
				hist.DataSource = source
				res.Historical = hist
			}
		}()
	}

	wg.Wait()
	return res
}

// collectNews queries every feed, merges the results, and deduplicates
// near-identical headlines keeping the most recently published copy.
func (f *FetchCoordinator) collectNews(ctx context.Context, ticker string) []models.NewsItem {
	var merged []models.NewsItem
	for _, feed := range f.newsFeeds {
		items, err := feed.GetCompanyNews(ctx, ticker, f.newsWindow)
		if err != nil {
			log.Printf("[WARN] news feed %s failed for %s: %v", feed.Name(), ticker, err)
			continue
		}
		merged = append(merged, items...)
	}
	return dedupNews(merged, f.maxNews)
}

func dedupNews(items []models.NewsItem, limit int) []models.NewsItem {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})

	var kept []models.NewsItem
	var keys []string
	for _, item := range items {
		key := normalizeTitle(item.Title)
		if key == "" {
			continue
		}
		dup := false
		for _, seen := range keys {
			if titlesMatch(key, seen) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		keys = append(keys, key)
		kept = append(kept, item)
		if limit > 0 && len(kept) >= limit {
			break
		}
	}
	return kept
}

// normalizeTitle lowercases a headline and strips everything that is not a
// letter or digit, so punctuation and casing differences collapse.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// titlesMatch reports whether two normalized headlines cover the same story:
// one contains the other, or long titles agree on most positions.
func titlesMatch(a, b string) bool {
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	if len(a) <= 15 || len(b) <= 15 {
		return false
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	same := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			same++
		}
	}
	return float64(same)/float64(n) > 0.8
}

// quoteProviders and historyProviders bind the per-request arguments so the
// fallback chain only sees a ranked list of zero-argument calls.
func quoteProviders(sources []QuoteSource, ticker string) []Provider[models.PriceSnapshot] {
	out := make([]Provider[models.PriceSnapshot], 0, len(sources))
	for _, s := range sources {
		s := s
		out = append(out, Provider[models.PriceSnapshot]{
			Name: s.Name(),
			Call: func(ctx context.Context) (*models.PriceSnapshot, error) {
				return s.GetQuote(ctx, ticker)
			},
		})
	}
	return out
}

func historyProviders(sources []HistorySource, ticker string, daysAgo int) []Provider[models.HistoricalChange] {
	out := make([]Provider[models.HistoricalChange], 0, len(sources))
	for _, s := range sources {
		s := s
		out = append(out, Provider[models.HistoricalChange]{
			Name: s.Name(),
			Call: func(ctx context.Context) (*models.HistoricalChange, error) {
				return s.GetHistorical(ctx, ticker, daysAgo)
			},
		})
	}
	return out
}

func recoverFetch(capability, ticker string) {
	if r := recover(); r != nil {
		log.Printf("[ERROR] %s fetch panicked for %s: %v", capability, ticker, r)
	}
}
