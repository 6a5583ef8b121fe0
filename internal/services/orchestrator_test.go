package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockintel/internal/config"
	"stockintel/internal/models"
)

// scriptedGenerator answers the intent prompt and the analysis prompt with
// canned responses, keyed on prompt content.
type scriptedGenerator struct {
	intentJSON   string
	analysisJSON string
	err          error
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if strings.Contains(prompt, "stock-related query") {
		return g.intentJSON, nil
	}
	return g.analysisJSON, nil
}

func testOrchestrator(gen Generator, dir SymbolDirectory, fetcher *FetchCoordinator) *Orchestrator {
	cfg := config.Config{DefaultLookback: 7, MaxNewsItems: 15, NewsDaysBack: 7}
	return NewOrchestrator(cfg, NewIntentExtractor(gen), NewTickerResolver(dir), fetcher, nil, gen)
}

func TestProcessRequestSevenDayAnalysis(t *testing.T) {
	gen := &scriptedGenerator{
		intentJSON: `{"company_name":"Tesla","ticker":"TSLA","intent":"historical_analysis","timeframe":"7 days"}`,
		analysisJSON: `{"analysis_summary":"TSLA declined 3.85% over the week on soft deliveries.",
			"key_factors":["deliveries"],"sentiment":"negative",
			"key_insights":["Watch the next delivery report"],"confidence_score":0.9}`,
	}
	dir := &stubDirectory{
		profiles: map[string]*models.CompanyProfile{
			"TSLA": {Name: "Tesla Inc", Ticker: "TSLA", MarketCap: 800000},
		},
	}
	fetcher := NewFetchCoordinator(
		[]QuoteSource{&stubQuoteSource{name: "finnhub", quote: &models.PriceSnapshot{
			Ticker: "TSLA", CurrentPrice: 250, PreviousClose: 245, Change: 5, ChangePercent: 2.04,
		}}},
		[]HistorySource{&stubHistorySource{name: "alphavantage", hist: &models.HistoricalChange{
			Period: "7 days", StartDate: "2026-03-01", EndDate: "2026-03-08",
			StartPrice: 260, EndPrice: 250, Change: -10, ChangePercent: -3.85,
			PeriodHigh: 262, PeriodLow: 248, DataPoints: 6,
		}}},
		nil,
		15, 7,
	)

	result := testOrchestrator(gen, dir, fetcher).ProcessRequest(context.Background(), models.AnalysisRequest{
		Query:     "How did TSLA do over the last 7 days?",
		QueryType: models.QueryTypeNaturalLanguage,
	})

	require.NotNil(t, result)
	assert.Equal(t, "TSLA", result.Ticker)
	assert.Equal(t, "Tesla Inc", result.CompanyName)
	assert.Equal(t, models.SentimentNegative, result.Sentiment)
	assert.Equal(t, "7 days", result.Timeframe)
	require.NotNil(t, result.HistoricalChange)
	assert.InDelta(t, -3.85, result.HistoricalChange.ChangePercent, 0.01)
	require.NotNil(t, result.PriceData)
	assert.Equal(t, 250.0, result.PriceData.CurrentPrice)
	require.NotNil(t, result.PriceData.MarketCap)
	assert.Equal(t, 800000.0, *result.PriceData.MarketCap)
	assert.InDelta(t, 0.9, result.ConfidenceScore, 0.0001)
}

func TestProcessRequestUnknownTicker(t *testing.T) {
	gen := &scriptedGenerator{intentJSON: `{"company_name":null,"ticker":null,"intent":"general_query","timeframe":"recent"}`}
	fetcher := NewFetchCoordinator(nil, nil, nil, 15, 7)

	result := testOrchestrator(gen, &stubDirectory{}, fetcher).ProcessRequest(context.Background(), models.AnalysisRequest{
		Query:     "what is the meaning of life",
		QueryType: models.QueryTypeNaturalLanguage,
	})

	require.NotNil(t, result)
	assert.Equal(t, "UNKNOWN", result.Ticker)
	assert.Contains(t, result.Summary, "Could not identify")
}

func TestProcessRequestTickerMismatchShortCircuits(t *testing.T) {
	gen := &scriptedGenerator{
		intentJSON:   `{"company_name":"Apple","ticker":"AAPL","intent":"price_check","timeframe":"today"}`,
		analysisJSON: `{"analysis_summary":"should never be used","sentiment":"positive","confidence_score":0.9}`,
	}
	dir := &stubDirectory{
		profiles: map[string]*models.CompanyProfile{
			"AAPL": {Name: "Apple Inc", Ticker: "AAPL"},
		},
	}
	fetcher := NewFetchCoordinator(
		[]QuoteSource{&stubQuoteSource{name: "q", quote: &models.PriceSnapshot{
			Ticker: "MSFT", CurrentPrice: 400, PreviousClose: 395,
		}}},
		nil, nil, 15, 7,
	)

	result := testOrchestrator(gen, dir, fetcher).ProcessRequest(context.Background(), models.AnalysisRequest{
		Query:     "apple price today",
		QueryType: models.QueryTypeNaturalLanguage,
	})

	require.NotNil(t, result)
	assert.Equal(t, "AAPL", result.Ticker)
	assert.Contains(t, result.Summary, "consistency")
	assert.NotContains(t, result.Summary, "should never be used")
}

func TestProcessRequestSynthesizesSameDayChange(t *testing.T) {
	gen := &scriptedGenerator{
		intentJSON:   `{"company_name":"Apple","ticker":"AAPL","intent":"price_check","timeframe":"today"}`,
		analysisJSON: `{"analysis_summary":"AAPL slipped today.","sentiment":"negative","confidence_score":0.7}`,
	}
	dir := &stubDirectory{
		profiles: map[string]*models.CompanyProfile{
			"AAPL": {Name: "Apple Inc", Ticker: "AAPL"},
		},
	}
	fetcher := NewFetchCoordinator(
		[]QuoteSource{&stubQuoteSource{name: "q", quote: &models.PriceSnapshot{
			Ticker: "AAPL", CurrentPrice: 198, PreviousClose: 200,
		}}},
		nil, nil, 15, 7,
	)

	result := testOrchestrator(gen, dir, fetcher).ProcessRequest(context.Background(), models.AnalysisRequest{
		Query:     "why did apple drop today",
		QueryType: models.QueryTypeNaturalLanguage,
	})

	require.NotNil(t, result)
	require.NotNil(t, result.HistoricalChange)
	assert.Equal(t, "today", result.HistoricalChange.Period)
	assert.Equal(t, 200.0, result.HistoricalChange.StartPrice)
	assert.Equal(t, 198.0, result.HistoricalChange.EndPrice)
	assert.InDelta(t, -1.0, result.HistoricalChange.ChangePercent, 0.001)
}

func TestProcessRequestStructuredQuery(t *testing.T) {
	gen := &scriptedGenerator{
		analysisJSON: `{"analysis_summary":"MSFT moved on cloud growth.","sentiment":"positive","confidence_score":0.8}`,
	}
	dir := &stubDirectory{
		profiles: map[string]*models.CompanyProfile{
			"MSFT": {Name: "Microsoft Corp", Ticker: "MSFT"},
		},
	}
	fetcher := NewFetchCoordinator(
		[]QuoteSource{&stubQuoteSource{name: "q", quote: &models.PriceSnapshot{
			Ticker: "MSFT", CurrentPrice: 410, PreviousClose: 405,
		}}},
		[]HistorySource{&stubHistorySource{name: "h", hist: &models.HistoricalChange{
			Period: "7 days", StartDate: "2026-03-01", EndDate: "2026-03-08",
			StartPrice: 400, EndPrice: 410, Change: 10, ChangePercent: 2.5, DataPoints: 5,
		}}},
		nil, 15, 7,
	)

	result := testOrchestrator(gen, dir, fetcher).ProcessRequest(context.Background(), models.AnalysisRequest{
		Query:     `{"ticker":"MSFT","action":"price_change","timeframe":"7d"}`,
		QueryType: models.QueryTypeStructured,
	})

	require.NotNil(t, result)
	assert.Equal(t, "MSFT", result.Ticker)
	assert.Equal(t, "7 days", result.Timeframe)
	require.NotNil(t, result.HistoricalChange)
	assert.InDelta(t, 2.5, result.HistoricalChange.ChangePercent, 0.001)
}

type panickyDirectory struct{}

func (panickyDirectory) SearchTicker(ctx context.Context, companyName string) (string, error) {
	panic("directory exploded")
}

func (panickyDirectory) GetProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	panic("directory exploded")
}

func TestProcessRequestRecoversFromPanic(t *testing.T) {
	gen := &scriptedGenerator{intentJSON: `{"company_name":"Apple","ticker":"AAPL","intent":"price_check","timeframe":"today"}`}
	fetcher := NewFetchCoordinator(nil, nil, nil, 15, 7)

	result := testOrchestrator(gen, panickyDirectory{}, fetcher).ProcessRequest(context.Background(), models.AnalysisRequest{
		Query:     "apple price",
		QueryType: models.QueryTypeNaturalLanguage,
	})

	require.NotNil(t, result)
	assert.Equal(t, "ERROR", result.Ticker)
	assert.Contains(t, result.Summary, "error occurred")
}

func TestProcessRequestDegradesWhenGeneratorFails(t *testing.T) {
	gen := &scriptedGenerator{err: context.DeadlineExceeded}
	dir := &stubDirectory{
		profiles: map[string]*models.CompanyProfile{
			"NVDA": {Name: "Nvidia Corp", Ticker: "NVDA"},
		},
	}
	fetcher := NewFetchCoordinator(
		[]QuoteSource{&stubQuoteSource{name: "q", quote: &models.PriceSnapshot{
			Ticker: "NVDA", CurrentPrice: 900, PreviousClose: 890,
		}}},
		nil, nil, 15, 7,
	)

	result := testOrchestrator(gen, dir, fetcher).ProcessRequest(context.Background(), models.AnalysisRequest{
		Query:     "how is nvidia doing",
		QueryType: models.QueryTypeNaturalLanguage,
	})

	require.NotNil(t, result)
	assert.Equal(t, "NVDA", result.Ticker)
	assert.Equal(t, models.SentimentNeutral, result.Sentiment)
	assert.InDelta(t, fallbackConfidence, result.ConfidenceScore, 0.0001)
	require.NotNil(t, result.PriceData)
}
