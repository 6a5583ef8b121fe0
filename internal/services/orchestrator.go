package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"stockintel/internal/config"
	"stockintel/internal/models"
)

// Orchestrator runs the full request lifecycle: intent extraction, ticker
// resolution, concurrent data fetch, narrative generation, and result
// assembly. Every failure mode degrades into a well-formed AnalysisResult;
// callers never see an error.
type Orchestrator struct {
	cfg       config.Config
	extractor *IntentExtractor
	resolver  *TickerResolver
	fetcher   *FetchCoordinator
	earnings  EarningsSource
	gen       Generator
}

func NewOrchestrator(
	cfg config.Config,
	extractor *IntentExtractor,
	resolver *TickerResolver,
	fetcher *FetchCoordinator,
	earnings EarningsSource,
	gen Generator,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		extractor: extractor,
		resolver:  resolver,
		fetcher:   fetcher,
		earnings:  earnings,
		gen:       gen,
	}
}

// ProcessRequest answers one query. The returned result is always non-nil.
func (o *Orchestrator) ProcessRequest(ctx context.Context, req models.AnalysisRequest) (result *models.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] orchestrator panic for query %q: %v", req.Query, r)
			result = &models.AnalysisResult{
				Ticker:      "ERROR",
				Summary:     fmt.Sprintf("An error occurred while processing your request: %v", r),
				KeyInsights: []string{"Please try again or contact support"},
				Timestamp:   time.Now().UTC(),
			}
		}
	}()

	intent := o.extractIntent(ctx, req)

	resolution := o.resolver.Resolve(ctx, req.Query, intent.CompanyName, intent.Ticker)
	if resolution.Confidence == 0 || resolution.Ticker == "" {
		return &models.AnalysisResult{
			Ticker:      "UNKNOWN",
			Summary:     "Could not identify a valid stock ticker from your query.",
			KeyInsights: []string{"Please specify a company name or stock ticker symbol"},
			Timestamp:   time.Now().UTC(),
		}
	}

	days, matched := ParseTimeframe(intent.Timeframe)
	if !matched && intent.Intent == models.IntentHistoricalAnalysis {
		days = o.cfg.DefaultLookback
	}

	// "today" queries (1 day) skip the historical chain entirely; the
	// same-day change is synthesized from the quote below.
	wantHistory := days > 1
	fetched := o.fetcher.Fetch(ctx, resolution.Ticker, wantHistory, days)

	if fetched.Price != nil && fetched.Price.Ticker != "" && fetched.Price.Ticker != resolution.Ticker {
		log.Printf("[ERROR] ticker mismatch: resolved %s but quote is for %s", resolution.Ticker, fetched.Price.Ticker)
		return &models.AnalysisResult{
			Ticker:      resolution.Ticker,
			CompanyName: resolution.CompanyName,
			Summary:     "Data consistency check failed: providers returned data for a different symbol. Please retry.",
			KeyInsights: []string{"Upstream data sources disagreed on the requested symbol"},
			Timestamp:   time.Now().UTC(),
		}
	}

	if fetched.Price != nil && resolution.Profile != nil && resolution.Profile.MarketCap > 0 && fetched.Price.MarketCap == nil {
		mc := resolution.Profile.MarketCap
		fetched.Price.MarketCap = &mc
	}

	if fetched.Historical == nil && fetched.Price != nil {
		fetched.Historical = sameDayChange(fetched.Price)
	}

	var earnings []models.EarningsEvent
	if intent.Intent == models.IntentEarningsCheck && o.earnings != nil {
		events, err := o.earnings.GetEarningsCalendar(ctx, resolution.Ticker)
		if err != nil {
			log.Printf("[WARN] earnings calendar unavailable for %s: %v", resolution.Ticker, err)
		} else {
			earnings = events
		}
	}

	actx := models.AnalysisContext{
		Query:      req.Query,
		Intent:     intent,
		Resolution: resolution,
		Price:      fetched.Price,
		News:       fetched.News,
		Historical: fetched.Historical,
		Earnings:   earnings,
		Timeframe:  timeframeLabel(intent.Timeframe, days, matched),
	}

	narrative := o.generateNarrative(ctx, actx)

	out := &models.AnalysisResult{
		Ticker:           resolution.Ticker,
		CompanyName:      resolution.CompanyName,
		Summary:          narrative.Summary,
		Sentiment:        narrative.Sentiment,
		KeyInsights:      narrative.KeyInsights,
		ConfidenceScore:  narrative.ConfidenceScore,
		PriceData:        fetched.Price,
		HistoricalChange: fetched.Historical,
		RecentNews:       fetched.News,
		Timeframe:        actx.Timeframe,
		Timestamp:        time.Now().UTC(),
	}
	if out.RecentNews == nil {
		out.RecentNews = []models.NewsItem{}
	}
	if out.KeyInsights == nil {
		out.KeyInsights = []string{}
	}
	return out
}

func (o *Orchestrator) extractIntent(ctx context.Context, req models.AnalysisRequest) models.IntentExtraction {
	if req.QueryType == models.QueryTypeStructured {
		if intent, ok := ParseStructuredQuery(req.Query); ok {
			return intent
		}
		// Not valid JSON after all; treat it as natural language.
	}
	return o.extractor.Extract(ctx, req.Query)
}

func (o *Orchestrator) generateNarrative(ctx context.Context, actx models.AnalysisContext) models.NarrativeFields {
	if o.gen == nil {
		return ParseNarrative("")
	}
	raw, err := o.gen.Generate(ctx, buildAnalysisPrompt(actx))
	if err != nil {
		log.Printf("[WARN] narrative generation failed for %s: %v", actx.Resolution.Ticker, err)
		return ParseNarrative("")
	}
	return ParseNarrative(raw)
}

// sameDayChange builds a one-day pseudo-historical record from a quote so
// the narrative step still gets change context when no lookback data came
// back.
func sameDayChange(p *models.PriceSnapshot) *models.HistoricalChange {
	if p.CurrentPrice == 0 || p.PreviousClose == 0 {
		return nil
	}
	today := time.Now().UTC().Format("2006-01-02")
	high := p.HighPriceToday
	if high == 0 {
		high = p.CurrentPrice
	}
	low := p.LowPriceToday
	if low == 0 {
		low = p.CurrentPrice
	}
	return &models.HistoricalChange{
		Period:        "today",
		StartDate:     today,
		EndDate:       today,
		StartPrice:    p.PreviousClose,
		EndPrice:      p.CurrentPrice,
		Change:        round2(p.CurrentPrice - p.PreviousClose),
		ChangePercent: round2((p.CurrentPrice - p.PreviousClose) / p.PreviousClose * 100),
		PeriodHigh:    high,
		PeriodLow:     low,
		DataPoints:    2,
		DataSource:    p.DataSource,
	}
}

func timeframeLabel(raw string, days int, matched bool) string {
	if raw != "" {
		return raw
	}
	if matched || days > 0 {
		return fmt.Sprintf("%d days", days)
	}
	return "recent"
}

func buildAnalysisPrompt(actx models.AnalysisContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the stock movement for %s", actx.Resolution.Ticker)
	if actx.Resolution.CompanyName != "" {
		fmt.Fprintf(&b, " (%s)", actx.Resolution.CompanyName)
	}
	fmt.Fprintf(&b, " over the timeframe %q based on the following data.\n\n", actx.Timeframe)
	fmt.Fprintf(&b, "USER QUESTION: %s\n\n", actx.Query)

	b.WriteString("PRICE DATA:\n")
	if p := actx.Price; p != nil {
		fmt.Fprintf(&b, "Current Price: $%.2f\n", p.CurrentPrice)
		fmt.Fprintf(&b, "Previous Close: $%.2f\n", p.PreviousClose)
		fmt.Fprintf(&b, "Change: %.2f (%.2f%%)\n", p.Change, p.ChangePercent)
		if p.Volume != nil {
			fmt.Fprintf(&b, "Volume: %d\n", *p.Volume)
		}
	} else {
		b.WriteString("Not available.\n")
	}

	if h := actx.Historical; h != nil {
		fmt.Fprintf(&b, "\nPERIOD CHANGE (%s, %s to %s):\n", h.Period, h.StartDate, h.EndDate)
		fmt.Fprintf(&b, "From $%.2f to $%.2f: %.2f (%.2f%%), high $%.2f, low $%.2f\n",
			h.StartPrice, h.EndPrice, h.Change, h.ChangePercent, h.PeriodHigh, h.PeriodLow)
	}

	b.WriteString("\nRECENT NEWS:\n")
	if len(actx.News) == 0 {
		b.WriteString("No recent news found.\n")
	}
	for i, item := range actx.News {
		if i >= 5 {
			break
		}
		summary := item.Summary
		if summary == "" {
			summary = "No summary"
		}
		fmt.Fprintf(&b, "- %s: %s\n", item.Title, summary)
	}

	if len(actx.Earnings) > 0 {
		b.WriteString("\nEARNINGS CALENDAR:\n")
		for _, ev := range actx.Earnings {
			fmt.Fprintf(&b, "- %s: estimate %.2f, actual %.2f\n", ev.Date, ev.EPSEstimate, ev.EPSActual)
		}
	}

	b.WriteString(`
Please provide:
1. A concise analysis of why the stock moved
2. Key factors influencing the price
3. Sentiment (positive/negative/neutral)
4. 3-5 key insights
5. Confidence score (0-1) for your analysis

Your response MUST be a raw JSON object. Do NOT wrap it in markdown.
The JSON object should have the following structure:
{
    "analysis_summary": "Brief explanation of stock movement",
    "key_factors": ["factor1", "factor2", "factor3"],
    "sentiment": "positive/negative/neutral",
    "key_insights": ["insight1", "insight2", "insight3"],
    "confidence_score": 0.85
}
`)
	return b.String()
}
