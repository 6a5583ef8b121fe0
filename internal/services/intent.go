package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"stockintel/internal/models"
)

// Well-known names short-circuit the LLM round trip for the company part
// of intent extraction; the generator still classifies intent/timeframe.
var commonCompanies = map[string]models.IntentExtraction{
	"apple":     {CompanyName: "Apple Inc.", Ticker: "AAPL"},
	"microsoft": {CompanyName: "Microsoft Corporation", Ticker: "MSFT"},
	"google":    {CompanyName: "Alphabet Inc.", Ticker: "GOOGL"},
	"alphabet":  {CompanyName: "Alphabet Inc.", Ticker: "GOOGL"},
	"amazon":    {CompanyName: "Amazon.com Inc.", Ticker: "AMZN"},
	"tesla":     {CompanyName: "Tesla Inc.", Ticker: "TSLA"},
	"nvidia":    {CompanyName: "NVIDIA Corporation", Ticker: "NVDA"},
	"meta":      {CompanyName: "Meta Platforms Inc.", Ticker: "META"},
	"facebook":  {CompanyName: "Meta Platforms Inc.", Ticker: "META"},
	"nike":      {CompanyName: "NIKE, Inc.", Ticker: "NKE"},
}

// IntentExtractor turns a raw query into IntentExtraction hints. It never
// fails the pipeline: every error path degrades to default hints.
type IntentExtractor struct {
	gen Generator
}

func NewIntentExtractor(gen Generator) *IntentExtractor {
	return &IntentExtractor{gen: gen}
}

const intentPrompt = `Analyze the following stock-related query: %q

Identify the primary company or stock ticker the user is interested in,
the user's intent, and any timeframe mentioned.

Return a single JSON object with these fields:
1. "company_name": full official company name if identifiable (e.g. "Apple Inc."), else null.
2. "ticker": the ticker symbol if mentioned or clearly implied (e.g. "AAPL"), else null.
3. "intent": one of "price_check", "historical_analysis", "earnings_check", "news_summary", "company_profile", "general_query".
4. "timeframe": any time period mentioned (e.g. "today", "last 7 days", "past year"), else "recent".

Do not interpret common English words as company names. If the query does
not mention a specific stock, set company_name and ticker to null.`

// Extract produces best-effort intent hints for a query. Structured
// queries should be parsed by the caller first; this handles free text.
func (e *IntentExtractor) Extract(ctx context.Context, query string) models.IntentExtraction {
	out := defaultIntent()

	lower := strings.ToLower(query)
	for name, known := range commonCompanies {
		if strings.Contains(lower, name) {
			out.CompanyName = known.CompanyName
			out.Ticker = known.Ticker
			break
		}
	}

	if e.gen == nil {
		return out
	}
	raw, err := e.gen.Generate(ctx, fmt.Sprintf(intentPrompt, query))
	if err != nil {
		log.Printf("[WARN] intent extraction failed, using defaults: %v", err)
		return out
	}

	obj, ok := extractJSONObject(strings.TrimSpace(raw))
	if !ok {
		return out
	}
	var parsed struct {
		CompanyName string `json:"company_name"`
		Ticker      string `json:"ticker"`
		Intent      string `json:"intent"`
		Timeframe   string `json:"timeframe"`
	}
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return out
	}

	// A pre-identified common company outranks the generator's guess.
	if out.CompanyName == "" {
		out.CompanyName = strings.TrimSpace(parsed.CompanyName)
		out.Ticker = strings.ToUpper(strings.TrimSpace(parsed.Ticker))
	}
	if parsed.Intent != "" {
		out.Intent = normalizeIntent(parsed.Intent)
	}
	if parsed.Timeframe != "" {
		out.Timeframe = parsed.Timeframe
	}
	return out
}

// ParseStructuredQuery reads a JSON hint object ({"ticker": ..., "action":
// ..., "timeframe": ...}) submitted instead of free text.
func ParseStructuredQuery(query string) (models.IntentExtraction, bool) {
	var parsed struct {
		Ticker    string `json:"ticker"`
		Company   string `json:"company_name"`
		Action    string `json:"action"`
		Timeframe string `json:"timeframe"`
	}
	if err := json.Unmarshal([]byte(query), &parsed); err != nil {
		return models.IntentExtraction{}, false
	}
	if parsed.Ticker == "" && parsed.Company == "" {
		return models.IntentExtraction{}, false
	}
	out := defaultIntent()
	out.Ticker = strings.ToUpper(strings.TrimSpace(parsed.Ticker))
	out.CompanyName = strings.TrimSpace(parsed.Company)
	if parsed.Action != "" {
		out.Intent = normalizeIntent(parsed.Action)
	}
	if parsed.Timeframe != "" {
		out.Timeframe = expandTimeframeShorthand(parsed.Timeframe)
	}
	return out, true
}

var shorthandUnits = map[string]string{"d": "days", "w": "weeks", "m": "months", "y": "years"}

// expandTimeframeShorthand turns compact forms like "7d" or "2w" into the
// phrases the timeframe parser understands. Anything else passes through.
func expandTimeframeShorthand(tf string) string {
	tf = strings.TrimSpace(tf)
	if len(tf) < 2 {
		return tf
	}
	unit, ok := shorthandUnits[strings.ToLower(tf[len(tf)-1:])]
	if !ok {
		return tf
	}
	n := strings.TrimSpace(tf[:len(tf)-1])
	for _, r := range n {
		if r < '0' || r > '9' {
			return tf
		}
	}
	return n + " " + unit
}

func defaultIntent() models.IntentExtraction {
	return models.IntentExtraction{
		Intent:    models.IntentGeneralQuery,
		Timeframe: "recent",
	}
}

func normalizeIntent(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.IntentPriceCheck, "price", "quote":
		return models.IntentPriceCheck
	case models.IntentHistoricalAnalysis, "historical_performance", "stock_history", "history", "price_change":
		return models.IntentHistoricalAnalysis
	case models.IntentEarningsCheck, "earnings":
		return models.IntentEarningsCheck
	case models.IntentNewsSummary, "news", "news_and_price":
		return models.IntentNewsSummary
	case models.IntentCompanyProfile, "company_analysis", "general_info", "profile":
		return models.IntentCompanyProfile
	default:
		return models.IntentGeneralQuery
	}
}
