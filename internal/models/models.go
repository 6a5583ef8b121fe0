package models

import "time"

type QueryType string

const (
	QueryTypeNaturalLanguage QueryType = "natural_language"
	QueryTypeStructured      QueryType = "structured"
)

type AnalysisRequest struct {
	Query               string    `json:"query"`
	QueryType           QueryType `json:"query_type"`
	IncludeFundamentals bool      `json:"include_fundamentals"`
}

// Intent categories produced by intent extraction.
const (
	IntentPriceCheck         = "price_check"
	IntentHistoricalAnalysis = "historical_analysis"
	IntentEarningsCheck      = "earnings_check"
	IntentNewsSummary        = "news_summary"
	IntentCompanyProfile     = "company_profile"
	IntentGeneralQuery       = "general_query"
)

// IntentExtraction is the best-effort output of the intent step. Any field
// may be empty; the pipeline applies defaults rather than failing.
type IntentExtraction struct {
	CompanyName string `json:"company_name"`
	Ticker      string `json:"ticker"`
	Intent      string `json:"intent"`
	Timeframe   string `json:"timeframe"`
}

type CompanyProfile struct {
	Name      string  `json:"name"`
	Ticker    string  `json:"ticker"`
	Exchange  string  `json:"exchange,omitempty"`
	Industry  string  `json:"industry,omitempty"`
	MarketCap float64 `json:"market_cap,omitempty"`
	WebURL    string  `json:"web_url,omitempty"`
}

// TickerResolution is computed once per request. Confidence 0 means the
// query could not be mapped to a symbol and the pipeline stops there.
type TickerResolution struct {
	Ticker      string          `json:"ticker"`
	CompanyName string          `json:"company_name,omitempty"`
	Profile     *CompanyProfile `json:"profile,omitempty"`
	Confidence  float64         `json:"confidence"`
}

type PriceSnapshot struct {
	Ticker         string   `json:"ticker"`
	CurrentPrice   float64  `json:"current_price"`
	PreviousClose  float64  `json:"previous_close"`
	Change         float64  `json:"change"`
	ChangePercent  float64  `json:"change_percent"`
	HighPriceToday float64  `json:"high_price_today,omitempty"`
	LowPriceToday  float64  `json:"low_price_today,omitempty"`
	OpenPriceToday float64  `json:"open_price_today,omitempty"`
	Volume         *int64   `json:"volume,omitempty"`
	MarketCap      *float64 `json:"market_cap,omitempty"`
	DataSource     string   `json:"data_source,omitempty"`
}

type NewsItem struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url,omitempty"`
	Sentiment   string    `json:"sentiment,omitempty"`
}

// HistoricalChange describes price movement over a lookback window. It is
// only usable when both endpoint prices are present and the dates differ;
// providers return nil otherwise.
type HistoricalChange struct {
	Period        string  `json:"period_description"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	StartPrice    float64 `json:"start_price"`
	EndPrice      float64 `json:"end_price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	PeriodHigh    float64 `json:"period_high"`
	PeriodLow     float64 `json:"period_low"`
	DataPoints    int     `json:"data_point_count"`
	DataSource    string  `json:"data_source,omitempty"`
}

type EarningsEvent struct {
	Ticker      string  `json:"ticker"`
	Date        string  `json:"date"`
	EPSEstimate float64 `json:"eps_estimate,omitempty"`
	EPSActual   float64 `json:"eps_actual,omitempty"`
	Hour        string  `json:"hour,omitempty"`
}

// AnalysisContext is everything the narrative step sees. Request-scoped,
// never persisted.
type AnalysisContext struct {
	Query      string
	Intent     IntentExtraction
	Resolution TickerResolution
	Price      *PriceSnapshot
	News       []NewsItem
	Historical *HistoricalChange
	Earnings   []EarningsEvent
	Timeframe  string
}

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// AnalysisResult is the terminal artifact. It is always well formed: every
// failure mode in the pipeline degrades into one of these instead of an
// error reaching the caller.
type AnalysisResult struct {
	Ticker           string            `json:"ticker"`
	CompanyName      string            `json:"company_name,omitempty"`
	Summary          string            `json:"analysis_summary"`
	Sentiment        string            `json:"sentiment,omitempty"`
	KeyInsights      []string          `json:"key_insights"`
	ConfidenceScore  float64           `json:"confidence_score"`
	PriceData        *PriceSnapshot    `json:"price_data,omitempty"`
	HistoricalChange *HistoricalChange `json:"historical_change,omitempty"`
	RecentNews       []NewsItem        `json:"recent_news"`
	Timeframe        string            `json:"timeframe,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

// NarrativeFields is the structured portion recovered from a raw generator
// response.
type NarrativeFields struct {
	Summary         string   `json:"analysis_summary"`
	KeyFactors      []string `json:"key_factors"`
	Sentiment       string   `json:"sentiment"`
	KeyInsights     []string `json:"key_insights"`
	ConfidenceScore float64  `json:"confidence_score"`
}
