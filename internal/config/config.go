package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	RedisURL string

	GoogleAPIKey string
	GeminiModel  string

	FinnhubAPIKey    string
	FinnhubBaseURL   string
	AlphaVantageKey  string
	AlphaVantageURL  string
	TwelveDataKey    string
	TwelveDataURL    string
	MarketauxKey     string
	MarketauxBaseURL string

	RequestTimeout   time.Duration
	NarrativeTimeout time.Duration

	// Per-capability cache TTLs, ordered by data volatility.
	CacheTTLQuote    time.Duration
	CacheTTLNews     time.Duration
	CacheTTLHistory  time.Duration
	CacheTTLProfile  time.Duration
	CacheTTLCalendar time.Duration

	RateLimitPerMin int
	ProviderRate    float64
	ProviderBurst   int
	MaxNewsItems    int
	NewsDaysBack    int
	DefaultLookback int
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		FinnhubAPIKey:    getEnv("FINNHUB_API_KEY", ""),
		FinnhubBaseURL:   getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
		AlphaVantageKey:  getEnv("ALPHA_VANTAGE_API_KEY", ""),
		AlphaVantageURL:  getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
		TwelveDataKey:    getEnv("TWELVE_DATA_API_KEY", ""),
		TwelveDataURL:    getEnv("TWELVE_DATA_BASE_URL", "https://api.twelvedata.com"),
		MarketauxKey:     getEnv("MARKETAUX_API_KEY", ""),
		MarketauxBaseURL: getEnv("MARKETAUX_BASE_URL", "https://api.marketaux.com/v1"),

		RequestTimeout:   getEnvDuration("PROVIDER_REQUEST_TIMEOUT", 30*time.Second),
		NarrativeTimeout: getEnvDuration("NARRATIVE_TIMEOUT", 60*time.Second),

		CacheTTLQuote:    getEnvDuration("CACHE_TTL_QUOTE", 5*time.Minute),
		CacheTTLNews:     getEnvDuration("CACHE_TTL_NEWS", 30*time.Minute),
		CacheTTLHistory:  getEnvDuration("CACHE_TTL_HISTORY", time.Hour),
		CacheTTLProfile:  getEnvDuration("CACHE_TTL_PROFILE", time.Hour),
		CacheTTLCalendar: getEnvDuration("CACHE_TTL_CALENDAR", 24*time.Hour),

		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 30),
		ProviderRate:    getEnvFloat("PROVIDER_RATE_PER_SEC", 5),
		ProviderBurst:   getEnvInt("PROVIDER_RATE_BURST", 10),
		MaxNewsItems:    getEnvInt("MAX_NEWS_ITEMS", 15),
		NewsDaysBack:    getEnvInt("NEWS_DAYS_BACK", 7),
		DefaultLookback: getEnvInt("DEFAULT_LOOKBACK_DAYS", 7),
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(i) * time.Second
}
