package services

import (
	"context"

	"stockintel/internal/models"
)

// Narrow capability interfaces over the vendor clients. The fallback chain
// and coordinator are written against these, never against a vendor, so a
// provider that covers several capabilities just implements several of
// them.

type QuoteSource interface {
	Name() string
	GetQuote(ctx context.Context, ticker string) (*models.PriceSnapshot, error)
}

type HistorySource interface {
	Name() string
	GetHistorical(ctx context.Context, ticker string, daysAgo int) (*models.HistoricalChange, error)
}

type NewsSource interface {
	Name() string
	GetCompanyNews(ctx context.Context, ticker string, daysBack int) ([]models.NewsItem, error)
}

// SymbolDirectory is the company search/profile capability used by ticker
// resolution.
type SymbolDirectory interface {
	SearchTicker(ctx context.Context, companyName string) (string, error)
	GetProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error)
}

// EarningsSource supplies upcoming and recent earnings calendar entries.
type EarningsSource interface {
	GetEarningsCalendar(ctx context.Context, ticker string) ([]models.EarningsEvent, error)
}

// Generator is the narrative LLM capability: one free-text completion, no
// retry assumptions. Tolerance for malformed output lives entirely in the
// narrative parser.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
