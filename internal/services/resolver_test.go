package services

import (
	"context"
	"testing"

	"stockintel/internal/models"
)

type stubDirectory struct {
	profiles map[string]*models.CompanyProfile
	symbols  map[string]string
	searches []string
}

func (d *stubDirectory) SearchTicker(ctx context.Context, companyName string) (string, error) {
	d.searches = append(d.searches, companyName)
	return d.symbols[companyName], nil
}

func (d *stubDirectory) GetProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	return d.profiles[ticker], nil
}

func TestResolveValidatedHintPair(t *testing.T) {
	dir := &stubDirectory{
		profiles: map[string]*models.CompanyProfile{
			"AAPL": {Name: "Apple Inc", Ticker: "AAPL"},
		},
	}
	r := NewTickerResolver(dir)

	got := r.Resolve(context.Background(), "why did apple drop", "Apple Inc.", "AAPL")
	if got.Ticker != "AAPL" {
		t.Fatalf("expected AAPL, got %q", got.Ticker)
	}
	if got.Confidence != confidenceValidatedHints {
		t.Fatalf("expected confidence %.2f, got %.2f", confidenceValidatedHints, got.Confidence)
	}
	if got.CompanyName != "Apple Inc" {
		t.Fatalf("expected profile name, got %q", got.CompanyName)
	}
}

func TestResolveMismatchedHintsFallThroughToSearch(t *testing.T) {
	dir := &stubDirectory{
		profiles: map[string]*models.CompanyProfile{
			"AAPL": {Name: "Apple Inc", Ticker: "AAPL"},
			"TSLA": {Name: "Tesla Inc", Ticker: "TSLA"},
		},
		symbols: map[string]string{"Tesla": "TSLA"},
	}
	r := NewTickerResolver(dir)

	// The ticker hint points at the wrong company; search by name wins.
	got := r.Resolve(context.Background(), "", "Tesla", "AAPL")
	if got.Ticker != "TSLA" {
		t.Fatalf("expected TSLA from name search, got %q", got.Ticker)
	}
	if got.Confidence != confidenceSearchProfiled {
		t.Fatalf("expected confidence %.2f, got %.2f", confidenceSearchProfiled, got.Confidence)
	}
}

func TestResolveTickerOnlyHint(t *testing.T) {
	dir := &stubDirectory{
		profiles: map[string]*models.CompanyProfile{
			"MSFT": {Name: "Microsoft Corp", Ticker: "MSFT"},
		},
	}
	r := NewTickerResolver(dir)

	got := r.Resolve(context.Background(), "", "", "msft")
	if got.Ticker != "MSFT" {
		t.Fatalf("expected MSFT, got %q", got.Ticker)
	}
	if got.Confidence != confidenceTickerOnly {
		t.Fatalf("expected confidence %.2f, got %.2f", confidenceTickerOnly, got.Confidence)
	}
}

func TestResolvePhraseFallback(t *testing.T) {
	dir := &stubDirectory{
		profiles: map[string]*models.CompanyProfile{
			"GME": {Name: "GameStop Corp", Ticker: "GME"},
		},
		symbols: map[string]string{"Gamestop": "GME"},
	}
	r := NewTickerResolver(dir)

	got := r.Resolve(context.Background(), "tell me about gamestop stock movement", "", "")
	if got.Ticker != "GME" {
		t.Fatalf("expected GME from phrase search, got %q", got.Ticker)
	}
	if got.Confidence != confidenceFallbackWord {
		t.Fatalf("expected confidence %.2f, got %.2f", confidenceFallbackWord, got.Confidence)
	}
}

func TestResolveNoMatchIsTerminal(t *testing.T) {
	r := NewTickerResolver(&stubDirectory{})

	got := r.Resolve(context.Background(), "what is the meaning of life", "", "")
	if got.Ticker != "" {
		t.Fatalf("expected empty ticker, got %q", got.Ticker)
	}
	if got.Confidence != 0 {
		t.Fatalf("expected confidence 0, got %.2f", got.Confidence)
	}
}

func TestCandidatePhrasesStripStopWords(t *testing.T) {
	phrases := candidatePhrases("why did tesla stock drop today?")
	for _, p := range phrases {
		if p == "Why" || p == "Stock" || p == "Today" {
			t.Fatalf("stop word %q survived filtering", p)
		}
	}
	found := false
	for _, p := range phrases {
		if p == "Tesla" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Tesla among candidates, got %v", phrases)
	}
}
