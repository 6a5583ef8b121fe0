package services

import (
	"context"
	"log"
	"sort"
	"strings"

	"stockintel/internal/models"
)

// Resolver confidence tiers, highest-evidence branch first.
const (
	confidenceValidatedHints = 0.95
	confidenceSearchProfiled = 0.9
	confidenceSearchUnnamed  = 0.85
	confidenceTickerOnly     = 0.8
	confidenceFallbackPhrase = 0.7
	confidenceFallbackWord   = 0.6
)

var resolverStopWords = map[string]struct{}{
	"why": {}, "did": {}, "stock": {}, "drop": {}, "today": {}, "what": {},
	"how": {}, "has": {}, "changed": {}, "the": {}, "last": {}, "days": {},
	"recently": {}, "happening": {}, "with": {}, "me": {}, "about": {},
	"history": {}, "tell": {}, "is": {}, "doing": {}, "over": {},
	"performing": {}, "price": {}, "news": {},
}

// TickerResolver maps a query plus extracted hints to a validated symbol.
type TickerResolver struct {
	dir SymbolDirectory
}

func NewTickerResolver(dir SymbolDirectory) *TickerResolver {
	return &TickerResolver{dir: dir}
}

// Resolve tries, in order: validating a ticker+company hint pair, searching
// by company name, validating a lone ticker hint, and finally searching
// candidate phrases pulled from the query text. Confidence 0 with an empty
// ticker is the terminal could-not-identify outcome.
func (r *TickerResolver) Resolve(ctx context.Context, query, companyHint, tickerHint string) models.TickerResolution {
	companyHint = strings.TrimSpace(companyHint)
	tickerHint = strings.ToUpper(strings.TrimSpace(tickerHint))

	if tickerHint != "" && companyHint != "" {
		if res, ok := r.validateHintPair(ctx, tickerHint, companyHint); ok {
			return res
		}
		// Mismatched hints are not discarded yet: the company name may
		// still resolve through search below.
	}

	if companyHint != "" {
		if res, ok := r.searchByCompany(ctx, companyHint); ok {
			return res
		}
	}

	if tickerHint != "" && companyHint == "" {
		profile, err := r.dir.GetProfile(ctx, tickerHint)
		if err == nil && profile != nil && profile.Name != "" {
			return models.TickerResolution{
				Ticker:      tickerHint,
				CompanyName: profile.Name,
				Profile:     profile,
				Confidence:  confidenceTickerOnly,
			}
		}
	}

	if query != "" {
		if res, ok := r.searchQueryPhrases(ctx, query); ok {
			return res
		}
	}

	log.Printf("[WARN] resolver: no ticker for query=%q company=%q ticker=%q", query, companyHint, tickerHint)
	return models.TickerResolution{Confidence: 0}
}

func (r *TickerResolver) validateHintPair(ctx context.Context, ticker, company string) (models.TickerResolution, bool) {
	profile, err := r.dir.GetProfile(ctx, ticker)
	if err != nil || profile == nil || profile.Name == "" {
		return models.TickerResolution{}, false
	}
	pn := strings.ToLower(profile.Name)
	cn := strings.ToLower(company)
	if !strings.Contains(pn, cn) && !strings.Contains(cn, pn) {
		log.Printf("[WARN] resolver: ticker %s profile %q does not match hint %q, searching by name", ticker, profile.Name, company)
		return models.TickerResolution{}, false
	}
	return models.TickerResolution{
		Ticker:      ticker,
		CompanyName: profile.Name,
		Profile:     profile,
		Confidence:  confidenceValidatedHints,
	}, true
}

func (r *TickerResolver) searchByCompany(ctx context.Context, company string) (models.TickerResolution, bool) {
	symbol, err := r.dir.SearchTicker(ctx, company)
	if err != nil || symbol == "" {
		return models.TickerResolution{}, false
	}
	symbol = strings.ToUpper(symbol)
	profile, err := r.dir.GetProfile(ctx, symbol)
	if err != nil || profile == nil {
		return models.TickerResolution{}, false
	}
	if profile.Name != "" {
		return models.TickerResolution{
			Ticker:      symbol,
			CompanyName: profile.Name,
			Profile:     profile,
			Confidence:  confidenceSearchProfiled,
		}, true
	}
	return models.TickerResolution{
		Ticker:      symbol,
		CompanyName: company,
		Profile:     profile,
		Confidence:  confidenceSearchUnnamed,
	}, true
}

func (r *TickerResolver) searchQueryPhrases(ctx context.Context, query string) (models.TickerResolution, bool) {
	for _, phrase := range candidatePhrases(query) {
		symbol, err := r.dir.SearchTicker(ctx, phrase)
		if err != nil || symbol == "" {
			continue
		}
		symbol = strings.ToUpper(symbol)
		profile, err := r.dir.GetProfile(ctx, symbol)
		if err != nil || profile == nil || profile.Name == "" {
			continue
		}
		confidence := confidenceFallbackWord
		if len(strings.Fields(phrase)) > 1 {
			confidence = confidenceFallbackPhrase
		}
		return models.TickerResolution{
			Ticker:      symbol,
			CompanyName: profile.Name,
			Profile:     profile,
			Confidence:  confidence,
		}, true
	}
	return models.TickerResolution{}, false
}

// candidatePhrases builds 1- and 2-word title-cased phrases from the query
// with stop words removed, longest first so multi-word names win.
func candidatePhrases(query string) []string {
	words := strings.Fields(query)
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, "?.,!'\"")
		if w == "" {
			continue
		}
		cleaned = append(cleaned, w)
	}

	keep := func(w string) bool {
		_, stop := resolverStopWords[strings.ToLower(w)]
		return !stop
	}

	var phrases []string
	for i, w := range cleaned {
		if !keep(w) {
			continue
		}
		phrases = append(phrases, title(w))
		if i+1 < len(cleaned) && keep(cleaned[i+1]) {
			phrases = append(phrases, title(w)+" "+title(cleaned[i+1]))
		}
	}
	sort.SliceStable(phrases, func(i, j int) bool { return len(phrases[i]) > len(phrases[j]) })

	out := phrases[:0]
	for _, p := range phrases {
		// Short lowercase fragments are noise; short all-caps may be a
		// ticker typed directly into the query.
		if len(p) < 3 && p != strings.ToUpper(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func title(w string) string {
	if w == strings.ToUpper(w) {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}
