package handlers

import "net/http"

// SupportedQueries lists example inputs for both query modes.
func (a *API) SupportedQueries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"natural_language_examples": []string{
			"Why did Tesla stock drop today?",
			"What's happening with Apple stock recently?",
			"How has Microsoft performed this week?",
			"Tell me about GameStop stock movement",
			"What's driving Nvidia's stock price?",
		},
		"structured_examples": []map[string]string{
			{"ticker": "AAPL", "action": "news_and_price"},
			{"ticker": "TSLA", "action": "analysis", "timeframe": "7d"},
			{"ticker": "MSFT", "action": "price_change", "timeframe": "1d"},
		},
	})
}
