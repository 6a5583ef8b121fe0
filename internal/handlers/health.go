package handlers

import (
	"net/http"
	"os"
	"time"
)

type healthResponse struct {
	Ok      bool            `json:"ok"`
	TsISO   string          `json:"ts_iso"`
	Service string          `json:"service"`
	Version string          `json:"version,omitempty"`
	Env     map[string]bool `json:"env"`
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Ok:      true,
		TsISO:   time.Now().UTC().Format(time.RFC3339),
		Service: "stockintel",
		Version: os.Getenv("SERVICE_VERSION"),
		Env: map[string]bool{
			"GOOGLE_API_KEY":        a.cfg.GoogleAPIKey != "",
			"FINNHUB_API_KEY":       a.cfg.FinnhubAPIKey != "",
			"ALPHA_VANTAGE_API_KEY": a.cfg.AlphaVantageKey != "",
			"TWELVE_DATA_API_KEY":   a.cfg.TwelveDataKey != "",
			"MARKETAUX_API_KEY":     a.cfg.MarketauxKey != "",
		},
	}
	writeJSON(w, http.StatusOK, resp)
}
