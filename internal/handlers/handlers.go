package handlers

import (
	"encoding/json"
	"net/http"

	"stockintel/internal/config"
	"stockintel/internal/services"
)

type API struct {
	cfg  config.Config
	orch *services.Orchestrator
}

func New(cfg config.Config, orch *services.Orchestrator) *API {
	return &API{cfg: cfg, orch: orch}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
