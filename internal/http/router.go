package http

import (
	"net/http"

	"stockintel/internal/config"
	"stockintel/internal/handlers"
	"stockintel/internal/services"
)

func NewRouter(cfg config.Config, orch *services.Orchestrator) http.Handler {
	api := handlers.New(cfg, orch)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", api.Health)
	mux.HandleFunc("/api/v1/analyze", api.Analyze)
	mux.HandleFunc("/api/v1/supported-queries", api.SupportedQueries)

	h := http.Handler(mux)
	h = withRecovery(h)
	h = withLogging(h)
	h = withRateLimit(cfg.RateLimitPerMin)(h)
	h = withCORS(h)
	return h
}
