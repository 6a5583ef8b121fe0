package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"stockintel/internal/config"
	internalhttp "stockintel/internal/http"
	"stockintel/internal/services"
)

func main() {
	_ = godotenv.Load(".env", ".env.local")

	cfg := config.Load()
	cache := services.NewCache(cfg)

	finnhub := services.NewFinnhubClient(cfg, cache)
	alphaVantage := services.NewAlphaVantageClient(cfg, cache)
	twelveData := services.NewTwelveDataClient(cfg, cache)
	marketaux := services.NewMarketauxClient(cfg, cache)

	var gen services.Generator
	gemini, err := services.NewGeminiClient(context.Background(), cfg)
	if err != nil {
		log.Printf("[WARN] narrative generator disabled: %v", err)
	} else {
		gen = gemini
	}

	fetcher := services.NewFetchCoordinator(
		[]services.QuoteSource{finnhub, alphaVantage},
		[]services.HistorySource{alphaVantage, twelveData},
		[]services.NewsSource{finnhub, marketaux},
		cfg.MaxNewsItems,
		cfg.NewsDaysBack,
	)

	orch := services.NewOrchestrator(
		cfg,
		services.NewIntentExtractor(gen),
		services.NewTickerResolver(finnhub),
		fetcher,
		finnhub,
		gen,
	)

	h := internalhttp.NewRouter(cfg, orch)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("stockintel listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
