package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stockintel/internal/config"
)

func TestAnalyzeRejectsGet(t *testing.T) {
	api := New(config.Config{}, nil)
	rec := httptest.NewRecorder()
	api.Analyze(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyze", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestAnalyzeRejectsInvalidJSON(t *testing.T) {
	api := New(config.Config{}, nil)
	rec := httptest.NewRecorder()
	api.Analyze(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader("not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeRejectsEmptyQuery(t *testing.T) {
	api := New(config.Config{}, nil)
	rec := httptest.NewRecorder()
	api.Analyze(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"query":"   "}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "query_required") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAnalyzeRejectsOversizedQuery(t *testing.T) {
	api := New(config.Config{}, nil)
	rec := httptest.NewRecorder()
	body := `{"query":"` + strings.Repeat("a", maxQueryLength+1) + `"}`
	api.Analyze(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthReportsConfiguredKeys(t *testing.T) {
	api := New(config.Config{FinnhubAPIKey: "x"}, nil)
	rec := httptest.NewRecorder()
	api.Health(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"FINNHUB_API_KEY":true`) {
		t.Fatalf("expected finnhub key reported as set: %s", body)
	}
	if !strings.Contains(body, `"GOOGLE_API_KEY":false`) {
		t.Fatalf("expected google key reported as unset: %s", body)
	}
}
