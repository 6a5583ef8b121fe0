package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"stockintel/internal/models"
)

const maxQueryLength = 1000

// Analyze answers one natural-language or structured stock question.
func (a *API) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}

	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query_required")
		return
	}
	if len(req.Query) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "query_too_long")
		return
	}
	if req.QueryType == "" {
		req.QueryType = models.QueryTypeNaturalLanguage
	}

	result := a.orch.ProcessRequest(r.Context(), req)
	writeJSON(w, http.StatusOK, result)
}
