package services

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"stockintel/internal/models"
)

const fallbackSummary = "Analysis is unavailable at this time."

// fallbackConfidence is assigned when the generator response carried no
// parseable structure.
const fallbackConfidence = 0.1

var fencedJSONPattern = regexp.MustCompile("(?si)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParseNarrative recovers structured fields from a raw generator response.
// It never fails: when no structure can be extracted the raw text itself
// becomes the summary with neutral sentiment and low confidence, since this
// sits at the boundary with a free-text generator.
func ParseNarrative(raw string) models.NarrativeFields {
	trimmed := strings.TrimSpace(raw)

	if obj, ok := extractJSONObject(trimmed); ok {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(obj), &fields); err == nil {
			return narrativeFromJSON(fields, trimmed)
		}
	}

	summary := trimmed
	if summary == "" {
		summary = fallbackSummary
	}
	return models.NarrativeFields{
		Summary:         summary,
		Sentiment:       models.SentimentNeutral,
		KeyFactors:      []string{},
		KeyInsights:     []string{},
		ConfidenceScore: fallbackConfidence,
	}
}

// extractJSONObject finds the JSON object in a generator response: either
// the whole trimmed text is one, or the first fenced code block holding one.
func extractJSONObject(trimmed string) (string, bool) {
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed, true
	}
	if m := fencedJSONPattern.FindStringSubmatch(trimmed); m != nil {
		return m[1], true
	}
	return "", false
}

func narrativeFromJSON(fields map[string]json.RawMessage, raw string) models.NarrativeFields {
	out := models.NarrativeFields{
		Summary:         jsonString(fields["analysis_summary"]),
		KeyFactors:      jsonStringList(fields["key_factors"]),
		Sentiment:       normalizeSentiment(jsonString(fields["sentiment"])),
		KeyInsights:     jsonStringList(fields["key_insights"]),
		ConfidenceScore: normalizeConfidence(fields["confidence_score"]),
	}
	if out.Summary == "" {
		out.Summary = jsonString(fields["summary"])
	}
	if out.Summary == "" {
		out.Summary = raw
	}
	return out
}

func jsonString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}

func jsonStringList(raw json.RawMessage) []string {
	if raw == nil {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	return []string{}
}

func normalizeSentiment(s string) string {
	switch strings.ToLower(s) {
	case models.SentimentPositive, models.SentimentNegative:
		return strings.ToLower(s)
	default:
		return models.SentimentNeutral
	}
}

// normalizeConfidence accepts the shapes generators actually emit: a
// number, a numeric string, a percentage, or an "x/y" fraction. Values
// above 1 are read as percentages. The >1 rule is ambiguous for raw scores
// like 1.5, but it is kept deliberately: mis-scaled generator output is
// more common than genuine >1 confidences.
func normalizeConfidence(raw json.RawMessage) float64 {
	if raw == nil {
		return 0.5
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0.5
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		if x, y, ok := strings.Cut(s, "/"); ok {
			xf, errX := strconv.ParseFloat(strings.TrimSpace(x), 64)
			yf, errY := strconv.ParseFloat(strings.TrimSpace(y), 64)
			if errX != nil || errY != nil || yf == 0 {
				return 0.5
			}
			num = xf / yf
		} else {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0.5
			}
			num = f
		}
	}

	if num > 1 {
		num = num / 100
	}
	if num < 0 {
		num = 0
	}
	if num > 1 {
		num = 1
	}
	return num
}
