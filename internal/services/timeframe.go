package services

import (
	"regexp"
	"strconv"
	"strings"
)

// Ordered so that longer phrases win before their substrings ("yesterday"
// before "today", "12 months" before "month").
var timeframePhrases = []struct {
	phrase string
	days   int
}{
	{"yesterday", 2},
	{"today", 1},
	{"2 weeks", 14},
	{"7 days", 7},
	{"week", 7},
	{"3 months", 90},
	{"6 months", 180},
	{"12 months", 365},
	{"quarter", 90},
	{"30 days", 30},
	{"month", 30},
	{"year", 365},
}

var timeframePattern = regexp.MustCompile(`(\d+)\s*(day|week|month|year)s?`)

var timeframeUnitDays = map[string]int{
	"day":   1,
	"week":  7,
	"month": 30,
	"year":  365,
}

// ParseTimeframe maps a free-text timeframe phrase to a day count. A miss
// is a normal outcome: callers pick a context-specific default.
func ParseTimeframe(text string) (int, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return 0, false
	}
	for _, p := range timeframePhrases {
		if strings.Contains(t, p.phrase) {
			return p.days, true
		}
	}
	if m := timeframePattern.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return 0, false
		}
		return n * timeframeUnitDays[m[2]], true
	}
	return 0, false
}
