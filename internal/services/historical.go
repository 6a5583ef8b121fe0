package services

import (
	"fmt"
	"math"
	"time"

	"stockintel/internal/models"
)

// bar is one normalized time-series point. Vendor clients map their series
// payloads into ascending []bar before change computation.
type bar struct {
	Date  time.Time
	Close float64
	High  float64
	Low   float64
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// historicalChangeFromBars derives a HistoricalChange over the trailing
// daysAgo window of an ascending bar series. The start point is the latest
// bar at or before now-daysAgo, falling back to the oldest bar when the
// series is shorter than the window. Returns nil when fewer than two
// distinct dates cover the window — callers treat that as unavailable.
func historicalChangeFromBars(bars []bar, daysAgo int, source string) *models.HistoricalChange {
	if len(bars) < 2 || daysAgo <= 0 {
		return nil
	}

	target := time.Now().AddDate(0, 0, -daysAgo)
	startIdx := 0
	for i, b := range bars {
		if b.Date.After(target) {
			break
		}
		startIdx = i
	}
	endIdx := len(bars) - 1
	if startIdx >= endIdx {
		startIdx = 0
	}
	start, end := bars[startIdx], bars[endIdx]
	if start.Close == 0 || end.Close == 0 || start.Date.Equal(end.Date) {
		return nil
	}

	high, low := end.Close, end.Close
	for _, b := range bars[startIdx : endIdx+1] {
		if b.High > high {
			high = b.High
		}
		if b.Low > 0 && b.Low < low {
			low = b.Low
		}
	}

	change := end.Close - start.Close
	return &models.HistoricalChange{
		Period:        fmt.Sprintf("%d days", daysAgo),
		StartDate:     start.Date.Format("2006-01-02"),
		EndDate:       end.Date.Format("2006-01-02"),
		StartPrice:    round2(start.Close),
		EndPrice:      round2(end.Close),
		Change:        round2(change),
		ChangePercent: round2(change / start.Close * 100),
		PeriodHigh:    round2(high),
		PeriodLow:     round2(low),
		DataPoints:    endIdx - startIdx + 1,
		DataSource:    source,
	}
}

// validHistorical is the chain's validity predicate: both endpoint prices
// present and the window spans distinct dates.
func validHistorical(h *models.HistoricalChange) bool {
	return h != nil &&
		h.StartPrice != 0 && h.EndPrice != 0 &&
		h.StartDate != h.EndDate &&
		h.DataPoints >= 2
}
