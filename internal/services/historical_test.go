package services

import (
	"testing"
	"time"

	"stockintel/internal/models"
)

func dailyBars(closes []float64) []bar {
	out := make([]bar, len(closes))
	now := time.Now()
	for i, c := range closes {
		out[i] = bar{
			Date:  now.AddDate(0, 0, -(len(closes) - 1 - i)),
			Close: c,
			High:  c + 1,
			Low:   c - 1,
		}
	}
	return out
}

func TestHistoricalChangeFromBars(t *testing.T) {
	bars := dailyBars([]float64{260, 258, 255, 252, 251, 250.5, 250})

	got := historicalChangeFromBars(bars, 6, "alphavantage")
	if got == nil {
		t.Fatal("expected a change record")
	}
	if got.StartPrice != 260 || got.EndPrice != 250 {
		t.Fatalf("unexpected endpoints: %+v", got)
	}
	if got.Change != -10 {
		t.Fatalf("expected change -10, got %.2f", got.Change)
	}
	if got.ChangePercent != -3.85 {
		t.Fatalf("expected -3.85, got %.2f", got.ChangePercent)
	}
	if got.DataPoints < 2 {
		t.Fatalf("expected at least 2 data points, got %d", got.DataPoints)
	}
	if got.Period != "6 days" {
		t.Fatalf("unexpected period %q", got.Period)
	}
	if got.DataSource != "alphavantage" {
		t.Fatalf("unexpected source %q", got.DataSource)
	}
}

func TestHistoricalChangeShortSeriesUsesOldestBar(t *testing.T) {
	// Only 3 days of data for a 30 day window.
	bars := dailyBars([]float64{100, 102, 104})

	got := historicalChangeFromBars(bars, 30, "twelvedata")
	if got == nil {
		t.Fatal("expected a change record from a short series")
	}
	if got.StartPrice != 100 || got.EndPrice != 104 {
		t.Fatalf("unexpected endpoints: %+v", got)
	}
	if got.ChangePercent != 4 {
		t.Fatalf("expected 4%%, got %.2f", got.ChangePercent)
	}
}

func TestHistoricalChangeRejectsDegenerateSeries(t *testing.T) {
	if got := historicalChangeFromBars(nil, 7, "x"); got != nil {
		t.Fatalf("expected nil for empty series, got %+v", got)
	}
	if got := historicalChangeFromBars(dailyBars([]float64{250}), 7, "x"); got != nil {
		t.Fatalf("expected nil for single bar, got %+v", got)
	}
	if got := historicalChangeFromBars(dailyBars([]float64{0, 250}), 7, "x"); got != nil {
		t.Fatalf("expected nil for zero start price, got %+v", got)
	}
}

func TestValidHistorical(t *testing.T) {
	good := &models.HistoricalChange{
		StartDate: "2026-03-01", EndDate: "2026-03-08",
		StartPrice: 260, EndPrice: 250, DataPoints: 6,
	}
	if !validHistorical(good) {
		t.Fatal("expected valid record to pass")
	}
	if validHistorical(nil) {
		t.Fatal("nil must fail")
	}
	sameDates := *good
	sameDates.EndDate = sameDates.StartDate
	if validHistorical(&sameDates) {
		t.Fatal("identical dates must fail")
	}
	zeroPrice := *good
	zeroPrice.EndPrice = 0
	if validHistorical(&zeroPrice) {
		t.Fatal("zero price must fail")
	}
}
