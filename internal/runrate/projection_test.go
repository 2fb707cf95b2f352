package runrate

import (
	"testing"

	"github.com/prymal/inventory-metrics/internal/config"
)

func TestDaysOnHand_CappedAtMax(t *testing.T) {
	tests := []struct {
		name    string
		onHand  int
		runRate float64
		want    float64
	}{
		{"normal cover", 50, 10, 5},
		{"slow mover past the cap", 10000, 0.01, 365},
		{"exactly at the cap", 3650, 10, 365},
		{"zero run rate clamps to cap", 50, 0, 365},
		{"zero run rate and zero stock", 0, 0, 365},
		{"negative run rate clamps to cap", 50, -1, 365},
		{"zero stock with sales", 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DaysOnHand(tt.onHand, tt.runRate, DefaultMaxDaysOnHand)
			if got != tt.want {
				t.Errorf("DaysOnHand(%d, %g) = %g, want %g", tt.onHand, tt.runRate, got, tt.want)
			}
		})
	}
}

func TestDaysOnHand_ZeroMaxFallsBackToDefault(t *testing.T) {
	if got := DaysOnHand(10000, 0.01, 0); got != DefaultMaxDaysOnHand {
		t.Errorf("expected fallback cap %d, got %g", DefaultMaxDaysOnHand, got)
	}
}

func TestStockoutDate_TruncatesFractionalDays(t *testing.T) {
	asOf := day(2024, 6, 1)

	if got := StockoutDate(asOf, 5.0); !got.Equal(day(2024, 6, 6)) {
		t.Errorf("expected 2024-06-06, got %s", got.Format("2006-01-02"))
	}
	if got := StockoutDate(asOf, 5.9); !got.Equal(day(2024, 6, 6)) {
		t.Errorf("fractional days truncate: expected 2024-06-06, got %s", got.Format("2006-01-02"))
	}
	if got := StockoutDate(asOf, 0); !got.Equal(asOf) {
		t.Errorf("zero days of cover: expected as-of date, got %s", got.Format("2006-01-02"))
	}
}

func TestRestockPoint_FinishedGoodsScenario(t *testing.T) {
	preset := config.RestockPreset{LeadTimeDays: 7, SafetyStockDays: 7}

	// 10/day through 7 days lead + 7 days safety = 140 units.
	if got := RestockPoint(10, preset); got != 140 {
		t.Errorf("expected restock point 140, got %d", got)
	}
}

func TestRestockPoint_FloorsToWholeUnits(t *testing.T) {
	preset := config.RestockPreset{LeadTimeDays: 7, SafetyStockDays: 7}
	if got := RestockPoint(2.5, preset); got != 35 {
		t.Errorf("expected 35, got %d", got)
	}
	if got := RestockPoint(2.53, preset); got != 35 {
		t.Errorf("expected floor to 35, got %d", got)
	}
}

func TestRestockPoint_ZeroForIdleItems(t *testing.T) {
	preset := config.RestockPreset{LeadTimeDays: 70, SafetyStockDays: 7}
	if got := RestockPoint(0, preset); got != 0 {
		t.Errorf("no demand means no restock trigger, got %d", got)
	}
}

func TestRestockPoint_MonotonicInRunRateAndLeadTime(t *testing.T) {
	fg := config.RestockPreset{LeadTimeDays: 7, SafetyStockDays: 7}
	rm := config.RestockPreset{LeadTimeDays: 70, SafetyStockDays: 7}

	prev := -1
	for _, rr := range []float64{0.5, 1, 2, 5, 10, 50} {
		got := RestockPoint(rr, fg)
		if got < prev {
			t.Errorf("restock point must not decrease as run rate rises: rr=%g point=%d prev=%d", rr, got, prev)
		}
		prev = got
	}

	if RestockPoint(10, rm) <= RestockPoint(10, fg) {
		t.Error("longer lead time must raise the restock point")
	}
}
