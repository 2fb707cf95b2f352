package alerts

import (
	"reflect"
	"testing"

	"github.com/prymal/inventory-metrics/internal/domain"
)

func defaultThresholds() Thresholds {
	return Thresholds{
		CriticalBelowDays: 60,
		HighBelowDays:     70,
		MediumBelowDays:   100,
	}
}

func TestClassify_BandBoundaries(t *testing.T) {
	th := defaultThresholds()

	tests := []struct {
		days float64
		want domain.Severity
	}{
		{0, domain.SeverityCritical},
		{59.9, domain.SeverityCritical},
		{60, domain.SeverityHigh},
		{69.9, domain.SeverityHigh},
		{70, domain.SeverityMedium},
		{100, domain.SeverityMedium},
		{100.1, domain.SeverityOK},
		{365, domain.SeverityOK},
	}

	for _, tt := range tests {
		if got := th.Classify(tt.days); got != tt.want {
			t.Errorf("Classify(%g) = %s, want %s", tt.days, got, tt.want)
		}
	}
}

func TestClassifyMetrics_OrderedMostUrgentFirst(t *testing.T) {
	rows := []domain.RunRateMetric{
		{InventoryID: 1, EstStockDaysOnHand: 120},
		{InventoryID: 2, EstStockDaysOnHand: 45},
		{InventoryID: 3, EstStockDaysOnHand: 80},
		{InventoryID: 4, EstStockDaysOnHand: 65},
		{InventoryID: 5, EstStockDaysOnHand: 45},
	}

	classified := ClassifyMetrics(rows, defaultThresholds())

	gotIDs := make([]int64, 0, len(classified))
	for _, m := range classified {
		gotIDs = append(gotIDs, m.InventoryID)
	}
	// critical (45, ids 2 then 5), high (65), medium (80), ok (120)
	wantIDs := []int64{2, 5, 4, 3, 1}
	if !reflect.DeepEqual(gotIDs, wantIDs) {
		t.Errorf("expected order %v, got %v", wantIDs, gotIDs)
	}

	if classified[0].Severity != domain.SeverityCritical {
		t.Errorf("expected most urgent first, got %s", classified[0].Severity)
	}
	if classified[len(classified)-1].Severity != domain.SeverityOK {
		t.Errorf("expected ok band last, got %s", classified[len(classified)-1].Severity)
	}
}

func TestClassifyMetrics_Idempotent(t *testing.T) {
	rows := []domain.RunRateMetric{
		{InventoryID: 1, EstStockDaysOnHand: 55},
		{InventoryID: 2, EstStockDaysOnHand: 72},
	}
	th := defaultThresholds()

	first := ClassifyMetrics(rows, th)
	second := ClassifyMetrics(rows, th)
	if !reflect.DeepEqual(first, second) {
		t.Error("reclassifying the same snapshot must yield the same result")
	}
}
