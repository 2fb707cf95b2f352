package alerts

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prymal/inventory-metrics/internal/domain"
)

func TestBuildFinishedGoodsAlert_GroupsBySeverity(t *testing.T) {
	classified := []domain.ClassifiedMetric{
		{RunRateMetric: domain.RunRateMetric{
			InventoryID: 1, Name: "Cacao Bliss Creamer", EstStockDaysOnHand: 40,
			RunRate: 12.5, TotalFulfillableQuantity: 500, RestockPoint: 175,
		}, Severity: domain.SeverityCritical},
		{RunRateMetric: domain.RunRateMetric{
			InventoryID: 2, Name: "Vanilla Latte Creamer", EstStockDaysOnHand: 85,
			RunRate: 3.1, TotalFulfillableQuantity: 260, RestockPoint: 43,
		}, Severity: domain.SeverityMedium},
		{RunRateMetric: domain.RunRateMetric{
			InventoryID: 3, Name: "Mocha Creamer", EstStockDaysOnHand: 200,
		}, Severity: domain.SeverityOK},
	}

	payload, ok := BuildFinishedGoodsAlert(classified)
	if !ok {
		t.Fatal("expected an alert payload")
	}
	if payload.Subject != "Inventory Run Rate Alert" {
		t.Errorf("unexpected subject %q", payload.Subject)
	}
	if !strings.Contains(payload.Body, "CRITICAL (1):") {
		t.Errorf("body missing critical band header:\n%s", payload.Body)
	}
	if !strings.Contains(payload.Body, "MEDIUM (1):") {
		t.Errorf("body missing medium band header:\n%s", payload.Body)
	}
	if !strings.Contains(payload.Body, "Cacao Bliss Creamer (inventory_id 1): 40.0 days on hand") {
		t.Errorf("body missing critical item line:\n%s", payload.Body)
	}
	if strings.Contains(payload.Body, "Mocha Creamer") {
		t.Errorf("ok-band items must not appear in the alert:\n%s", payload.Body)
	}
}

func TestBuildFinishedGoodsAlert_NoAlertWhenEverythingOK(t *testing.T) {
	classified := []domain.ClassifiedMetric{
		{RunRateMetric: domain.RunRateMetric{InventoryID: 1, EstStockDaysOnHand: 300}, Severity: domain.SeverityOK},
	}
	if _, ok := BuildFinishedGoodsAlert(classified); ok {
		t.Error("no alert expected when every item is in the ok band")
	}
	if _, ok := BuildFinishedGoodsAlert(nil); ok {
		t.Error("no alert expected for an empty snapshot")
	}
}

func TestBuildRawMaterialAlert_ListsShortagesWithLatestPlanDate(t *testing.T) {
	statuses := []domain.RawMaterialStatus{
		{
			MaterialKey: "RM-COCONUT-MILK-PWD", Name: "Coconut Milk Powder", UOM: "kg",
			InStock:            decimal.RequireFromString("100"),
			PlannedQty:         decimal.RequireFromString("150"),
			InventoryRemaining: decimal.RequireFromString("-50"),
			PlannedQtyAsOf:     time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
			NeedsReplenished:   true,
		},
		{
			MaterialKey: "RM-MCT-OIL", Name: "MCT Oil Powder", UOM: "kg",
			InStock:            decimal.RequireFromString("20"),
			PlannedQty:         decimal.RequireFromString("35"),
			InventoryRemaining: decimal.RequireFromString("-15"),
			PlannedQtyAsOf:     time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),
			NeedsReplenished:   true,
		},
		{
			MaterialKey: "RM-STEVIA", Name: "Stevia Extract", UOM: "kg",
			InStock:            decimal.RequireFromString("40"),
			PlannedQty:         decimal.RequireFromString("10"),
			InventoryRemaining: decimal.RequireFromString("30"),
			NeedsReplenished:   false,
		},
	}

	payload, ok := BuildRawMaterialAlert(statuses)
	if !ok {
		t.Fatal("expected an alert payload")
	}
	if payload.Subject != "Raw Material Status Alert" {
		t.Errorf("unexpected subject %q", payload.Subject)
	}
	if !strings.Contains(payload.Body, "as of 2024-06-09") {
		t.Errorf("body must carry the latest planned as-of date:\n%s", payload.Body)
	}
	if !strings.Contains(payload.Body, "Coconut Milk Powder: in stock 100 kg, planned 150, remaining -50") {
		t.Errorf("body missing shortage line:\n%s", payload.Body)
	}
	if strings.Contains(payload.Body, "Stevia Extract") {
		t.Errorf("covered materials must not appear:\n%s", payload.Body)
	}
}

func TestBuildRawMaterialAlert_NoAlertWithoutShortages(t *testing.T) {
	statuses := []domain.RawMaterialStatus{
		{MaterialKey: "RM-A", NeedsReplenished: false},
	}
	if _, ok := BuildRawMaterialAlert(statuses); ok {
		t.Error("no alert expected when every material is covered")
	}
}
