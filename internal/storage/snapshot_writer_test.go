package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prymal/inventory-metrics/internal/domain"
)

type fakeObjectStore struct {
	lastKey         string
	lastData        []byte
	lastContentType string
	uploads         int
}

func (f *fakeObjectStore) ListObjects(context.Context, string) ([]ObjectInfo, error) {
	return nil, nil
}

func (f *fakeObjectStore) UploadObject(_ context.Context, key string, data []byte, contentType string) error {
	f.uploads++
	f.lastKey = key
	f.lastData = data
	f.lastContentType = contentType
	return nil
}

func TestWriteRunRateSnapshot_KeyLayoutAndContent(t *testing.T) {
	store := &fakeObjectStore{}
	w := NewSnapshotWriter(store)
	asOf := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	rows := []domain.RunRateMetric{
		{
			InventoryID:              42,
			Name:                     "Cacao Bliss Creamer",
			RunRate:                  2.5,
			TotalFulfillableQuantity: 120,
			EstStockDaysOnHand:       48,
			EstimatedStockoutDate:    asOf.AddDate(0, 0, 48),
			RestockPoint:             35,
			ActiveFlag:               true,
			AsOfDate:                 asOf,
		},
	}

	if err := w.WriteRunRateSnapshot(context.Background(), asOf, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKey := "shipbob/inventory_run_rate/partition_date=2024-06-10/shipbob_inventory_run_rate_2024_06_10.csv"
	if store.lastKey != wantKey {
		t.Errorf("expected key %q, got %q", wantKey, store.lastKey)
	}
	if store.lastContentType != "text/csv" {
		t.Errorf("expected content type text/csv, got %q", store.lastContentType)
	}

	lines := strings.Split(strings.TrimRight(string(store.lastData), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "inventory_id,name,run_rate") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "42,Cacao Bliss Creamer,2.5,120,48,2024-07-28,35,true,0,0" {
		t.Errorf("unexpected data row: %s", lines[1])
	}
}

func TestWriteRawMaterialSnapshot_KeyLayout(t *testing.T) {
	store := &fakeObjectStore{}
	w := NewSnapshotWriter(store)
	asOf := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	rows := []domain.RawMaterialStatus{
		{
			MaterialKey:        "RM-COCONUT-MILK-PWD",
			Name:               "Coconut Milk Powder",
			UOM:                "kg",
			InStock:            decimal.RequireFromString("100"),
			InStockAsOf:        asOf.AddDate(0, 0, -1),
			PlannedQty:         decimal.RequireFromString("150"),
			PlannedQtyAsOf:     asOf.AddDate(0, 0, -1),
			InventoryRemaining: decimal.RequireFromString("-50"),
			InStockPercentage:  decimal.RequireFromString("0.666667"),
			NeedsReplenished:   true,
			AsOfDate:           asOf,
		},
	}

	if err := w.WriteRawMaterialSnapshot(context.Background(), asOf, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKey := "katana/raw_material_status/partition_date=2024-06-10/katana_raw_material_status_2024_06_10.csv"
	if store.lastKey != wantKey {
		t.Errorf("expected key %q, got %q", wantKey, store.lastKey)
	}
	if !strings.Contains(string(store.lastData), "RM-COCONUT-MILK-PWD,Coconut Milk Powder,kg,100,") {
		t.Errorf("unexpected data: %s", store.lastData)
	}
}

func TestWriteRawMaterialRunRateSnapshot_KeyLayout(t *testing.T) {
	store := &fakeObjectStore{}
	w := NewSnapshotWriter(store)
	asOf := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	rows := []domain.RawMaterialRunRate{
		{
			MaterialKey:  "RM-CACAO",
			Name:         "Cacao Powder",
			UOM:          "kg",
			RunRate:      decimal.RequireFromString("1.5"),
			RestockPoint: decimal.RequireFromString("115.5"),
			AsOfDate:     asOf,
		},
	}

	if err := w.WriteRawMaterialRunRateSnapshot(context.Background(), asOf, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKey := "katana/raw_material_run_rate/partition_date=2024-06-10/katana_raw_material_run_rate_2024_06_10.csv"
	if store.lastKey != wantKey {
		t.Errorf("expected key %q, got %q", wantKey, store.lastKey)
	}
	if !strings.Contains(string(store.lastData), "RM-CACAO,Cacao Powder,kg,1.5,115.5") {
		t.Errorf("unexpected data: %s", store.lastData)
	}
}

func TestScrubField_ReplacesHostileCharacters(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`Cacao "Bliss" Creamer`, "Cacao 'Bliss' Creamer"},
		{"line one\nline two", "line one line two"},
		{"creamer, vanilla", "creamer; vanilla"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := scrubField(tt.in); got != tt.want {
			t.Errorf("scrubField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
