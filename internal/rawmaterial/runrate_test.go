package rawmaterial

import (
	"context"
	"testing"
	"time"

	"github.com/prymal/inventory-metrics/internal/config"
	"github.com/prymal/inventory-metrics/internal/domain"
)

func rawMaterialPreset() config.RestockPreset {
	return config.RestockPreset{LeadTimeDays: 70, SafetyStockDays: 7}
}

func TestDeriveRunRates_SumsConsumptionAcrossProducts(t *testing.T) {
	asOf := day(2024, 6, 10)
	products := []domain.RunRateMetric{
		{InventoryID: 1, Name: "Cacao Bliss Creamer", RunRate: 10},
		{InventoryID: 2, Name: "Vanilla Latte Creamer", RunRate: 4},
	}
	recipes := []domain.RecipeLine{
		{ProductInventoryID: 1, MaterialKey: "RM-COCONUT-MILK-PWD", MaterialName: "Coconut Milk Powder",
			UOM: "kg", QtyPerUnit: dec("0.2")},
		{ProductInventoryID: 2, MaterialKey: "RM-COCONUT-MILK-PWD", MaterialName: "Coconut Milk Powder",
			UOM: "kg", QtyPerUnit: dec("0.25")},
		{ProductInventoryID: 1, MaterialKey: "RM-CACAO", MaterialName: "Cacao Powder",
			UOM: "kg", QtyPerUnit: dec("0.1")},
	}

	rates := DeriveRunRates(asOf, products, recipes, rawMaterialPreset())
	if len(rates) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(rates))
	}

	// Sorted by material key: RM-CACAO before RM-COCONUT-MILK-PWD.
	cacao := rates[0]
	if cacao.MaterialKey != "RM-CACAO" {
		t.Fatalf("expected RM-CACAO first, got %s", cacao.MaterialKey)
	}
	if !cacao.RunRate.Equal(dec("1")) {
		t.Errorf("expected cacao run rate 1, got %s", cacao.RunRate)
	}

	coconut := rates[1]
	// 10*0.2 + 4*0.25 = 3 kg/day.
	if !coconut.RunRate.Equal(dec("3")) {
		t.Errorf("expected coconut run rate 3, got %s", coconut.RunRate)
	}
	// 3/day through 70 days lead + 7 days safety = 231 kg.
	if !coconut.RestockPoint.Equal(dec("231")) {
		t.Errorf("expected coconut restock point 231, got %s", coconut.RestockPoint)
	}
	if !coconut.AsOfDate.Equal(asOf) {
		t.Errorf("expected as-of date %s, got %s", asOf.Format("2006-01-02"), coconut.AsOfDate.Format("2006-01-02"))
	}
}

func TestDeriveRunRates_IdleAndUnknownProductsContributeNothing(t *testing.T) {
	products := []domain.RunRateMetric{
		{InventoryID: 1, RunRate: 0},
		{InventoryID: 2, RunRate: 5},
	}
	recipes := []domain.RecipeLine{
		// Only consumed by the idle product: absent from the output.
		{ProductInventoryID: 1, MaterialKey: "RM-STEVIA", MaterialName: "Stevia Extract",
			UOM: "kg", QtyPerUnit: dec("0.05")},
		// Consumed by a product outside the run-rate snapshot: skipped.
		{ProductInventoryID: 99, MaterialKey: "RM-MCT-OIL", MaterialName: "MCT Oil Powder",
			UOM: "kg", QtyPerUnit: dec("0.3")},
		{ProductInventoryID: 2, MaterialKey: "RM-CINNAMON", MaterialName: "Ceylon Cinnamon",
			UOM: "kg", QtyPerUnit: dec("0.02")},
	}

	rates := DeriveRunRates(day(2024, 6, 10), products, recipes, rawMaterialPreset())
	if len(rates) != 1 {
		t.Fatalf("expected only the moving product's material, got %d rows", len(rates))
	}
	if rates[0].MaterialKey != "RM-CINNAMON" {
		t.Errorf("unexpected material %s", rates[0].MaterialKey)
	}
	if !rates[0].RunRate.Equal(dec("0.1")) {
		t.Errorf("expected run rate 0.1, got %s", rates[0].RunRate)
	}
}

func TestDeriveRunRates_RestockPointScalesWithLeadTime(t *testing.T) {
	products := []domain.RunRateMetric{{InventoryID: 1, RunRate: 2}}
	recipes := []domain.RecipeLine{
		{ProductInventoryID: 1, MaterialKey: "RM-A", MaterialName: "a", UOM: "kg", QtyPerUnit: dec("1")},
	}

	short := DeriveRunRates(day(2024, 6, 10), products, recipes,
		config.RestockPreset{LeadTimeDays: 7, SafetyStockDays: 7})
	long := DeriveRunRates(day(2024, 6, 10), products, recipes, rawMaterialPreset())

	if !short[0].RestockPoint.Equal(dec("28")) {
		t.Errorf("expected restock point 28 at 7/7, got %s", short[0].RestockPoint)
	}
	if !long[0].RestockPoint.Equal(dec("154")) {
		t.Errorf("expected restock point 154 at 70/7, got %s", long[0].RestockPoint)
	}
	if !long[0].RestockPoint.GreaterThan(short[0].RestockPoint) {
		t.Error("longer lead time must raise the restock point")
	}
}

type fakeProducts struct {
	rows []domain.RunRateMetric
}

func (f *fakeProducts) ReplaceRunRatePartition(context.Context, time.Time, []domain.RunRateMetric) error {
	return nil
}

func (f *fakeProducts) LatestRunRateMetrics(context.Context) ([]domain.RunRateMetric, error) {
	return f.rows, nil
}

type fakeRecipes struct {
	rows []domain.RecipeLine
}

func (f *fakeRecipes) FetchRecipeLines(context.Context) ([]domain.RecipeLine, error) {
	return f.rows, nil
}

type fakeRateStore struct {
	writes   int
	lastAsOf time.Time
	lastRows []domain.RawMaterialRunRate
}

func (f *fakeRateStore) ReplaceMaterialRunRatePartition(_ context.Context, asOf time.Time, rows []domain.RawMaterialRunRate) error {
	f.writes++
	f.lastAsOf = asOf
	f.lastRows = rows
	return nil
}

func TestRunRatePipeline_WritesDerivedPartition(t *testing.T) {
	products := &fakeProducts{rows: []domain.RunRateMetric{
		{InventoryID: 1, Name: "Cacao Bliss Creamer", RunRate: 10},
	}}
	recipes := &fakeRecipes{rows: []domain.RecipeLine{
		{ProductInventoryID: 1, MaterialKey: "RM-CACAO", MaterialName: "Cacao Powder",
			UOM: "kg", QtyPerUnit: dec("0.1")},
	}}
	store := &fakeRateStore{}

	p := NewRunRatePipeline(products, recipes, store, rawMaterialPreset(), nil)
	asOf := day(2024, 6, 10)
	if err := p.Run(context.Background(), asOf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.writes != 1 {
		t.Fatalf("expected 1 partition write, got %d", store.writes)
	}
	if !store.lastAsOf.Equal(asOf) {
		t.Errorf("expected partition date %s, got %s", asOf.Format("2006-01-02"), store.lastAsOf.Format("2006-01-02"))
	}
	if len(store.lastRows) != 1 {
		t.Fatalf("expected 1 material, got %d", len(store.lastRows))
	}
	if !store.lastRows[0].RestockPoint.Equal(dec("77")) {
		t.Errorf("expected restock point 77 (1 kg/day through 70+7 days), got %s", store.lastRows[0].RestockPoint)
	}
}

func TestRunRatePipeline_EmptyUpstreamSkipsWrite(t *testing.T) {
	store := &fakeRateStore{}

	p := NewRunRatePipeline(&fakeProducts{}, &fakeRecipes{rows: []domain.RecipeLine{
		{ProductInventoryID: 1, MaterialKey: "RM-A", QtyPerUnit: dec("1")},
	}}, store, rawMaterialPreset(), nil)
	if err := p.Run(context.Background(), day(2024, 6, 10)); err != nil {
		t.Fatalf("missing run rate partition is not an error: %v", err)
	}
	if store.writes != 0 {
		t.Errorf("expected no write without a run rate partition, got %d", store.writes)
	}

	p = NewRunRatePipeline(&fakeProducts{rows: []domain.RunRateMetric{
		{InventoryID: 1, RunRate: 5},
	}}, &fakeRecipes{}, store, rawMaterialPreset(), nil)
	if err := p.Run(context.Background(), day(2024, 6, 10)); err != nil {
		t.Fatalf("missing recipes is not an error: %v", err)
	}
	if store.writes != 0 {
		t.Errorf("expected no write without recipes, got %d", store.writes)
	}
}
