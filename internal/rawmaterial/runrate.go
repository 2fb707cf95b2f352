package rawmaterial

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prymal/inventory-metrics/internal/config"
	"github.com/prymal/inventory-metrics/internal/domain"
	"github.com/prymal/inventory-metrics/internal/warehouse"
	"github.com/prymal/inventory-metrics/pkg/logger"
)

// runRatePrecision is the decimal scale for derived consumption rates.
const runRatePrecision = 6

// DeriveRunRates converts finished-goods run rates into per-material daily
// consumption: for each recipe line, the product's velocity times the
// material quantity required per unit, summed across every product consuming
// the material. The restock point covers that velocity through the
// raw-material procurement lead time plus the safety buffer.
//
// Materials consumed only by products with no current velocity are absent,
// and recipe lines for products outside the run-rate snapshot are skipped.
// Output is sorted by material key ascending.
func DeriveRunRates(
	asOf time.Time,
	products []domain.RunRateMetric,
	recipes []domain.RecipeLine,
	preset config.RestockPreset,
) []domain.RawMaterialRunRate {
	rateByProduct := make(map[int64]decimal.Decimal, len(products))
	for _, p := range products {
		if p.RunRate > 0 {
			rateByProduct[p.InventoryID] = decimal.NewFromFloat(p.RunRate)
		}
	}

	coverDays := decimal.NewFromInt(int64(preset.LeadTimeDays + preset.SafetyStockDays))

	agg := make(map[string]domain.RawMaterialRunRate)
	for _, line := range recipes {
		productRate, ok := rateByProduct[line.ProductInventoryID]
		if !ok {
			continue
		}
		consumption := productRate.Mul(line.QtyPerUnit)

		existing, ok := agg[line.MaterialKey]
		if !ok {
			agg[line.MaterialKey] = domain.RawMaterialRunRate{
				MaterialKey: line.MaterialKey,
				Name:        line.MaterialName,
				UOM:         line.UOM,
				RunRate:     consumption,
				AsOfDate:    asOf,
			}
			continue
		}
		existing.RunRate = existing.RunRate.Add(consumption)
		agg[line.MaterialKey] = existing
	}

	rates := make([]domain.RawMaterialRunRate, 0, len(agg))
	for _, r := range agg {
		r.RunRate = r.RunRate.Round(runRatePrecision)
		r.RestockPoint = r.RunRate.Mul(coverDays).Round(runRatePrecision)
		rates = append(rates, r)
	}
	sort.Slice(rates, func(i, j int) bool {
		return rates[i].MaterialKey < rates[j].MaterialKey
	})
	return rates
}

// RunRateSnapshotSink mirrors a finished run-rate partition to object
// storage.
type RunRateSnapshotSink interface {
	WriteRawMaterialRunRateSnapshot(ctx context.Context, asOf time.Time, rows []domain.RawMaterialRunRate) error
}

// RunRatePipeline converts the latest finished-goods run-rate partition into
// raw-material consumption velocities and restock points via the product
// recipes.
type RunRatePipeline struct {
	products warehouse.MetricStore
	recipes  warehouse.RecipeSource
	rates    warehouse.MaterialRunRateStore
	preset   config.RestockPreset
	snapshot RunRateSnapshotSink
}

func NewRunRatePipeline(
	products warehouse.MetricStore,
	recipes warehouse.RecipeSource,
	rates warehouse.MaterialRunRateStore,
	preset config.RestockPreset,
	snapshot RunRateSnapshotSink,
) *RunRatePipeline {
	return &RunRatePipeline{
		products: products,
		recipes:  recipes,
		rates:    rates,
		preset:   preset,
		snapshot: snapshot,
	}
}

// Run executes one derivation batch for the given as-of date.
func (p *RunRatePipeline) Run(ctx context.Context, asOf time.Time) error {
	asOf = time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	log := logger.Component("raw_material_run_rate").With().
		Str("as_of", asOf.Format("2006-01-02")).
		Logger()

	log.Info().Msg("starting raw material run rate batch")

	products, err := p.products.LatestRunRateMetrics(ctx)
	if err != nil {
		return fmt.Errorf("fetch latest run rate metrics: %w", err)
	}
	if len(products) == 0 {
		log.Info().Msg("no finished goods run rate partition, skipping run")
		return nil
	}

	recipes, err := p.recipes.FetchRecipeLines(ctx)
	if err != nil {
		return fmt.Errorf("fetch recipe lines: %w", err)
	}
	if len(recipes) == 0 {
		log.Info().Msg("no recipe lines, skipping run")
		return nil
	}

	rates := DeriveRunRates(asOf, products, recipes, p.preset)
	if len(rates) == 0 {
		log.Info().Msg("no materials consumed by moving products, skipping run")
		return nil
	}

	log.Info().
		Int("products", len(products)).
		Int("recipe_lines", len(recipes)).
		Int("materials", len(rates)).
		Msg("derivation complete")

	if err := p.rates.ReplaceMaterialRunRatePartition(ctx, asOf, rates); err != nil {
		return fmt.Errorf("write raw material run rate partition: %w", err)
	}

	if p.snapshot != nil {
		if err := p.snapshot.WriteRawMaterialRunRateSnapshot(ctx, asOf, rates); err != nil {
			return fmt.Errorf("mirror raw material run rate snapshot: %w", err)
		}
	}

	log.Info().Int("rows", len(rates)).Msg("raw material run rate batch complete")
	return nil
}
