package rawmaterial

import (
	"sort"
	"time"

	"github.com/prymal/inventory-metrics/internal/domain"
)

// percentagePrecision is the decimal scale used for in_stock_percentage.
const percentagePrecision = 6

// NetConsumption left-joins on-hand raw material to planned open-MO
// consumption by material key and nets the two. Materials with no planned
// consumption are dropped entirely: shortage here answers "can I fulfill the
// orders already committed to production", not a velocity forecast, so a
// material nobody plans to consume has nothing to be short against.
//
// Output is sorted by material key ascending, so identical inputs always
// produce identical rows in identical order.
func NetConsumption(
	asOf time.Time,
	onHand []domain.RawMaterialOnHand,
	planned []domain.PlannedConsumption,
) []domain.RawMaterialStatus {
	plannedByKey := make(map[string]domain.PlannedConsumption, len(planned))
	for _, p := range planned {
		if existing, ok := plannedByKey[p.MaterialKey]; ok {
			// The source query already groups by material, but summing here
			// keeps the netting correct if it ever stops doing so.
			existing.PlannedQty = existing.PlannedQty.Add(p.PlannedQty)
			if p.AsOfDate.After(existing.AsOfDate) {
				existing.AsOfDate = p.AsOfDate
			}
			plannedByKey[p.MaterialKey] = existing
			continue
		}
		plannedByKey[p.MaterialKey] = p
	}

	statuses := make([]domain.RawMaterialStatus, 0, len(onHand))
	for _, stock := range onHand {
		plan, ok := plannedByKey[stock.MaterialKey]
		if !ok || !plan.PlannedQty.IsPositive() {
			continue
		}

		remaining := stock.InStock.Sub(plan.PlannedQty)
		// plan.PlannedQty > 0 is guaranteed by the filter above, so the
		// percentage is always defined.
		pct := stock.InStock.DivRound(plan.PlannedQty, percentagePrecision)

		statuses = append(statuses, domain.RawMaterialStatus{
			MaterialKey:        stock.MaterialKey,
			Name:               stock.Name,
			UOM:                stock.UOM,
			InStock:            stock.InStock,
			InStockAsOf:        stock.AsOfDate,
			PlannedQty:         plan.PlannedQty,
			PlannedQtyAsOf:     plan.AsOfDate,
			InventoryRemaining: remaining,
			InStockPercentage:  pct,
			NeedsReplenished:   remaining.IsNegative(),
			AsOfDate:           asOf,
		})
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].MaterialKey < statuses[j].MaterialKey
	})
	return statuses
}

// Shortages filters a status snapshot down to the materials that cannot
// cover their planned consumption.
func Shortages(statuses []domain.RawMaterialStatus) []domain.RawMaterialStatus {
	short := make([]domain.RawMaterialStatus, 0)
	for _, s := range statuses {
		if s.NeedsReplenished {
			short = append(short, s)
		}
	}
	return short
}
