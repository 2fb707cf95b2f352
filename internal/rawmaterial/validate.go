package rawmaterial

import (
	"fmt"
	"strings"

	"github.com/prymal/inventory-metrics/internal/domain"
)

// ValidateStatuses applies schema checks to the netted output rows. Any
// failure rejects the whole batch; a half-written status partition would
// silently hide shortages.
func ValidateStatuses(rows []domain.RawMaterialStatus) error {
	var problems []string
	for _, s := range rows {
		if s.MaterialKey == "" {
			problems = append(problems, "row with empty material key")
			continue
		}
		if s.Name == "" {
			problems = append(problems, fmt.Sprintf("%s: empty name", s.MaterialKey))
		}
		if s.UOM == "" {
			problems = append(problems, fmt.Sprintf("%s: empty units_of_measure", s.MaterialKey))
		}
		if !s.PlannedQty.IsPositive() {
			// The join filter only keeps materials with planned consumption;
			// a non-positive planned qty here means the filter was bypassed.
			problems = append(problems, fmt.Sprintf("%s: planned_qty not positive", s.MaterialKey))
		}
		if s.InStock.IsNegative() {
			problems = append(problems, fmt.Sprintf("%s: negative in_stock", s.MaterialKey))
		}
		if !s.InventoryRemaining.Equal(s.InStock.Sub(s.PlannedQty)) {
			problems = append(problems, fmt.Sprintf("%s: inventory_remaining does not net", s.MaterialKey))
		}
		if s.NeedsReplenished != s.InventoryRemaining.IsNegative() {
			problems = append(problems, fmt.Sprintf("%s: needs_replenished flag inconsistent", s.MaterialKey))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d invalid status record(s): %s", len(problems), strings.Join(problems, "; "))
	}
	return nil
}
