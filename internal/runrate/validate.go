package runrate

import (
	"fmt"
	"math"
	"strings"

	"github.com/prymal/inventory-metrics/internal/domain"
)

// InvalidRecord describes one output row that failed validation.
type InvalidRecord struct {
	InventoryID int64
	Field       string
	Reason      string
}

func (r InvalidRecord) String() string {
	return fmt.Sprintf("inventory_id=%d field=%s: %s", r.InventoryID, r.Field, r.Reason)
}

// ValidationError aggregates every record that failed validation. When any
// record is invalid the whole batch is rejected; publishing half-valid
// metrics is worse than publishing none.
type ValidationError struct {
	Invalid []InvalidRecord
}

func (e *ValidationError) Error() string {
	reasons := make([]string, 0, len(e.Invalid))
	for _, r := range e.Invalid {
		reasons = append(reasons, r.String())
	}
	return fmt.Sprintf("%d invalid metric record(s): %s", len(e.Invalid), strings.Join(reasons, "; "))
}

// ValidateMetrics applies type/range checks to the final output rows. The
// numeric edge cases (zero run rate, over-cap days) are expected to have been
// clamped upstream, so NaN/Inf or out-of-range values here mean a bug, and
// the run must abort before anything is written.
func ValidateMetrics(rows []domain.RunRateMetric, maxDays float64) error {
	if maxDays <= 0 {
		maxDays = DefaultMaxDaysOnHand
	}

	var invalid []InvalidRecord
	for _, m := range rows {
		switch {
		case math.IsNaN(m.RunRate) || math.IsInf(m.RunRate, 0):
			invalid = append(invalid, InvalidRecord{m.InventoryID, "run_rate", "not finite"})
		case m.RunRate < 0:
			invalid = append(invalid, InvalidRecord{m.InventoryID, "run_rate", "negative"})
		}
		if math.IsNaN(m.EstStockDaysOnHand) || math.IsInf(m.EstStockDaysOnHand, 0) {
			invalid = append(invalid, InvalidRecord{m.InventoryID, "est_stock_days_on_hand", "not finite"})
		} else if m.EstStockDaysOnHand < 0 || m.EstStockDaysOnHand > maxDays {
			invalid = append(invalid, InvalidRecord{m.InventoryID, "est_stock_days_on_hand",
				fmt.Sprintf("outside [0, %g]", maxDays)})
		}
		if m.TotalFulfillableQuantity < 0 {
			invalid = append(invalid, InvalidRecord{m.InventoryID, "total_fulfillable_quantity", "negative"})
		}
		if m.RestockPoint < 0 {
			invalid = append(invalid, InvalidRecord{m.InventoryID, "restock_point", "negative"})
		}
		if m.Name == "" {
			invalid = append(invalid, InvalidRecord{m.InventoryID, "name", "empty"})
		}
		if m.EstimatedStockoutDate.IsZero() {
			invalid = append(invalid, InvalidRecord{m.InventoryID, "estimated_stockout_date", "unset"})
		}
		if math.IsNaN(m.Skew) || math.IsInf(m.Skew, 0) {
			invalid = append(invalid, InvalidRecord{m.InventoryID, "skew", "not finite"})
		}
		if math.IsNaN(m.Kurtosis) || math.IsInf(m.Kurtosis, 0) {
			invalid = append(invalid, InvalidRecord{m.InventoryID, "kurtosis", "not finite"})
		}
	}

	if len(invalid) > 0 {
		return &ValidationError{Invalid: invalid}
	}
	return nil
}
