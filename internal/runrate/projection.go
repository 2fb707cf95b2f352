package runrate

import (
	"math"
	"time"

	"github.com/prymal/inventory-metrics/internal/config"
)

// DefaultMaxDaysOnHand caps the days-on-hand projection. Anything past a year
// of cover is not actionable, so "365+ days of stock" and "will never run out
// at current velocity" are treated identically.
const DefaultMaxDaysOnHand = 365

// DaysOnHand projects how many days the current stock lasts at the given run
// rate, clamped to [0, maxDays]. A run rate of zero would divide to infinity;
// it is clamped to the cap instead of letting NaN/Inf into the output.
func DaysOnHand(onHand int, runRate float64, maxDays float64) float64 {
	if maxDays <= 0 {
		maxDays = DefaultMaxDaysOnHand
	}
	if runRate <= 0 {
		return maxDays
	}
	days := float64(onHand) / runRate
	if days > maxDays {
		return maxDays
	}
	if days < 0 {
		return 0
	}
	return days
}

// StockoutDate is the as-of date advanced by the integer-truncated projected
// days of cover.
func StockoutDate(asOf time.Time, daysOnHand float64) time.Time {
	return asOf.AddDate(0, 0, int(math.Trunc(daysOnHand)))
}

// RestockPoint derives the inventory level at which a replenishment order
// must be triggered: enough stock to cover demand through the procurement
// lead time plus a safety buffer, floored to whole units. It is
// non-decreasing in run rate, lead time, and safety stock.
func RestockPoint(runRate float64, preset config.RestockPreset) int {
	if runRate <= 0 {
		return 0
	}
	point := runRate*float64(preset.LeadTimeDays) + runRate*float64(preset.SafetyStockDays)
	return int(math.Floor(point))
}
