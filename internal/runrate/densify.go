package runrate

import (
	"time"

	"github.com/prymal/inventory-metrics/internal/domain"
)

// dateKey normalizes a timestamp to its UTC calendar day.
func dateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Densify expands sparse (item, date, qty) observations into a complete daily
// series per item over [start, end] inclusive, ordered by date ascending.
// Every (item, day) combination in the window is present: days with no
// observation get qty 0, and repeated observations for the same (item, day)
// are summed. The EWMA downstream is order- and gap-sensitive, so dropping
// zero-sales days would inflate the run rate.
//
// Items with zero observations in the window do not appear at all; no
// synthetic all-zero series is invented for items with no sales history.
func Densify(obs []domain.DailySales, start, end time.Time) map[int64][]domain.DailySales {
	start = dateKey(start)
	end = dateKey(end)

	series := make(map[int64][]domain.DailySales)
	if end.Before(start) {
		return series
	}

	// Sum observed quantities by (item, day).
	observed := make(map[int64]map[time.Time]int)
	for _, o := range obs {
		day := dateKey(o.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		byDay, ok := observed[o.InventoryID]
		if !ok {
			byDay = make(map[time.Time]int)
			observed[o.InventoryID] = byDay
		}
		byDay[day] += o.QtySold
	}

	days := int(end.Sub(start).Hours()/24) + 1
	for itemID, byDay := range observed {
		full := make([]domain.DailySales, 0, days)
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			full = append(full, domain.DailySales{
				InventoryID: itemID,
				Date:        day,
				QtySold:     byDay[day],
			})
		}
		series[itemID] = full
	}

	return series
}
