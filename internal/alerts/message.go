package alerts

import (
	"fmt"
	"strings"
	"time"

	"github.com/prymal/inventory-metrics/internal/domain"
)

// Payload is one alert ready for delivery to the notification channel.
type Payload struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

const (
	finishedGoodsSubject = "Inventory Run Rate Alert"
	rawMaterialSubject   = "Raw Material Status Alert"
)

// BuildFinishedGoodsAlert formats one multi-line alert listing every
// finished-goods item below the ok band, grouped by severity. Returns false
// when no item crosses a threshold.
func BuildFinishedGoodsAlert(classified []domain.ClassifiedMetric) (Payload, bool) {
	bands := map[domain.Severity][]domain.ClassifiedMetric{}
	for _, m := range classified {
		if m.Severity == domain.SeverityOK {
			continue
		}
		bands[m.Severity] = append(bands[m.Severity], m)
	}
	if len(bands) == 0 {
		return Payload{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n\n", finishedGoodsSubject)
	b.WriteString("The following products are approaching stockout at their current run rate:\n")

	for _, sev := range []domain.Severity{domain.SeverityCritical, domain.SeverityHigh, domain.SeverityMedium} {
		items := bands[sev]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%d):\n", strings.ToUpper(string(sev)), len(items))
		for _, m := range items {
			fmt.Fprintf(&b, "  - %s (inventory_id %d): %.1f days on hand, run rate %.2f/day, on hand %d, restock point %d\n",
				m.Name, m.InventoryID, m.EstStockDaysOnHand, m.RunRate,
				m.TotalFulfillableQuantity, m.RestockPoint)
		}
	}

	return Payload{Subject: finishedGoodsSubject, Body: b.String()}, true
}

// BuildRawMaterialAlert formats the shortage alert naming every raw material
// that cannot cover its planned open-MO consumption. Returns false when
// nothing needs replenishment.
func BuildRawMaterialAlert(statuses []domain.RawMaterialStatus) (Payload, bool) {
	var (
		short   []domain.RawMaterialStatus
		maxAsOf time.Time
	)
	for _, s := range statuses {
		if !s.NeedsReplenished {
			continue
		}
		short = append(short, s)
		if s.PlannedQtyAsOf.After(maxAsOf) {
			maxAsOf = s.PlannedQtyAsOf
		}
	}
	if len(short) == 0 {
		return Payload{}, false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n\n", rawMaterialSubject)
	fmt.Fprintf(&b, "The following materials need replenished to fulfill upcoming open MOs as of %s:\n\n",
		maxAsOf.Format("2006-01-02"))
	for _, s := range short {
		fmt.Fprintf(&b, "  - %s: in stock %s %s, planned %s, remaining %s\n",
			s.Name, s.InStock.String(), s.UOM, s.PlannedQty.String(), s.InventoryRemaining.String())
	}

	return Payload{Subject: rawMaterialSubject, Body: b.String()}, true
}
