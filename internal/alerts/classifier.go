package alerts

import (
	"sort"

	"github.com/prymal/inventory-metrics/internal/config"
	"github.com/prymal/inventory-metrics/internal/domain"
)

// Thresholds are the days-on-hand boundaries between severity bands. They are
// domain-tuned constants supplied by configuration, never hardcoded at the
// call sites.
type Thresholds struct {
	CriticalBelowDays float64
	HighBelowDays     float64
	MediumBelowDays   float64
}

// ThresholdsFromConfig lifts the alert section of the app config.
func ThresholdsFromConfig(cfg config.AlertConfig) Thresholds {
	return Thresholds{
		CriticalBelowDays: cfg.CriticalBelowDays,
		HighBelowDays:     cfg.HighBelowDays,
		MediumBelowDays:   cfg.MediumBelowDays,
	}
}

// Classify maps projected days of cover to a severity band. With the default
// boundaries: <60 critical, [60,70) high, [70,100] medium, >100 ok. The
// classifier is pure; reclassifying the same snapshot always yields the same
// result.
func (t Thresholds) Classify(daysOnHand float64) domain.Severity {
	switch {
	case daysOnHand < t.CriticalBelowDays:
		return domain.SeverityCritical
	case daysOnHand < t.HighBelowDays:
		return domain.SeverityHigh
	case daysOnHand <= t.MediumBelowDays:
		return domain.SeverityMedium
	default:
		return domain.SeverityOK
	}
}

// ClassifyMetrics attaches a severity band to every metric row, ordered most
// urgent first (then by fewest days of cover, then by item id for a stable
// order).
func ClassifyMetrics(rows []domain.RunRateMetric, t Thresholds) []domain.ClassifiedMetric {
	classified := make([]domain.ClassifiedMetric, 0, len(rows))
	for _, m := range rows {
		classified = append(classified, domain.ClassifiedMetric{
			RunRateMetric: m,
			Severity:      t.Classify(m.EstStockDaysOnHand),
		})
	}
	sort.Slice(classified, func(i, j int) bool {
		a, b := classified[i], classified[j]
		if ra, rb := severityRank(a.Severity), severityRank(b.Severity); ra != rb {
			return ra < rb
		}
		if a.EstStockDaysOnHand != b.EstStockDaysOnHand {
			return a.EstStockDaysOnHand < b.EstStockDaysOnHand
		}
		return a.InventoryID < b.InventoryID
	})
	return classified
}

func severityRank(s domain.Severity) int {
	switch s {
	case domain.SeverityCritical:
		return 0
	case domain.SeverityHigh:
		return 1
	case domain.SeverityMedium:
		return 2
	default:
		return 3
	}
}
