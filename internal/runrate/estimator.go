package runrate

import (
	"fmt"
	"math"
	"sort"

	"github.com/prymal/inventory-metrics/internal/domain"
)

// SeriesStats summarizes one item's densified daily-quantity series: the
// smoothed sales velocity plus the distribution shape statistics used to
// tell steady sellers apart from spiky, limited-edition items.
type SeriesStats struct {
	RunRate  float64
	Skew     float64
	Kurtosis float64
}

// EWMA applies the exponentially weighted moving average recurrence
//
//	S_0 = x_0; S_t = alpha*x_t + (1-alpha)*S_{t-1}
//
// over a chronologically ordered series and returns the final smoothed value.
// Recent observations carry the most weight, so trend shifts show up faster
// than in a flat trailing average. An empty series yields 0.
func EWMA(values []float64, alpha float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := values[0]
	for _, x := range values[1:] {
		s = alpha*x + (1-alpha)*s
	}
	return s
}

// Skewness returns the third standardized moment of the series. Zero-variance
// series (constant demand) are defined as 0 rather than 0/0.
func Skewness(values []float64) float64 {
	mean, variance := meanVariance(values)
	if variance == 0 {
		return 0
	}
	var m3 float64
	for _, x := range values {
		d := x - mean
		m3 += d * d * d
	}
	m3 /= float64(len(values))
	return m3 / math.Pow(variance, 1.5)
}

// Kurtosis returns the fourth standardized moment of the series (a normal
// distribution sits near 3). Zero-variance series are defined as 0.
func Kurtosis(values []float64) float64 {
	mean, variance := meanVariance(values)
	if variance == 0 {
		return 0
	}
	var m4 float64
	for _, x := range values {
		d := x - mean
		m4 += d * d * d * d
	}
	m4 /= float64(len(values))
	return m4 / (variance * variance)
}

func meanVariance(values []float64) (mean, variance float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	for _, x := range values {
		mean += x
	}
	mean /= n
	for _, x := range values {
		d := x - mean
		variance += d * d
	}
	variance /= n
	return mean, variance
}

// ComputeSeriesStats computes run rate and shape statistics for one item's
// ordered daily series. It is a pure function: items can be computed
// independently and in parallel with no shared state.
func ComputeSeriesStats(series []domain.DailySales, alpha float64) SeriesStats {
	values := make([]float64, len(series))
	for i, d := range series {
		values[i] = float64(d.QtySold)
	}
	return SeriesStats{
		RunRate:  EWMA(values, alpha),
		Skew:     Skewness(values),
		Kurtosis: Kurtosis(values),
	}
}

// ActiveFlagConflictError is the fatal data-integrity error raised when the
// active-SKU feed reports both active and inactive for the same item within
// one run. The batch must abort rather than arbitrarily pick a value.
type ActiveFlagConflictError struct {
	InventoryIDs []int64
}

func (e *ActiveFlagConflictError) Error() string {
	return fmt.Sprintf("conflicting active flags for %d inventory item(s): %v", len(e.InventoryIDs), e.InventoryIDs)
}

// ResolveActiveFlags collapses the active-SKU feed to one flag per item.
// Items absent from the feed are treated as inactive by callers; items
// present with conflicting values make the whole run fail.
func ResolveActiveFlags(flags []domain.ActiveSKUFlag) (map[int64]bool, error) {
	resolved := make(map[int64]bool, len(flags))
	conflictSet := make(map[int64]struct{})
	for _, f := range flags {
		if prev, seen := resolved[f.InventoryID]; seen && prev != f.Active {
			conflictSet[f.InventoryID] = struct{}{}
			continue
		}
		resolved[f.InventoryID] = f.Active
	}
	if len(conflictSet) > 0 {
		conflicts := make([]int64, 0, len(conflictSet))
		for id := range conflictSet {
			conflicts = append(conflicts, id)
		}
		sort.Slice(conflicts, func(i, j int) bool { return conflicts[i] < conflicts[j] })
		return nil, &ActiveFlagConflictError{InventoryIDs: conflicts}
	}
	return resolved, nil
}
