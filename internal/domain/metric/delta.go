// Package metric computes the small derived values shown next to leaderboard
// entries. All functions are pure and defined for every float64 input.
package metric

// Trend classifies the sign of a Change.
type Trend string

// Trend values.
const (
	TrendIncrease  Trend = "increase"
	TrendDecrease  Trend = "decrease"
	TrendUnchanged Trend = "unchanged"
)

// Change is the difference between a current and a previous value.
type Change struct {
	value float64
	trend Trend
}

// Delta returns current - previous classified by exact comparison.
// No tolerance is applied, so 1500.0000001 vs 1500 is an increase.
// A NaN difference classifies as unchanged.
func Delta(current, previous float64) Change {
	v := current - previous
	switch {
	case v > 0:
		return Change{value: v, trend: TrendIncrease}
	case v < 0:
		return Change{value: v, trend: TrendDecrease}
	}
	return Change{value: v, trend: TrendUnchanged}
}

// Value returns the signed difference.
func (c Change) Value() float64 { return c.value }

// Trend returns the classification.
func (c Change) Trend() Trend { return c.trend }
