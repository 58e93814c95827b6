package metric

import "math"

// LeetCode store constants for the shirt estimate.
const (
	ShirtPrice    = 6000
	CoinsPerMonth = 550
)

// Estimate is the outcome of MonthsToTarget: a month count, or no estimate.
// The zero value carries no estimate.
type Estimate struct {
	months int
	ok     bool
}

// Months returns the month count and whether an estimate is available.
func (e Estimate) Months() (int, bool) { return e.months, e.ok }

// Available reports whether the estimate carries a month count.
func (e Estimate) Available() bool { return e.ok }

// MonthsToTarget returns ceil((target - balance) / perMonth).
//
// There is no estimate when balance is NaN, infinite or negative, when
// perMonth is not a positive finite number, when target is not finite, or
// when the result does not fit in an int32. A balance above target yields a
// negative count.
func MonthsToTarget(balance, target, perMonth float64) Estimate {
	if math.IsNaN(balance) || math.IsInf(balance, 0) || balance < 0 {
		return Estimate{}
	}
	if math.IsNaN(perMonth) || math.IsInf(perMonth, 0) || perMonth <= 0 {
		return Estimate{}
	}
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return Estimate{}
	}
	m := math.Ceil((target - balance) / perMonth)
	if m > math.MaxInt32 || m < math.MinInt32 {
		return Estimate{}
	}
	return Estimate{months: int(m), ok: true}
}

// ShirtEstimate is MonthsToTarget with the default LeetCode store constants.
func ShirtEstimate(coins float64) Estimate {
	return MonthsToTarget(coins, ShirtPrice, CoinsPerMonth)
}
