// Package derivation computes comparative metrics over aligned points.
//
// Every function is total: missing inputs, unaligned points, empty series
// and division by zero yield nil rather than NaN, an error or a panic.
// Nullable numbers are represented as *float64.
package derivation

import (
	"time"

	"marketdesk/internal/alignment"
	"marketdesk/pkg/contracts/domain"
)

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// Value dereferences p, reporting whether it was set
func Value(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// PercentChange returns cur/prev - 1
func PercentChange(cur, prev *float64) *float64 {
	if cur == nil || prev == nil || *prev == 0 {
		return nil
	}
	c, p := *cur, *prev
	return Float(c/p - 1)
}

// NominalChange returns cur - prev
func NominalChange(cur, prev *float64) *float64 {
	if cur == nil || prev == nil {
		return nil
	}
	return Float(*cur - *prev)
}

// Scale multiplies v by factor, keeping nil
func Scale(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v * factor)
}

// WeekAgo returns the same weekday one week earlier
func WeekAgo(t time.Time) time.Time {
	return t.AddDate(0, 0, -7)
}

// AlignedValue returns the value of the operative point for target
func AlignedValue(series domain.Series, target time.Time, maxGapDays int) *float64 {
	p, ok := alignment.GetAlignedPointWithGap(series, target, maxGapDays)
	if !ok {
		return nil
	}
	return Float(p.Value)
}

// Slope returns aligned right minus aligned left, each side aligned on its own
func Slope(left, right domain.Series, target time.Time, maxGapDays int) *float64 {
	return NominalChange(AlignedValue(right, target, maxGapDays), AlignedValue(left, target, maxGapDays))
}
