package derivation

import (
	"time"

	"marketdesk/pkg/contracts/domain"
)

// ExtremumMode selects the maximum or the minimum
type ExtremumMode int

const (
	High ExtremumMode = iota
	Low
)

// String returns "high" or "low"
func (m ExtremumMode) String() string {
	if m == Low {
		return "low"
	}
	return "high"
}

// better reports whether candidate replaces current; ties go to candidate
// so that, scanning forward, the most recent point wins
func (m ExtremumMode) better(candidate, current float64) bool {
	if m == Low {
		return candidate <= current
	}
	return candidate >= current
}

// RollingHigh returns the maximum value with time in [end-window, end].
// When that window is empty it falls back to all points at or before end.
func RollingHigh(series domain.Series, end time.Time, window time.Duration) *float64 {
	return rollingExtremum(series, end, window, High)
}

// RollingLow is RollingHigh for the minimum
func RollingLow(series domain.Series, end time.Time, window time.Duration) *float64 {
	return rollingExtremum(series, end, window, Low)
}

func rollingExtremum(series domain.Series, end time.Time, window time.Duration, mode ExtremumMode) *float64 {
	end = domain.TruncateDay(end)
	candidates := series.Between(end.Add(-window), end)
	if len(candidates) == 0 {
		first, ok := series.First()
		if !ok {
			return nil
		}
		candidates = series.Between(first.Time, end)
	}
	if len(candidates) == 0 {
		return nil
	}

	best := candidates[0].Value
	for _, p := range candidates[1:] {
		if mode.better(p.Value, best) {
			best = p.Value
		}
	}
	return Float(best)
}

// YearStart returns Jan 1 00:00 UTC of year
func YearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// YearStartAnchor returns the last point at or before Jan 1 of year, else
// the first point inside that calendar year.
func YearStartAnchor(series domain.Series, year int) (domain.PricePoint, bool) {
	start := YearStart(year)

	before := series.Between(time.Time{}, start)
	if len(before) > 0 {
		return before[len(before)-1], true
	}

	within := series.Between(start, YearStart(year+1).Add(-time.Nanosecond))
	if len(within) > 0 {
		return within[0], true
	}
	return domain.PricePoint{}, false
}

// YearStartValue is YearStartAnchor as a nullable value
func YearStartValue(series domain.Series, year int) *float64 {
	p, ok := YearStartAnchor(series, year)
	if !ok {
		return nil
	}
	return Float(p.Value)
}

// CycleExtremum scans points 0..activeIndex whose time is no earlier than
// activeTime shifted back by months calendar months, and returns the point
// with the highest (High) or lowest (Low) value. Ties go to the most recent.
func CycleExtremum(series domain.Series, activeIndex int, mode ExtremumMode, months int, activeTime time.Time) (domain.PricePoint, bool) {
	if activeIndex < 0 || series.IsEmpty() {
		return domain.PricePoint{}, false
	}
	if activeIndex >= series.Len() {
		activeIndex = series.Len() - 1
	}

	from := domain.TruncateDay(activeTime).AddDate(0, -months, 0)

	var (
		best  domain.PricePoint
		found bool
	)
	for i := 0; i <= activeIndex; i++ {
		p := series.At(i)
		if p.Time.Before(from) {
			continue
		}
		if !found || mode.better(p.Value, best.Value) {
			best = p
			found = true
		}
	}
	return best, found
}
