// Package alignment resolves which observation of a series is operative for
// a target date. Every lookup in the dashboard goes through this package so
// the same-week preference and the gap ceiling apply everywhere alike.
//
// The rule has two phases:
//
//  1. The last point at or before the target that falls in the target's ISO
//     week wins, even when it is not the latest point before the target.
//  2. Otherwise the latest point at or before the target is used, but only
//     when it is at most maxGapDays days older than the target.
//
// Lookups are pure: the same series and target always give the same index.
package alignment

import (
	"fmt"
	"sort"
	"time"

	"marketdesk/pkg/contracts/domain"
)

// DefaultMaxGapDays is the staleness ceiling of the fallback phase
const DefaultMaxGapDays = 21

const day = 24 * time.Hour

// WeekKey is an ISO 8601 week (Monday-anchored)
type WeekKey struct {
	Year int
	Week int
}

// String renders the key as YYYY-Www
func (k WeekKey) String() string {
	return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
}

// WeekOf returns the ISO week key of t in UTC
func WeekOf(t time.Time) WeekKey {
	y, w := t.UTC().ISOWeek()
	return WeekKey{Year: y, Week: w}
}

// ResolveAlignedIndex returns the index of the operative point of series
// for target. A non-positive maxGapDays only accepts a fallback point on
// the target day itself.
func ResolveAlignedIndex(series domain.Series, target time.Time, maxGapDays int) (int, bool) {
	return resolve(series.Len(), func(i int) time.Time { return series.At(i).Time }, target, maxGapDays)
}

// ResolveAlignedIndexDefault is ResolveAlignedIndex with DefaultMaxGapDays
func ResolveAlignedIndexDefault(series domain.Series, target time.Time) (int, bool) {
	return ResolveAlignedIndex(series, target, DefaultMaxGapDays)
}

// GetAlignedPoint returns the operative point for target under the default gap
func GetAlignedPoint(series domain.Series, target time.Time) (domain.PricePoint, bool) {
	return GetAlignedPointWithGap(series, target, DefaultMaxGapDays)
}

// GetAlignedPointWithGap returns the operative point for target
func GetAlignedPointWithGap(series domain.Series, target time.Time, maxGapDays int) (domain.PricePoint, bool) {
	idx, ok := ResolveAlignedIndex(series, target, maxGapDays)
	if !ok {
		return domain.PricePoint{}, false
	}
	return series.At(idx), true
}

// ResolveAlignedTime applies the same rule to an ascending list of timestamps
func ResolveAlignedTime(times []time.Time, target time.Time, maxGapDays int) (int, bool) {
	return resolve(len(times), func(i int) time.Time { return times[i] }, target, maxGapDays)
}

// AlignedSnapshot returns the futures snapshot operative for target
func AlignedSnapshot(snapshots []domain.FedFutureSnapshot, target time.Time, maxGapDays int) (domain.FedFutureSnapshot, bool) {
	idx, ok := resolve(len(snapshots), func(i int) time.Time { return snapshots[i].Time }, target, maxGapDays)
	if !ok {
		return domain.FedFutureSnapshot{}, false
	}
	return snapshots[idx], true
}

func resolve(n int, at func(int) time.Time, target time.Time, maxGapDays int) (int, bool) {
	if n == 0 {
		return 0, false
	}

	target = domain.TruncateDay(target)

	// last index with time <= target
	last := sort.Search(n, func(i int) bool { return at(i).After(target) }) - 1
	if last < 0 {
		return 0, false
	}

	week := WeekOf(target)
	for i := last; i >= 0; i-- {
		t := at(i)
		if WeekOf(t) == week {
			return i, true
		}
		// points only get older from here; once before the week's Monday
		// there can be no same-week match
		if target.Sub(t) >= 7*day {
			break
		}
	}

	gap := maxGapDays
	if gap < 0 {
		gap = 0
	}
	if target.Sub(at(last)) <= time.Duration(gap)*day {
		return last, true
	}
	return 0, false
}
