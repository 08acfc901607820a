package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// PricePoint is one observation of one instrument on one calendar day
type PricePoint struct {
	Time  time.Time `json:"-"`
	Value float64   `json:"value"`
}

// NewPricePoint normalizes t to UTC midnight
func NewPricePoint(t time.Time, value float64) PricePoint {
	return PricePoint{Time: TruncateDay(t), Value: value}
}

// MarshalJSON encodes Time as unix milliseconds
func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Time  int64   `json:"time"`
		Value float64 `json:"value"`
	}{
		Time:  p.Time.UnixMilli(),
		Value: p.Value,
	})
}

// TruncateDay returns the UTC midnight of the calendar day t falls on in UTC
func TruncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Series is an immutable, time-ordered sequence of daily observations.
// Points are strictly increasing by Time and no two share a day.
type Series struct {
	points []PricePoint
}

// NewSeries sorts, normalizes and deduplicates points. When two points
// fall on the same day the one appearing later in the input wins.
func NewSeries(points []PricePoint) Series {
	if len(points) == 0 {
		return Series{}
	}

	byDay := make(map[int64]int, len(points))
	out := make([]PricePoint, 0, len(points))
	for _, p := range points {
		p.Time = TruncateDay(p.Time)
		key := p.Time.Unix()
		if idx, ok := byDay[key]; ok {
			out[idx] = p
			continue
		}
		byDay[key] = len(out)
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})

	return Series{points: out}
}

// Len returns the number of points
func (s Series) Len() int {
	return len(s.points)
}

// IsEmpty reports whether the series has no points
func (s Series) IsEmpty() bool {
	return len(s.points) == 0
}

// At returns the i-th point. It panics on out-of-range indexes like a slice.
func (s Series) At(i int) PricePoint {
	return s.points[i]
}

// Last returns the most recent point
func (s Series) Last() (PricePoint, bool) {
	if len(s.points) == 0 {
		return PricePoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// First returns the oldest point
func (s Series) First() (PricePoint, bool) {
	if len(s.points) == 0 {
		return PricePoint{}, false
	}
	return s.points[0], true
}

// Points returns a copy of the underlying points
func (s Series) Points() []PricePoint {
	out := make([]PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

// Times returns the observation timestamps in order
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s.points))
	for i, p := range s.points {
		out[i] = p.Time
	}
	return out
}

// Between returns the points with from <= Time <= to
func (s Series) Between(from, to time.Time) []PricePoint {
	lo := sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].Time.Before(from)
	})
	hi := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Time.After(to)
	})
	if lo >= hi {
		return nil
	}
	out := make([]PricePoint, hi-lo)
	copy(out, s.points[lo:hi])
	return out
}

// MarshalJSON encodes the series as an array of points
func (s Series) MarshalJSON() ([]byte, error) {
	if s.points == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.points)
}

// MergeSeries combines series in order; for a day present in several
// inputs the value from the later input wins.
func MergeSeries(series ...Series) Series {
	total := 0
	for _, s := range series {
		total += s.Len()
	}
	all := make([]PricePoint, 0, total)
	for _, s := range series {
		all = append(all, s.points...)
	}
	return NewSeries(all)
}
