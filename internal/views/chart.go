package views

import (
	"encoding/json"

	"marketdesk/pkg/contracts/domain"
)

// Chart kinds
const (
	KindCurve  = "curve"
	KindSeries = "series"
	KindNoData = "no_data"
)

// ChartData is the payload handed to the plotting layer. The set of
// variants is closed: CurveChart, SeriesChart and NoData.
type ChartData interface {
	Kind() string
	chartData()
}

// CurvePoint is one tenor of a curve chart
type CurvePoint struct {
	Key       domain.InstrumentKey `json:"key"`
	Label     string               `json:"label"`
	Current   *float64             `json:"current"`
	WeekAgo   *float64             `json:"week_ago"`
	YearStart *float64             `json:"year_start"`
}

// CurveChart plots the curve now, a week ago and at the start of the year
type CurveChart struct {
	Points []CurvePoint `json:"points"`
}

// SeriesChart is a trailing window of one series
type SeriesChart struct {
	Dataset domain.DatasetID     `json:"dataset"`
	Key     domain.InstrumentKey `json:"key"`
	Label   string               `json:"label"`
	Points  []domain.PricePoint  `json:"points"`
}

// NoData stands in for a chart that has nothing to plot
type NoData struct {
	Reason string `json:"reason"`
}

func (CurveChart) Kind() string  { return KindCurve }
func (SeriesChart) Kind() string { return KindSeries }
func (NoData) Kind() string      { return KindNoData }

func (CurveChart) chartData()  {}
func (SeriesChart) chartData() {}
func (NoData) chartData()      {}

// MarshalJSON adds the kind discriminant
func (c CurveChart) MarshalJSON() ([]byte, error) {
	type plain CurveChart
	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{Kind: KindCurve, plain: plain(c)})
}

// MarshalJSON adds the kind discriminant
func (c SeriesChart) MarshalJSON() ([]byte, error) {
	type plain SeriesChart
	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{Kind: KindSeries, plain: plain(c)})
}

// MarshalJSON adds the kind discriminant
func (c NoData) MarshalJSON() ([]byte, error) {
	type plain NoData
	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{Kind: KindNoData, plain: plain(c)})
}
