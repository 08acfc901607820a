package views

import (
	"time"

	"marketdesk/internal/derivation"
	"marketdesk/internal/registry"
	"marketdesk/pkg/contracts/domain"
)

// bpPerPercent converts yield differences into basis points
const bpPerPercent = 100

// YieldRow is one tenor of the yield curve table
type YieldRow struct {
	Key       domain.InstrumentKey `json:"key"`
	Label     string               `json:"label"`
	Current   Cell                 `json:"current"`
	WeekAgo   Cell                 `json:"week_ago"`
	YearStart Cell                 `json:"year_start"`
	WoW       Cell                 `json:"wow_bp"`
	YTD       Cell                 `json:"ytd_bp"`
}

// YieldCurveTable is the treasury curve at the active date
type YieldCurveTable struct {
	Rows    []YieldRow `json:"rows"`
	Missing int        `json:"missing"`
}

// yieldLevels are the three aligned yields every curve view is built on
type yieldLevels struct {
	current, weekAgo, yearStart *float64
}

func (b *Builder) yieldLevels(key domain.InstrumentKey, active time.Time) yieldLevels {
	s := b.reg.Get(domain.DatasetTreasury, key)
	return yieldLevels{
		current:   derivation.AlignedValue(s, active, b.opts.MaxGapDays),
		weekAgo:   derivation.AlignedValue(s, derivation.WeekAgo(active), b.opts.MaxGapDays),
		yearStart: derivation.YearStartValue(s, active.Year()),
	}
}

// YieldCurve builds the yield curve table. Changes are in basis points
// rounded to one decimal.
func (b *Builder) YieldCurve(active time.Time) YieldCurveTable {
	active = domain.TruncateDay(active)
	table := YieldCurveTable{Rows: []YieldRow{}}

	for _, key := range b.reg.Keys(domain.DatasetTreasury) {
		lv := b.yieldLevels(key, active)
		row := YieldRow{
			Key:       key,
			Label:     b.label(domain.DatasetTreasury, key).Label,
			Current:   LevelCell(lv.current, 2),
			WeekAgo:   LevelCell(lv.weekAgo, 2),
			YearStart: LevelCell(lv.yearStart, 2),
			WoW:       ChangeCell(derivation.Scale(derivation.NominalChange(lv.current, lv.weekAgo), bpPerPercent), 1),
			YTD:       ChangeCell(derivation.Scale(derivation.NominalChange(lv.current, lv.yearStart), bpPerPercent), 1),
		}
		table.Missing += countMissing(row.Current, row.WeekAgo, row.YearStart, row.WoW, row.YTD)
		table.Rows = append(table.Rows, row)
	}
	return table
}

// CurveChart plots the current, week-ago and year-start curves. It is NoData
// when no tenor has a current value.
func (b *Builder) CurveChart(active time.Time) ChartData {
	active = domain.TruncateDay(active)

	var points []CurvePoint
	plotted := false
	for _, key := range b.reg.Keys(domain.DatasetTreasury) {
		lv := b.yieldLevels(key, active)
		if lv.current != nil {
			plotted = true
		}
		points = append(points, CurvePoint{
			Key:       key,
			Label:     b.label(domain.DatasetTreasury, key).Label,
			Current:   lv.current,
			WeekAgo:   lv.weekAgo,
			YearStart: lv.yearStart,
		})
	}

	if !plotted {
		return NoData{Reason: "no treasury yields aligned to " + active.Format(DateLayout)}
	}
	return CurveChart{Points: points}
}

// SlopeSpec is a curve spread between two tenors
type SlopeSpec struct {
	Name  string
	Short domain.InstrumentKey
	Long  domain.InstrumentKey
}

// CurveSlopes are the spreads shown on the dashboard
var CurveSlopes = []SlopeSpec{
	{Name: "2s10s", Short: registry.US2Y, Long: registry.US10Y},
	{Name: "3m10y", Short: registry.US3M, Long: registry.US10Y},
	{Name: "5s30s", Short: registry.US5Y, Long: registry.US30Y},
}

// SlopeRow is one curve spread in basis points
type SlopeRow struct {
	Name    string `json:"name"`
	Current Cell   `json:"current_bp"`
	WeekAgo Cell   `json:"week_ago_bp"`
	Change  Cell   `json:"change_bp"`
}

// SlopesTable lists the curve spreads
type SlopesTable struct {
	Rows    []SlopeRow `json:"rows"`
	Missing int        `json:"missing"`
}

// Slopes builds the curve spread table
func (b *Builder) Slopes(active time.Time) SlopesTable {
	active = domain.TruncateDay(active)
	table := SlopesTable{Rows: make([]SlopeRow, 0, len(CurveSlopes))}

	for _, spec := range CurveSlopes {
		short := b.reg.Get(domain.DatasetTreasury, spec.Short)
		long := b.reg.Get(domain.DatasetTreasury, spec.Long)

		cur := derivation.Scale(derivation.Slope(short, long, active, b.opts.MaxGapDays), bpPerPercent)
		prev := derivation.Scale(derivation.Slope(short, long, derivation.WeekAgo(active), b.opts.MaxGapDays), bpPerPercent)

		row := SlopeRow{
			Name:    spec.Name,
			Current: ChangeCell(cur, 1),
			WeekAgo: ChangeCell(prev, 1),
			Change:  ChangeCell(derivation.NominalChange(cur, prev), 1),
		}
		table.Missing += countMissing(row.Current, row.WeekAgo, row.Change)
		table.Rows = append(table.Rows, row)
	}
	return table
}
