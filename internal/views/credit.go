package views

import (
	"time"

	"marketdesk/internal/alignment"
	"marketdesk/internal/derivation"
	"marketdesk/pkg/contracts/domain"
)

// CreditRow is one spread class. Spreads are quoted in basis points, so
// levels and changes are rounded to whole basis points.
type CreditRow struct {
	Key           domain.InstrumentKey `json:"key"`
	Label         string               `json:"label"`
	Group         string               `json:"group"`
	Current       Cell                 `json:"current"`
	WoW           Cell                 `json:"wow_bp"`
	YTD           Cell                 `json:"ytd_bp"`
	CycleHigh     Cell                 `json:"cycle_high"`
	CycleHighDate string               `json:"cycle_high_date,omitempty"`
	CycleLow      Cell                 `json:"cycle_low"`
	CycleLowDate  string               `json:"cycle_low_date,omitempty"`
	High52w       Cell                 `json:"high_52w"`
}

// CreditTable lists credit spreads at the active date
type CreditTable struct {
	CycleMonths int         `json:"cycle_months"`
	Rows        []CreditRow `json:"rows"`
	Missing     int         `json:"missing"`
}

// Credit builds the credit spread table. The cycle high and low cover the
// configured number of months up to the aligned current point.
func (b *Builder) Credit(active time.Time) CreditTable {
	active = domain.TruncateDay(active)
	table := CreditTable{CycleMonths: b.opts.CycleMonths, Rows: []CreditRow{}}

	for _, key := range b.reg.Keys(domain.DatasetCredit) {
		s := b.reg.Get(domain.DatasetCredit, key)
		in := b.label(domain.DatasetCredit, key)

		cur := derivation.AlignedValue(s, active, b.opts.MaxGapDays)
		weekAgo := derivation.AlignedValue(s, derivation.WeekAgo(active), b.opts.MaxGapDays)
		yearStart := derivation.YearStartValue(s, active.Year())

		row := CreditRow{
			Key:     key,
			Label:   in.Label,
			Group:   in.Group,
			Current: LevelCell(cur, 0),
			WoW:     ChangeCell(derivation.NominalChange(cur, weekAgo), 0),
			YTD:     ChangeCell(derivation.NominalChange(cur, yearStart), 0),
			High52w: LevelCell(derivation.RollingHigh(s, active, trailingYear), 0),
		}

		var high, low domain.PricePoint
		var okHigh, okLow bool
		if idx, ok := alignment.ResolveAlignedIndex(s, active, b.opts.MaxGapDays); ok {
			high, okHigh = derivation.CycleExtremum(s, idx, derivation.High, b.opts.CycleMonths, active)
			low, okLow = derivation.CycleExtremum(s, idx, derivation.Low, b.opts.CycleMonths, active)
		}
		row.CycleHigh = LevelCell(pointValue(high, okHigh), 0)
		row.CycleHighDate = formatDate(high, okHigh)
		row.CycleLow = LevelCell(pointValue(low, okLow), 0)
		row.CycleLowDate = formatDate(low, okLow)

		table.Missing += countMissing(row.Current, row.WoW, row.YTD, row.CycleHigh, row.CycleLow, row.High52w)
		table.Rows = append(table.Rows, row)
	}
	return table
}

func pointValue(p domain.PricePoint, ok bool) *float64 {
	if !ok {
		return nil
	}
	return derivation.Float(p.Value)
}
