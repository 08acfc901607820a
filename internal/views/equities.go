package views

import (
	"time"

	"marketdesk/internal/derivation"
	"marketdesk/internal/registry"
	"marketdesk/pkg/contracts/domain"
)

// WatchlistRow is one index or asset of the watchlist
type WatchlistRow struct {
	Key      domain.InstrumentKey `json:"key"`
	Label    string               `json:"label"`
	Group    string               `json:"group"`
	Level    Cell                 `json:"level"`
	WoW      Cell                 `json:"wow_pct"`
	YTD      Cell                 `json:"ytd_pct"`
	High52w  Cell                 `json:"high_52w"`
	FromHigh Cell                 `json:"from_high_pct"`
}

// WatchlistTable lists the watchlist at the active date
type WatchlistTable struct {
	Rows    []WatchlistRow `json:"rows"`
	Missing int            `json:"missing"`
}

// returns holds the aligned level and its percentage changes
type returns struct {
	level, wow, ytd *float64
}

func (b *Builder) returns(s domain.Series, active time.Time) returns {
	level := derivation.AlignedValue(s, active, b.opts.MaxGapDays)
	weekAgo := derivation.AlignedValue(s, derivation.WeekAgo(active), b.opts.MaxGapDays)
	return returns{
		level: level,
		wow:   derivation.PercentChange(level, weekAgo),
		ytd:   derivation.PercentChange(level, derivation.YearStartValue(s, active.Year())),
	}
}

// Watchlist builds the watchlist table with percentage changes to two
// decimals and the distance from the trailing 52 week high.
func (b *Builder) Watchlist(active time.Time) WatchlistTable {
	active = domain.TruncateDay(active)
	table := WatchlistTable{Rows: []WatchlistRow{}}

	for _, key := range b.reg.Keys(domain.DatasetWatchlist) {
		s := b.reg.Get(domain.DatasetWatchlist, key)
		in := b.label(domain.DatasetWatchlist, key)
		r := b.returns(s, active)
		high := derivation.RollingHigh(s, active, trailingYear)

		row := WatchlistRow{
			Key:      key,
			Label:    in.Label,
			Group:    in.Group,
			Level:    LevelCell(r.level, 2),
			WoW:      PercentCell(r.wow),
			YTD:      PercentCell(r.ytd),
			High52w:  LevelCell(high, 2),
			FromHigh: PercentCell(derivation.PercentChange(r.level, high)),
		}
		table.Missing += countMissing(row.Level, row.WoW, row.YTD, row.High52w, row.FromHigh)
		table.Rows = append(table.Rows, row)
	}
	return table
}

// Regions lists the industry regions in display order
var Regions = []string{registry.RegionUS, registry.RegionEU}

// IndustryRow is one sector index
type IndustryRow struct {
	Key   domain.InstrumentKey `json:"key"`
	Label string               `json:"label"`
	Level Cell                 `json:"level"`
	WoW   Cell                 `json:"wow_pct"`
	YTD   Cell                 `json:"ytd_pct"`
}

// IndustriesTable lists the sector indices of one region
type IndustriesTable struct {
	Region  string        `json:"region"`
	Rows    []IndustryRow `json:"rows"`
	Missing int           `json:"missing"`
}

// Industries builds the sector table of region
func (b *Builder) Industries(active time.Time, region string) IndustriesTable {
	active = domain.TruncateDay(active)
	table := IndustriesTable{Region: region, Rows: []IndustryRow{}}

	for _, key := range b.reg.Keys(domain.DatasetIndustries) {
		if r, ok := registry.RegionOf(key); !ok || r != region {
			continue
		}
		r := b.returns(b.reg.Get(domain.DatasetIndustries, key), active)

		row := IndustryRow{
			Key:   key,
			Label: b.label(domain.DatasetIndustries, key).Label,
			Level: LevelCell(r.level, 2),
			WoW:   PercentCell(r.wow),
			YTD:   PercentCell(r.ytd),
		}
		table.Missing += countMissing(row.Level, row.WoW, row.YTD)
		table.Rows = append(table.Rows, row)
	}
	return table
}

// AllIndustries builds one table per region
func (b *Builder) AllIndustries(active time.Time) []IndustriesTable {
	out := make([]IndustriesTable, 0, len(Regions))
	for _, region := range Regions {
		out = append(out, b.Industries(active, region))
	}
	return out
}

// ValidRegion reports whether region has an industries table
func ValidRegion(region string) bool {
	for _, r := range Regions {
		if r == region {
			return true
		}
	}
	return false
}
