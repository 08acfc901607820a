package views

import (
	"time"

	"marketdesk/internal/alignment"
	"marketdesk/pkg/contracts/domain"
)

// SeriesChart returns the trailing weeks of one series up to active. Zero
// or negative weeks use the configured chart window.
func (b *Builder) SeriesChart(id domain.DatasetID, key domain.InstrumentKey, active time.Time, weeks int) ChartData {
	if weeks <= 0 {
		weeks = b.opts.ChartWeeks
	}
	active = domain.TruncateDay(active)

	s, ok := b.reg.Series(id, key)
	if !ok {
		return NoData{Reason: "no data for " + string(id) + "/" + string(key)}
	}

	points := s.Between(active.AddDate(0, 0, -7*weeks), active)
	if len(points) == 0 {
		return NoData{Reason: "no observations in the " + active.Format(DateLayout) + " window"}
	}

	return SeriesChart{
		Dataset: id,
		Key:     key,
		Label:   b.label(id, key).Label,
		Points:  points,
	}
}

// Dashboard holds every view for one active date
type Dashboard struct {
	ActiveDate time.Time         `json:"active_date"`
	Week       string            `json:"week"`
	AsOf       time.Time         `json:"as_of"`
	YieldCurve YieldCurveTable   `json:"yield_curve"`
	CurveChart ChartData         `json:"curve_chart"`
	Slopes     SlopesTable       `json:"slopes"`
	Credit     CreditTable       `json:"credit"`
	Watchlist  WatchlistTable    `json:"watchlist"`
	Industries []IndustriesTable `json:"industries"`
	FedPath    FedPath           `json:"fed_path"`
}

// Missing counts the cells of the dashboard that have no value
func (d Dashboard) Missing() int {
	n := d.YieldCurve.Missing + d.Slopes.Missing + d.Credit.Missing + d.Watchlist.Missing + d.FedPath.Missing
	for _, t := range d.Industries {
		n += t.Missing
	}
	return n
}

// Dashboard builds every view for active
func (b *Builder) Dashboard(active time.Time) Dashboard {
	active = domain.TruncateDay(active)
	return Dashboard{
		ActiveDate: active,
		Week:       alignment.WeekOf(active).String(),
		AsOf:       b.AsOf(active),
		YieldCurve: b.YieldCurve(active),
		CurveChart: b.CurveChart(active),
		Slopes:     b.Slopes(active),
		Credit:     b.Credit(active),
		Watchlist:  b.Watchlist(active),
		Industries: b.AllIndustries(active),
		FedPath:    b.FedPath(active),
	}
}
