package views

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdesk/internal/config"
	"marketdesk/internal/registry"
	"marketdesk/pkg/contracts/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func series(points ...domain.PricePoint) domain.Series {
	return domain.NewSeries(points)
}

func pt(t time.Time, v float64) domain.PricePoint {
	return domain.NewPricePoint(t, v)
}

// active is a Wednesday in ISO week 2025-W23
var active = date(2025, 6, 4)

var futuresPrices = map[int]float64{
	1: 95.70, 2: 95.74, 3: 95.78, 4: 95.82, 5: 95.90, 6: 95.98,
	7: 96.07, 8: 96.15, 9: 96.24, 10: 96.32, 11: 96.36, 12: 96.40,
}

func snapshot(t time.Time, skip ...int) domain.FedFutureSnapshot {
	skipped := make(map[int]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	var contracts []domain.FuturesContract
	for seq, price := range futuresPrices {
		if skipped[seq] {
			continue
		}
		contracts = append(contracts, domain.FuturesContract{Sequence: seq, Ticker: "FF", Price: price})
	}
	return domain.NewFedFutureSnapshot(t, contracts)
}

func fixtureRegistry(snapshots ...domain.FedFutureSnapshot) *registry.Registry {
	return registry.FromSeries(map[domain.DatasetID]map[domain.InstrumentKey]domain.Series{
		domain.DatasetTreasury: {
			registry.US3M:  series(pt(date(2024, 12, 31), 4.31), pt(date(2025, 6, 3), 4.35)),
			registry.US2Y:  series(pt(date(2024, 12, 31), 4.24), pt(date(2025, 5, 28), 3.90), pt(date(2025, 6, 3), 3.95)),
			registry.US10Y: series(pt(date(2024, 12, 31), 4.57), pt(date(2025, 5, 28), 4.40), pt(date(2025, 6, 3), 4.45)),
		},
		domain.DatasetRates: {
			registry.EFFR: series(pt(date(2025, 6, 2), 4.33)),
		},
		domain.DatasetCredit: {
			"IG": series(
				pt(date(2024, 5, 1), 120),
				pt(date(2025, 1, 1), 100),
				pt(date(2025, 5, 27), 85),
				pt(date(2025, 6, 1), 80),
			),
		},
		domain.DatasetWatchlist: {
			"SPX": series(
				pt(date(2024, 12, 31), 5881.63),
				pt(date(2025, 2, 19), 6144.15),
				pt(date(2025, 5, 28), 5888.55),
				pt(date(2025, 6, 3), 5970.37),
			),
		},
		domain.DatasetIndustries: {
			"S5INFT": series(pt(date(2024, 12, 31), 4000), pt(date(2025, 6, 3), 4400)),
			"SX7P":   series(pt(date(2024, 12, 31), 200), pt(date(2025, 5, 28), 240), pt(date(2025, 6, 2), 252)),
		},
	}, snapshots)
}

func newTestBuilder(snapshots ...domain.FedFutureSnapshot) *Builder {
	return NewBuilder(fixtureRegistry(snapshots...), DefaultOptions())
}

func requireValue(t *testing.T, expected float64, c Cell) {
	t.Helper()
	require.NotNil(t, c.Value, "cell %q has no value", c.Text)
	assert.InDelta(t, expected, *c.Value, 1e-9)
}

func TestYieldCurve(t *testing.T) {
	table := newTestBuilder().YieldCurve(active)

	require.Len(t, table.Rows, 3)
	assert.Equal(t, []domain.InstrumentKey{registry.US3M, registry.US2Y, registry.US10Y},
		[]domain.InstrumentKey{table.Rows[0].Key, table.Rows[1].Key, table.Rows[2].Key})

	us2y := table.Rows[1]
	assert.Equal(t, "2Y", us2y.Label)
	requireValue(t, 3.95, us2y.Current)
	requireValue(t, 3.90, us2y.WeekAgo)
	requireValue(t, 4.24, us2y.YearStart)
	assert.Equal(t, "+5.0", us2y.WoW.Text)
	assert.Equal(t, ToneUp, us2y.WoW.Tone)
	assert.Equal(t, "-29.0", us2y.YTD.Text)
	assert.Equal(t, ToneDown, us2y.YTD.Tone)

	// no 3M print within 21 days of the week-ago date
	us3m := table.Rows[0]
	assert.True(t, us3m.WeekAgo.Missing())
	assert.Equal(t, Placeholder, us3m.WoW.Text)
	assert.Equal(t, "+4.0", us3m.YTD.Text)
	assert.Equal(t, 2, table.Missing)
}

func TestCurveChart(t *testing.T) {
	chart := newTestBuilder().CurveChart(active)
	curve, ok := chart.(CurveChart)
	require.True(t, ok)
	require.Len(t, curve.Points, 3)
	assert.Nil(t, curve.Points[0].WeekAgo)

	empty := NewBuilder(registry.FromSeries(nil, nil), DefaultOptions()).CurveChart(active)
	assert.Equal(t, KindNoData, empty.Kind())

	tooLate := newTestBuilder().CurveChart(date(2026, 1, 1))
	assert.IsType(t, NoData{}, tooLate, "last print is far beyond the gap ceiling")
}

func TestSlopes(t *testing.T) {
	table := newTestBuilder().Slopes(active)
	require.Len(t, table.Rows, 3)

	twosTens := table.Rows[0]
	assert.Equal(t, "2s10s", twosTens.Name)
	assert.Equal(t, "+50.0", twosTens.Current.Text)
	assert.Equal(t, "+50.0", twosTens.WeekAgo.Text)
	assert.Equal(t, "0.0", twosTens.Change.Text)
	assert.Equal(t, ToneNeutral, twosTens.Change.Tone)

	threeMonthTens := table.Rows[1]
	assert.Equal(t, "+10.0", threeMonthTens.Current.Text)
	assert.True(t, threeMonthTens.Change.Missing())

	fivesThirties := table.Rows[2]
	assert.True(t, fivesThirties.Current.Missing())
	assert.Equal(t, 5, table.Missing)
}

func TestCredit(t *testing.T) {
	table := newTestBuilder().Credit(active)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, 12, table.CycleMonths)

	ig := table.Rows[0]
	assert.Equal(t, "US Investment Grade", ig.Label)
	assert.Equal(t, registry.RegionUS, ig.Group)
	assert.Equal(t, "80", ig.Current.Text)
	assert.Equal(t, "-5", ig.WoW.Text)
	assert.Equal(t, "-20", ig.YTD.Text)
	requireValue(t, 100, ig.CycleHigh)
	assert.Equal(t, "2025-01-01", ig.CycleHighDate)
	requireValue(t, 80, ig.CycleLow)
	assert.Equal(t, "2025-06-01", ig.CycleLowDate)
	requireValue(t, 100, ig.High52w)
	assert.Zero(t, table.Missing)
}

func TestCredit_LongerCycle(t *testing.T) {
	opts := DefaultOptions()
	opts.CycleMonths = 24
	table := NewBuilder(fixtureRegistry(), opts).Credit(active)

	requireValue(t, 120, table.Rows[0].CycleHigh)
	assert.Equal(t, "2024-05-01", table.Rows[0].CycleHighDate)
}

func TestWatchlist(t *testing.T) {
	table := newTestBuilder().Watchlist(active)
	require.Len(t, table.Rows, 1)

	spx := table.Rows[0]
	assert.Equal(t, "5970.37", spx.Level.Text)
	assert.Equal(t, "+1.39%", spx.WoW.Text)
	assert.Equal(t, "+1.51%", spx.YTD.Text)
	assert.Equal(t, "6144.15", spx.High52w.Text)
	assert.Equal(t, "-2.83%", spx.FromHigh.Text)
	assert.Equal(t, ToneDown, spx.FromHigh.Tone)
}

func TestIndustries(t *testing.T) {
	b := newTestBuilder()

	us := b.Industries(active, registry.RegionUS)
	require.Len(t, us.Rows, 1)
	assert.Equal(t, domain.InstrumentKey("S5INFT"), us.Rows[0].Key)
	assert.Equal(t, "+10.00%", us.Rows[0].YTD.Text)
	assert.True(t, us.Rows[0].WoW.Missing())

	eu := b.Industries(active, registry.RegionEU)
	require.Len(t, eu.Rows, 1)
	assert.Equal(t, "Banks", eu.Rows[0].Label)
	assert.Equal(t, "+5.00%", eu.Rows[0].WoW.Text)
	assert.Equal(t, "+26.00%", eu.Rows[0].YTD.Text)

	all := b.AllIndustries(active)
	require.Len(t, all, 2)
	assert.Equal(t, registry.RegionUS, all[0].Region)
	assert.Equal(t, registry.RegionEU, all[1].Region)

	assert.True(t, ValidRegion("EU"))
	assert.False(t, ValidRegion("ASIA"))
}

func TestFedPath(t *testing.T) {
	path := newTestBuilder(snapshot(date(2025, 6, 3))).FedPath(active)

	assert.Equal(t, "2025-06-03", path.SnapshotDate)
	requireValue(t, 4.33, path.Spot)
	require.Len(t, path.Contracts, 12)
	assert.Equal(t, "Jun 2025", path.Contracts[0].Month)
	assert.Equal(t, "May 2026", path.Contracts[11].Month)
	requireValue(t, 4.30, path.Contracts[0].Implied)

	require.Len(t, path.Ladder, 4)
	labels := []string{path.Ladder[0].Label, path.Ladder[1].Label, path.Ladder[2].Label, path.Ladder[3].Label}
	assert.Equal(t, []string{"Q2 2025", "Q3 2025", "Q4 2025", "Q1 2026"}, labels)
	assert.Equal(t, "-3.0", path.Ladder[0].Change.Text)
	assert.Equal(t, "-12.0", path.Ladder[1].Change.Text)
	assert.Equal(t, "-25.0", path.Ladder[2].Change.Text)
	assert.Equal(t, "-25.0", path.Ladder[3].Change.Text)
	assert.Equal(t, "-65.0", path.Total.Text)
	assert.Equal(t, "-2.6", path.Moves.Text)
	assert.Zero(t, path.Missing)
}

func TestFedPath_MissingThirdQuarter(t *testing.T) {
	path := newTestBuilder(snapshot(date(2025, 6, 3), 7)).FedPath(active)

	require.Len(t, path.Ladder, 4)
	assert.Equal(t, "-3.0", path.Ladder[0].Change.Text)
	assert.Equal(t, "-12.0", path.Ladder[1].Change.Text)
	assert.True(t, path.Ladder[2].Implied.Missing())
	assert.True(t, path.Ladder[2].Change.Missing())
	assert.True(t, path.Ladder[3].Change.Missing())
	assert.Equal(t, Placeholder, path.Total.Text)
	assert.Equal(t, Placeholder, path.Moves.Text)
}

func TestFedPath_NoSnapshot(t *testing.T) {
	path := newTestBuilder().FedPath(active)

	assert.Empty(t, path.SnapshotDate)
	assert.Empty(t, path.Contracts)
	require.Len(t, path.Ladder, 4)
	for _, row := range path.Ladder {
		assert.True(t, row.Implied.Missing())
	}
	assert.True(t, path.Total.Missing())
}

func TestSeriesChart(t *testing.T) {
	b := newTestBuilder()

	chart := b.SeriesChart(domain.DatasetTreasury, registry.US2Y, active, 1)
	sc, ok := chart.(SeriesChart)
	require.True(t, ok)
	assert.Equal(t, "2Y", sc.Label)
	assert.Len(t, sc.Points, 2)

	full, ok := b.SeriesChart(domain.DatasetTreasury, registry.US2Y, active, 0).(SeriesChart)
	require.True(t, ok)
	assert.Len(t, full.Points, 3, "default window is 52 weeks")

	assert.IsType(t, NoData{}, b.SeriesChart(domain.DatasetTreasury, registry.US30Y, active, 4))
	assert.IsType(t, NoData{}, b.SeriesChart(domain.DatasetTreasury, registry.US2Y, date(2024, 1, 1), 4))
}

func TestDashboard(t *testing.T) {
	b := newTestBuilder(snapshot(date(2025, 6, 3)))
	d := b.Dashboard(active.Add(15 * time.Hour))

	assert.Equal(t, active, d.ActiveDate)
	assert.Equal(t, "2025-W23", d.Week)
	assert.Equal(t, date(2025, 6, 6), d.AsOf)
	assert.Len(t, d.Industries, 2)
	assert.Equal(t, d.YieldCurve.Missing+d.Slopes.Missing+d.Credit.Missing+d.Watchlist.Missing+
		d.FedPath.Missing+d.Industries[0].Missing+d.Industries[1].Missing, d.Missing())

	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded struct {
		Week       string `json:"week"`
		CurveChart struct {
			Kind   string            `json:"kind"`
			Points []json.RawMessage `json:"points"`
		} `json:"curve_chart"`
		Credit struct {
			Rows []struct {
				YTD Cell `json:"ytd_bp"`
			} `json:"rows"`
		} `json:"credit"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "2025-W23", decoded.Week)
	assert.Equal(t, KindCurve, decoded.CurveChart.Kind)
	assert.Len(t, decoded.CurveChart.Points, 3)
	require.Len(t, decoded.Credit.Rows, 1)
	assert.Equal(t, "-20", decoded.Credit.Rows[0].YTD.Text)
}

func TestOptionsFrom(t *testing.T) {
	opts := OptionsFrom(config.ViewsConfig{})
	assert.Equal(t, 0, opts.MaxGapDays, "zero gap is kept: same day only")
	assert.Equal(t, 12, opts.CycleMonths)
	assert.Equal(t, 52, opts.ChartWeeks)
	assert.Equal(t, "xnys", opts.Calendar)

	opts = OptionsFrom(config.ViewsConfig{MaxGapDays: 14, CycleMonths: 18, ChartWeeks: 26, Calendar: "xlon"})
	assert.Equal(t, Options{MaxGapDays: 14, CycleMonths: 18, ChartWeeks: 26, Calendar: "xlon"}, opts)
}
