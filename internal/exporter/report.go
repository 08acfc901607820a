package exporter

import (
	"fmt"
	"log/slog"

	"marketdesk/internal/views"
)

// Report file names, one per table of the dashboard
const (
	TreasuryFile   = "treasury.csv"
	SlopesFile     = "slopes.csv"
	CreditFile     = "credit.csv"
	WatchlistFile  = "watchlist.csv"
	IndustriesFile = "industries.csv"
	FedPathFile    = "fed_path.csv"
)

// ReportExporter writes the tables of one dashboard as CSV files
type ReportExporter struct {
	csvWriter *CSVWriter
	logger    *slog.Logger
}

// NewReportExporter creates a report exporter writing under outputDir
func NewReportExporter(outputDir string, logger *slog.Logger) *ReportExporter {
	return &ReportExporter{
		csvWriter: NewCSVWriter(outputDir, logger),
		logger:    logger.With(slog.String("component", "report_exporter")),
	}
}

type table struct {
	file    string
	headers []string
	rows    [][]string
}

// tables lays d out in the fixed file order. Every row carries the active
// date so reports from different weeks can be concatenated.
func tables(d views.Dashboard) []table {
	date := formatDate(d.ActiveDate)
	return []table{
		{TreasuryFile, treasuryHeaders, treasuryRows(date, d.YieldCurve)},
		{SlopesFile, slopesHeaders, slopesRows(date, d.Slopes)},
		{CreditFile, creditHeaders, creditRows(date, d.Credit)},
		{WatchlistFile, watchlistHeaders, watchlistRows(date, d.Watchlist)},
		{IndustriesFile, industriesHeaders, industriesRows(date, d.Industries)},
		{FedPathFile, fedPathHeaders, fedPathRows(date, d.FedPath)},
	}
}

// ExportDashboard writes every table of d, replacing earlier files, and
// returns the files written in a fixed order
func (e *ReportExporter) ExportDashboard(d views.Dashboard) ([]string, error) {
	return e.export(d, "Weekly report exported", e.csvWriter.Write)
}

// AppendDashboard appends every table of d to the history files kept in
// the output directory
func (e *ReportExporter) AppendDashboard(d views.Dashboard) ([]string, error) {
	return e.export(d, "Weekly report appended to history", e.csvWriter.Append)
}

func (e *ReportExporter) export(d views.Dashboard, msg string, write func(string, []string, [][]string) (string, error)) ([]string, error) {
	ts := tables(d)
	written := make([]string, 0, len(ts))
	for _, t := range ts {
		path, err := write(t.file, t.headers, t.rows)
		if err != nil {
			return written, fmt.Errorf("failed to write %s: %w", t.file, err)
		}
		written = append(written, path)
	}

	e.logger.Info(msg,
		slog.String("date", formatDate(d.ActiveDate)),
		slog.String("week", d.Week),
		slog.Int("files", len(written)),
		slog.Int("missing", d.Missing()))

	return written, nil
}

var treasuryHeaders = []string{"date", "key", "label", "current", "week_ago", "year_start", "wow_bp", "ytd_bp"}

func treasuryRows(date string, t views.YieldCurveTable) [][]string {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, []string{
			date, string(r.Key), r.Label,
			formatValue(r.Current), formatValue(r.WeekAgo), formatValue(r.YearStart),
			formatValue(r.WoW), formatValue(r.YTD),
		})
	}
	return rows
}

var slopesHeaders = []string{"date", "name", "current_bp", "week_ago_bp", "change_bp"}

func slopesRows(date string, t views.SlopesTable) [][]string {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, []string{
			date, r.Name, formatValue(r.Current), formatValue(r.WeekAgo), formatValue(r.Change),
		})
	}
	return rows
}

var creditHeaders = []string{
	"date", "key", "label", "group", "current", "wow_bp", "ytd_bp",
	"cycle_high", "cycle_high_date", "cycle_low", "cycle_low_date", "high_52w",
}

func creditRows(date string, t views.CreditTable) [][]string {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, []string{
			date, string(r.Key), r.Label, r.Group,
			formatValue(r.Current), formatValue(r.WoW), formatValue(r.YTD),
			formatValue(r.CycleHigh), r.CycleHighDate,
			formatValue(r.CycleLow), r.CycleLowDate,
			formatValue(r.High52w),
		})
	}
	return rows
}

var watchlistHeaders = []string{"date", "key", "label", "group", "level", "wow_pct", "ytd_pct", "high_52w", "from_high_pct"}

func watchlistRows(date string, t views.WatchlistTable) [][]string {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, []string{
			date, string(r.Key), r.Label, r.Group,
			formatValue(r.Level), formatValue(r.WoW), formatValue(r.YTD),
			formatValue(r.High52w), formatValue(r.FromHigh),
		})
	}
	return rows
}

var industriesHeaders = []string{"date", "region", "key", "label", "level", "wow_pct", "ytd_pct"}

func industriesRows(date string, tables []views.IndustriesTable) [][]string {
	var rows [][]string
	for _, t := range tables {
		for _, r := range t.Rows {
			rows = append(rows, []string{
				date, t.Region, string(r.Key), r.Label,
				formatValue(r.Level), formatValue(r.WoW), formatValue(r.YTD),
			})
		}
	}
	return rows
}

// fed_path.csv holds the spot rate, the contract strip, the quarterly ladder
// and the totals in one file, told apart by the section column. change is in
// basis points except on the moves row, which counts 25bp moves.
var fedPathHeaders = []string{"date", "snapshot_date", "section", "sequence", "label", "price", "implied", "change"}

func fedPathRows(date string, f views.FedPath) [][]string {
	rows := [][]string{
		{date, f.SnapshotDate, "spot", "", "spot", "", formatValue(f.Spot), ""},
	}
	for _, c := range f.Contracts {
		rows = append(rows, []string{
			date, f.SnapshotDate, "contract", formatInt(c.Sequence), c.Month,
			formatValue(c.Price), formatValue(c.Implied), "",
		})
	}
	for _, l := range f.Ladder {
		rows = append(rows, []string{
			date, f.SnapshotDate, "ladder", "", l.Label, "", formatValue(l.Implied), formatValue(l.Change),
		})
	}
	rows = append(rows,
		[]string{date, f.SnapshotDate, "total", "", "total", "", "", formatValue(f.Total)},
		[]string{date, f.SnapshotDate, "moves", "", "moves", "", "", formatValue(f.Moves)},
	)
	return rows
}
