// Package exporter writes the weekly report: the tables of one dashboard as
// CSV files, one per table, with a UTF-8 BOM so Excel opens them cleanly.
//
// Values are written rounded but unformatted. Missing values are empty
// cells, never the "--" placeholder of the HTTP views.
//
//	exp := exporter.NewReportExporter("reports/2025-W23", logger)
//	files, err := exp.ExportDashboard(dashboard)
package exporter
