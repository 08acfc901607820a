// Package dataprocessing parses flat market data exports into typed series.
//
// Two row shapes are supported:
//
//	Long:  date, <unused>, ticker, category, value[, extra]
//	Wide:  Date, "1 MO", "2 MO", ..., "30 YR"
//
// Dates arrive either as spreadsheet serial day counts (epoch 1899-12-30) or
// as M/D/YYYY text. Rows with a bad date, a non-finite value, an unknown
// ticker or a foreign category are dropped silently: source exports contain
// sparse noise and one bad row must never sink a whole dataset.
//
// # Usage
//
//	rows, err := dataprocessing.ReadRows("data/credit_2025.csv")
//	if err != nil {
//	    return err
//	}
//	spreads := dataprocessing.ParseLongRows(rows, dataprocessing.LongSpec{
//	    Category: "spread",
//	    Keys:     creditKeys,
//	})
//
// The parse functions never return errors. Only ReadRows, which touches the
// file system, can fail.
package dataprocessing
