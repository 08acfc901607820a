package dataprocessing

import (
	"io"
	"strings"
	"time"

	"marketdesk/pkg/contracts/domain"
)

// Column positions of the long row shape
const (
	longDateCol     = 0
	longTickerCol   = 2
	longCategoryCol = 3
	longValueCol    = 4
	longExtraCol    = 5
)

// LongSpec describes how to read one dataset out of long-shaped rows
type LongSpec struct {
	// Category is the required category tag, compared case-insensitively
	Category string
	// Keys resolves raw tickers; unresolved tickers are dropped
	Keys domain.KeySet
	// TickerPrefixes, when set, keeps only tickers starting with one of them
	TickerPrefixes []string
}

// longRow is one accepted observation of a long-shaped export
type longRow struct {
	date   time.Time
	ticker string
	value  float64
	extra  string
}

// ParseLong reads CSV text and parses it with ParseLongRows
func ParseLong(r io.Reader, spec LongSpec) (map[domain.InstrumentKey]domain.Series, error) {
	rows, err := ReadCSVRows(r)
	if err != nil {
		return nil, err
	}
	return ParseLongRows(rows, spec), nil
}

// ParseLongRows builds one series per resolved instrument key
func ParseLongRows(rows [][]string, spec LongSpec) map[domain.InstrumentKey]domain.Series {
	points := make(map[domain.InstrumentKey][]domain.PricePoint)

	for _, row := range rows {
		lr, ok := readLongRow(row, spec.Category)
		if !ok {
			continue
		}
		if !hasAnyPrefix(lr.ticker, spec.TickerPrefixes) {
			continue
		}
		key, ok := spec.Keys.Resolve(lr.ticker)
		if !ok {
			continue
		}
		points[key] = append(points[key], domain.PricePoint{Time: lr.date, Value: lr.value})
	}

	out := make(map[domain.InstrumentKey]domain.Series, len(points))
	for key, pts := range points {
		out[key] = domain.NewSeries(pts)
	}
	return out
}

// readLongRow validates the shared columns of a long row
func readLongRow(row []string, category string) (longRow, bool) {
	if !strings.EqualFold(cleanCell(cell(row, longCategoryCol)), strings.TrimSpace(category)) {
		return longRow{}, false
	}
	date, ok := ParseDateToken(cell(row, longDateCol))
	if !ok {
		return longRow{}, false
	}
	value, ok := ParseValue(cell(row, longValueCol))
	if !ok {
		return longRow{}, false
	}
	ticker := domain.NormalizeTicker(cell(row, longTickerCol))
	if ticker == "" {
		return longRow{}, false
	}
	return longRow{
		date:   date,
		ticker: ticker,
		value:  value,
		extra:  cleanCell(cell(row, longExtraCol)),
	}, true
}

func hasAnyPrefix(ticker string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(ticker, strings.ToUpper(p)) {
			return true
		}
	}
	return false
}
