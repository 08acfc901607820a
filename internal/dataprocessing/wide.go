package dataprocessing

import (
	"io"
	"strings"

	"marketdesk/pkg/contracts/domain"
)

// DefaultDateColumn is the header label of the date column in wide exports
const DefaultDateColumn = "DATE"

// WideSpec describes a wide export: one row per date, one column per instrument
type WideSpec struct {
	// Columns maps header labels onto instrument keys. Labels are matched
	// after NormalizeHeader, so "1 Mo" and " 1  MO " both match "1 MO".
	Columns map[string]domain.InstrumentKey
	// DateColumn is the header label of the date column. When the label is
	// not found the first column is used.
	DateColumn string
}

// NormalizeHeader upper-cases a header cell and collapses inner whitespace
func NormalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToUpper(cleanCell(h))), " ")
}

// ParseWide reads CSV text and parses it with ParseWideRows
func ParseWide(r io.Reader, spec WideSpec) (map[domain.InstrumentKey]domain.Series, error) {
	rows, err := ReadCSVRows(r)
	if err != nil {
		return nil, err
	}
	return ParseWideRows(rows, spec), nil
}

// ParseWideRows maps the header onto keys and yields up to one point per
// mapped column for every row with a valid date.
func ParseWideRows(rows [][]string, spec WideSpec) map[domain.InstrumentKey]domain.Series {
	if len(rows) == 0 {
		return map[domain.InstrumentKey]domain.Series{}
	}

	lookup := make(map[string]domain.InstrumentKey, len(spec.Columns))
	for label, key := range spec.Columns {
		lookup[NormalizeHeader(label)] = key
	}
	dateLabel := NormalizeHeader(spec.DateColumn)
	if dateLabel == "" {
		dateLabel = DefaultDateColumn
	}

	header := rows[0]
	dateCol := 0
	columns := make(map[int]domain.InstrumentKey)
	for i, h := range header {
		label := NormalizeHeader(h)
		if label == dateLabel {
			dateCol = i
			continue
		}
		if key, ok := lookup[label]; ok {
			columns[i] = key
		}
	}

	points := make(map[domain.InstrumentKey][]domain.PricePoint, len(columns))
	for _, row := range rows[1:] {
		date, ok := ParseDateToken(cell(row, dateCol))
		if !ok {
			continue
		}
		for col, key := range columns {
			value, ok := ParseValue(cell(row, col))
			if !ok {
				continue
			}
			points[key] = append(points[key], domain.PricePoint{Time: date, Value: value})
		}
	}

	out := make(map[domain.InstrumentKey]domain.Series, len(points))
	for key, pts := range points {
		out[key] = domain.NewSeries(pts)
	}
	return out
}
