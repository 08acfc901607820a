package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by ReadRows for unknown file extensions
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ReadCSVRows reads every record of a comma-delimited stream. Quoted fields
// may contain commas, rows may have differing field counts, and stray quotes
// inside unquoted fields are tolerated.
func ReadCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				// A malformed line is noise, the rest of the export is still usable
				continue
			}
			return nil, fmt.Errorf("read CSV records: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// ReadRows loads the rows of a CSV or XLSX file
func ReadRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open CSV file: %w", err)
		}
		defer file.Close()
		return ReadCSVRows(file)
	case ".xlsx", ".xlsm":
		return ReadWorkbookRows(path, "")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// cell returns row[i] or "" when the row is too short
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
