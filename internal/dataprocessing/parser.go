package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbookRows reads the rows of one sheet of an XLSX workbook. When
// sheet is empty the first sheet that has any rows is used. Raw cell values
// are returned so serial dates stay numeric instead of being rendered with
// the workbook's number format.
func ReadWorkbookRows(filePath, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	candidates := f.GetSheetList()
	if sheet != "" {
		candidates = []string{sheet}
	}

	for _, name := range candidates {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			if sheet != "" {
				return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
			}
			continue
		}
		if len(rows) == 0 && sheet == "" {
			continue
		}

		slog.Debug("Read workbook sheet",
			slog.String("file", filePath),
			slog.String("sheet_name", name),
			slog.Int("total_rows", len(rows)))

		return trimRows(rows), nil
	}

	return nil, fmt.Errorf("could not find a sheet with data in %s", filePath)
}

// trimRows drops trailing empty cells and fully empty rows
func trimRows(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		last := len(row) - 1
		for last >= 0 && strings.TrimSpace(row[last]) == "" {
			last--
		}
		if last < 0 {
			continue
		}
		out = append(out, row[:last+1])
	}
	return out
}
