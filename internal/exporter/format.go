package exporter

import (
	"strconv"
	"time"

	"marketdesk/internal/views"
)

// formatValue writes the rounded value of a cell. Missing values are empty
// so spreadsheets read them as blanks rather than zero.
func formatValue(c views.Cell) string {
	if c.Value == nil {
		return ""
	}
	return strconv.FormatFloat(*c.Value, 'f', -1, 64)
}

// formatDate formats a date the way the dataset parser reads it back
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}
