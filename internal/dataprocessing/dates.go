package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// SerialEpoch is day zero of the spreadsheet serial date system
var SerialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// maxSerial is 9999-12-31 in serial days
const maxSerial = 2958465

// ParseDateToken converts a serial day count, an M/D/YYYY string or a
// YYYY-MM-DD string to UTC midnight.
func ParseDateToken(token string) (time.Time, bool) {
	t := cleanCell(token)
	if t == "" {
		return time.Time{}, false
	}

	switch {
	case strings.Contains(t, "/"):
		return parseMonthDayYear(t)
	case len(t) == 10 && t[4] == '-' && t[7] == '-':
		return parseISODate(t)
	default:
		return parseSerialDate(t)
	}
}

// SerialToTime converts a serial day count, rounding to the nearest day
func SerialToTime(serial float64) time.Time {
	return SerialEpoch.AddDate(0, 0, int(math.Round(serial)))
}

func parseSerialDate(token string) (time.Time, bool) {
	f, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	if f < 1 || f > maxSerial {
		return time.Time{}, false
	}
	return SerialToTime(f), true
}

func parseMonthDayYear(token string) (time.Time, bool) {
	parts := strings.Split(token, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	month, ok := parseDigits(parts[0], 1, 2)
	if !ok || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, ok := parseDigits(parts[1], 1, 2)
	if !ok || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year, ok := parseDigits(parts[2], 4, 4)
	if !ok {
		return time.Time{}, false
	}

	return buildDate(year, month, day)
}

func parseISODate(token string) (time.Time, bool) {
	year, ok := parseDigits(token[0:4], 4, 4)
	if !ok {
		return time.Time{}, false
	}
	month, ok := parseDigits(token[5:7], 2, 2)
	if !ok || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, ok := parseDigits(token[8:10], 2, 2)
	if !ok || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return buildDate(year, month, day)
}

// buildDate rejects dates time.Date would normalize, such as 2/30
func buildDate(year, month, day int) (time.Time, bool) {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// parseDigits parses a run of ASCII digits whose length is within [minLen, maxLen]
func parseDigits(s string, minLen, maxLen int) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) < minLen || len(s) > maxLen {
		return 0, false
	}
	n := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		n = n*10 + int(ch-'0')
	}
	return n, true
}

// ParseValue parses a numeric cell, tolerating thousands separators.
// Non-finite results are rejected.
func ParseValue(token string) (float64, bool) {
	t := strings.ReplaceAll(cleanCell(token), ",", "")
	if t == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// cleanCell trims whitespace, a UTF-8 BOM and enclosing quotes
func cleanCell(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}
