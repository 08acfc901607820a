package views

import (
	"time"

	"github.com/scmhub/calendar"

	"marketdesk/internal/config"
	"marketdesk/pkg/contracts/domain"
)

// TradingCalendar answers business day questions for one exchange. When the
// exchange calendar is unavailable it treats Monday to Friday as open.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// NewTradingCalendar loads the calendar of an exchange by MIC code
func NewTradingCalendar(mic string) *TradingCalendar {
	if mic == "" {
		mic = config.DefaultCalendar
	}
	if cal := calendar.GetCalendar(mic); cal != nil {
		return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
	}
	return FallbackCalendar(mic)
}

// FallbackCalendar returns a Monday to Friday calendar in New York time
func FallbackCalendar(mic string) *TradingCalendar {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &TradingCalendar{MIC: mic, Fallback: true, Timezone: loc}
}

// IsBusinessDay reports whether the calendar day of t is a trading day.
// Only the date of t matters; it is placed at noon in the exchange timezone.
func (tc *TradingCalendar) IsBusinessDay(t time.Time) bool {
	d := domain.TruncateDay(t)
	local := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, tc.Timezone)

	if tc.Fallback || tc.Calendar == nil {
		wd := local.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(local)
}

// WeekEnding returns the last business day on or before the Friday of t's
// ISO week. A week without any business day up to Friday yields that Friday.
func (tc *TradingCalendar) WeekEnding(t time.Time) time.Time {
	d := domain.TruncateDay(t)
	offset := (int(time.Friday) - int(d.Weekday()) + 7) % 7
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		// ISO weeks end on Sunday, so the weekend belongs to the Friday before
		offset -= 7
	}
	friday := d.AddDate(0, 0, offset)

	for back := 0; back < 5; back++ {
		candidate := friday.AddDate(0, 0, -back)
		if tc.IsBusinessDay(candidate) {
			return candidate
		}
	}
	return friday
}
