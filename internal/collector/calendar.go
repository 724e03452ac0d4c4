package collector

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scmhub/calendar"
)

// TradingCalendar decides which days produce a bar.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
}

// NewTradingCalendar loads the exchange calendar for mic (ISO 10383, e.g. "xnys").
// When the calendar is unavailable it falls back to Monday-Friday.
func NewTradingCalendar(mic string) *TradingCalendar {
	if mic == "" {
		mic = "xnys"
	}
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		log.Warn().Str("mic", mic).Msg("trading calendar unavailable, using Mon-Fri fallback")
		return &TradingCalendar{Fallback: true}
	}
	return &TradingCalendar{Calendar: cal}
}

// WeekdayCalendar treats every Monday-Friday as a trading day.
func WeekdayCalendar() *TradingCalendar {
	return &TradingCalendar{Fallback: true}
}

// IsTradingDay reports whether a bar exists for the calendar day of date.
func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc == nil || tc.Fallback || tc.Calendar == nil {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	// midday in exchange time so the calendar day does not shift
	y, m, d := date.Date()
	return tc.Calendar.IsBusinessDay(time.Date(y, m, d, 12, 0, 0, 0, tc.Calendar.Loc))
}
