package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// DateLayout is the wire and key format of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar day without time-of-day, stored as UTC midnight.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in t's own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateOf builds a Date from year, month and day.
func DateOf(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// Key returns the "YYYY-MM-DD" form used for ordering and map keys.
func (d Date) Key() string { return d.Format(DateLayout) }

func (d Date) String() string { return d.Key() }

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date { return Date{d.AddDate(0, 0, n)} }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Key() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DailyRecord represents one trading day for one instrument.
type DailyRecord struct {
	Instrument    string     `json:"instrument,omitempty"`
	Date          Date       `json:"date"`
	Open          float64    `json:"open"`
	High          float64    `json:"high"`
	Low           float64    `json:"low"`
	Close         float64    `json:"close"`
	Volume        float64    `json:"volume"`
	ChangePercent float64    `json:"changePercent"`
	Volatility    null.Float `json:"volatility"`
}

// NewDailyRecord builds a record and derives its change percent from open and close.
func NewDailyRecord(instrument string, date Date, open, high, low, close, volume float64) DailyRecord {
	return DailyRecord{
		Instrument:    instrument,
		Date:          date,
		Open:          open,
		High:          high,
		Low:           low,
		Close:         close,
		Volume:        volume,
		ChangePercent: ChangePercent(open, close),
	}
}

// ChangePercent returns (close/open - 1) * 100, or 0 when open is not usable.
func ChangePercent(open, close float64) float64 {
	if open == 0 || !isFinite(open) || !isFinite(close) {
		return 0
	}
	return (close/open - 1) * 100
}

// Validate reports prices that would poison downstream math.
// OHLC ordering is not checked.
func (r DailyRecord) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"open", r.Open}, {"high", r.High}, {"low", r.Low}, {"close", r.Close}} {
		if !isFinite(f.v) || f.v <= 0 {
			return &MalformedRecordError{Date: r.Date, Field: f.name, Value: f.v}
		}
	}
	if !isFinite(r.Volume) || r.Volume < 0 {
		return &MalformedRecordError{Date: r.Date, Field: "volume", Value: r.Volume}
	}
	return nil
}

// MalformedRecordError marks a record with a non-finite or non-positive field.
type MalformedRecordError struct {
	Date  Date
	Field string
	Value float64
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %s: %s=%v", e.Date.Key(), e.Field, e.Value)
}

// Closes extracts close prices in series order.
func Closes(records []DailyRecord) []float64 {
	closes := make([]float64, len(records))
	for i, r := range records {
		closes[i] = r.Close
	}
	return closes
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Granularity selects the bucket size for aggregation.
type Granularity string

const (
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity accepts "week"/"weekly" and "month"/"monthly".
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(s) {
	case "week", "weekly":
		return Week, nil
	case "month", "monthly":
		return Month, nil
	default:
		return "", fmt.Errorf("unknown granularity %q", s)
	}
}

// BucketRecord summarizes the daily records sharing one ISO week or calendar month.
type BucketRecord struct {
	Granularity      Granularity `json:"granularity"`
	Key              string      `json:"key"`
	Start            Date        `json:"start"`
	FirstDay         Date        `json:"firstDay"`
	LastDay          Date        `json:"lastDay"`
	Open             float64     `json:"open"`
	High             float64     `json:"high"`
	Low              float64     `json:"low"`
	Close            float64     `json:"close"`
	Volume           float64     `json:"volume"`
	ChangePercent    float64     `json:"changePercent"`
	AvgChangePercent float64     `json:"avgChangePercent"`
	MaxChangePercent float64     `json:"maxChangePercent"`
	MinChangePercent float64     `json:"minChangePercent"`
	Volatility       null.Float  `json:"volatility"`
	TradingDays      int         `json:"tradingDays"`
}

// SortedByDate returns a copy of records in ascending date order. Equal dates keep input order.
func SortedByDate(records []DailyRecord) []DailyRecord {
	out := make([]DailyRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out
}
