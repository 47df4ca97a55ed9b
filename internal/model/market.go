package model

import (
	"fmt"
	"time"
)

// OHLCV represents a single candlestick bar as delivered by a price source.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Row is one normalized observation: a closing price on a date, labelled with
// the human-readable company name.
type Row struct {
	Date    time.Time `json:"date"`
	Price   float64   `json:"price"`
	Company string    `json:"company"`
}

// Company maps a display label to its ticker symbol.
type Company struct {
	Label  string `yaml:"label" json:"label" validate:"required"`
	Symbol string `yaml:"symbol" json:"symbol" validate:"required"`
}

// Period is the reporting window requested from the price source.
type Period string

const (
	Period1Month  Period = "1mo"
	Period3Months Period = "3mo"
	Period6Months Period = "6mo"
	Period1Year   Period = "1y"
	Period5Years  Period = "5y"
)

// Periods lists the supported periods in display order.
var Periods = []Period{Period1Month, Period3Months, Period6Months, Period1Year, Period5Years}

// ParsePeriod validates s against the supported periods.
func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unsupported period %q", s)
}

// Start returns the beginning of the period ending at now.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case Period3Months:
		return now.AddDate(0, -3, 0)
	case Period6Months:
		return now.AddDate(0, -6, 0)
	case Period1Year:
		return now.AddDate(-1, 0, 0)
	case Period5Years:
		return now.AddDate(-5, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// Interval is the sampling step of a price series.
type Interval string

const (
	IntervalDay   Interval = "1d"
	IntervalWeek  Interval = "1wk"
	IntervalMonth Interval = "1mo"
)

// Intervals lists the supported intervals in display order.
var Intervals = []Interval{IntervalDay, IntervalWeek, IntervalMonth}

// ParseInterval validates s against the supported intervals.
func ParseInterval(s string) (Interval, error) {
	for _, i := range Intervals {
		if string(i) == s {
			return i, nil
		}
	}
	return "", fmt.Errorf("unsupported interval %q", s)
}

// Selection is everything the pipeline needs for one recompute.
type Selection struct {
	Period    Period    `json:"period"`
	Interval  Interval  `json:"interval"`
	Companies []Company `json:"companies"`
}

// Dashboard is the result of one pipeline run.
type Dashboard struct {
	Selection Selection     `json:"selection"`
	Rows      []Row         `json:"rows"`
	Latest    []Row         `json:"latest"`
	Stats     []PeriodStats `json:"stats,omitempty"`
	AxisLow   float64       `json:"axis_low"`
	AxisHigh  float64       `json:"axis_high"`
	Warnings  []string      `json:"warnings,omitempty"`
	NoData    bool          `json:"no_data"`
	UpdatedAt time.Time     `json:"updated_at"`
}
