package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"StockBoard/internal/model"
)

func TestFormatPrice(t *testing.T) {
	require.Equal(t, "101.00 JPY", FormatPrice(101, "JPY"))
	require.Equal(t, "2345.50 JPY", FormatPrice(2345.5, "JPY"))
}

func TestLatestMarkdown_Table(t *testing.T) {
	d := &model.Dashboard{
		Selection: model.Selection{Period: model.Period1Month, Interval: model.IntervalDay},
		Rows:      make([]model.Row, 5),
		Latest: []model.Row{
			{Company: "Company A", Date: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), Price: 101},
			{Company: "Company B", Date: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), Price: 55.5},
		},
		UpdatedAt: time.Date(2025, 1, 3, 16, 0, 0, 0, time.UTC),
	}
	out := LatestMarkdown(d, "JPY")

	require.Contains(t, out, "# Latest stock prices")
	require.Contains(t, out, "Company A")
	require.Contains(t, out, "101.00 JPY")
	require.Contains(t, out, "55.50 JPY")
	require.Contains(t, out, "5 observations across 2 companies")
	require.Contains(t, out, "Last updated: 2025-01-03 16:00:00")
	require.Less(t, strings.Index(out, "Company A"), strings.Index(out, "Company B"))
	require.NotContains(t, out, "Warnings")
}

func TestLatestMarkdown_NoData(t *testing.T) {
	d := &model.Dashboard{
		Selection: model.Selection{Period: model.Period1Month, Interval: model.IntervalDay},
		NoData:    true,
		Warnings:  []string{"no price data"},
	}
	out := LatestMarkdown(d, "JPY")
	require.Contains(t, out, "## Warnings")
	require.Contains(t, out, "no price data")
	require.NotContains(t, out, "| Company")
}

func TestRenderTerminal(t *testing.T) {
	out, err := RenderTerminal("# Title\n\nhello")
	require.NoError(t, err)
	require.Contains(t, out, "hello")
}

func TestFormatPercent(t *testing.T) {
	require.Equal(t, "+10.00%", FormatPercent(10))
	require.Equal(t, "-3.46%", FormatPercent(-3.456))
	require.Equal(t, "0.00%", FormatPercent(0))
}

func TestLatestMarkdown_Stats(t *testing.T) {
	d := &model.Dashboard{
		Selection: model.Selection{Period: model.Period3Months, Interval: model.IntervalWeek},
		Rows:      make([]model.Row, 2),
		Latest:    []model.Row{{Company: "Company A", Price: 110}},
		Stats:     []model.PeriodStats{{Company: "Company A", Low: 100, High: 120, ChangePct: 10}},
	}
	out := LatestMarkdown(d, "JPY")
	require.Contains(t, out, "## Period summary")
	require.Contains(t, out, "120.00 JPY")
	require.Contains(t, out, "+10.00%")
}
