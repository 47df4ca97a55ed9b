package collector

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"time"

	"StockBoard/internal/calculator"
	"StockBoard/internal/dataset"
	"StockBoard/internal/model"
)

// NoDataWarning is shown when no selected company returned any price data.
const NoDataWarning = "no price data could be retrieved; review the company selection or the period"

// StaticFetcher returns deterministic synthetic bars for development and demos.
type StaticFetcher struct {
	Now func() time.Time
}

func (s *StaticFetcher) Name() string { return "static" }

func (s *StaticFetcher) FetchHistory(_ context.Context, symbol string, period model.Period, interval model.Interval) ([]model.OHLCV, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	return generateBars(symbol, period.Start(now), now, interval), nil
}

func generateBars(symbol string, start, end time.Time, interval model.Interval) []model.OHLCV {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	seed := h.Sum32()
	basePrice := 500 + float64(seed%3000)
	phase := float64(seed%17) / 3

	var bars []model.OHLCV
	i := 0
	for t := start; !t.After(end); t = step(t, interval) {
		if interval == model.IntervalDay && (t.Weekday() == time.Saturday || t.Weekday() == time.Sunday) {
			continue
		}
		p := math.Round(basePrice*(1+0.05*math.Sin(float64(i)/6+phase))*10) / 10
		bars = append(bars, model.OHLCV{
			Time:   t,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}

func step(t time.Time, interval model.Interval) time.Time {
	switch interval {
	case model.IntervalWeek:
		return t.AddDate(0, 0, 7)
	case model.IntervalMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Collector runs the price pipeline for a selection.
type Collector struct {
	Fetcher Fetcher
	Now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher, Now: time.Now}
}

// Build fetches every selected company in order and derives the combined
// rows, the latest-per-company view and the chart axis. A company whose fetch
// fails is skipped with a warning; only context cancellation aborts the run.
func (c *Collector) Build(ctx context.Context, sel model.Selection) (*model.Dashboard, error) {
	dash := &model.Dashboard{Selection: sel, UpdatedAt: c.Now()}

	series := make([][]model.Row, 0, len(sel.Companies))
	for _, co := range sel.Companies {
		bars, err := c.Fetcher.FetchHistory(ctx, co.Symbol, sel.Period, sel.Interval)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("fetch %s: %w", co.Symbol, ctxErr)
			}
			log.Printf("[WARN] fetch %s (%s) failed, skipping: %v", co.Label, co.Symbol, err)
			dash.Warnings = append(dash.Warnings, fmt.Sprintf("%s: price data unavailable", co.Label))
			continue
		}
		if len(bars) == 0 {
			log.Printf("[INFO] no data for %s (%s) period=%s interval=%s", co.Label, co.Symbol, sel.Period, sel.Interval)
			continue
		}
		series = append(series, dataset.Normalize(bars, co.Label))
	}

	rows, err := dataset.Combine(series...)
	if errors.Is(err, dataset.ErrNoData) {
		dash.NoData = true
		dash.Warnings = append(dash.Warnings, NoDataWarning)
		return dash, nil
	}
	if err != nil {
		return nil, fmt.Errorf("combine: %w", err)
	}

	dash.Rows = rows
	dash.Latest = dataset.LatestPerCompany(rows)
	dash.Stats = calculator.Summarize(rows)
	if dash.AxisLow, dash.AxisHigh, err = dataset.PriceAxisBounds(rows); err != nil {
		return nil, fmt.Errorf("axis bounds: %w", err)
	}
	return dash, nil
}
