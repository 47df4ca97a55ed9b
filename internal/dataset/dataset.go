package dataset

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"StockBoard/internal/model"
)

// ErrNoData is returned when no company contributed any rows.
var ErrNoData = errors.New("no price data available")

// axisHeadroom is the 5% margin added above the highest price.
var axisHeadroom = decimal.RequireFromString("1.05")

// Normalize converts one company's bars into rows labelled with company.
// An empty series yields no rows.
func Normalize(bars []model.OHLCV, company string) []model.Row {
	if len(bars) == 0 {
		return nil
	}
	rows := make([]model.Row, len(bars))
	for i, b := range bars {
		rows[i] = model.Row{Date: b.Time, Price: b.Close, Company: company}
	}
	return rows
}

// Combine concatenates the per-company row sets in the order given.
// It returns ErrNoData instead of an empty dataset.
func Combine(series ...[]model.Row) ([]model.Row, error) {
	total := 0
	for _, s := range series {
		total += len(s)
	}
	if total == 0 {
		return nil, ErrNoData
	}
	out := make([]model.Row, 0, total)
	for _, s := range series {
		out = append(out, s...)
	}
	return out, nil
}

// LatestPerCompany returns, for every company present, the last row it has in
// dataset order. The result is sorted by company name.
func LatestPerCompany(rows []model.Row) []model.Row {
	latest := make(map[string]model.Row)
	for _, r := range rows {
		latest[r.Company] = r
	}

	out := make([]model.Row, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Company < out[j].Company })
	return out
}

// PriceAxisBounds returns the chart's price axis: a zero baseline and the
// highest price plus 5% headroom.
func PriceAxisBounds(rows []model.Row) (low, high float64, err error) {
	if len(rows) == 0 {
		return 0, 0, ErrNoData
	}
	maxPrice := rows[0].Price
	for _, r := range rows[1:] {
		if r.Price > maxPrice {
			maxPrice = r.Price
		}
	}
	high = decimal.NewFromFloat(maxPrice).Mul(axisHeadroom).InexactFloat64()
	return 0, high, nil
}
