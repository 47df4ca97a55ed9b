package calculator

import (
	"errors"
	"math"
	"sort"

	"StockBoard/internal/model"
)

// PriceRange scans the prices and returns the high and low.
func PriceRange(prices []float64) (high, low float64, err error) {
	if len(prices) == 0 {
		return 0, 0, errors.New("no prices provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range prices {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}
	return high, low, nil
}

// RangePosition returns where the current price sits within the range (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// ChangePercent returns the relative change from first to last in percent.
// A zero first price yields 0.
func ChangePercent(first, last float64) float64 {
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}

// Summarize computes PeriodStats per company from a combined dataset. Rows of
// each company are taken in dataset order, so First and Last agree with the
// latest-per-company view. The result is sorted like that view.
func Summarize(rows []model.Row) []model.PeriodStats {
	byCompany := make(map[string][]float64)
	var order []string
	for _, r := range rows {
		if _, ok := byCompany[r.Company]; !ok {
			order = append(order, r.Company)
		}
		byCompany[r.Company] = append(byCompany[r.Company], r.Price)
	}
	sort.Strings(order)

	stats := make([]model.PeriodStats, 0, len(order))
	for _, company := range order {
		prices := byCompany[company]
		high, low, err := PriceRange(prices)
		if err != nil {
			continue
		}
		avg, _ := Average(prices)
		first, last := prices[0], prices[len(prices)-1]
		pos, _ := RangePosition(last, high, low)
		stats = append(stats, model.PeriodStats{
			Company:   company,
			First:     first,
			Last:      last,
			High:      high,
			Low:       low,
			Average:   avg,
			ChangePct: ChangePercent(first, last),
			Position:  pos,
		})
	}
	return stats
}
