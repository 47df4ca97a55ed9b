package calculator

import "errors"

// Average returns the arithmetic mean of prices.
func Average(prices []float64) (float64, error) {
	if len(prices) == 0 {
		return 0, errors.New("no prices provided")
	}
	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices)), nil
}
