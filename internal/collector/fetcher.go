package collector

import (
	"context"

	"StockBoard/internal/model"
)

//go:generate mockgen -package=collector -destination=mock_fetcher_test.go -source=fetcher.go Fetcher

// Fetcher defines the interface for fetching historical price bars.
// An empty, nil-error result means the source has no data for the query.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, period model.Period, interval model.Interval) ([]model.OHLCV, error)
	Name() string
}
