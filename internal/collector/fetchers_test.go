package collector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"StockBoard/internal/model"
)

const yahooBody = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "4676.T", "currency": "JPY", "exchangeTimezoneName": "Asia/Tokyo"},
      "timestamp": [1735862400, 1735776000, 1735948800],
      "indicators": {"quote": [{
        "open":   [1510, 1500, null],
        "high":   [1520, 1505, null],
        "low":    [1490, 1495, null],
        "close":  [1515.5, 1502, null],
        "volume": [1000, 2000, null]
      }]}
    }],
    "error": null
  }
}`

func TestYahooFetcher_ParsesChart(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(yahooBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL + "/chart"

	bars, err := f.FetchHistory(t.Context(), "4676.T", model.Period3Months, model.IntervalWeek)
	require.NoError(t, err)
	require.Equal(t, "/chart/4676.T", gotPath)
	require.Equal(t, "interval=1wk&range=3mo", gotQuery)

	// The null bar is dropped and the rest sorted.
	require.Len(t, bars, 2)
	require.Equal(t, 1502.0, bars[0].Close)
	require.Equal(t, 1515.5, bars[1].Close)
	require.True(t, bars[0].Time.Before(bars[1].Time))
	require.Equal(t, "Asia/Tokyo", bars[0].Time.Location().String())
}

func TestYahooFetcher_EmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{},"indicators":{"quote":[{}]}}],"error":null}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	bars, err := f.FetchHistory(t.Context(), "9404.T", model.Period1Month, model.IntervalDay)
	require.NoError(t, err)
	require.Empty(t, bars)
}

func TestYahooFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http status", http.StatusNotFound, `{}`},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`},
		{"bad json", http.StatusOK, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := NewYahooFetcher("")
			f.BaseURL = srv.URL
			_, err := f.FetchHistory(t.Context(), "XXXX.T", model.Period1Month, model.IntervalDay)
			require.Error(t, err)
		})
	}
}

func TestRESTFetcher_FiltersAndResamples(t *testing.T) {
	now := time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC)
	days := []time.Time{
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), // before the 1mo window
		time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),  // Monday, ISO week 6
		time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), // week 7
	}
	raw := make([]restBar, len(days))
	for i, d := range days {
		p := float64(100 + i)
		raw[i] = restBar{Timestamp: d.Unix(), Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 10}
	}

	var gotAuth, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotLimit = r.URL.Query().Get("limit")
		json.NewEncoder(w).Encode(raw)
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "")
	f.Now = func() time.Time { return now }

	daily, err := f.FetchHistory(t.Context(), "4676.T", model.Period1Month, model.IntervalDay)
	require.NoError(t, err)
	require.Equal(t, "Bearer secret", gotAuth)
	require.Equal(t, "32", gotLimit)
	require.Len(t, daily, 3)

	weekly, err := f.FetchHistory(t.Context(), "4676.T", model.Period1Month, model.IntervalWeek)
	require.NoError(t, err)
	require.Len(t, weekly, 2)
	require.Equal(t, 101.0, weekly[0].Open)
	require.Equal(t, 102.0, weekly[0].Close)
	require.Equal(t, 103.0, weekly[0].High)
	require.Equal(t, 100.0, weekly[0].Low)
	require.Equal(t, 20.0, weekly[0].Volume)

	monthly, err := f.FetchHistory(t.Context(), "4676.T", model.Period1Month, model.IntervalMonth)
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	require.Equal(t, 103.0, monthly[0].Close)
}

func TestRESTFetcher_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "", "")
	_, err := f.FetchHistory(t.Context(), "4676.T", model.Period1Month, model.IntervalDay)
	require.ErrorContains(t, err, "status 502")
}

func TestAggregate_Empty(t *testing.T) {
	require.Nil(t, aggregateDailyToWeekly(nil))
	require.Nil(t, aggregateDailyToMonthly(nil))
}

func TestCachingFetcher_TTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := NewMockFetcher(ctrl)
	now := fixedNow
	c := NewCachingFetcher(f, time.Minute)
	c.Now = func() time.Time { return now }

	f.EXPECT().FetchHistory(gomock.Any(), "4676.T", model.Period1Month, model.IntervalDay).
		Return(dailyBars(1, 2), nil).Times(2)
	f.EXPECT().FetchHistory(gomock.Any(), "4676.T", model.Period1Year, model.IntervalDay).
		Return(dailyBars(3), nil).Times(1)

	for i := 0; i < 3; i++ {
		bars, err := c.FetchHistory(t.Context(), "4676.T", model.Period1Month, model.IntervalDay)
		require.NoError(t, err)
		require.Len(t, bars, 2)
	}
	_, err := c.FetchHistory(t.Context(), "4676.T", model.Period1Year, model.IntervalDay)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	now = now.Add(2 * time.Minute)
	require.Equal(t, 2, c.Purge())
	require.Equal(t, 0, c.Len())

	_, err = c.FetchHistory(t.Context(), "4676.T", model.Period1Month, model.IntervalDay)
	require.NoError(t, err)
}

func TestCachingFetcher_ErrorsNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := NewMockFetcher(ctrl)
	c := NewCachingFetcher(f, time.Minute)

	gomock.InOrder(
		f.EXPECT().FetchHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("down")),
		f.EXPECT().FetchHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(dailyBars(7), nil),
	)

	_, err := c.FetchHistory(t.Context(), "4676.T", model.Period1Month, model.IntervalDay)
	require.Error(t, err)
	bars, err := c.FetchHistory(t.Context(), "4676.T", model.Period1Month, model.IntervalDay)
	require.NoError(t, err)
	require.Len(t, bars, 1)
}

type countingFetcher struct {
	calls     atomic.Int32
	cancelled atomic.Bool
	release   chan struct{}
}

func (c *countingFetcher) Name() string { return "counting" }

func (c *countingFetcher) FetchHistory(ctx context.Context, _ string, _ model.Period, _ model.Interval) ([]model.OHLCV, error) {
	c.calls.Add(1)
	<-c.release
	if ctx.Err() != nil {
		c.cancelled.Store(true)
		return nil, ctx.Err()
	}
	return dailyBars(1), nil
}

func TestCachingFetcher_DedupsConcurrentLoads(t *testing.T) {
	inner := &countingFetcher{release: make(chan struct{})}
	c := NewCachingFetcher(inner, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.FetchHistory(context.Background(), "4676.T", model.Period1Month, model.IntervalDay)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	require.Equal(t, int32(1), inner.calls.Load())
}

func TestCachingFetcher_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	inner := &countingFetcher{release: make(chan struct{})}
	c := NewCachingFetcher(inner, time.Minute)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.FetchHistory(first, "4676.T", model.Period1Month, model.IntervalDay)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return inner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		bars []model.OHLCV
		err  error
	}
	second := make(chan result, 1)
	go func() {
		bars, err := c.FetchHistory(context.Background(), "4676.T", model.Period1Month, model.IntervalDay)
		second <- result{bars, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(inner.release)
	res := <-second
	require.NoError(t, res.err)
	require.Len(t, res.bars, 1)
	require.Equal(t, int32(1), inner.calls.Load())
	require.False(t, inner.cancelled.Load())
	require.Equal(t, 1, c.Len())
}

func TestCachingFetcher_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := NewMockFetcher(ctrl)
	c := NewCachingFetcher(f, 0)
	f.EXPECT().FetchHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(dailyBars(1), nil).Times(2)

	for i := 0; i < 2; i++ {
		_, err := c.FetchHistory(t.Context(), "4676.T", model.Period1Month, model.IntervalDay)
		require.NoError(t, err)
	}
	require.Equal(t, 0, c.Len())
}
