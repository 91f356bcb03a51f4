package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"SectorVol/internal/domain/models"
	apphttp "SectorVol/pkg/http"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 14:30 UTC on Jan 3, 4 and 5 2023, the NYSE open.
const chartBody = `{"chart":{"result":[{
  "meta":{"symbol":"AAPL","gmtoffset":-18000},
  "timestamp":[1672756200,1672842600,1672929000],
  "indicators":{
    "quote":[{"close":[125.07,126.36,125.02]}],
    "adjclose":[{"adjclose":[123.9,null,123.9]}]
  }
}],"error":null}}`

func date(m time.Month, d int) time.Time { return time.Date(2023, m, d, 0, 0, 0, 0, time.UTC) }

func newTestClient(url string, opts ...Option) *Client {
	opts = append([]Option{
		WithBaseURL(url),
		WithRateLimit(1000, 100),
		WithRetry(2, time.Millisecond),
	}, opts...)
	return NewClient(apphttp.NewClient(apphttp.WithTimeout(time.Second)), nil, opts...)
}

func TestDailyClosesParsesChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "1d", q.Get("interval"))
		assert.Equal(t, "1672531200", q.Get("period1"))
		assert.Equal(t, "1704067200", q.Get("period2"))
		_, _ = fmt.Fprint(w, chartBody)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	bars, err := c.DailyCloses(context.Background(), "AAPL", date(1, 1), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, []Bar{
		{Date: date(1, 3), Close: 123.9},
		{Date: date(1, 5), Close: 123.9},
	}, bars)
}

func TestDailyClosesFallsBackToClose(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"gmtoffset":0},"timestamp":[1672756200],
	  "indicators":{"quote":[{"close":[125.07]}]}}],"error":null}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, body)
	}))
	defer srv.Close()

	bars, err := newTestClient(srv.URL).DailyCloses(context.Background(), "X", date(1, 1), date(2, 1))
	require.NoError(t, err)
	assert.Equal(t, []Bar{{Date: date(1, 3), Close: 125.07}}, bars)
}

func TestDailyClosesUnknownSymbolIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	bars, err := newTestClient(srv.URL).DailyCloses(context.Background(), "NOPE", date(1, 1), date(2, 1))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestDailyClosesRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, chartBody)
	}))
	defer srv.Close()

	bars, err := newTestClient(srv.URL).DailyCloses(context.Background(), "AAPL", date(1, 1), date(2, 1))
	require.NoError(t, err)
	assert.Len(t, bars, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDailyClosesDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).DailyCloses(context.Background(), "AAPL", date(1, 1), date(2, 1))
	var se *apphttp.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDailyClosesBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, WithRetry(0, time.Millisecond), WithBreaker(1, time.Minute))
	_, err := c.DailyCloses(context.Background(), "AAPL", date(1, 1), date(2, 1))
	require.Error(t, err)

	_, err = c.DailyCloses(context.Background(), "MSFT", date(1, 1), date(2, 1))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDailyClosesChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input"}}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).DailyCloses(context.Background(), "AAPL", date(1, 1), date(2, 1))
	assert.ErrorContains(t, err, "Invalid input")
}

type fakeSource map[string][]Bar

func (f fakeSource) DailyCloses(_ context.Context, symbol string, _, _ time.Time) ([]Bar, error) {
	bars, ok := f[symbol]
	if !ok {
		return nil, errors.New("boom")
	}
	return bars, nil
}

func TestLoaderJoinsTickers(t *testing.T) {
	src := fakeSource{
		"A": {{date(1, 3), 10}, {date(1, 4), 11}, {date(1, 5), 12}},
		"B": {{date(1, 3), 20}, {date(1, 5), 22}},
	}
	l := newLoader(src, nil, nil, 2)

	s, err := l.Load(context.Background(), []string{"A", "B"}, date(1, 1), date(2, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, s.Tickers)
	assert.Equal(t, []time.Time{date(1, 3), date(1, 5)}, s.Dates)
	assert.Equal(t, [][]float64{{10, 20}, {12, 22}}, s.Rows)
}

func TestLoaderEdgeCases(t *testing.T) {
	l := newLoader(fakeSource{"A": {}}, nil, nil, 0)

	s, err := l.Load(context.Background(), nil, date(1, 1), date(2, 1))
	require.NoError(t, err)
	assert.True(t, s.Empty())

	s, err = l.Load(context.Background(), []string{"A"}, date(1, 1), date(2, 1))
	require.NoError(t, err)
	assert.True(t, s.Empty())

	_, err = l.Load(context.Background(), []string{"A", "MISSING"}, date(1, 1), date(2, 1))
	assert.ErrorIs(t, err, models.ErrProviderUnavailable)
	assert.ErrorContains(t, err, "MISSING")
}
