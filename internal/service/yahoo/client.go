package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apphttp "SectorVol/pkg/http"
	applogger "SectorVol/pkg/logger"
	"SectorVol/pkg/util"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Bar is one daily close. Close is the split and dividend adjusted price
// when Yahoo provides it.
type Bar struct {
	Date  time.Time
	Close float64
}

// Option configures Client.
type Option func(*Client)

// Client reads daily history from the Yahoo Finance v8 chart API.
// Calls are throttled, retried with exponential backoff and guarded by a
// circuit breaker shared by all symbols.
type Client struct {
	http       *apphttp.Client
	baseURL    string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	maxRetries uint64
	maxElapsed time.Duration
	initial    time.Duration
	log        *applogger.Logger
}

// NewClient creates a chart client on top of httpClient.
func NewClient(httpClient *apphttp.Client, log *applogger.Logger, opts ...Option) *Client {
	if log == nil {
		log = applogger.Nop()
	}
	c := &Client{
		http:       httpClient,
		baseURL:    DefaultBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(2), 4),
		maxRetries: 3,
		maxElapsed: 30 * time.Second,
		initial:    500 * time.Millisecond,
		log:        log.With(applogger.String("client", "yahoo")),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = newBreaker(5, 30*time.Second)
	}
	return c
}

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithRateLimit sets requests per second and burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetry sets the retry budget and the first backoff interval.
func WithRetry(maxRetries uint64, initial time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initial = initial
	}
}

// WithBreaker trips the breaker after maxFailures consecutive failures and
// keeps it open for openTimeout.
func WithBreaker(maxFailures uint32, openTimeout time.Duration) Option {
	return func(c *Client) {
		c.breaker = newBreaker(maxFailures, openTimeout)
	}
}

func newBreaker(maxFailures uint32, openTimeout time.Duration) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{Name: "yahoo-chart"}
	st.Interval = 60 * time.Second
	st.Timeout = openTimeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= maxFailures
	}
	// a definitive answer from Yahoo is not an outage
	st.IsSuccessful = func(err error) bool {
		if err == nil {
			return true
		}
		var se *apphttp.StatusError
		return errors.As(err, &se) && !se.Temporary()
	}
	return gobreaker.NewCircuitBreaker(st)
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// DailyCloses returns the daily bars of symbol in [start, end). A symbol
// Yahoo does not know yields no bars and no error.
func (c *Client) DailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	opts := &apphttp.RequestOptions{
		Method:  apphttp.MethodGet,
		URL:     c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol),
		Headers: map[string]string{"Accept": "application/json"},
		QueryParams: map[string][]string{
			"interval": {"1d"},
			"period1":  {strconv.FormatInt(start.Unix(), 10)},
			"period2":  {strconv.FormatInt(end.Unix(), 10)},
			"events":   {"div,splits"},
		},
	}

	var resp chartResponse
	err := c.do(ctx, symbol, func() error {
		resp = chartResponse{}
		return c.http.SendAndParse(ctx, opts, &resp)
	})
	if err != nil {
		var se *apphttp.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			c.log.Warn("no history for symbol", applogger.String("symbol", symbol))
			return []Bar{}, nil
		}
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %s", symbol, resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		c.log.Warn("no history for symbol", applogger.String("symbol", symbol))
		return []Bar{}, nil
	}
	return bars(resp.Chart.Result[0]), nil
}

// do runs call under the limiter, retry policy and breaker.
func (c *Client) do(ctx context.Context, symbol string, call func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initial
	policy.MaxElapsedTime = c.maxElapsed
	b := backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)

	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, call()
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		var se *apphttp.StatusError
		if errors.As(err, &se) && !se.Temporary() {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.log.Warn("yahoo request failed, retrying",
			applogger.String("symbol", symbol),
			applogger.Duration("wait_ms", wait),
			applogger.Error(err),
		)
	}
	return backoff.RetryNotify(op, b, notify)
}

// bars pairs timestamps with closes, preferring adjusted close, and dates
// each bar on the exchange's calendar day.
func bars(r chartResult) []Bar {
	var closes []*float64
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) == len(r.Timestamp) {
		closes = r.Indicators.AdjClose[0].AdjClose
	} else if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	out := make([]Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		day := util.TruncateDay(time.Unix(ts+r.Meta.GMTOffset, 0).UTC())
		if n := len(out); n > 0 && out[n-1].Date.Equal(day) {
			out[n-1].Close = *closes[i]
			continue
		}
		out = append(out, Bar{Date: day, Close: *closes[i]})
	}
	return out
}
