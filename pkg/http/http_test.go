package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "unit", r.Header.Get("User-Agent"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		switch r.URL.Path {
		case "/ok":
			_, _ = fmt.Fprint(w, `{"value":7}`)
		case "/busy":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = fmt.Fprint(w, "no such thing")
		}
	}))
	defer srv.Close()

	c := NewClient(WithUserAgent("unit"))
	params := map[string][]string{"interval": {"1d"}}

	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL + "/ok", QueryParams: params}, &out))
	assert.Equal(t, 7, out.Value)

	err := c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL + "/missing", QueryParams: params}, &out)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "no such thing", se.Body)
	assert.False(t, se.Temporary())

	err = c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL + "/busy", QueryParams: params}, nil)
	require.True(t, errors.As(err, &se))
	assert.True(t, se.Temporary())
}

type dateQuery struct {
	Sector string `query:"sector" validate:"required"`
	Start  string `query:"start" default:"2019-01-01" validate:"date"`
}

func TestReadAndValidateRequest(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?sector=Tech", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	var q dateQuery
	assert.Nil(t, ReadAndValidateRequest(c, &q))
	assert.Equal(t, "Tech", q.Sector)
	assert.Equal(t, "2019-01-01", q.Start)

	req = httptest.NewRequest(http.MethodGet, "/?start=01-01-2019", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	q = dateQuery{}
	errs, ok := ReadAndValidateRequest(c, &q).([]ValidationError)
	require.True(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, "ERR_REQUIRED", errs[0].Code)
	assert.Equal(t, "sector", errs[0].Field)
	assert.Equal(t, "ERR_DATE", errs[1].Code)
	assert.Equal(t, "start", errs[1].Field)
	assert.Equal(t, DateLayout, errs[1].Params["layout"])
}

func TestAppErrorResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, AppErrorResponse(c, fmt.Errorf("wrap: %w", BadGatewayError("upstream down"))))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadGateway, body.Status)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, AppErrorResponse(c, errors.New("plain")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServerHealthz(t *testing.T) {
	s := NewServer(nil, nil, WithMetrics("", 0))
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}
