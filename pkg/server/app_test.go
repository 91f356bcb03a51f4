package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCloser struct {
	name  string
	order *[]string
	err   error
}

func (c *recordingCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

func TestShutdownClosesInReverseOrder(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	app := New(nil, nil, time.Second,
		Resource{Name: "cache", Closer: &recordingCloser{name: "cache", order: &order}},
		Resource{Name: "skipped"},
		Resource{Name: "kafka", Closer: &recordingCloser{name: "kafka", order: &order, err: boom}},
	)

	err := app.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"kafka", "cache"}, order)
}

func TestRunReturnsOnCancel(t *testing.T) {
	var order []string
	app := New(nil, nil, 0, Resource{Name: "db", Closer: &recordingCloser{name: "db", order: &order}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, app.Run(ctx))
	assert.Equal(t, []string{"db"}, order)
}
