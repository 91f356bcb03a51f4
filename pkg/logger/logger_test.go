package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, zerolog.DebugLevel)

	log.Info("loaded",
		String("sector", "Tech"),
		Int("rows", 3),
		Float64("threshold", 0.35),
		Date("start", time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)),
		Time("computed_at", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
		Error(errors.New("boom")),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "loaded", entry["message"])
	assert.Equal(t, "Tech", entry["sector"])
	assert.Equal(t, float64(3), entry["rows"])
	assert.Equal(t, 0.35, entry["threshold"])
	assert.Equal(t, "2019-01-01", entry["start"])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry["computed_at"], "2024-03-01")
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, zerolog.WarnLevel)

	log.Debug("hidden")
	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, zerolog.InfoLevel).With(String("component", "yahoo"))

	log.Info("hello")
	assert.Contains(t, buf.String(), `"component":"yahoo"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	assert.Error(t, err)
}
