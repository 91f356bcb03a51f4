package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2019-01-01")
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
	if _, ok := ParseDate("2019-13-01"); ok {
		t.Fatalf("expected month 13 to fail")
	}
	if _, ok := ParseDate("01/01/2019"); ok {
		t.Fatalf("expected slash format to fail")
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := ParseDateDefault("", def); !got.Equal(def) {
		t.Fatalf("expected default")
	}
	if got := ParseDateDefault("bogus", def); !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestTruncateDay(t *testing.T) {
	in := time.Date(2024, 3, 5, 21, 30, 0, 0, time.FixedZone("X", -5*3600))
	want := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	if got := TruncateDay(in); !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
