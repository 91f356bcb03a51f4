package http

import (
	"time"

	xutil "SectorVol/pkg/util"
)

// ParseDate parses a YYYY-MM-DD query value as UTC midnight.
func ParseDate(s string) (time.Time, bool) { return xutil.ParseDate(s) }

// ParseDateDefault parses a date or returns def if empty/invalid.
func ParseDateDefault(s string, def time.Time) time.Time { return xutil.ParseDateDefault(s, def) }
