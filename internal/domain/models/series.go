package models

import "time"

// Series is a date-indexed table with one column per ticker.
// Dates are strictly increasing; Rows[i] holds the values for Dates[i] in Tickers order.
// It backs price, return, normalized and volatility tables alike.
type Series struct {
	Tickers []string    `json:"tickers"`
	Dates   []time.Time `json:"dates"`
	Rows    [][]float64 `json:"rows"`
}

// NewSeries returns an empty series for the given tickers.
func NewSeries(tickers []string) Series {
	cols := make([]string, len(tickers))
	copy(cols, tickers)
	return Series{
		Tickers: cols,
		Dates:   []time.Time{},
		Rows:    [][]float64{},
	}
}

// Len returns the number of rows.
func (s Series) Len() int { return len(s.Dates) }

// Empty reports whether the series has no rows.
func (s Series) Empty() bool { return len(s.Dates) == 0 }

// Width returns the number of ticker columns.
func (s Series) Width() int { return len(s.Tickers) }

// Append adds a row. The caller keeps dates increasing.
func (s *Series) Append(date time.Time, row []float64) {
	s.Dates = append(s.Dates, date)
	s.Rows = append(s.Rows, row)
}

// Column returns a copy of the values for a ticker, or nil if absent.
func (s Series) Column(ticker string) []float64 {
	idx := s.Index(ticker)
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = row[idx]
	}
	return out
}

// Index returns the column position of ticker or -1.
func (s Series) Index(ticker string) int {
	for i, t := range s.Tickers {
		if t == ticker {
			return i
		}
	}
	return -1
}
