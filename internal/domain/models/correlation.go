package models

import (
	"encoding/json"
	"math"
)

// CorrelationMatrix is a symmetric ticker x ticker Pearson matrix.
// Undefined coefficients (constant columns) are NaN and encode as null.
type CorrelationMatrix struct {
	Tickers []string
	Values  [][]float64
}

func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	vals := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		vals[i] = make([]*float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			v := v
			vals[i][j] = &v
		}
	}
	return json.Marshal(struct {
		Tickers []string     `json:"tickers"`
		Values  [][]*float64 `json:"values"`
	}{Tickers: m.Tickers, Values: vals})
}
