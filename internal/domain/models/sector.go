package models

import "strings"

// Sector is a named, fixed basket of tickers.
type Sector struct {
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
}

var sectors = []Sector{
	{Name: "Defense", Tickers: []string{"LMT", "RTX", "GD", "NOC"}},
	{Name: "Tech", Tickers: []string{"AAPL", "MSFT", "GOOGL", "NVDA", "META"}},
	{Name: "Healthcare", Tickers: []string{"JNJ", "PFE", "MRK", "ABBV", "UNH"}},
	{Name: "Energy", Tickers: []string{"XOM", "CVX", "COP", "SLB", "BP"}},
	{Name: "Index", Tickers: []string{"^GSPC", "^IXIC", "^DJI"}},
}

// Sectors returns a copy of the sector table in display order.
func Sectors() []Sector {
	out := make([]Sector, len(sectors))
	for i, s := range sectors {
		out[i] = Sector{Name: s.Name, Tickers: append([]string(nil), s.Tickers...)}
	}
	return out
}

// LookupSector finds a sector by name, ignoring case.
func LookupSector(name string) (Sector, bool) {
	for _, s := range sectors {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return Sector{Name: s.Name, Tickers: append([]string(nil), s.Tickers...)}, true
		}
	}
	return Sector{}, false
}
