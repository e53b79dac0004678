package prices

import (
	"sort"

	"github.com/quarkbyte/finagent/marketdata"
)

// aligned is one ticker's rebased series on the shared date axis.
type aligned struct {
	name string
	x    []string
	y    []float64
}

// alignBase100 rebases every series to 100 at its first close and joins
// them on the union of trading dates. Exchanges differ in holidays, so a
// date one series lacks is forward-filled from its last observation; dates
// before a series' first observation stay out of that series entirely. A
// series whose first close is zero cannot be rebased and is dropped.
func alignBase100(order []string, series map[string][]marketdata.PricePoint) []aligned {
	seen := make(map[string]bool)
	var dates []string
	for _, points := range series {
		for _, p := range points {
			if !seen[p.Date] {
				seen[p.Date] = true
				dates = append(dates, p.Date)
			}
		}
	}
	// ISO dates order lexically.
	sort.Strings(dates)

	out := make([]aligned, 0, len(order))
	for _, name := range order {
		points := series[name]
		if len(points) == 0 || points[0].Close == 0 {
			continue
		}
		base := points[0].Close
		byDate := make(map[string]float64, len(points))
		for _, p := range points {
			byDate[p.Date] = p.Close / base * 100
		}
		a := aligned{name: name}
		started := false
		var last float64
		for _, d := range dates {
			if v, ok := byDate[d]; ok {
				started = true
				last = v
			}
			if !started {
				continue
			}
			a.x = append(a.x, d)
			a.y = append(a.y, last)
		}
		out = append(out, a)
	}
	return out
}
