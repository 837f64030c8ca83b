// Package aggregate groups canonical price records and derives the scalar
// rollups served by the dashboard. Volumes accumulate as float64 and are
// rounded once at output time so repeated rounding never compounds; all
// orderings that matter to the caller are stable, so records with equal
// volume keep their first-encountered order.
package aggregate

import (
	"math"
	"sort"

	"agrimarket-gateway/internal/normalize"
)

// KeyFunc derives a grouping or breakdown key from a canonical record.
type KeyFunc func(normalize.PriceRecord) string

// ByMarketProduct keys a record by wholesale market code and product name,
// the grouping used for auction rollups.
func ByMarketProduct(r normalize.PriceRecord) string {
	return r.MarketCode + "-" + r.ProductName
}

// ByProduct keys a record by product name alone.
func ByProduct(r normalize.PriceRecord) string {
	return r.ProductName
}

// ByOrigin selects the record's origin as the sub-breakdown key.
func ByOrigin(r normalize.PriceRecord) string {
	return r.Origin
}

// Entry is one sub-breakdown line: an origin or corporation with its summed
// volume, rounded.
type Entry struct {
	Name   string `json:"name"`
	Volume int    `json:"volume"`
}

// Group is the aggregate for one grouping key: the representative record
// metadata, the volume sum, and the per-sub-entity sums in encounter order.
type Group struct {
	Product     string
	Market      string
	MarketCode  string
	Category    string
	TotalVolume float64

	subTotals map[string]float64
	subOrder  []string
}

// Volume returns the group total rounded to the nearest integer.
func (g *Group) Volume() int {
	return int(math.Round(g.TotalVolume))
}

// Breakdown returns the top n sub-entries sorted descending by volume.
// Ties keep encounter order. Volumes are rounded at this point only.
func (g *Group) Breakdown(n int) []Entry {
	order := make([]string, len(g.subOrder))
	copy(order, g.subOrder)
	sort.SliceStable(order, func(i, j int) bool {
		return g.subTotals[order[i]] > g.subTotals[order[j]]
	})
	if n > 0 && len(order) > n {
		order = order[:n]
	}
	out := make([]Entry, 0, len(order))
	for _, name := range order {
		out = append(out, Entry{Name: name, Volume: int(math.Round(g.subTotals[name]))})
	}
	return out
}

// Collect groups the records by key and accumulates per-sub-entity volume
// sums. The returned groups are sorted descending by total volume, stable
// with respect to input order.
func Collect(records []normalize.PriceRecord, key, sub KeyFunc) []*Group {
	byKey := make(map[string]*Group, len(records))
	order := make([]*Group, 0, len(records))

	for _, rec := range records {
		k := key(rec)
		g, ok := byKey[k]
		if !ok {
			g = &Group{
				Product:    rec.ProductName,
				Market:     rec.MarketName,
				MarketCode: rec.MarketCode,
				Category:   rec.Category,
				subTotals:  make(map[string]float64, 4),
			}
			byKey[k] = g
			order = append(order, g)
		}
		g.TotalVolume += rec.Volume

		s := sub(rec)
		if _, seen := g.subTotals[s]; !seen {
			g.subOrder = append(g.subOrder, s)
		}
		g.subTotals[s] += rec.Volume
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].TotalVolume > order[j].TotalVolume
	})
	return order
}

// PriceStats are the scalar rollups over an ascending price list. A nil or
// empty list yields all zeros.
type PriceStats struct {
	Lowest  int
	Median  int
	Highest int
	Average int
	Count   int
}

// StatsOf computes rollups over prices, which must already be sorted
// ascending. The median is the middle element (upper middle for even
// counts), matching the dashboard's historical behavior.
func StatsOf(prices []int) PriceStats {
	if len(prices) == 0 {
		return PriceStats{}
	}
	sum := 0
	for _, p := range prices {
		sum += p
	}
	return PriceStats{
		Lowest:  prices[0],
		Median:  prices[len(prices)/2],
		Highest: prices[len(prices)-1],
		Average: int(math.Round(float64(sum) / float64(len(prices)))),
		Count:   len(prices),
	}
}

// ComparisonRow relates a wholesale grade price to the online lowest price.
type ComparisonRow struct {
	Grade          string `json:"grade"`
	WholesalePrice int    `json:"wholesale_price"`
	OnlineLowest   int    `json:"online_lowest"`
	MarginRate     int    `json:"margin_rate"`
}

// Comparison builds the 상품/중품 comparison rows against the online lowest
// price. Margin rate is the percentage over wholesale, rounded; a zero
// wholesale price yields rate 0 instead of dividing by zero.
func Comparison(tiers normalize.PriceTiers, onlineLowest int) []ComparisonRow {
	row := func(grade string, wholesale int) ComparisonRow {
		rate := 0
		if wholesale > 0 {
			rate = int(math.Round(float64(onlineLowest-wholesale) / float64(wholesale) * 100))
		}
		return ComparisonRow{
			Grade:          grade,
			WholesalePrice: wholesale,
			OnlineLowest:   onlineLowest,
			MarginRate:     rate,
		}
	}
	return []ComparisonRow{
		row("상품", tiers.High),
		row("중품", tiers.Mid),
	}
}
