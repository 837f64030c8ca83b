// Package market implements the per-domain data sources behind the API
// handlers. Each domain (wholesale price, online price, trend, region,
// volume, auction) is a small interface with two implementations: a live
// one that calls the upstream and normalizes the response, and a synthetic
// one that generates tagged placeholder data. The handler picks synthetic
// at exactly one decision point, when the live source yields nothing.
package market

import (
	"fmt"

	"agrimarket-gateway/internal/aggregate"
)

// Period selects the granularity of a price trend.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ParsePeriod validates a period query value; empty defaults to daily.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "", string(PeriodDaily):
		return PeriodDaily, nil
	case string(PeriodMonthly):
		return PeriodMonthly, nil
	case string(PeriodYearly):
		return PeriodYearly, nil
	default:
		return "", fmt.Errorf("unsupported period %q", s)
	}
}

// TrendPoint is one point of a price trend series. RetailPrice stays 0 when
// the retail class has no datum for the label.
type TrendPoint struct {
	Label       string `json:"label"`
	Price       int    `json:"price"`
	RetailPrice int    `json:"retailPrice"`
}

// Wholesale is the wholesale price summary for one product and day. Tier
// values may be derived via the fixed backfill ratios rather than observed;
// synthetic summaries are tagged IsDummy with a source label.
type Wholesale struct {
	High    int    `json:"high"`
	Mid     int    `json:"mid"`
	Date    string `json:"date"`
	Source  string `json:"source,omitempty"`
	IsDummy bool   `json:"isDummy,omitempty"`
}

// OnlineItem is one cleaned online listing.
type OnlineItem struct {
	Mall  string `json:"mall"`
	Title string `json:"title"`
	Price int    `json:"price"`
	Link  string `json:"link"`
	Image string `json:"image"`
}

// OnlineSummary rolls up the sampled online listings.
type OnlineSummary struct {
	LowestPrice  int    `json:"lowest_price"`
	LowestMall   string `json:"lowest_mall"`
	LowestTitle  string `json:"lowest_title"`
	LowestLink   string `json:"lowest_link"`
	MedianPrice  int    `json:"median_price"`
	HighestPrice int    `json:"highest_price"`
	AveragePrice int    `json:"average_price"`
	MallCount    int    `json:"mall_count"`
}

// SearchItem is one general product search result.
type SearchItem struct {
	Mall  string `json:"mall"`
	Title string `json:"title"`
	Price int    `json:"price"`
	Link  string `json:"link"`
	Image string `json:"image"`
}

// GradeItem is one grade-keyword search result.
type GradeItem struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Image    string `json:"image"`
	Price    int    `json:"price"`
	MallName string `json:"mallName"`
	Brand    string `json:"brand"`
}

// RegionPrice is one per-region price row.
type RegionPrice struct {
	Region         string `json:"region"`
	RegionCode     string `json:"regionCode"`
	WholesalePrice int    `json:"wholesalePrice"`
	RetailPrice    int    `json:"retailPrice"`
	Change         int    `json:"change"`
}

// AuctionGroup is the aggregate for one market and product: total auctioned
// volume plus the top origins contributing to it.
type AuctionGroup struct {
	Product    string            `json:"product"`
	Market     string            `json:"market"`
	MarketCode string            `json:"marketCode"`
	Category   string            `json:"category"`
	Volume     int               `json:"volume"`
	Origins    []aggregate.Entry `json:"origins"`
}

// AuctionResult is the full outcome of an auction-info lookup.
type AuctionResult struct {
	Items         []AuctionGroup
	Markets       []string
	HasOriginData bool
	Date          string
	Debug         map[string]any
}

// ProductVolume is one per-product volume row of the settlement feed.
// PrevVolume and Change are only populated on synthetic rows; the live feed
// covers a single day.
type ProductVolume struct {
	Product      string         `json:"product"`
	Category     string         `json:"category"`
	Volume       int            `json:"volume"`
	Unit         string         `json:"unit"`
	PrevVolume   int            `json:"prevVolume,omitempty"`
	Change       float64        `json:"change,omitempty"`
	Corporations map[string]int `json:"corporations"`
}

// CategoryVolume is one per-class rollup row of the settlement feed.
type CategoryVolume struct {
	Category     string         `json:"category"`
	CategoryKey  string         `json:"categoryKey"`
	Volume       int            `json:"volume"`
	Unit         string         `json:"unit"`
	Corporations map[string]int `json:"corporations"`
}

// MarketVolume is one synthetic per-market volume row.
type MarketVolume struct {
	Market     string         `json:"market"`
	Region     string         `json:"region"`
	Total      int            `json:"totalVolume"`
	Unit       string         `json:"unit"`
	PrevVolume int            `json:"prevVolume"`
	Change     float64        `json:"change"`
	Categories map[string]int `json:"categories"`
}

// VolumeDay is one day of the volume trend series.
type VolumeDay struct {
	Date       string `json:"date"`
	DayOfWeek  string `json:"dayOfWeek"`
	Total      int    `json:"totalVolume"`
	Vegetables int    `json:"vegetables"`
	Fruits     int    `json:"fruits"`
	Specialty  int    `json:"specialty"`
	Flowers    int    `json:"flowers"`
}

// VolumeTotal is the grand-total settlement row.
type VolumeTotal struct {
	Total        int            `json:"totalVolume"`
	Corporations map[string]int `json:"corporations"`
}
