package market

import (
	"context"
	"sort"
	"strings"

	"agrimarket-gateway/internal/aggregate"
	"agrimarket-gateway/internal/catalog"
	"agrimarket-gateway/internal/normalize"
	"agrimarket-gateway/internal/upstream"
)

// onlineSampleSize caps the listings kept for the online price summary.
const onlineSampleSize = 30

// gradeSampleSize caps the listings returned by a grade-keyword search.
const gradeSampleSize = 20

// gradeExcludeKeywords drops processed goods and gardening supplies from
// grade-keyword search results.
var gradeExcludeKeywords = []string{
	"씨앗", "모종", "퇴비", "비료", "소스", "케첩", "페이스트", "주스", "캔",
}

// OnlineSource samples online listings for a product and rolls them up.
type OnlineSource interface {
	Online(ctx context.Context, p catalog.Product) ([]OnlineItem, OnlineSummary, error)
}

// LiveOnline samples the Naver Shopping search results.
type LiveOnline struct {
	Naver *upstream.Naver
}

// Online fetches up to 100 listings for the product's curated query, drops
// everything that fails the product filters, and keeps the 30 cheapest.
func (s *LiveOnline) Online(ctx context.Context, p catalog.Product) ([]OnlineItem, OnlineSummary, error) {
	resp, err := s.Naver.Search(ctx, upstream.ShopQuery{
		Query:       p.NaverQuery,
		Display:     100,
		Sort:        "sim",
		ExcludeUsed: true,
	})
	if err != nil {
		return nil, OnlineSummary{}, err
	}
	items := FilterOnline(resp.Items, p)
	return items, SummarizeOnline(items), nil
}

// FilterOnline applies the product's listing filters: the cleaned title
// must contain the product name, must not contain any exclude keyword, and
// the price must fall inside the plausible range. Survivors are sorted
// ascending by price and truncated to the sample size.
func FilterOnline(raw []upstream.ShopItem, p catalog.Product) []OnlineItem {
	items := make([]OnlineItem, 0, len(raw))
	for _, item := range raw {
		title := normalize.StripBold(item.Title)
		if !strings.Contains(title, p.Name) {
			continue
		}
		if containsAny(title, p.ExcludeKeywords) {
			continue
		}
		price := normalize.ParsePrice(item.LowPrice)
		if price < p.MinPrice || price > p.MaxPrice {
			continue
		}
		items = append(items, OnlineItem{
			Mall:  item.MallName,
			Title: title,
			Price: price,
			Link:  item.Link,
			Image: item.Image,
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	if len(items) > onlineSampleSize {
		items = items[:onlineSampleSize]
	}
	return items
}

// SummarizeOnline rolls up an ascending-sorted listing sample.
func SummarizeOnline(items []OnlineItem) OnlineSummary {
	prices := make([]int, len(items))
	for i, it := range items {
		prices[i] = it.Price
	}
	stats := aggregate.StatsOf(prices)
	summary := OnlineSummary{
		LowestPrice:  stats.Lowest,
		MedianPrice:  stats.Median,
		HighestPrice: stats.Highest,
		AveragePrice: stats.Average,
		MallCount:    stats.Count,
	}
	if len(items) > 0 {
		summary.LowestMall = items[0].Mall
		summary.LowestTitle = items[0].Title
		summary.LowestLink = items[0].Link
	}
	return summary
}

// SearchItems maps a raw general search response: strip highlight markers,
// parse prices, sort ascending by price.
func SearchItems(raw []upstream.ShopItem) []SearchItem {
	items := make([]SearchItem, 0, len(raw))
	for _, item := range raw {
		items = append(items, SearchItem{
			Mall:  item.MallName,
			Title: normalize.StripBold(item.Title),
			Price: normalize.ParsePrice(item.LowPrice),
			Link:  item.Link,
			Image: item.Image,
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	return items
}

// GradeItems maps a grade-keyword search response: tomato listings only,
// processed goods excluded, cheapest first, top 20.
func GradeItems(raw []upstream.ShopItem) []GradeItem {
	items := make([]GradeItem, 0, len(raw))
	for _, item := range raw {
		title := normalize.StripBold(item.Title)
		lower := strings.ToLower(title)
		if !strings.Contains(lower, "토마토") || containsAny(lower, gradeExcludeKeywords) {
			continue
		}
		brand := item.Brand
		if brand == "" {
			brand = item.Maker
		}
		items = append(items, GradeItem{
			Title:    title,
			Link:     item.Link,
			Image:    item.Image,
			Price:    normalize.ParsePrice(item.LowPrice),
			MallName: item.MallName,
			Brand:    brand,
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	if len(items) > gradeSampleSize {
		items = items[:gradeSampleSize]
	}
	return items
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
