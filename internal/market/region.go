package market

import (
	"context"
	"sort"
	"time"

	"agrimarket-gateway/internal/catalog"
	"agrimarket-gateway/internal/normalize"
	"agrimarket-gateway/internal/upstream"
)

// RegionSource answers per-region retail prices for one product. An empty
// list with a nil error means no region had usable data.
type RegionSource interface {
	Regions(ctx context.Context, p catalog.Product) ([]RegionPrice, error)
}

// LiveRegion probes the two KAMIS region actions in order: the dated
// per-item area listing first, then the recent-trend listing. The first
// call yielding rows wins; this is probing for data, not retrying errors.
type LiveRegion struct {
	Kamis *upstream.Kamis
	Now   func() time.Time
}

// Regions fetches and flattens the per-region retail prices.
func (s *LiveRegion) Regions(ctx context.Context, p catalog.Product) ([]RegionPrice, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	body, err := s.Kamis.ItemAreaPrice(ctx, p, now.Format("20060102"))
	if err == nil {
		if items := parseRegions(body); len(items) > 0 {
			return items, nil
		}
	}
	body, err = s.Kamis.RecentAreaPrice(ctx, p)
	if err != nil {
		return nil, err
	}
	return parseRegions(body), nil
}

// parseRegions maps region rows to price entries. Field names differ
// between the two actions (countycode/countyname vs areacode/areaname,
// price vs dpr1), so each read walks the priority chain. Regions reported
// twice keep the row with the higher retail price; output is sorted
// descending by retail price, stable.
func parseRegions(body []byte) []RegionPrice {
	items, reason := normalize.KamisItems(body)
	if reason != normalize.ReasonOK {
		return []RegionPrice{}
	}

	result := make([]RegionPrice, 0, len(items))
	for _, item := range items {
		code := item.FirstStr("countycode", "areacode")
		name := item.FirstStr("countyname", "areaname")
		if name == "" {
			if mapped, ok := catalog.RegionNames[code]; ok {
				name = mapped
			} else {
				name = "기타"
			}
		}
		price := item.Price("price")
		if price == 0 {
			price = item.Price("dpr1")
		}
		if price <= 0 {
			continue
		}
		prev := item.Price("d1")
		if prev == 0 {
			prev = item.Price("dpr2")
		}
		change := 0
		if prev > 0 {
			change = price - prev
		}
		result = append(result, RegionPrice{
			Region:      name,
			RegionCode:  code,
			RetailPrice: price,
			Change:      change,
		})
	}

	byRegion := make(map[string]RegionPrice, len(result))
	order := make([]string, 0, len(result))
	for _, item := range result {
		existing, seen := byRegion[item.Region]
		if !seen {
			order = append(order, item.Region)
			byRegion[item.Region] = item
			continue
		}
		if item.RetailPrice > existing.RetailPrice {
			byRegion[item.Region] = item
		}
	}

	deduped := make([]RegionPrice, 0, len(order))
	for _, name := range order {
		deduped = append(deduped, byRegion[name])
	}
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].RetailPrice > deduped[j].RetailPrice
	})
	return deduped
}
