package market

import (
	"context"
	"strings"
	"time"

	"agrimarket-gateway/internal/catalog"
	"agrimarket-gateway/internal/normalize"
	"agrimarket-gateway/internal/upstream"
)

// WholesaleSource answers the wholesale price summary for one product.
// A zero-valued summary (High == 0) means the source had no usable data.
type WholesaleSource interface {
	Wholesale(ctx context.Context, p catalog.Product) (Wholesale, normalize.PriceTiers, error)
}

// LiveWholesale reads the daily category price list from KAMIS.
type LiveWholesale struct {
	Kamis *upstream.Kamis
	Now   func() time.Time
}

// Wholesale fetches today's category listing and reduces it to a high/mid
// tier pair for the product. Kind names marked 상/특/1등 feed the high tier,
// everything else the mid tier; the larger price wins within a tier, and a
// missing tier is backfilled from the other via the fixed ratios.
func (s *LiveWholesale) Wholesale(ctx context.Context, p catalog.Product) (Wholesale, normalize.PriceTiers, error) {
	now := s.now()
	body, err := s.Kamis.DailyPriceByCategory(ctx, p, now.Format("20060102"))
	if err != nil {
		return Wholesale{}, normalize.PriceTiers{}, err
	}

	items, reason := normalize.KamisItems(body)
	if reason != normalize.ReasonOK {
		return Wholesale{}, normalize.PriceTiers{}, nil
	}

	high, mid := 0, 0
	for _, item := range items {
		itemName := item.Str("item_name")
		kindName := item.Str("kind_name")
		if !strings.Contains(itemName, p.Name) && !strings.Contains(kindName, p.Name) {
			continue
		}
		price := item.Price("dpr1")
		if normalize.GradeOf(kindName) == normalize.GradeHigh {
			if price > high {
				high = price
			}
		} else {
			if price > mid {
				mid = price
			}
		}
	}

	tiers := normalize.BackfillTiers(high, mid)
	if tiers.High == 0 && tiers.Mid == 0 {
		return Wholesale{}, tiers, nil
	}
	return Wholesale{
		High:   tiers.High,
		Mid:    tiers.Mid,
		Date:   now.Format("2006-01-02"),
		Source: "KAMIS",
	}, tiers, nil
}

func (s *LiveWholesale) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SyntheticWholesale substitutes the curated reference prices, tagged so
// the dashboard can disclose that the numbers are not live.
type SyntheticWholesale struct {
	Now func() time.Time
}

// Wholesale returns the product's reference price pair with IsDummy set.
func (s *SyntheticWholesale) Wholesale(_ context.Context, p catalog.Product) (Wholesale, normalize.PriceTiers, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	tiers := normalize.PriceTiers{High: p.FallbackHigh, Mid: p.FallbackMid}
	return Wholesale{
		High:    tiers.High,
		Mid:     tiers.Mid,
		Date:    now.Format("2006-01-02"),
		Source:  "참고가격",
		IsDummy: true,
	}, tiers, nil
}
