package market

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"agrimarket-gateway/internal/catalog"
)

// Synthetic series lengths and jitter spreads. Spreads widen with the
// period so longer horizons look plausibly more volatile.
const (
	syntheticDailyDays    = 30
	syntheticMonths       = 12
	syntheticYears        = 5
	syntheticTrendDays    = 14
	dailySpread           = 0.10
	monthlySpread         = 0.15
	yearlySpread          = 0.20
	regionSpread          = 0.15
	regionChangeSpread    = 0.05
	volumeChangeSpread    = 0.10
	marketChangeSpread    = 0.075
	regionWholesaleFactor = 0.70
	mondayVolumeBoost     = 1.2
)

// corporationShares splits a synthetic product volume across the six
// corporations in their customary market-share order.
var corporationShares = []float64{0.25, 0.20, 0.18, 0.15, 0.12, 0.10}

// categoryShares splits a synthetic market volume across produce classes.
var categoryShares = map[string]float64{
	"vegetables": 0.45,
	"fruits":     0.40,
	"specialty":  0.10,
	"flowers":    0.05,
}

// Synthetic generates the placeholder data served when no live upstream
// data is available. Values are drawn deterministically from the generator
// seed mixed with the request key, so the same request repeated within one
// process renders the same plausible-looking numbers. Everything produced
// here must be served with isDummy set.
type Synthetic struct {
	Seed int64
	Now  func() time.Time
}

// NewSynthetic builds a generator. A zero seed picks the current time.
func NewSynthetic(seed int64) *Synthetic {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Synthetic{Seed: seed}
}

func (s *Synthetic) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// rng derives a per-call random source from the generator seed and a
// request key, keeping concurrent requests isolated without locking.
func (s *Synthetic) rng(key string) *rand.Rand {
	return rand.New(rand.NewSource(int64(fnv64(key)) ^ s.Seed))
}

// jitter returns base scaled by a uniform factor in [1-spread, 1+spread),
// rounded.
func jitter(r *rand.Rand, base float64, spread float64) int {
	return int(math.Round(base * (1 + (r.Float64()*2-1)*spread)))
}

// Trend produces a fixed-length synthetic price series for the period:
// 30 days, 12 months, or 5 years.
func (s *Synthetic) Trend(_ context.Context, p catalog.Product, period Period) ([]TrendPoint, error) {
	now := s.now()
	r := s.rng("trend|" + p.Key + "|" + string(period))
	base := float64(p.BasePrice)

	switch period {
	case PeriodMonthly:
		points := make([]TrendPoint, 0, syntheticMonths)
		for i := syntheticMonths - 1; i >= 0; i-- {
			month := now.AddDate(0, -i, 0)
			points = append(points, TrendPoint{
				Label: fmt.Sprintf("%d.%02d", month.Year(), int(month.Month())),
				Price: jitter(r, base, monthlySpread),
			})
		}
		return points, nil
	case PeriodYearly:
		points := make([]TrendPoint, 0, syntheticYears)
		for i := syntheticYears - 1; i >= 0; i-- {
			points = append(points, TrendPoint{
				Label: fmt.Sprintf("%d년", now.Year()-i),
				Price: jitter(r, base, yearlySpread),
			})
		}
		return points, nil
	default:
		points := make([]TrendPoint, 0, syntheticDailyDays)
		for i := syntheticDailyDays - 1; i >= 0; i-- {
			day := now.AddDate(0, 0, -i)
			points = append(points, TrendPoint{
				Label: fmt.Sprintf("%d/%d", int(day.Month()), day.Day()),
				Price: jitter(r, base, dailySpread),
			})
		}
		return points, nil
	}
}

// Regions produces synthetic per-region prices over the fixed region list,
// sorted descending by retail price.
func (s *Synthetic) Regions(_ context.Context, p catalog.Product) ([]RegionPrice, error) {
	r := s.rng("region|" + p.Key)
	base := float64(p.BasePrice)

	items := make([]RegionPrice, 0, len(catalog.SyntheticRegions))
	for _, region := range catalog.SyntheticRegions {
		price := jitter(r, base, regionSpread)
		change := jitter(r, base, regionChangeSpread) - int(base)
		items = append(items, RegionPrice{
			Region:         region,
			WholesalePrice: int(math.Round(float64(price) * regionWholesaleFactor)),
			RetailPrice:    price,
			Change:         change,
		})
	}
	sortRegionPrices(items)
	return items, nil
}

// VolumeByProduct produces synthetic per-product settlement rows over the
// fixed product list, descending by volume.
func (s *Synthetic) VolumeByProduct() []ProductVolume {
	r := s.rng("volume|product")
	items := make([]ProductVolume, 0, len(catalog.SyntheticProducts))
	for _, product := range catalog.SyntheticProducts {
		volume := 100000 + r.Intn(500000)
		prev := float64(volume) * (1 + (r.Float64()*2-1)*volumeChangeSpread)
		items = append(items, ProductVolume{
			Product:      product.Name,
			Category:     product.Category,
			Volume:       volume,
			Unit:         "kg",
			PrevVolume:   int(math.Round(prev)),
			Change:       changePercent(float64(volume), prev),
			Corporations: splitByShares(volume, corporationShares),
		})
	}
	sortProductVolumes(items)
	return items
}

// VolumeByMarket produces synthetic per-market rows over the fixed market
// list. Garak leads the list and gets the largest synthetic volume.
func (s *Synthetic) VolumeByMarket() []MarketVolume {
	r := s.rng("volume|market")
	items := make([]MarketVolume, 0, len(catalog.SyntheticMarkets))
	for i, m := range catalog.SyntheticMarkets {
		var volume int
		if i == 0 {
			volume = 8000000 + r.Intn(5000000)
		} else {
			volume = 500000 + r.Intn(2000000)
		}
		prev := float64(volume) * (1 + (r.Float64()*2-1)*marketChangeSpread)
		categories := make(map[string]int, len(categoryShares))
		for key, share := range categoryShares {
			categories[key] = int(float64(volume) * share)
		}
		items = append(items, MarketVolume{
			Market:     m.Name,
			Region:     m.Region,
			Total:      volume,
			Unit:       "kg",
			PrevVolume: int(math.Round(prev)),
			Change:     changePercent(float64(volume), prev),
			Categories: categories,
		})
	}
	sortMarketVolumes(items)
	return items
}

// VolumeTrend produces the daily volume series for the trailing two weeks.
// Sundays are skipped (no auctions) and Mondays carry the weekend backlog
// boost.
func (s *Synthetic) VolumeTrend(days int) []VolumeDay {
	if days <= 0 {
		days = syntheticTrendDays
	}
	now := s.now()
	r := s.rng("volume|trend")

	items := make([]VolumeDay, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		weekday := int(day.Weekday())
		if weekday == 0 {
			continue
		}
		base := 8000000 + r.Intn(2000000)
		multiplier := 1.0
		if weekday == 1 {
			multiplier = mondayVolumeBoost
		}
		total := int(float64(base) * multiplier)
		items = append(items, VolumeDay{
			Date:       day.Format("2006-01-02"),
			DayOfWeek:  catalog.WeekdayNames[weekday],
			Total:      total,
			Vegetables: int(float64(total) * categoryShares["vegetables"]),
			Fruits:     int(float64(total) * categoryShares["fruits"]),
			Specialty:  int(float64(total) * categoryShares["specialty"]),
			Flowers:    int(float64(total) * categoryShares["flowers"]),
		})
	}
	return items
}

func splitByShares(volume int, shares []float64) map[string]int {
	out := make(map[string]int, len(catalog.Corporations))
	for i, corp := range catalog.Corporations {
		out[corp.Key] = int(float64(volume) * shares[i])
	}
	return out
}

// changePercent is the percentage change from prev to current with one
// decimal, matching the dashboard's display precision.
func changePercent(current, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return math.Round((current-prev)/prev*1000) / 10
}

func sortRegionPrices(items []RegionPrice) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RetailPrice > items[j].RetailPrice
	})
}

func sortMarketVolumes(items []MarketVolume) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Total > items[j].Total
	})
}

// fnv64 hashes a request key for seed mixing.
func fnv64(s string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	var h uint64 = offset64
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}
