package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimarket-gateway/internal/normalize"
)

func rec(product, market, code, origin string, volume float64) normalize.PriceRecord {
	return normalize.PriceRecord{
		ProductName: product,
		MarketName:  market,
		MarketCode:  code,
		Origin:      origin,
		Volume:      volume,
	}
}

func TestCollectGroupsByMarketProduct(t *testing.T) {
	records := []normalize.PriceRecord{
		rec("토마토", "가락시장", "110001", "부산", 100),
		rec("토마토", "가락시장", "110001", "김해", 50),
		rec("토마토", "구리시장", "310101", "부산", 30),
		rec("사과", "가락시장", "110001", "청송", 400),
	}

	groups := Collect(records, ByMarketProduct, ByOrigin)
	require.Len(t, groups, 3)

	// Descending by total volume.
	assert.Equal(t, "사과", groups[0].Product)
	assert.Equal(t, 400, groups[0].Volume())
	assert.Equal(t, "토마토", groups[1].Product)
	assert.Equal(t, "가락시장", groups[1].Market)
	assert.Equal(t, 150, groups[1].Volume())
	assert.Equal(t, 30, groups[2].Volume())

	origins := groups[1].Breakdown(3)
	require.Len(t, origins, 2)
	assert.Equal(t, Entry{Name: "부산", Volume: 100}, origins[0])
	assert.Equal(t, Entry{Name: "김해", Volume: 50}, origins[1])
}

func TestCollectOrderIndependentSums(t *testing.T) {
	forward := []normalize.PriceRecord{
		rec("토마토", "가락시장", "110001", "부산", 10.4),
		rec("토마토", "가락시장", "110001", "부산", 10.4),
		rec("토마토", "가락시장", "110001", "김해", 20.2),
	}
	reversed := []normalize.PriceRecord{forward[2], forward[1], forward[0]}

	a := Collect(forward, ByMarketProduct, ByOrigin)
	b := Collect(reversed, ByMarketProduct, ByOrigin)

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].Volume(), b[0].Volume())
	// 10.4+10.4+20.2 sums as float64 and rounds once at output.
	assert.Equal(t, 41, a[0].Volume())
}

func TestBreakdownStableTies(t *testing.T) {
	records := []normalize.PriceRecord{
		rec("토마토", "가락시장", "110001", "부산", 50),
		rec("토마토", "가락시장", "110001", "김해", 50),
		rec("토마토", "가락시장", "110001", "대구", 50),
		rec("토마토", "가락시장", "110001", "논산", 80),
	}
	groups := Collect(records, ByMarketProduct, ByOrigin)
	require.Len(t, groups, 1)

	top := groups[0].Breakdown(3)
	require.Len(t, top, 3)
	assert.Equal(t, "논산", top[0].Name)
	// Equal volumes keep first-encountered order.
	assert.Equal(t, "부산", top[1].Name)
	assert.Equal(t, "김해", top[2].Name)
}

func TestStatsOf(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, PriceStats{}, StatsOf(nil))
	})

	t.Run("odd count", func(t *testing.T) {
		got := StatsOf([]int{1000, 2000, 4000})
		assert.Equal(t, PriceStats{Lowest: 1000, Median: 2000, Highest: 4000, Average: 2333, Count: 3}, got)
	})

	t.Run("even count takes upper middle", func(t *testing.T) {
		got := StatsOf([]int{1000, 2000, 3000, 4000})
		assert.Equal(t, 3000, got.Median)
		assert.Equal(t, 2500, got.Average)
	})
}

func TestComparison(t *testing.T) {
	rows := Comparison(normalize.PriceTiers{High: 5200, Mid: 3800}, 7800)
	require.Len(t, rows, 2)

	assert.Equal(t, "상품", rows[0].Grade)
	assert.Equal(t, 5200, rows[0].WholesalePrice)
	assert.Equal(t, 50, rows[0].MarginRate)

	assert.Equal(t, "중품", rows[1].Grade)
	assert.Equal(t, 105, rows[1].MarginRate)
}

func TestComparisonZeroWholesale(t *testing.T) {
	rows := Comparison(normalize.PriceTiers{}, 7800)
	assert.Equal(t, 0, rows[0].MarginRate)
	assert.Equal(t, 0, rows[1].MarginRate)
}
