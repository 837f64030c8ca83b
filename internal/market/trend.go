package market

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"agrimarket-gateway/internal/catalog"
	"agrimarket-gateway/internal/normalize"
	"agrimarket-gateway/internal/upstream"
)

// trendWindowDays is the daily trend lookback.
const trendWindowDays = 30

// trendYears is how many years the monthly grid covers and how many the
// yearly view keeps.
const trendYears = 3

// yearlyKeep is how many years the yearly view serves.
const yearlyKeep = 5

// monthlyKeep is how many months the monthly view serves.
const monthlyKeep = 12

// TrendSource answers a price trend series for one product and period.
// An empty series with a nil error means the upstream had no data.
type TrendSource interface {
	Trend(ctx context.Context, p catalog.Product, period Period) ([]TrendPoint, error)
}

// LiveTrend reads the KAMIS trend actions. The wholesale and retail class
// series are fetched concurrently and joined by label; a retail failure
// never sinks the wholesale series, it just leaves retailPrice at 0.
type LiveTrend struct {
	Kamis *upstream.Kamis
	Now   func() time.Time
}

func (s *LiveTrend) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Trend fetches and parses the series for the period.
func (s *LiveTrend) Trend(ctx context.Context, p catalog.Product, period Period) ([]TrendPoint, error) {
	var (
		wholesaleBody, retailBody []byte
		wholesaleErr              error
	)

	var g errgroup.Group
	g.Go(func() error {
		wholesaleBody, wholesaleErr = s.fetch(ctx, p, period, upstream.ClassWholesale)
		return nil
	})
	g.Go(func() error {
		// Best effort; errors here only cost the retail overlay.
		retailBody, _ = s.fetch(ctx, p, period, upstream.ClassRetail)
		return nil
	})
	_ = g.Wait()

	if wholesaleErr != nil {
		return nil, wholesaleErr
	}

	points := parseTrend(wholesaleBody, period)
	if len(points) == 0 {
		return points, nil
	}
	if len(retailBody) > 0 {
		retail := parseTrend(retailBody, period)
		overlay := make(map[string]int, len(retail))
		for _, pt := range retail {
			overlay[pt.Label] = pt.Price
		}
		for i := range points {
			points[i].RetailPrice = overlay[points[i].Label]
		}
	}
	return points, nil
}

func (s *LiveTrend) fetch(ctx context.Context, p catalog.Product, period Period, clsCode string) ([]byte, error) {
	now := s.now()
	switch period {
	case PeriodMonthly:
		return s.Kamis.MonthlyTrend(ctx, p, clsCode, now.Year(), trendYears)
	case PeriodYearly:
		return s.Kamis.YearlyTrend(ctx, p, clsCode)
	default:
		start := now.AddDate(0, 0, -trendWindowDays)
		return s.Kamis.PeriodProduct(ctx, p, clsCode, start.Format("20060102"), now.Format("20060102"))
	}
}

// parseTrend flattens a KAMIS trend response into series points for the
// period. Daily rows carry regday/price; monthly and yearly rows are one
// year each with m1..m12 columns, flattened in year order.
func parseTrend(body []byte, period Period) []TrendPoint {
	items, reason := normalize.KamisItems(body)
	if reason != normalize.ReasonOK {
		return []TrendPoint{}
	}
	if period == PeriodDaily {
		return parseDaily(items)
	}
	months := parseMonthGrid(items)
	if period == PeriodYearly {
		return yearlyAverages(months)
	}
	points := make([]TrendPoint, 0, len(months))
	for _, m := range months {
		points = append(points, TrendPoint{
			Label: fmt.Sprintf("%s.%02d", m.year, m.month),
			Price: m.price,
		})
	}
	if len(points) > monthlyKeep {
		points = points[len(points)-monthlyKeep:]
	}
	return points
}

func parseDaily(items []normalize.Record) []TrendPoint {
	points := make([]TrendPoint, 0, len(items))
	for _, item := range items {
		regday := item.Str("regday")
		if regday == "" {
			continue
		}
		price := item.Price("price")
		if price <= 0 {
			continue
		}
		points = append(points, TrendPoint{Label: regday, Price: price})
	}
	return points
}

// monthPrice is one observed month of a trend grid.
type monthPrice struct {
	year  string
	month int
	price int
}

// parseMonthGrid flattens year rows into chronological month prices. Rows
// with a non-numeric year marker (평년 averages) are skipped; "-" columns
// are silent months, not zeros.
func parseMonthGrid(items []normalize.Record) []monthPrice {
	rows := make([]normalize.Record, 0, len(items))
	for _, item := range items {
		year := item.Str("yyyy")
		if _, err := strconv.Atoi(year); err != nil {
			continue
		}
		rows = append(rows, item)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Str("yyyy") < rows[j].Str("yyyy")
	})

	months := make([]monthPrice, 0, len(rows)*12)
	for _, row := range rows {
		year := row.Str("yyyy")
		for m := 1; m <= 12; m++ {
			raw := row.Str(fmt.Sprintf("m%d", m))
			if raw == "" || raw == "-" {
				continue
			}
			price := normalize.ParsePrice(raw)
			if price <= 0 {
				continue
			}
			months = append(months, monthPrice{year: year, month: m, price: price})
		}
	}
	return months
}

// yearlyAverages reduces month prices to one rounded average per year,
// ascending, keeping the most recent five years.
func yearlyAverages(months []monthPrice) []TrendPoint {
	type acc struct {
		sum   int
		count int
	}
	byYear := make(map[string]*acc)
	years := make([]string, 0, 8)
	for _, m := range months {
		a, ok := byYear[m.year]
		if !ok {
			a = &acc{}
			byYear[m.year] = a
			years = append(years, m.year)
		}
		a.sum += m.price
		a.count++
	}
	sort.Strings(years)
	if len(years) > yearlyKeep {
		years = years[len(years)-yearlyKeep:]
	}
	points := make([]TrendPoint, 0, len(years))
	for _, y := range years {
		a := byYear[y]
		points = append(points, TrendPoint{
			Label: y + "년",
			Price: int(math.Round(float64(a.sum) / float64(a.count))),
		})
	}
	return points
}
