package market

import (
	"context"
	"time"

	"agrimarket-gateway/internal/aggregate"
	"agrimarket-gateway/internal/normalize"
	"agrimarket-gateway/internal/upstream"
)

// auctionProbeDays is how many recent settlement dates the auction lookup
// probes before giving up. The portal settles with a lag, so "today" is
// usually empty.
const auctionProbeDays = 7

// topOrigins caps the per-group origin breakdown.
const topOrigins = 3

// AuctionQuery parameterizes one auction lookup.
type AuctionQuery struct {
	Product   string // substring filter against the classification names
	PageNo    int
	NumOfRows int
}

// AuctionSource answers aggregated auction trade volumes. A result with no
// items and a nil error means no probed date had matching data; Debug then
// carries the last diagnostic payload.
type AuctionSource interface {
	Auctions(ctx context.Context, q AuctionQuery) (*AuctionResult, error)
}

// LiveAuction reads the public-data portal trade feed.
type LiveAuction struct {
	Portal *upstream.Portal
	Now    func() time.Time
	// AnchorDate pins the probe to one settlement date (YYYY-MM-DD) instead
	// of walking back from yesterday. Used for reproducible lookups.
	AnchorDate string
}

// Auctions probes candidate settlement dates most recent first and stops at
// the first date with records ("probe until found", not retry-on-failure:
// a transport error on every candidate is still an error). The surviving
// records are filtered, canonicalized, and grouped by market and product
// with a top-3 origin breakdown.
func (s *LiveAuction) Auctions(ctx context.Context, q AuctionQuery) (*AuctionResult, error) {
	var (
		records  []normalize.Record
		usedDate string
		lastErr  error
		debug    map[string]any
	)

	for _, date := range s.candidateDates() {
		body, err := s.Portal.Trades(ctx, date, q.PageNo, q.NumOfRows)
		if err != nil {
			lastErr = err
			continue
		}
		items, meta, reason := normalize.PortalItems(body)
		if reason != normalize.ReasonOK {
			debug = map[string]any{
				"date":       date,
				"reason":     string(reason),
				"resultCode": meta.ResultCode,
				"resultMsg":  meta.ResultMsg,
				"totalCount": meta.TotalCount,
			}
			continue
		}
		records = items
		usedDate = date
		break
	}

	if records == nil {
		if lastErr != nil && debug == nil {
			return nil, lastErr
		}
		return &AuctionResult{Items: []AuctionGroup{}, Markets: []string{}, Debug: debug}, nil
	}

	hasOrigin := false
	canonical := make([]normalize.PriceRecord, 0, len(records))
	for _, rec := range records {
		if rec.Str("plor_nm") != "" {
			hasOrigin = true
		}
		if !normalize.MatchesProduct(rec, q.Product) {
			continue
		}
		canonical = append(canonical, normalize.AuctionRecord(rec))
	}

	groups := aggregate.Collect(canonical, aggregate.ByMarketProduct, aggregate.ByOrigin)
	items := make([]AuctionGroup, 0, len(groups))
	seenMarkets := make(map[string]bool, 8)
	markets := make([]string, 0, 8)
	for _, g := range groups {
		items = append(items, AuctionGroup{
			Product:    g.Product,
			Market:     g.Market,
			MarketCode: g.MarketCode,
			Category:   g.Category,
			Volume:     g.Volume(),
			Origins:    g.Breakdown(topOrigins),
		})
		if !seenMarkets[g.Market] {
			seenMarkets[g.Market] = true
			markets = append(markets, g.Market)
		}
	}

	return &AuctionResult{
		Items:         items,
		Markets:       markets,
		HasOriginData: hasOrigin,
		Date:          usedDate,
	}, nil
}

// candidateDates lists the settlement dates to probe, most recent first,
// starting from yesterday. An anchor date short-circuits to a single
// candidate.
func (s *LiveAuction) candidateDates() []string {
	if s.AnchorDate != "" {
		return []string{s.AnchorDate}
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	dates := make([]string, 0, auctionProbeDays)
	for i := 1; i <= auctionProbeDays; i++ {
		dates = append(dates, now.AddDate(0, 0, -i).Format("2006-01-02"))
	}
	return dates
}
