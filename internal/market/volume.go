package market

import (
	"context"
	"math"
	"sort"
	"strings"

	"agrimarket-gateway/internal/catalog"
	"agrimarket-gateway/internal/normalize"
	"agrimarket-gateway/internal/upstream"
)

// SettlementDay is one parsed day of the Garak settlement feed: the
// individual product rows, the per-class rollups, and the grand total.
type SettlementDay struct {
	Products   []ProductVolume
	Categories []CategoryVolume
	Total      *VolumeTotal
	Date       string // YYYY-MM-DD once parsed, empty when the feed omitted it
}

// VolumeSource answers the settlement volumes for one day. A nil result
// with a nil error means the feed had no usable rows.
type VolumeSource interface {
	Settlement(ctx context.Context, date string) (*SettlementDay, error)
}

// LiveVolume reads the Seoul open-data Garak settlement service.
type LiveVolume struct {
	Seoul *upstream.Seoul
}

// Settlement fetches and parses one settlement day. date is optional
// YYYYMMDD; empty asks for the most recent day.
func (s *LiveVolume) Settlement(ctx context.Context, date string) (*SettlementDay, error) {
	body, err := s.Seoul.GarakVolumes(ctx, date)
	if err != nil {
		return nil, err
	}
	rows, reason := normalize.SeoulRows(body, upstream.GarakService)
	if reason != normalize.ReasonOK {
		return nil, nil
	}
	day := parseSettlement(rows)
	if len(day.Products) == 0 && len(day.Categories) == 0 {
		return nil, nil
	}
	return day, nil
}

// rollupCodes are SORT_CD values that are subtotals, not products. 21 is a
// legacy duplicate subtotal the feed still emits.
var rollupCodes = map[string]bool{"00": true, "01": true, "02": true, "03": true, "21": true}

// parseSettlement splits the feed rows into product rows and rollups.
// Volumes arrive in tons and are converted to kilograms; the corporation
// columns convert the same way.
func parseSettlement(rows []normalize.Record) *SettlementDay {
	day := &SettlementDay{
		Products:   make([]ProductVolume, 0, len(rows)),
		Categories: make([]CategoryVolume, 0, 4),
	}

	for _, row := range rows {
		code := row.Str("SORT_CD")
		if d := row.Str("TODATE"); d != "" {
			day.Date = formatFeedDate(d)
		}
		volume := tonsToKg(row.Volume("SUM_TOT"))

		switch {
		case code == "00":
			day.Total = &VolumeTotal{
				Total:        volume,
				Corporations: corporationVolumes(row),
			}
		case rollupCodes[code]:
			class, ok := catalog.SortClasses[code]
			if !ok {
				continue
			}
			name := class.Name
			if name == "" {
				name = row.Str("PUM_NM")
			}
			day.Categories = append(day.Categories, CategoryVolume{
				Category:     name,
				CategoryKey:  class.Key,
				Volume:       volume,
				Unit:         "kg",
				Corporations: corporationVolumes(row),
			})
		default:
			if volume <= 0 {
				continue
			}
			name := row.FirstStr("PUM_NM", "PUM_CD")
			day.Products = append(day.Products, ProductVolume{
				Product:      name,
				Category:     classOfCode(code),
				Volume:       volume,
				Unit:         "kg",
				Corporations: corporationVolumes(row),
			})
		}
	}

	sortProductVolumes(day.Products)
	sortCategoryVolumes(day.Categories)
	return day
}

func corporationVolumes(row normalize.Record) map[string]int {
	out := make(map[string]int, len(catalog.Corporations))
	for _, corp := range catalog.Corporations {
		out[corp.Key] = tonsToKg(row.Volume(corp.Column))
	}
	return out
}

// classOfCode derives a product row's class from the leading digit of its
// sort code.
func classOfCode(code string) string {
	switch {
	case strings.HasPrefix(code, "1"):
		return "과일류"
	case strings.HasPrefix(code, "2"):
		return "과일과채류"
	case strings.HasPrefix(code, "3"):
		return "일반채소류"
	default:
		return "기타"
	}
}

func tonsToKg(tons float64) int {
	return int(math.Round(tons * 1000))
}

// formatFeedDate rewrites the feed's YYYYMMDD stamp as YYYY-MM-DD.
func formatFeedDate(d string) string {
	if len(d) != 8 {
		return d
	}
	return d[:4] + "-" + d[4:6] + "-" + d[6:]
}

func sortProductVolumes(items []ProductVolume) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Volume > items[j].Volume })
}

func sortCategoryVolumes(items []CategoryVolume) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Volume > items[j].Volume })
}
