package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// UnknownName is the sentinel product name used when every field in the
// classification chain is empty.
const UnknownName = "알 수 없음"

// Tier backfill ratios. These are business heuristics inherited from the
// dashboard, not measured relationships; they are kept verbatim for parity
// and may be revised as policy.
const (
	highFromMidRatio = 1.3
	midFromHighRatio = 0.75
)

// Str returns the record field as a trimmed string. Numeric JSON values are
// rendered back to their literal form, so "3,800" and 3800 both come out as
// usable strings.
func (r Record) Str(key string) string {
	raw, ok := r[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// FirstStr returns the first non-empty field among keys, or the empty
// string. This is the priority fallback chain for name resolution.
func (r Record) FirstStr(keys ...string) string {
	for _, k := range keys {
		if v := r.Str(k); v != "" {
			return v
		}
	}
	return ""
}

// ParsePrice converts an upstream price string to a non-negative integer.
// Thousands separators are stripped and the "-" placeholder (and anything
// else unparseable) yields 0, never NaN or a negative value.
func ParsePrice(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		// Some feeds report fractional won after kg conversion.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f < 0 {
			return 0
		}
		return int(math.Round(f))
	}
	return n
}

// ParseVolume converts an upstream quantity string to a non-negative float.
// Missing or malformed values coerce to 0 so sums never see NaN.
func ParseVolume(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 {
		return 0
	}
	return f
}

// Price reads and parses a price field off the record.
func (r Record) Price(key string) int { return ParsePrice(r.Str(key)) }

// Volume reads and parses a quantity field off the record.
func (r Record) Volume(key string) float64 { return ParseVolume(r.Str(key)) }

var boldTag = regexp.MustCompile(`</?b>`)

// StripBold removes the <b>/</b> highlight markers Naver wraps around the
// matched query terms in listing titles.
func StripBold(s string) string {
	return strings.TrimSpace(boldTag.ReplaceAllString(s, ""))
}

// Grade is a quality-tier classification applied by the source data.
type Grade string

const (
	GradeHigh   Grade = "high"
	GradeMid    Grade = "mid"
	GradeLow    Grade = "low"
	GradeCherry Grade = "cherry"
)

// highGradeMarkers are the kind-name fragments KAMIS uses for top-tier
// produce (상품, 특, 1등급 variants).
var highGradeMarkers = []string{"상", "특", "1등"}

// GradeOf classifies a KAMIS kind name into a canonical grade. Anything not
// explicitly marked top-tier counts as mid.
func GradeOf(kindName string) Grade {
	for _, marker := range highGradeMarkers {
		if strings.Contains(kindName, marker) {
			return GradeHigh
		}
	}
	return GradeMid
}

// PriceTiers is a wholesale high/mid price pair. A tier that was not
// observed but computed from the other one is flagged as derived; the
// external JSON shape does not carry the flag but internal consumers and
// tests rely on it.
type PriceTiers struct {
	High        int
	Mid         int
	DerivedHigh bool
	DerivedMid  bool
}

// BackfillTiers fills a missing price tier from the known one using the
// fixed ratios: high = round(mid * 1.3), mid = round(high * 0.75). Both
// present or both absent pass through unchanged.
func BackfillTiers(high, mid int) PriceTiers {
	t := PriceTiers{High: high, Mid: mid}
	if t.High == 0 && t.Mid > 0 {
		t.High = int(math.Round(float64(t.Mid) * highFromMidRatio))
		t.DerivedHigh = true
	}
	if t.Mid == 0 && t.High > 0 {
		t.Mid = int(math.Round(float64(t.High) * midFromHighRatio))
		t.DerivedMid = true
	}
	return t
}

// PriceRecord is the canonical shape every upstream record maps into before
// aggregation. Volume is always non-negative; missing numeric fields have
// already been coerced to 0.
type PriceRecord struct {
	ProductName string
	MarketName  string
	MarketCode  string
	Origin      string
	Category    string
	Volume      float64
	Grade       Grade
}

// AuctionRecord maps one public-data portal trade record into canonical
// form. The product name resolves through the classification chain from the
// most specific level down, and missing market or origin names fall back to
// the 미상 placeholder the feed itself uses.
func AuctionRecord(rec Record) PriceRecord {
	name := rec.FirstStr("smlcls_nm", "mdcls_nm", "lrg_clsf_nm")
	if name == "" {
		name = UnknownName
	}
	market := rec.Str("whsl_mrkt_nm")
	if market == "" {
		market = "미상"
	}
	origin := rec.Str("plor_nm")
	if origin == "" {
		origin = "미상"
	}
	category := rec.Str("lrg_clsf_nm")
	if category == "" {
		category = "기타"
	}
	return PriceRecord{
		ProductName: name,
		MarketName:  market,
		MarketCode:  rec.Str("whsl_mrkt_cd"),
		Origin:      origin,
		Category:    category,
		Volume:      rec.Volume("qty"),
	}
}

// MatchesProduct reports whether the record's mid or small classification
// name contains the filter string. The match is case-sensitive containment,
// and an empty filter matches everything.
func MatchesProduct(rec Record, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(rec.Str("mdcls_nm"), filter) ||
		strings.Contains(rec.Str("smlcls_nm"), filter)
}
