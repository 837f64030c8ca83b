package upstream

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"agrimarket-gateway/internal/catalog"
)

// DefaultKamisBaseURL is the production KAMIS price service endpoint.
const DefaultKamisBaseURL = "https://www.kamis.or.kr/service/price/xml.do"

// browserUserAgent is sent on every KAMIS call; the service rejects
// requests carrying a default library user-agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Product class codes as KAMIS defines them.
const (
	ClassRetail    = "01"
	ClassWholesale = "02"
)

// Kamis calls the KAMIS price service. All actions answer on the same
// endpoint and differ only in the action query parameter; responses come
// back as the raw JSON body for the normalize layer to flatten.
type Kamis struct {
	*Client
	baseURL string
	certKey string
	certID  string
}

// NewKamis builds a KAMIS client. certKey and certID are the issued API
// credentials; baseURL is overridable for tests.
func NewKamis(baseURL, certKey, certID string, timeout time.Duration, log *zap.Logger, obs Observer) *Kamis {
	if baseURL == "" {
		baseURL = DefaultKamisBaseURL
	}
	return &Kamis{
		Client:  NewClient("kamis", timeout, browserUserAgent, log, obs),
		baseURL: baseURL,
		certKey: certKey,
		certID:  certID,
	}
}

func (k *Kamis) call(ctx context.Context, action string, params url.Values) ([]byte, error) {
	params.Set("action", action)
	params.Set("p_cert_key", k.certKey)
	params.Set("p_cert_id", k.certID)
	params.Set("p_returntype", "json")
	return k.getJSON(ctx, k.baseURL+"?"+params.Encode(), nil)
}

// DailyPriceByCategory fetches today's wholesale prices for every item in
// the product's category (action dailyPriceByCategoryList). regday is
// YYYYMMDD.
func (k *Kamis) DailyPriceByCategory(ctx context.Context, p catalog.Product, regday string) ([]byte, error) {
	params := url.Values{}
	params.Set("p_product_cls_code", ClassWholesale)
	params.Set("p_item_category_code", p.CategoryCode)
	params.Set("p_item_code", p.ItemCode)
	params.Set("p_country_code", "")
	params.Set("p_regday", regday)
	params.Set("p_convert_kg_yn", "Y")
	return k.call(ctx, "dailyPriceByCategoryList", params)
}

// PeriodProduct fetches the day-by-day price series for one product between
// startday and endday (action periodProductList), for the given product
// class (wholesale or retail).
func (k *Kamis) PeriodProduct(ctx context.Context, p catalog.Product, clsCode, startday, endday string) ([]byte, error) {
	params := url.Values{}
	params.Set("p_productclscode", clsCode)
	params.Set("p_startday", startday)
	params.Set("p_endday", endday)
	params.Set("p_itemcategorycode", p.CategoryCode)
	params.Set("p_itemcode", p.ItemCode)
	params.Set("p_kindcode", p.KindCode)
	params.Set("p_productrankcode", "04")
	params.Set("p_countrycode", "")
	params.Set("p_convert_kg_yn", "Y")
	return k.call(ctx, "periodProductList", params)
}

// MonthlyTrend fetches the month-by-month price grid for the last `years`
// years (action monthlyPriceTrendList). Each returned item is one year with
// m1..m12 columns.
func (k *Kamis) MonthlyTrend(ctx context.Context, p catalog.Product, clsCode string, year, years int) ([]byte, error) {
	params := url.Values{}
	params.Set("p_yyyy", strconv.Itoa(year))
	params.Set("p_period", strconv.Itoa(years))
	params.Set("p_itemcategorycode", p.CategoryCode)
	params.Set("p_itemcode", p.ItemCode)
	params.Set("p_kindcode", p.KindCode)
	params.Set("p_productrankcode", "04")
	params.Set("p_countrycode", "")
	params.Set("p_convert_kg_yn", "Y")
	params.Set("p_productclscode", clsCode)
	return k.call(ctx, "monthlyPriceTrendList", params)
}

// YearlyTrend fetches the year-by-year price grid (action
// yearlyPriceTrendList); the response reuses the monthly m1..m12 layout.
func (k *Kamis) YearlyTrend(ctx context.Context, p catalog.Product, clsCode string) ([]byte, error) {
	params := url.Values{}
	params.Set("p_itemcategorycode", p.CategoryCode)
	params.Set("p_itemcode", p.ItemCode)
	params.Set("p_kindcode", p.KindCode)
	params.Set("p_productrankcode", "04")
	params.Set("p_countrycode", "")
	params.Set("p_convert_kg_yn", "Y")
	params.Set("p_productclscode", clsCode)
	return k.call(ctx, "yearlyPriceTrendList", params)
}

// ItemAreaPrice fetches per-region retail prices for one product on regday
// (action itemAreaPriceList).
func (k *Kamis) ItemAreaPrice(ctx context.Context, p catalog.Product, regday string) ([]byte, error) {
	params := url.Values{}
	params.Set("p_productclscode", ClassRetail)
	params.Set("p_regday", regday)
	params.Set("p_itemcategorycode", p.CategoryCode)
	params.Set("p_itemcode", p.ItemCode)
	params.Set("p_kindcode", p.KindCode)
	params.Set("p_productrankcode", "04")
	params.Set("p_convert_kg_yn", "Y")
	return k.call(ctx, "itemAreaPriceList", params)
}

// RecentAreaPrice fetches the most recent per-region retail price trend
// (action recentlyAreaPriceTrendList), the fallback when the dated region
// lookup has no rows.
func (k *Kamis) RecentAreaPrice(ctx context.Context, p catalog.Product) ([]byte, error) {
	params := url.Values{}
	params.Set("p_productclscode", ClassRetail)
	params.Set("p_itemcategorycode", p.CategoryCode)
	params.Set("p_itemcode", p.ItemCode)
	params.Set("p_kindcode", p.KindCode)
	params.Set("p_productrankcode", "04")
	params.Set("p_convert_kg_yn", "Y")
	return k.call(ctx, "recentlyAreaPriceTrendList", params)
}
