package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimarket-gateway/internal/catalog"
	"agrimarket-gateway/internal/market"
	"agrimarket-gateway/internal/normalize"
	"agrimarket-gateway/internal/upstream"
)

func testNow() time.Time {
	return time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Synthetic == nil {
		opts.Synthetic = &market.Synthetic{Seed: 42, Now: testNow}
	}
	if opts.Now == nil {
		opts.Now = testNow
	}
	return New(opts)
}

func doGET(t *testing.T, s *Server, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return rec, body
}

func fakeNaver(t *testing.T, items string) *upstream.Naver {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Naver-Client-Id"))
		w.Write([]byte(`{"total":2,"start":1,"display":2,"items":` + items + `}`))
	}))
	t.Cleanup(ts.Close)
	return upstream.NewNaver(ts.URL, "id", "secret", 2*time.Second, nil, nil)
}

func TestGeneralSearchMissingQuery(t *testing.T) {
	s := newTestServer(t, Options{Naver: fakeNaver(t, `[]`)})
	rec, body := doGET(t, s, "/api/general-search")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "검색어를 입력해주세요.", body["error"])
}

func TestGeneralSearchMissingCredentials(t *testing.T) {
	s := newTestServer(t, Options{})
	rec, body := doGET(t, s, "/api/general-search?query=감자")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestGeneralSearch(t *testing.T) {
	items := `[
		{"title":"<b>감자</b> 3kg","lprice":"9,900","mallName":"몰A","link":"a"},
		{"title":"<b>감자</b> 1kg","lprice":"3,900","mallName":"몰B","link":"b"}
	]`
	s := newTestServer(t, Options{Naver: fakeNaver(t, items)})
	rec, body := doGET(t, s, "/api/general-search?query=감자")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["total"])

	list := body["items"].([]any)
	first := list[0].(map[string]any)
	assert.Equal(t, "감자 1kg", first["title"], "sorted ascending, bold stripped")
	assert.Equal(t, float64(3900), first["price"])
}

func TestPriceTrendUnknownProduct(t *testing.T) {
	s := newTestServer(t, Options{})
	rec, body := doGET(t, s, "/api/price-trend?product=durian")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["availableProducts"])
}

func TestPriceTrendInvalidPeriod(t *testing.T) {
	s := newTestServer(t, Options{})
	rec, _ := doGET(t, s, "/api/price-trend?period=weekly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPriceTrendFallsBackToSynthetic(t *testing.T) {
	s := newTestServer(t, Options{}) // no KAMIS wired
	rec, body := doGET(t, s, "/api/price-trend?product=tomato&period=daily")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["isDummy"])
	assert.NotEmpty(t, body["message"])
	assert.Len(t, body["items"].([]any), 30)
}

type stubTrend struct {
	points []market.TrendPoint
	err    error
}

func (s stubTrend) Trend(context.Context, catalog.Product, market.Period) ([]market.TrendPoint, error) {
	return s.points, s.err
}

func TestPriceTrendServesLiveData(t *testing.T) {
	s := newTestServer(t, Options{Trend: stubTrend{points: []market.TrendPoint{
		{Label: "2024년", Price: 5000},
	}}})
	rec, body := doGET(t, s, "/api/price-trend?product=tomato&period=yearly")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["isDummy"])
	assert.Len(t, body["items"].([]any), 1)
}

func TestPriceTrendUpstreamErrorFallsBack(t *testing.T) {
	s := newTestServer(t, Options{Trend: stubTrend{err: errors.New("dial timeout")}})
	rec, body := doGET(t, s, "/api/price-trend?product=tomato&period=monthly")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["isDummy"])
	assert.Len(t, body["items"].([]any), 12)
}

func TestVolumeInfoInvalidView(t *testing.T) {
	s := newTestServer(t, Options{})
	rec, _ := doGET(t, s, "/api/volume-info?view=hourly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVolumeInfoTrendIsAlwaysSynthetic(t *testing.T) {
	s := newTestServer(t, Options{})
	rec, body := doGET(t, s, "/api/volume-info?view=trend")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["isDummy"])
	assert.Len(t, body["items"].([]any), 12, "14 days minus two Sundays")

	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(12), summary["dataPoints"])
}

func TestVolumeInfoMissingKeyServesSynthetic(t *testing.T) {
	s := newTestServer(t, Options{})
	rec, body := doGET(t, s, "/api/volume-info?view=market")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["isDummy"])
	assert.Contains(t, body["message"], "SEOUL_API_KEY")

	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(len(catalog.SyntheticMarkets)), summary["totalMarkets"])
	assert.Equal(t, "가락시장", summary["topMarket"])
}

type stubVolume struct {
	day *market.SettlementDay
	err error
}

func (s stubVolume) Settlement(context.Context, string) (*market.SettlementDay, error) {
	return s.day, s.err
}

func TestVolumeInfoLiveProductView(t *testing.T) {
	day := &market.SettlementDay{
		Date: "2025-03-11",
		Products: []market.ProductVolume{
			{Product: "사과", Category: "과일류", Volume: 200000, Unit: "kg", Corporations: map[string]int{}},
			{Product: "배추", Category: "일반채소류", Volume: 120000, Unit: "kg", Corporations: map[string]int{}},
		},
	}
	s := newTestServer(t, Options{Volume: stubVolume{day: day}})
	rec, body := doGET(t, s, "/api/volume-info?view=product")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["isDummy"])
	assert.Equal(t, "2025-03-11", body["date"])

	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["totalProducts"])
	assert.Equal(t, float64(320000), summary["totalVolume"])
	assert.Equal(t, "사과", summary["topProduct"])
}

func TestVolumeInfoParseFailureServesSynthetic(t *testing.T) {
	s := newTestServer(t, Options{Volume: stubVolume{}})
	rec, body := doGET(t, s, "/api/volume-info?view=product")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["isDummy"])
	assert.Len(t, body["items"].([]any), len(catalog.SyntheticProducts))
}

type stubWholesale struct {
	w     market.Wholesale
	tiers normalize.PriceTiers
	err   error
}

func (s stubWholesale) Wholesale(context.Context, catalog.Product) (market.Wholesale, normalize.PriceTiers, error) {
	return s.w, s.tiers, s.err
}

func TestPriceCompareKamisDownUsesReferencePrices(t *testing.T) {
	items := `[
		{"title":"완숙 <b>토마토</b> 1kg","lprice":"7,800","mallName":"몰A","link":"a"},
		{"title":"<b>토마토</b> 케첩","lprice":"4,000","mallName":"몰B"}
	]`
	naver := fakeNaver(t, items)
	s := newTestServer(t, Options{
		Naver:     naver,
		Online:    &market.LiveOnline{Naver: naver},
		Wholesale: stubWholesale{err: errors.New("kamis down")},
	})
	rec, body := doGET(t, s, "/api/product-price-compare?product=tomato")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "KAMIS API 연결 실패 - 참고가격으로 표시됩니다.", body["kamisError"])

	wholesale := body["wholesale_summary"].(map[string]any)
	assert.Equal(t, float64(5200), wholesale["high"])
	assert.Equal(t, float64(3800), wholesale["mid"])
	assert.Equal(t, true, wholesale["isDummy"])

	online := body["online_summary"].(map[string]any)
	assert.Equal(t, float64(7800), online["lowest_price"], "the ketchup listing is filtered out")
	assert.Equal(t, float64(1), online["mall_count"])

	comparison := body["comparison"].([]any)
	require.Len(t, comparison, 2)
	first := comparison[0].(map[string]any)
	assert.Equal(t, "상품", first["grade"])
	assert.Equal(t, float64(50), first["margin_rate"])
}

func TestPriceCompareLiveWholesale(t *testing.T) {
	naver := fakeNaver(t, `[{"title":"<b>토마토</b> 1kg","lprice":"7,800","mallName":"몰A"}]`)
	s := newTestServer(t, Options{
		Naver:  naver,
		Online: &market.LiveOnline{Naver: naver},
		Wholesale: stubWholesale{
			w:     market.Wholesale{High: 6000, Mid: 4500, Date: "2025-03-12", Source: "KAMIS"},
			tiers: normalize.PriceTiers{High: 6000, Mid: 4500},
		},
	})
	rec, body := doGET(t, s, "/api/product-price-compare")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["kamisError"])
	wholesale := body["wholesale_summary"].(map[string]any)
	assert.Equal(t, float64(6000), wholesale["high"])
	assert.Equal(t, "KAMIS", wholesale["source"])
}

type stubAuction struct {
	res *market.AuctionResult
	err error
}

func (s stubAuction) Auctions(context.Context, market.AuctionQuery) (*market.AuctionResult, error) {
	return s.res, s.err
}

func TestAuctionInfoMissingKey(t *testing.T) {
	s := newTestServer(t, Options{})
	rec, _ := doGET(t, s, "/api/auction-info")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuctionInfoSchemaErrorIsA200(t *testing.T) {
	s := newTestServer(t, Options{Auction: stubAuction{res: &market.AuctionResult{
		Items: []market.AuctionGroup{},
		Debug: map[string]any{"reason": "upstream_error", "resultCode": "30"},
	}}})
	rec, body := doGET(t, s, "/api/auction-info")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["success"])
	debug := body["debugInfo"].(map[string]any)
	assert.Equal(t, "30", debug["resultCode"])
}

func TestAuctionInfo(t *testing.T) {
	s := newTestServer(t, Options{Auction: stubAuction{res: &market.AuctionResult{
		Items: []market.AuctionGroup{
			{Product: "완숙토마토", Market: "가락시장", MarketCode: "110001", Volume: 175},
		},
		Markets:       []string{"가락시장"},
		HasOriginData: true,
		Date:          "2024-12-31",
	}}})
	rec, body := doGET(t, s, "/api/auction-info?product=토마토")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["hasOriginData"])
	assert.Equal(t, float64(1), body["totalMarkets"])
	assert.Equal(t, "2024-12-31", body["date"])
}

func TestOriginInfoInvalidType(t *testing.T) {
	s := newTestServer(t, Options{})
	rec, _ := doGET(t, s, "/api/origin-info?type=colors")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOriginInfo(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/katCode/placeOrigins")
		w.Write([]byte(`{"data":[{"code":"1","name":"부산"},{"code":"2","name":"김해"}]}`))
	}))
	t.Cleanup(ts.Close)
	portal := upstream.NewPortal(ts.URL, "key", 2*time.Second, nil, nil)

	s := newTestServer(t, Options{Portal: portal})
	rec, body := doGET(t, s, "/api/origin-info?type=origins")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["count"])
}

func TestRegionPriceFallsBackToSynthetic(t *testing.T) {
	s := newTestServer(t, Options{})
	rec, body := doGET(t, s, "/api/region-price?product=onion")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["isDummy"])
	assert.Len(t, body["items"].([]any), len(catalog.SyntheticRegions))
}

func TestProductSearchUnknownGradeUsesDefaultQuery(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(`{"items":[{"title":"<b>토마토</b> 1kg","lprice":"5,000","mallName":"몰A"}]}`))
	}))
	t.Cleanup(ts.Close)
	naver := upstream.NewNaver(ts.URL, "id", "secret", 2*time.Second, nil, nil)

	s := newTestServer(t, Options{Naver: naver})
	rec, body := doGET(t, s, "/api/product-search?grade=gigantic")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "토마토 1kg", gotQuery)
	assert.Equal(t, float64(1), body["count"])
}

func TestProductSearchGradeQuery(t *testing.T) {
	var gotQuery, gotSort string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotSort = r.URL.Query().Get("sort")
		w.Write([]byte(`{"items":[]}`))
	}))
	t.Cleanup(ts.Close)
	naver := upstream.NewNaver(ts.URL, "id", "secret", 2*time.Second, nil, nil)

	s := newTestServer(t, Options{Naver: naver})
	rec, _ := doGET(t, s, "/api/product-search?grade=juice")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "토마토 주스용 1kg", gotQuery)
	assert.Equal(t, "asc", gotSort)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, Options{Naver: fakeNaver(t, `[]`)})
	rec, body := doGET(t, s, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	sources := body["sources"].(map[string]any)
	assert.Equal(t, true, sources["naver"])
	assert.Equal(t, false, sources["kamis"])
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodOptions, "/api/price-trend", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Body.String())
}
