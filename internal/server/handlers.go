package server

import (
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"agrimarket-gateway/internal/aggregate"
	"agrimarket-gateway/internal/catalog"
	"agrimarket-gateway/internal/market"
	"agrimarket-gateway/internal/normalize"
	"agrimarket-gateway/internal/upstream"
)

// User-facing notice strings. The dashboard renders these verbatim, so they
// stay in Korean.
const (
	msgUnknownProduct   = "지원하지 않는 품목입니다."
	msgKamisFallback    = "KAMIS API 연결 실패 - 참고가격으로 표시됩니다."
	msgTrendFallback    = "KAMIS API에서 데이터를 가져오지 못해 참고 데이터로 표시됩니다."
	msgVolumeNoKey      = "서울 열린데이터광장 API 인증키가 없어 참고 데이터로 표시됩니다. 실제 데이터를 보려면 SEOUL_API_KEY 환경변수를 설정하세요."
	msgVolumeTrendDummy = "추이 데이터는 참고용 데이터입니다."
	msgVolumeParseFail  = "API 데이터 파싱 실패로 참고 데이터를 표시합니다."
	msgMissingQuery     = "검색어를 입력해주세요."
	msgMissingNaver     = "NAVER_CLIENT_ID/NAVER_CLIENT_SECRET 환경변수가 설정되지 않았습니다."
	msgMissingPortal    = "PUBLIC_DATA_API_KEY 환경변수가 설정되지 않았습니다."
	msgSearchFailed     = "검색 중 오류가 발생했습니다."
	msgCompareFailed    = "가격 비교 데이터를 가져오는 중 오류가 발생했습니다."
	msgAuctionFailed    = "경매 데이터를 가져오지 못했습니다."
	msgAuctionEmpty     = "조회된 경매 데이터가 없습니다."
	msgOriginFailed     = "산지 정보를 가져오는 데 실패했습니다."
)

// productRef pairs a product key with its display name, for the supported
// product list in comparison responses.
type productRef struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func availableProducts() []productRef {
	keys := catalog.ProductKeys()
	out := make([]productRef, 0, len(keys))
	for _, k := range keys {
		out = append(out, productRef{Key: k, Name: catalog.Products[k].Name})
	}
	return out
}

// productParam resolves the product query parameter, defaulting to tomato.
func (s *Server) productParam(w http.ResponseWriter, r *http.Request) (catalog.Product, bool) {
	key := r.URL.Query().Get("product")
	if key == "" {
		key = "tomato"
	}
	p, ok := catalog.Products[key]
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, errorBody{
			Error:             msgUnknownProduct,
			AvailableProducts: catalog.ProductKeys(),
		})
		return catalog.Product{}, false
	}
	return p, true
}

type priceCompareResponse struct {
	Success           bool                      `json:"success"`
	Product           string                    `json:"product"`
	ProductName       string                    `json:"productName"`
	Date              string                    `json:"date"`
	WholesaleSummary  market.Wholesale          `json:"wholesale_summary"`
	OnlineSummary     market.OnlineSummary      `json:"online_summary"`
	KamisError        string                    `json:"kamisError,omitempty"`
	Comparison        []aggregate.ComparisonRow `json:"comparison"`
	OnlineDetail      []market.OnlineItem       `json:"online_detail"`
	SampleCount       int                       `json:"sample_count"`
	AvailableProducts []productRef              `json:"availableProducts"`
}

// handlePriceCompare joins the KAMIS wholesale summary and the Naver online
// sample for one product. The two upstream calls run concurrently; a KAMIS
// failure degrades to the curated reference prices with a notice, a Naver
// failure fails the whole request since the comparison is meaningless
// without the online side.
func (s *Server) handlePriceCompare(w http.ResponseWriter, r *http.Request) {
	p, ok := s.productParam(w, r)
	if !ok {
		return
	}
	if s.online == nil {
		s.configError(w, msgMissingNaver)
		return
	}
	ctx := r.Context()

	var (
		wholesale  market.Wholesale
		tiers      normalize.PriceTiers
		kamisError string

		onlineItems   []market.OnlineItem
		onlineSummary market.OnlineSummary
		onlineErr     error
	)

	// Each goroutine records its own outcome and returns nil so a failing
	// sibling never cancels the other call.
	var g errgroup.Group
	g.Go(func() error {
		if s.wholesale != nil {
			ws, t, err := s.wholesale.Wholesale(ctx, p)
			if err == nil && ws.High > 0 {
				wholesale, tiers = ws, t
				return nil
			}
		}
		fb := &market.SyntheticWholesale{Now: s.now}
		wholesale, tiers, _ = fb.Wholesale(ctx, p)
		kamisError = msgKamisFallback
		return nil
	})
	g.Go(func() error {
		onlineItems, onlineSummary, onlineErr = s.online.Online(ctx, p)
		return nil
	})
	_ = g.Wait()

	if onlineErr != nil {
		s.internalError(w, msgCompareFailed)
		return
	}
	if kamisError != "" {
		s.fallbackServed("product-price-compare")
	}
	if onlineItems == nil {
		onlineItems = []market.OnlineItem{}
	}

	s.writeJSON(w, http.StatusOK, priceCompareResponse{
		Success:           true,
		Product:           p.Key,
		ProductName:       p.Name,
		Date:              s.now().Format("2006-01-02"),
		WholesaleSummary:  wholesale,
		OnlineSummary:     onlineSummary,
		KamisError:        kamisError,
		Comparison:        aggregate.Comparison(tiers, onlineSummary.LowestPrice),
		OnlineDetail:      onlineItems,
		SampleCount:       len(onlineItems),
		AvailableProducts: availableProducts(),
	})
}

type trendResponse struct {
	Success     bool                `json:"success"`
	Product     string              `json:"product"`
	ProductName string              `json:"productName"`
	Period      market.Period       `json:"period"`
	Items       []market.TrendPoint `json:"items"`
	IsDummy     bool                `json:"isDummy,omitempty"`
	Message     string              `json:"message,omitempty"`
}

// handlePriceTrend serves the daily/monthly/yearly price series. An empty
// or failed lookup substitutes the synthetic series of the same shape.
func (s *Server) handlePriceTrend(w http.ResponseWriter, r *http.Request) {
	p, ok := s.productParam(w, r)
	if !ok {
		return
	}
	period, err := market.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.badRequest(w, "지원하지 않는 기간입니다. daily, monthly, yearly 중 하나를 사용하세요.")
		return
	}

	var items []market.TrendPoint
	if s.trend != nil {
		items, err = s.trend.Trend(r.Context(), p, period)
	}
	if err != nil || len(items) == 0 {
		items, _ = s.synth.Trend(r.Context(), p, period)
		s.fallbackServed("price-trend")
		s.writeJSON(w, http.StatusOK, trendResponse{
			Success: true, Product: p.Key, ProductName: p.Name, Period: period,
			Items: items, IsDummy: true, Message: msgTrendFallback,
		})
		return
	}
	s.writeJSON(w, http.StatusOK, trendResponse{
		Success: true, Product: p.Key, ProductName: p.Name, Period: period, Items: items,
	})
}

type regionResponse struct {
	Success     bool                 `json:"success"`
	Product     string               `json:"product"`
	ProductName string               `json:"productName"`
	Date        string               `json:"date"`
	Items       []market.RegionPrice `json:"items"`
	IsDummy     bool                 `json:"isDummy,omitempty"`
	Message     string               `json:"message,omitempty"`
}

// handleRegionPrice serves the per-region retail/wholesale comparison.
func (s *Server) handleRegionPrice(w http.ResponseWriter, r *http.Request) {
	p, ok := s.productParam(w, r)
	if !ok {
		return
	}

	var (
		items []market.RegionPrice
		err   error
	)
	if s.region != nil {
		items, err = s.region.Regions(r.Context(), p)
	}
	resp := regionResponse{
		Success: true, Product: p.Key, ProductName: p.Name,
		Date: s.now().Format("2006-01-02"),
	}
	if err != nil || len(items) == 0 {
		resp.Items, _ = s.synth.Regions(r.Context(), p)
		resp.IsDummy = true
		resp.Message = msgTrendFallback
		s.fallbackServed("region-price")
	} else {
		resp.Items = items
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type volumeResponse struct {
	Success  bool           `json:"success"`
	ViewType string         `json:"viewType"`
	Date     string         `json:"date"`
	Items    any            `json:"items"`
	Summary  map[string]any `json:"summary"`
	Source   string         `json:"source,omitempty"`
	IsDummy  bool           `json:"isDummy,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// handleVolumeInfo serves the Garak settlement volumes in three views. The
// trend view is always synthetic since the upstream feed covers one day.
func (s *Server) handleVolumeInfo(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	if view == "" {
		view = "market"
	}
	switch view {
	case "market", "product", "trend":
	default:
		s.badRequest(w, "지원하지 않는 view 타입입니다. market, product, trend 중 하나를 사용하세요.")
		return
	}
	date := r.URL.Query().Get("date")
	today := s.now().Format("2006-01-02")
	if date == "" {
		date = today
	}

	if view == "trend" {
		days := s.synth.VolumeTrend(14)
		s.fallbackServed("volume-info")
		s.writeJSON(w, http.StatusOK, volumeResponse{
			Success: true, ViewType: view, Date: date,
			Items: days, Summary: volumeTrendSummary(days),
			IsDummy: true, Message: msgVolumeTrendDummy,
		})
		return
	}

	if s.volume == nil {
		s.serveSyntheticVolume(w, view, date, msgVolumeNoKey)
		return
	}

	day, err := s.volume.Settlement(r.Context(), r.URL.Query().Get("date"))
	if err != nil || day == nil {
		s.serveSyntheticVolume(w, view, date, msgVolumeParseFail)
		return
	}

	resp := volumeResponse{
		Success: true, ViewType: view, Date: date,
		Source: "가락시장 (서울 열린데이터광장)",
	}
	if day.Date != "" {
		resp.Date = day.Date
	}
	switch view {
	case "product":
		if len(day.Products) == 0 {
			s.serveSyntheticVolume(w, view, date, msgVolumeParseFail)
			return
		}
		resp.Items = day.Products
		resp.Summary = productVolumeSummary(day.Products)
	default:
		if len(day.Categories) == 0 {
			s.serveSyntheticVolume(w, view, date, msgVolumeParseFail)
			return
		}
		resp.Items = day.Categories
		resp.Summary = map[string]any{
			"totalVolume":  0,
			"corporations": map[string]int{},
			"categories":   len(day.Categories),
		}
		if day.Total != nil {
			resp.Summary["totalVolume"] = day.Total.Total
			resp.Summary["corporations"] = day.Total.Corporations
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// serveSyntheticVolume answers a market or product view from the generator.
func (s *Server) serveSyntheticVolume(w http.ResponseWriter, view, date, message string) {
	s.fallbackServed("volume-info")
	resp := volumeResponse{
		Success: true, ViewType: view, Date: date,
		IsDummy: true, Message: message,
	}
	if view == "product" {
		items := s.synth.VolumeByProduct()
		resp.Items = items
		resp.Summary = productVolumeSummary(items)
	} else {
		items := s.synth.VolumeByMarket()
		total := 0
		top := "-"
		for _, it := range items {
			total += it.Total
		}
		if len(items) > 0 {
			top = items[0].Market
		}
		resp.Items = items
		resp.Summary = map[string]any{
			"totalMarkets": len(items),
			"totalVolume":  total,
			"topMarket":    top,
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func productVolumeSummary(items []market.ProductVolume) map[string]any {
	total := 0
	top := "-"
	for _, it := range items {
		total += it.Volume
	}
	if len(items) > 0 {
		top = items[0].Product
	}
	return map[string]any{
		"totalProducts": len(items),
		"totalVolume":   total,
		"topProduct":    top,
	}
}

func volumeTrendSummary(days []market.VolumeDay) map[string]any {
	if len(days) == 0 {
		return map[string]any{"averageDaily": 0, "maxVolume": 0, "minVolume": 0, "dataPoints": 0}
	}
	sum, max, min := 0, days[0].Total, days[0].Total
	for _, d := range days {
		sum += d.Total
		if d.Total > max {
			max = d.Total
		}
		if d.Total < min {
			min = d.Total
		}
	}
	return map[string]any{
		"averageDaily": sum / len(days),
		"maxVolume":    max,
		"minVolume":    min,
		"dataPoints":   len(days),
	}
}

type searchResponse struct {
	Success bool                `json:"success"`
	Query   string              `json:"query"`
	Items   []market.SearchItem `json:"items"`
	Total   int                 `json:"total"`
}

// handleGeneralSearch proxies a free-text shopping search.
func (s *Server) handleGeneralSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		s.badRequest(w, msgMissingQuery)
		return
	}
	if s.naver == nil {
		s.configError(w, msgMissingNaver)
		return
	}
	resp, err := s.naver.Search(r.Context(), upstream.ShopQuery{
		Query:       query,
		Display:     50,
		Sort:        "sim",
		ExcludeUsed: true,
	})
	if err != nil {
		s.internalError(w, msgSearchFailed)
		return
	}
	items := market.SearchItems(resp.Items)
	s.writeJSON(w, http.StatusOK, searchResponse{
		Success: true, Query: query, Items: items, Total: len(items),
	})
}

type gradeSearchResponse struct {
	Success bool               `json:"success"`
	Grade   string             `json:"grade"`
	Query   string             `json:"query"`
	Items   []market.GradeItem `json:"items"`
	Count   int                `json:"count"`
}

// handleProductSearch serves the grade-keyword shopping search. Unknown
// grades fall back to the generic query rather than erroring.
func (s *Server) handleProductSearch(w http.ResponseWriter, r *http.Request) {
	if s.naver == nil {
		s.configError(w, msgMissingNaver)
		return
	}
	grade := r.URL.Query().Get("grade")
	query, ok := catalog.GradeQueries[grade]
	if !ok {
		query = "토마토 1kg"
	}
	resp, err := s.naver.Search(r.Context(), upstream.ShopQuery{
		Query:   query,
		Display: 50,
		Sort:    "asc",
	})
	if err != nil {
		s.internalError(w, msgSearchFailed)
		return
	}
	items := market.GradeItems(resp.Items)
	s.writeJSON(w, http.StatusOK, gradeSearchResponse{
		Success: true, Grade: grade, Query: query, Items: items, Count: len(items),
	})
}

type auctionResponse struct {
	Success       bool                  `json:"success"`
	Date          string                `json:"date"`
	Items         []market.AuctionGroup `json:"items"`
	TotalItems    int                   `json:"totalItems"`
	Markets       []string              `json:"markets"`
	TotalMarkets  int                   `json:"totalMarkets"`
	HasOriginData bool                  `json:"hasOriginData"`
}

// handleAuctionInfo serves the aggregated wholesale auction volumes.
// Upstream schema problems are a 200 with diagnostics, not a 500, so the
// dashboard can render its empty state.
func (s *Server) handleAuctionInfo(w http.ResponseWriter, r *http.Request) {
	if s.auction == nil {
		s.configError(w, msgMissingPortal)
		return
	}
	q := market.AuctionQuery{
		Product:   r.URL.Query().Get("product"),
		PageNo:    intParam(r, "pageNo"),
		NumOfRows: intParam(r, "numOfRows"),
	}
	res, err := s.auction.Auctions(r.Context(), q)
	if err != nil {
		s.noData(w, msgAuctionFailed, nil)
		return
	}
	if len(res.Items) == 0 {
		s.noData(w, msgAuctionEmpty, res.Debug)
		return
	}
	s.writeJSON(w, http.StatusOK, auctionResponse{
		Success:       true,
		Date:          res.Date,
		Items:         res.Items,
		TotalItems:    len(res.Items),
		Markets:       res.Markets,
		TotalMarkets:  len(res.Markets),
		HasOriginData: res.HasOriginData,
	})
}

// originEndpoints maps the type parameter to the portal code endpoint.
var originEndpoints = map[string]string{
	"origins": upstream.CodeOrigins,
	"goods":   upstream.CodeGoods,
	"markets": upstream.CodeMarkets,
}

type originResponse struct {
	Success bool               `json:"success"`
	Type    string             `json:"type"`
	Items   []normalize.Record `json:"items"`
	Count   int                `json:"count"`
}

// handleOriginInfo passes one portal code table through. An unexpected
// response shape degrades to an empty list, not an error.
func (s *Server) handleOriginInfo(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	if typ == "" {
		typ = "origins"
	}
	endpoint, ok := originEndpoints[typ]
	if !ok {
		s.badRequest(w, "지원하지 않는 type입니다. origins, goods, markets 중 하나를 사용하세요.")
		return
	}
	if s.portal == nil {
		s.configError(w, msgMissingPortal)
		return
	}
	body, err := s.portal.Codes(r.Context(), endpoint)
	if err != nil {
		s.noData(w, msgOriginFailed, nil)
		return
	}
	items, reason := normalize.PortalData(body)
	if reason != normalize.ReasonOK {
		items = []normalize.Record{}
	}
	s.writeJSON(w, http.StatusOK, originResponse{
		Success: true, Type: typ, Items: items, Count: len(items),
	})
}

type healthResponse struct {
	Status  string          `json:"status"`
	Sources map[string]bool `json:"sources"`
}

// handleHealthz reports liveness plus which upstream credentials are wired.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Sources: map[string]bool{
			"kamis":  s.wholesale != nil,
			"naver":  s.naver != nil,
			"seoul":  s.volume != nil,
			"portal": s.portal != nil,
		},
	})
}

func intParam(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
