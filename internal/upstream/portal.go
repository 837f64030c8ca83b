package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultPortalBaseURL is the public-data portal base for the wholesale
// market services (경매원천정보 and 표준코드).
const DefaultPortalBaseURL = "https://apis.data.go.kr/B552845"

// Code table endpoints under katCode.
const (
	CodeOrigins = "placeOrigins"
	CodeGoods   = "goods"
	CodeMarkets = "wholesaleMarkets"
)

// Portal calls the public-data portal auction services: live trade records
// with origin data under katOrigin, and the standard code tables under
// katCode.
type Portal struct {
	*Client
	baseURL    string
	serviceKey string
}

// NewPortal builds a public-data portal client. serviceKey is the portal
// issued key, passed already decoded; it is escaped per request.
func NewPortal(baseURL, serviceKey string, timeout time.Duration, log *zap.Logger, obs Observer) *Portal {
	if baseURL == "" {
		baseURL = DefaultPortalBaseURL
	}
	return &Portal{
		Client:     NewClient("portal", timeout, "", log, obs),
		baseURL:    baseURL,
		serviceKey: serviceKey,
	}
}

// Trades fetches auction trade records settled on date (YYYY-MM-DD). The
// date filter uses the portal's cond[field::EQ] convention.
func (p *Portal) Trades(ctx context.Context, date string, pageNo, numOfRows int) ([]byte, error) {
	if pageNo <= 0 {
		pageNo = 1
	}
	if numOfRows <= 0 {
		numOfRows = 100
	}
	u := fmt.Sprintf("%s/katOrigin/trades?serviceKey=%s&returnType=json&pageNo=%d&numOfRows=%d&%s=%s",
		p.baseURL,
		url.QueryEscape(p.serviceKey),
		pageNo,
		numOfRows,
		url.QueryEscape("cond[trd_clcln_ymd::EQ]"),
		url.QueryEscape(date),
	)
	return p.getJSON(ctx, u, nil)
}

// Codes fetches one standard code table (see CodeOrigins, CodeGoods,
// CodeMarkets).
func (p *Portal) Codes(ctx context.Context, endpoint string) ([]byte, error) {
	params := url.Values{}
	params.Set("serviceKey", p.serviceKey)
	params.Set("returnType", "json")
	params.Set("pageNo", "1")
	params.Set("numOfRows", strconv.Itoa(1000))
	return p.getJSON(ctx, p.baseURL+"/katCode/"+endpoint+"?"+params.Encode(), nil)
}
