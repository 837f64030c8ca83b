package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultNaverBaseURL is the Naver Shopping search OpenAPI endpoint.
const DefaultNaverBaseURL = "https://openapi.naver.com/v1/search/shop.json"

// ShopItem is one raw Naver Shopping listing. LowPrice arrives as a string
// that may carry thousands separators; Title carries <b> highlight markers
// around matched terms. Both are cleaned by the normalize layer.
type ShopItem struct {
	ProductID   string `json:"productId"`
	ProductType string `json:"productType"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Image       string `json:"image"`
	LowPrice    string `json:"lprice"`
	HighPrice   string `json:"hprice"`
	MallName    string `json:"mallName"`
	Brand       string `json:"brand"`
	Maker       string `json:"maker"`
	Category1   string `json:"category1"`
	Category2   string `json:"category2"`
}

// ShopResponse is the Naver Shopping search envelope. Items is always a
// proper array here; this upstream does not collapse single results.
type ShopResponse struct {
	Total   int        `json:"total"`
	Start   int        `json:"start"`
	Display int        `json:"display"`
	Items   []ShopItem `json:"items"`
}

// ShopQuery describes one shopping search.
type ShopQuery struct {
	Query       string
	Display     int    // 10..100; defaults to 50
	Sort        string // sim|date|asc|dsc; defaults to sim
	ExcludeUsed bool   // drop used and rental listings
}

// Naver calls the Naver Shopping search OpenAPI. Authentication is the
// client id/secret header pair issued with the application registration.
type Naver struct {
	*Client
	baseURL      string
	clientID     string
	clientSecret string
}

// NewNaver builds a Naver Shopping client.
func NewNaver(baseURL, clientID, clientSecret string, timeout time.Duration, log *zap.Logger, obs Observer) *Naver {
	if baseURL == "" {
		baseURL = DefaultNaverBaseURL
	}
	return &Naver{
		Client:       NewClient("naver", timeout, "", log, obs),
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Search runs one shopping search and decodes the response.
func (n *Naver) Search(ctx context.Context, q ShopQuery) (*ShopResponse, error) {
	display := q.Display
	if display <= 0 {
		display = 50
	}
	sortOpt := q.Sort
	if sortOpt == "" {
		sortOpt = "sim"
	}

	params := url.Values{}
	params.Set("query", q.Query)
	params.Set("display", strconv.Itoa(display))
	params.Set("sort", sortOpt)
	if q.ExcludeUsed {
		params.Set("exclude", "used:rental")
	}

	header := http.Header{}
	header.Set("X-Naver-Client-Id", n.clientID)
	header.Set("X-Naver-Client-Secret", n.clientSecret)

	body, err := n.getJSON(ctx, n.baseURL+"?"+params.Encode(), header)
	if err != nil {
		return nil, err
	}
	var resp ShopResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("naver search payload parse: %w", err)
	}
	return &resp, nil
}
