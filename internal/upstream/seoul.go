package upstream

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// DefaultSeoulBaseURL is the Seoul open-data portal host. The service key
// is embedded in the request path, not passed as a query parameter.
const DefaultSeoulBaseURL = "http://openAPI.seoul.go.kr:8088"

// GarakService is the Garak market post-settlement intake volume dataset.
const GarakService = "GarakPayAfter"

// Seoul calls the Seoul open-data portal. Rows are requested in one page of
// up to 1000, which covers the full daily settlement feed.
type Seoul struct {
	*Client
	baseURL string
	apiKey  string
}

// NewSeoul builds a Seoul open-data client.
func NewSeoul(baseURL, apiKey string, timeout time.Duration, log *zap.Logger, obs Observer) *Seoul {
	if baseURL == "" {
		baseURL = DefaultSeoulBaseURL
	}
	return &Seoul{
		Client:  NewClient("seoul", timeout, "", log, obs),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// GarakVolumes fetches the Garak settlement volume rows. date (YYYYMMDD) is
// optional; without it the service answers the most recent day.
func (s *Seoul) GarakVolumes(ctx context.Context, date string) ([]byte, error) {
	u := s.baseURL + "/" + url.PathEscape(s.apiKey) + "/json/" + GarakService + "/1/1000/"
	if date != "" {
		params := url.Values{}
		params.Set("P_SRCH_DATE", date)
		u += "?" + params.Encode()
	}
	return s.getJSON(ctx, u, nil)
}
