package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimarket-gateway/internal/catalog"
)

func TestClientStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	k := NewKamis(ts.URL, "key", "id", time.Second, nil, nil)
	_, err := k.DailyPriceByCategory(context.Background(), catalog.Products["tomato"], "20250312")
	require.Error(t, err)

	var ue *Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, KindStatus, ue.Kind)
	assert.Equal(t, http.StatusBadGateway, ue.Status)
	assert.Equal(t, "kamis", ue.Source)
	assert.False(t, IsTransport(err))
}

func TestClientEmptyBodyError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	k := NewKamis(ts.URL, "key", "id", time.Second, nil, nil)
	_, err := k.DailyPriceByCategory(context.Background(), catalog.Products["tomato"], "20250312")

	var ue *Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, KindEmpty, ue.Kind)
}

func TestClientTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	k := NewKamis(ts.URL, "key", "id", time.Second, nil, nil)
	_, err := k.DailyPriceByCategory(context.Background(), catalog.Products["tomato"], "20250312")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestKamisRequestShape(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"data":{"item":[]}}`))
	}))
	t.Cleanup(ts.Close)

	k := NewKamis(ts.URL, "cert-key", "cert-id", time.Second, nil, nil)
	_, err := k.DailyPriceByCategory(context.Background(), catalog.Products["tomato"], "20250312")
	require.NoError(t, err)
	require.NotNil(t, got)

	q := got.URL.Query()
	assert.Equal(t, "dailyPriceByCategoryList", q.Get("action"))
	assert.Equal(t, "cert-key", q.Get("p_cert_key"))
	assert.Equal(t, "cert-id", q.Get("p_cert_id"))
	assert.Equal(t, "json", q.Get("p_returntype"))
	assert.Equal(t, "200", q.Get("p_item_category_code"))
	assert.Equal(t, "225", q.Get("p_item_code"))
	assert.Contains(t, got.Header.Get("User-Agent"), "Mozilla/5.0", "KAMIS rejects non-browser agents")
}

func TestNaverRequestShape(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"items":[]}`))
	}))
	t.Cleanup(ts.Close)

	n := NewNaver(ts.URL, "client-id", "client-secret", time.Second, nil, nil)
	resp, err := n.Search(context.Background(), ShopQuery{Query: "토마토", ExcludeUsed: true})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	q := got.URL.Query()
	assert.Equal(t, "토마토", q.Get("query"))
	assert.Equal(t, "50", q.Get("display"), "display defaults to 50")
	assert.Equal(t, "sim", q.Get("sort"))
	assert.Equal(t, "used:rental", q.Get("exclude"))
	assert.Equal(t, "client-id", got.Header.Get("X-Naver-Client-Id"))
	assert.Equal(t, "client-secret", got.Header.Get("X-Naver-Client-Secret"))
}
