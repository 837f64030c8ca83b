package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agrimarket-gateway/internal/catalog"
	"agrimarket-gateway/internal/upstream"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
}

// kamisServer fakes the KAMIS endpoint, answering per action and product
// class code.
func kamisServer(t *testing.T, respond func(action, cls string) string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.NotEmpty(t, q.Get("p_cert_key"))
		w.Write([]byte(respond(q.Get("action"), q.Get("p_productclscode"))))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestKamis(ts *httptest.Server) *upstream.Kamis {
	return upstream.NewKamis(ts.URL, "test-key", "test-id", 2*time.Second, zap.NewNop(), nil)
}

func TestLiveTrendYearly(t *testing.T) {
	ts := kamisServer(t, func(action, cls string) string {
		require.Equal(t, "yearlyPriceTrendList", action)
		if cls == upstream.ClassRetail {
			return `{"data":{"item":[{"yyyy":"2024","m1":"9,000"}]}}`
		}
		return `{"data":{"item":[
			{"yyyy":"평년","m1":"900"},
			{"yyyy":"2019","m1":"100"},
			{"yyyy":"2022","m1":"4,000"},
			{"yyyy":"2020","m1":"1,000","m2":"2,000","m3":"-"},
			{"yyyy":"2021","m1":"3000"},
			{"yyyy":"2023","m1":"5000"},
			{"yyyy":"2024","m1":"6000"}
		]}}`
	})

	src := &LiveTrend{Kamis: newTestKamis(ts), Now: fixedNow}
	points, err := src.Trend(context.Background(), catalog.Products["tomato"], PeriodYearly)
	require.NoError(t, err)
	require.Len(t, points, 5, "keeps the five most recent years, 2019 dropped")

	want := []TrendPoint{
		{Label: "2020년", Price: 1500, RetailPrice: 0},
		{Label: "2021년", Price: 3000, RetailPrice: 0},
		{Label: "2022년", Price: 4000, RetailPrice: 0},
		{Label: "2023년", Price: 5000, RetailPrice: 0},
		{Label: "2024년", Price: 6000, RetailPrice: 9000},
	}
	assert.Equal(t, want, points)
}

func TestLiveTrendMonthlyKeepsLastTwelve(t *testing.T) {
	ts := kamisServer(t, func(action, cls string) string {
		require.Equal(t, "monthlyPriceTrendList", action)
		if cls == upstream.ClassRetail {
			return `{"data":{"item":[]}}`
		}
		return `{"data":{"item":[
			{"yyyy":"2024","m1":"1000","m2":"1000","m3":"1000","m4":"1000","m5":"1000","m6":"1000",
			 "m7":"1000","m8":"1000","m9":"1000","m10":"1000","m11":"1000","m12":"1000"},
			{"yyyy":"2025","m1":"2000","m2":"3000","m3":"4000","m4":"-"}
		]}}`
	})

	src := &LiveTrend{Kamis: newTestKamis(ts), Now: fixedNow}
	points, err := src.Trend(context.Background(), catalog.Products["tomato"], PeriodMonthly)
	require.NoError(t, err)
	require.Len(t, points, 12)
	assert.Equal(t, "2024.04", points[0].Label)
	assert.Equal(t, "2025.03", points[11].Label)
	assert.Equal(t, 4000, points[11].Price)
}

func TestLiveTrendDailySkipsNonPositive(t *testing.T) {
	ts := kamisServer(t, func(action, cls string) string {
		require.Equal(t, "periodProductList", action)
		return `{"data":{"item":[
			{"regday":"03/10","price":"5,100"},
			{"regday":"03/11","price":"-"},
			{"regday":"","price":"4000"},
			{"regday":"03/12","price":"5,300"}
		]}}`
	})

	src := &LiveTrend{Kamis: newTestKamis(ts), Now: fixedNow}
	points, err := src.Trend(context.Background(), catalog.Products["tomato"], PeriodDaily)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, TrendPoint{Label: "03/10", Price: 5100, RetailPrice: 5100}, points[0])
	assert.Equal(t, 5300, points[1].Price)
}

func TestLiveTrendWholesaleFailureIsAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	src := &LiveTrend{Kamis: newTestKamis(ts), Now: fixedNow}
	_, err := src.Trend(context.Background(), catalog.Products["tomato"], PeriodDaily)
	require.Error(t, err)
}

func TestLiveTrendEmptyDataIsNotAnError(t *testing.T) {
	ts := kamisServer(t, func(action, cls string) string {
		return `{"data":["001"]}`
	})

	src := &LiveTrend{Kamis: newTestKamis(ts), Now: fixedNow}
	points, err := src.Trend(context.Background(), catalog.Products["tomato"], PeriodDaily)
	require.NoError(t, err)
	assert.Empty(t, points)
}
