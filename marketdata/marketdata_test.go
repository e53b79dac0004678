package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quarkbyte/finagent/fault"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(WithBaseURL(srv.URL), WithAPIKey("test-key"), WithMaxRetries(0))
}

func TestSearchTicker(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("apikey") != "test-key" {
			t.Error("apikey missing from query")
		}
		if r.URL.Query().Get("query") != "Exxon" {
			t.Errorf("query = %s", r.URL.Query().Get("query"))
		}
		w.Write([]byte(`[{"symbol":"XOM","name":"Exxon Mobil Corporation","exchangeShortName":"NYSE"}]`))
	}))
	hit, err := c.SearchTicker(context.Background(), "Exxon")
	if err != nil {
		t.Fatalf("SearchTicker: %v", err)
	}
	if hit.Symbol != "XOM" || hit.Name != "Exxon Mobil Corporation" {
		t.Errorf("hit = %+v", hit)
	}
}

func TestSearchTickerNoMatch(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	_, err := c.SearchTicker(context.Background(), "No Such Company")
	if fault.KindOf(err) != fault.NotFound {
		t.Errorf("kind = %s, want not_found", fault.KindOf(err))
	}
}

func TestKeyMetricsEmptyIsNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("period") != "annual" {
			t.Errorf("period = %s", r.URL.Query().Get("period"))
		}
		w.Write([]byte(`[]`))
	}))
	_, err := c.KeyMetrics(context.Background(), "ZZZZ")
	if fault.KindOf(err) != fault.NotFound {
		t.Errorf("kind = %s, want not_found", fault.KindOf(err))
	}
}

func TestKeyMetricsRateLimit(t *testing.T) {
	calls := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"Error Message":"Limit Reach"}`))
	}))
	_, err := c.KeyMetrics(context.Background(), "XOM")
	if fault.KindOf(err) != fault.UpstreamUnavailable {
		t.Errorf("kind = %s, want upstream_unavailable", fault.KindOf(err))
	}
	if calls != 1 {
		t.Errorf("calls = %d; an observed response must not be retried", calls)
	}
}

func TestKeyMetricsRows(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"calendarYear":"2023","revenuePerShare":84.2,"roe":0.19},
			{"calendarYear":"2022","revenuePerShare":95.1,"roe":0.27}
		]`))
	}))
	rows, err := c.KeyMetrics(context.Background(), "XOM")
	if err != nil {
		t.Fatalf("KeyMetrics: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0]["calendarYear"] != "2023" {
		t.Errorf("first row = %v", rows[0])
	}
}

func TestHistoricalPricesAscending(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"AAPL","historical":[
			{"date":"2024-01-03","close":184.25},
			{"date":"2024-01-02","close":185.64}
		]}`))
	}))
	points, err := c.HistoricalPrices(context.Background(), "AAPL", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("HistoricalPrices: %v", err)
	}
	if len(points) != 2 || points[0].Date != "2024-01-02" {
		t.Errorf("points = %+v, want ascending dates", points)
	}
}

func TestHistoricalPricesEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	_, err := c.HistoricalPrices(context.Background(), "ZZZZ", time.Time{}, time.Time{})
	if fault.KindOf(err) != fault.NotFound {
		t.Errorf("kind = %s, want not_found", fault.KindOf(err))
	}
}

func TestCompanyProfile(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"symbol":"AAPL","companyName":"Apple Inc.","sector":"Technology","ceo":"Mr. Timothy D. Cook","fullTimeEmployees":"161000"}]`))
	}))
	p, err := c.CompanyProfile(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("CompanyProfile: %v", err)
	}
	if p.CompanyName != "Apple Inc." || p.FullTimeEmployees != "161000" {
		t.Errorf("profile = %+v", p)
	}
}

type flakyTransport struct {
	failures int
	calls    int
	inner    http.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection reset")
	}
	return f.inner.RoundTrip(req)
}

func TestTransportErrorsAreRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"symbol":"XOM","name":"Exxon Mobil Corporation"}]`))
	}))
	defer srv.Close()

	ft := &flakyTransport{failures: 2, inner: http.DefaultTransport}
	c := New(
		WithBaseURL(srv.URL),
		WithAPIKey("k"),
		WithMaxRetries(2),
		WithHTTPClient(&http.Client{Transport: ft}),
	)
	hit, err := c.SearchTicker(context.Background(), "Exxon")
	if err != nil {
		t.Fatalf("SearchTicker after retries: %v", err)
	}
	if hit.Symbol != "XOM" {
		t.Errorf("hit = %+v", hit)
	}
	if ft.calls != 3 {
		t.Errorf("calls = %d, want 3 (two failures then success)", ft.calls)
	}
}

func TestRetriesExhausted(t *testing.T) {
	ft := &flakyTransport{failures: 10, inner: http.DefaultTransport}
	c := New(
		WithBaseURL("http://unreachable.invalid"),
		WithAPIKey("k"),
		WithMaxRetries(1),
		WithHTTPClient(&http.Client{Transport: ft}),
	)
	_, err := c.SearchTicker(context.Background(), "anything")
	if fault.KindOf(err) != fault.UpstreamUnavailable {
		t.Errorf("kind = %s, want upstream_unavailable", fault.KindOf(err))
	}
	if ft.calls != 2 {
		t.Errorf("calls = %d, want 2 (initial + one retry)", ft.calls)
	}
}
