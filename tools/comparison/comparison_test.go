package comparison

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quarkbyte/finagent/charting"
	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/fault"
	"github.com/quarkbyte/finagent/marketdata"
)

// Three years so two survive preprocessing (the oldest has no prior year
// for the growth column). GOOG lacks roe entirely.
var metricsByTicker = map[string]string{
	"AAPL": `[
  {"symbol":"AAPL","calendarYear":"2022","netIncomePerShare":6.1,"revenuePerShare":24.3,"roe":1.47},
  {"symbol":"AAPL","calendarYear":"2021","netIncomePerShare":5.6,"revenuePerShare":21.9,"roe":1.39},
  {"symbol":"AAPL","calendarYear":"2020","netIncomePerShare":3.3,"revenuePerShare":15.7,"roe":0.70}]`,
	"GOOG": `[
  {"symbol":"GOOG","calendarYear":"2022","netIncomePerShare":4.6,"revenuePerShare":21.7},
  {"symbol":"GOOG","calendarYear":"2021","netIncomePerShare":5.7,"revenuePerShare":19.5},
  {"symbol":"GOOG","calendarYear":"2020","netIncomePerShare":3.0,"revenuePerShare":13.5}]`,
}

func metricsServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		if body, ok := metricsByTicker[parts[len(parts)-1]]; ok {
			w.Write([]byte(body))
			return
		}
		w.Write([]byte(`[]`))
	}))
}

func TestRunAlignsMetricByYear(t *testing.T) {
	srv := metricsServer(t)
	defer srv.Close()

	tool := New(marketdata.New(marketdata.WithBaseURL(srv.URL), marketdata.WithAPIKey("k")), nil)
	out, err := tool.Run(context.Background(), &Input{Tickers: []string{"aapl"}, Metric: "roe"})
	if err != nil {
		t.Fatal(err)
	}
	var spec charting.Spec
	if err := json.Unmarshal(out.Chart, &spec); err != nil {
		t.Fatal(err)
	}
	if len(spec.Series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(spec.Series))
	}
	s := spec.Series[0]
	if s.Name != "AAPL" || s.Mode != "lines+markers" {
		t.Errorf("unexpected series %+v", s)
	}
	if len(s.X) != 2 || s.X[0] != "2021" || s.X[1] != "2022" {
		t.Errorf("expected surviving years in ascending order, got %v", s.X)
	}
	if s.Y[0] != 1.39 || s.Y[1] != 1.47 {
		t.Errorf("unexpected metric values %v", s.Y)
	}
}

func TestRunSkipsTickerWithoutMetric(t *testing.T) {
	srv := metricsServer(t)
	defer srv.Close()

	tool := New(marketdata.New(marketdata.WithBaseURL(srv.URL), marketdata.WithAPIKey("k")), nil)
	out, err := tool.Run(context.Background(), &Input{Tickers: []string{"AAPL", "GOOG"}, Metric: "roe"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Skipped) != 1 || out.Skipped[0] != "GOOG" {
		t.Errorf("expected GOOG skipped, got %v", out.Skipped)
	}

	state := conversation.NewState("t1")
	out.Apply(state)
	if len(state.Tickers) != 2 {
		t.Errorf("comparison set must record all requested tickers, got %v", state.Tickers)
	}
	if state.Comparison == nil || state.Comparison.Metric != "roe" {
		t.Errorf("unexpected comparison context %+v", state.Comparison)
	}
}

func TestRunAllSkippedFails(t *testing.T) {
	srv := metricsServer(t)
	defer srv.Close()

	tool := New(marketdata.New(marketdata.WithBaseURL(srv.URL), marketdata.WithAPIKey("k")), nil)
	_, err := tool.Run(context.Background(), &Input{Tickers: []string{"ZZZZ"}, Metric: "roe"})
	if err == nil {
		t.Fatal("expected error when every ticker fails")
	}
	if fault.KindOf(err) != fault.Validation {
		t.Errorf("expected validation failure, got %v", fault.KindOf(err))
	}
}

func TestResolveDoesNotReusePriceMetric(t *testing.T) {
	state := conversation.NewState("t1")
	state.Tickers = []string{"AAPL", "GOOG"}
	state.Comparison = &conversation.Comparison{Metric: "price", Period: 252}

	in := &Input{}
	in.Resolve(state)
	if in.Metric != "" {
		t.Errorf("price is not a fundamental metric and must not be reused, got %q", in.Metric)
	}
	if len(in.Tickers) != 2 {
		t.Errorf("state should fill omitted tickers, got %v", in.Tickers)
	}
}
