package prices

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

func TestAlignBase100(t *testing.T) {
	series := map[string][]marketdata.PricePoint{
		"A": {{Date: "2024-01-01", Close: 10}, {Date: "2024-01-02", Close: 11}, {Date: "2024-01-04", Close: 12}},
		"B": {{Date: "2024-01-02", Close: 20}, {Date: "2024-01-03", Close: 22}},
	}
	got := alignBase100([]string{"A", "B"}, series)
	if len(got) != 2 {
		t.Fatalf("expected 2 aligned series, got %d", len(got))
	}
	a, b := got[0], got[1]
	if len(a.x) != 4 {
		t.Fatalf("A should cover all 4 dates, got %v", a.x)
	}
	// 2024-01-03 is a gap for A and must carry the prior value forward.
	if a.y[0] != 100 || a.y[1] != 110 || a.y[2] != 110 || a.y[3] != 120 {
		t.Errorf("unexpected A values %v", a.y)
	}
	// B starts later; dates before its first observation stay out.
	if len(b.x) != 3 || b.x[0] != "2024-01-02" {
		t.Fatalf("unexpected B axis %v", b.x)
	}
	if b.y[0] != 100 || b.y[1] != 110 || b.y[2] != 110 {
		t.Errorf("unexpected B values %v", b.y)
	}
}

func TestAlignBase100DropsZeroBase(t *testing.T) {
	series := map[string][]marketdata.PricePoint{
		"Z": {{Date: "2024-01-01", Close: 0}},
	}
	if got := alignBase100([]string{"Z"}, series); len(got) != 0 {
		t.Errorf("zero first close cannot be rebased, got %v", got)
	}
}

func priceServer(t *testing.T, byTicker map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		ticker := parts[len(parts)-1]
		body, ok := byTicker[ticker]
		if !ok {
			w.Write([]byte(`{}`))
			return
		}
		w.Write([]byte(body))
	}))
}

func TestFetchBuildsChart(t *testing.T) {
	srv := priceServer(t, map[string]string{
		"AAPL": `{"symbol":"AAPL","historical":[{"date":"2024-01-03","close":186.5},{"date":"2024-01-02","close":185.0}]}`,
	})
	defer srv.Close()

	tool := NewFetch(marketdata.New(marketdata.WithBaseURL(srv.URL), marketdata.WithAPIKey("k")))
	out, err := tool.Run(context.Background(), &FetchInput{Ticker: "aapl", PeriodDays: 30})
	if err != nil {
		t.Fatal(err)
	}
	if out.Ticker != "AAPL" || out.Points != 2 {
		t.Errorf("unexpected output %+v", out)
	}
	var spec charting.Spec
	if err := json.Unmarshal(out.Chart, &spec); err != nil {
		t.Fatal(err)
	}
	if len(spec.Series) != 1 || spec.Series[0].Name != "AAPL" {
		t.Fatalf("unexpected chart series %+v", spec.Series)
	}
	// Provider sends newest first; the chart must run oldest to newest.
	if spec.Series[0].X[0] != "2024-01-02" {
		t.Errorf("expected ascending dates, got %v", spec.Series[0].X)
	}

	state := conversation.NewState("t1")
	out.Apply(state)
	if len(state.Chart) == 0 {
		t.Error("apply did not store the chart")
	}
}

func TestCompareSkipsFailingTicker(t *testing.T) {
	srv := priceServer(t, map[string]string{
		"AAPL": `{"symbol":"AAPL","historical":[{"date":"2024-01-02","close":185.0},{"date":"2024-01-01","close":180.0}]}`,
		"GOOG": `{"symbol":"GOOG","historical":[{"date":"2024-01-02","close":140.0},{"date":"2024-01-01","close":138.0}]}`,
	})
	defer srv.Close()

	tool := NewCompare(marketdata.New(marketdata.WithBaseURL(srv.URL), marketdata.WithAPIKey("k")), nil)
	out, err := tool.Run(context.Background(), &CompareInput{Tickers: []string{"aapl", "goog", "zzzz"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Skipped) != 1 || out.Skipped[0] != "ZZZZ" {
		t.Errorf("expected ZZZZ skipped, got %v", out.Skipped)
	}
	var spec charting.Spec
	if err := json.Unmarshal(out.Chart, &spec); err != nil {
		t.Fatal(err)
	}
	if len(spec.Series) != 2 {
		t.Fatalf("expected 2 chart series, got %d", len(spec.Series))
	}
	if spec.Series[0].Y[0] != 100 {
		t.Errorf("series must be rebased to 100, got %v", spec.Series[0].Y)
	}

	state := conversation.NewState("t1")
	out.Apply(state)
	if len(state.Tickers) != 3 {
		t.Errorf("comparison set must record all requested tickers, got %v", state.Tickers)
	}
	if state.Comparison == nil || state.Comparison.Metric != "price" {
		t.Errorf("unexpected comparison context %+v", state.Comparison)
	}
}

func TestCompareAllFailing(t *testing.T) {
	srv := priceServer(t, nil)
	defer srv.Close()

	tool := NewCompare(marketdata.New(marketdata.WithBaseURL(srv.URL), marketdata.WithAPIKey("k")), nil)
	_, err := tool.Run(context.Background(), &CompareInput{Tickers: []string{"ZZZZ", "YYYY"}})
	if err == nil {
		t.Fatal("expected error when every ticker fails")
	}
	if fault.KindOf(err) != fault.NotFound {
		t.Errorf("expected not_found, got %v", fault.KindOf(err))
	}
	if !strings.Contains(err.Error(), "ZZZZ") {
		t.Errorf("error should name the tickers, got %q", err)
	}
}

func TestCompareResolveExtendsFromState(t *testing.T) {
	state := conversation.NewState("t1")
	state.Tickers = []string{"AAPL", "GOOG"}
	state.Comparison = &conversation.Comparison{Metric: "price", Period: 90}

	in := &CompareInput{}
	in.Resolve(state)
	if len(in.Tickers) != 2 || in.PeriodDays != 90 {
		t.Errorf("state should fill omitted arguments, got %+v", in)
	}

	explicit := &CompareInput{Tickers: []string{"AAPL", "GOOG", "META"}}
	explicit.Resolve(state)
	if len(explicit.Tickers) != 3 {
		t.Errorf("explicit tickers must win over state, got %v", explicit.Tickers)
	}
}
