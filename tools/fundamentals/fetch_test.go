package fundamentals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/marketdata"
)

const keyMetricsPayload = `[
 {"symbol":"XOM","date":"2022-12-31","calendarYear":"2022","period":"FY","marketCap":466000000000,
  "netIncomePerShare":13.26,"revenuePerShare":97.54,"peRatio":8.3,"pbRatio":2.3,"roe":0.28,"roic":0.2,
  "debtToEquity":0.21,"earningsYield":0.12,"freeCashFlowPerShare":14.9,"dividendYield":0.032,"grahamNumber":170.2},
 {"symbol":"XOM","date":"2021-12-31","calendarYear":"2021","period":"FY","marketCap":259000000000,
  "netIncomePerShare":5.39,"revenuePerShare":67.56,"peRatio":11.3,"pbRatio":1.5,"roe":0.13,"roic":0.09,
  "debtToEquity":0.28,"earningsYield":0.088,"freeCashFlowPerShare":8.5,"dividendYield":0.057,"grahamNumber":96.4}
]`

func TestFetchWhitelistsColumns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/key-metrics/XOM" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(keyMetricsPayload))
	}))
	defer srv.Close()

	tool := NewFetch(marketdata.New(marketdata.WithBaseURL(srv.URL), marketdata.WithAPIKey("k")))
	out, err := tool.Run(context.Background(), NewFetchInput("XOM"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Ticker != "XOM" {
		t.Errorf("unexpected ticker %q", out.Ticker)
	}
	if out.Table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.Table.Len())
	}
	if got, want := len(out.Table.Columns), len(rawColumns); got != want {
		t.Errorf("expected %d whitelisted columns, got %d: %v", want, got, out.Table.Columns)
	}
	if out.Table.ColumnIndex("grahamNumber") >= 0 {
		t.Error("non-whitelisted column survived the fetch")
	}
	if out.Table.ColumnIndex("netIncomePerShare") < 0 {
		t.Error("whitelisted column missing from the fetch")
	}
}

func TestFetchApplyInvalidatesProcessed(t *testing.T) {
	state := conversation.NewState("t1")
	state.ProcessedDataset = dataset.New("calendarYear")

	out := &FetchOutput{Ticker: "XOM", Table: dataset.New("calendarYear")}
	out.Apply(state)
	if state.Ticker != "XOM" || state.RawDataset == nil {
		t.Errorf("apply did not pin raw dataset, state %+v", state)
	}
	if state.ProcessedDataset != nil {
		t.Error("fresh raw dataset must invalidate the processed one")
	}
}

func TestFetchResolveFallsBackToState(t *testing.T) {
	state := conversation.NewState("t1")
	state.Ticker = "AAPL"
	in := NewFetchInput("")
	in.Resolve(state)
	if in.Ticker != "AAPL" {
		t.Errorf("expected state fallback, got %q", in.Ticker)
	}
	explicit := NewFetchInput("MSFT")
	explicit.Resolve(state)
	if explicit.Ticker != "MSFT" {
		t.Errorf("explicit argument must win, got %q", explicit.Ticker)
	}
}
