package ticker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/fault"
	"github.com/quarkbyte/finagent/marketdata"
)

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "Exxon Mobil" {
			t.Errorf("unexpected query %q", got)
		}
		w.Write([]byte(`[{"symbol":"XOM","name":"Exxon Mobil Corporation","exchangeShortName":"NYSE"}]`))
	}))
	defer srv.Close()

	tool := New(marketdata.New(marketdata.WithBaseURL(srv.URL), marketdata.WithAPIKey("k")))
	out, err := tool.Run(context.Background(), NewInput("Exxon Mobil"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Ticker != "XOM" || out.CompanyName != "Exxon Mobil Corporation" {
		t.Errorf("unexpected output %+v", out)
	}

	state := conversation.NewState("t1")
	out.Apply(state)
	if state.Ticker != "XOM" || state.CompanyName != "Exxon Mobil Corporation" {
		t.Errorf("apply did not pin listing, state %+v", state)
	}
}

func TestRunNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tool := New(marketdata.New(marketdata.WithBaseURL(srv.URL), marketdata.WithAPIKey("k")))
	_, err := tool.Run(context.Background(), NewInput("No Such Company"))
	if err == nil {
		t.Fatal("expected error")
	}
	if fault.KindOf(err) != fault.NotFound {
		t.Errorf("expected not_found, got %v", fault.KindOf(err))
	}
}

func TestResolveFallsBackToState(t *testing.T) {
	state := conversation.NewState("t1")
	state.CompanyName = "Exxon Mobil"
	in := NewInput("")
	in.Resolve(state)
	if in.CompanyName != "Exxon Mobil" {
		t.Errorf("expected state fallback, got %q", in.CompanyName)
	}
}
