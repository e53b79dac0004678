package orchestrator

import (
	"encoding/json"
	"testing"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/dataset"
)

func dirtyState() *conversation.State {
	state := conversation.NewState("t1")
	state.Ticker = "XOM"
	state.Tickers = []string{"AAPL", "GOOG"}
	state.CompanyName = "Exxon Mobil"
	state.RawDataset = dataset.New("calendarYear")
	state.ProcessedDataset = dataset.New("calendarYear")
	state.Comparison = &conversation.Comparison{Metric: "price", Period: 365}
	state.RiskVerdict = conversation.VerdictHighRisk
	state.Chart = json.RawMessage(`{"title":"x"}`)
	state.LastError = "tool x failed"
	state.Append(conversation.NewUserTurn("hi"))
	state.Decision = 0
	return state
}

func TestCleanClearsEphemeralKeepsContext(t *testing.T) {
	state := dirtyState()
	Clean(state)

	if state.RiskVerdict != "" || state.Chart != nil || state.LastError != "" || state.Decision != -1 {
		t.Errorf("ephemeral fields should be cleared: %+v", state)
	}
	if state.Ticker != "XOM" || state.CompanyName != "Exxon Mobil" || len(state.Tickers) != 2 {
		t.Error("identity fields must survive")
	}
	if state.RawDataset == nil || state.ProcessedDataset == nil || state.Comparison == nil {
		t.Error("context fields must survive")
	}
	if state.MessageCount() != 1 {
		t.Error("the message log must not be touched")
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	once := dirtyState()
	Clean(once)
	twice := dirtyState()
	Clean(twice)
	Clean(twice)

	a, err := json.Marshal(once)
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(twice)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Errorf("cleaning twice diverged:\n%s\n%s", a, b)
	}
}
