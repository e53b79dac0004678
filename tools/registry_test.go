package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/fault"
	"github.com/quarkbyte/finagent/schema"
)

type stubInput struct {
	schema.Base
	Ticker string `json:"ticker" validate:"required"`
}

func (in *stubInput) Resolve(state *conversation.State) {
	if in.Ticker == "" {
		in.Ticker = state.Ticker
	}
}

type stubOutput struct {
	schema.Base
	Ticker string `json:"ticker"`
}

func (out *stubOutput) Apply(state *conversation.State) {
	state.CompanyName = "seen:" + out.Ticker
}

func (out *stubOutput) Summary() string {
	return "[Looked up " + out.Ticker + ".]"
}

type stubTool struct {
	Config
}

func newStubTool() *stubTool {
	t := new(stubTool)
	t.SetTitle("stub_lookup")
	t.SetDescription("looks up a ticker for registry tests")
	return t
}

func (t *stubTool) Run(_ context.Context, in *stubInput) (*stubOutput, error) {
	return &stubOutput{Ticker: in.Ticker}, nil
}

func newTestRegistry() *Registry {
	r := NewRegistry()
	Register(r, newStubTool())
	return r
}

func TestRegisterAndLookup(t *testing.T) {
	r := newTestRegistry()
	h, ok := r.Lookup("stub_lookup")
	if !ok {
		t.Fatal("expected handler to be registered")
	}
	if h.Name() != "stub_lookup" {
		t.Errorf("unexpected name %q", h.Name())
	}
	if _, ok := r.Lookup("unknown_tool"); ok {
		t.Error("expected lookup miss for unknown tool")
	}
	if names := r.Names(); len(names) != 1 || names[0] != "stub_lookup" {
		t.Errorf("unexpected names %v", names)
	}
}

func TestExplicitArgumentsWin(t *testing.T) {
	r := newTestRegistry()
	h, _ := r.Lookup("stub_lookup")
	state := conversation.NewState("t1")
	state.Ticker = "AAPL"
	content, err := h.Run(context.Background(), state, json.RawMessage(`{"ticker":"META"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(content, "META") {
		t.Errorf("explicit argument should win over state, got %q", content)
	}
}

func TestStateFillsMissingArguments(t *testing.T) {
	r := newTestRegistry()
	h, _ := r.Lookup("stub_lookup")
	state := conversation.NewState("t1")
	state.Ticker = "XOM"
	content, err := h.Run(context.Background(), state, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(content, "XOM") {
		t.Errorf("state should fill missing argument, got %q", content)
	}
	if state.CompanyName != "seen:XOM" {
		t.Errorf("output should merge into state, got %q", state.CompanyName)
	}
}

func TestUnresolvableInputFailsValidation(t *testing.T) {
	r := newTestRegistry()
	h, _ := r.Lookup("stub_lookup")
	state := conversation.NewState("t1")
	_, err := h.Run(context.Background(), state, json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if kind := fault.KindOf(err); kind != fault.Validation {
		t.Errorf("expected validation kind, got %v", kind)
	}
}

func TestMalformedArguments(t *testing.T) {
	r := newTestRegistry()
	h, _ := r.Lookup("stub_lookup")
	state := conversation.NewState("t1")
	_, err := h.Run(context.Background(), state, json.RawMessage(`{"ticker":`))
	if err == nil {
		t.Fatal("expected error for malformed arguments")
	}
	if kind := fault.KindOf(err); kind != fault.Validation {
		t.Errorf("expected validation kind, got %v", kind)
	}
}

func TestCatalogListsTools(t *testing.T) {
	r := newTestRegistry()
	catalog := NewCatalog(r)
	if catalog.Title() != "Available tools" {
		t.Errorf("unexpected title %q", catalog.Title())
	}
	info := catalog.Info()
	if !strings.Contains(info, "stub_lookup") || !strings.Contains(info, "registry tests") {
		t.Errorf("catalog should list the tool, got %q", info)
	}
}
