package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

type echoInput struct {
	schema.Base
	Text string `json:"text"`
}

type echoOutput struct {
	schema.Base
	Text string `json:"text"`
}

func (out *echoOutput) Summary() string { return out.Text }

// flakyTool fails on the texts listed in fail.
type flakyTool struct {
	tools.Config
	fail map[string]string
	ran  []string
}

func newFlakyTool(fail map[string]string) *flakyTool {
	t := &flakyTool{fail: fail}
	t.SetTitle("echo")
	t.SetDescription("echoes its argument")
	return t
}

func (t *flakyTool) Run(_ context.Context, in *echoInput) (*echoOutput, error) {
	t.ran = append(t.ran, in.Text)
	if msg, ok := t.fail[in.Text]; ok {
		return nil, errors.New(msg)
	}
	return &echoOutput{Text: in.Text}, nil
}

func dispatchFixture(fail map[string]string, texts ...string) (*Dispatcher, *flakyTool, *conversation.State) {
	registry := tools.NewRegistry()
	tool := newFlakyTool(fail)
	tools.Register(registry, tool)

	state := conversation.NewState("t1")
	state.Append(conversation.NewUserTurn("go"))
	reqs := make([]conversation.ToolRequest, 0, len(texts))
	for _, text := range texts {
		reqs = append(reqs, conversation.ToolRequest{
			ID:        conversation.NewRequestID(),
			Name:      "echo",
			Arguments: []byte(`{"text":"` + text + `"}`),
		})
	}
	state.Append(conversation.NewDecision("", reqs))
	state.Decision = state.MessageCount() - 1
	return NewDispatcher(registry, nil), tool, state
}

func TestDispatchOneResultPerRequestInOrder(t *testing.T) {
	d, tool, state := dispatchFixture(nil, "a", "b", "c")
	d.Dispatch(context.Background(), state)

	decision := state.CurrentDecision()
	var results []*conversation.ToolResult
	for _, m := range state.Messages {
		if m.Kind == conversation.KindToolResult {
			results = append(results, m.Result)
		}
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.RequestID != decision.Requests[i].ID {
			t.Errorf("result %d correlates to request %s, want %s", i, res.RequestID, decision.Requests[i].ID)
		}
	}
	if strings.Join(tool.ran, "") != "abc" {
		t.Errorf("requests must run in order, got %v", tool.ran)
	}
	if state.LastError != "" {
		t.Errorf("no failure expected, got %q", state.LastError)
	}
}

func TestDispatchContainsFailuresLastWins(t *testing.T) {
	d, tool, state := dispatchFixture(map[string]string{
		"b": "b exploded",
		"d": "d exploded",
	}, "a", "b", "c", "d", "e")
	d.Dispatch(context.Background(), state)

	if strings.Join(tool.ran, "") != "abcde" {
		t.Errorf("a failing request must not stop the batch, got %v", tool.ran)
	}
	var failed, ok int
	for _, m := range state.Messages {
		if m.Kind != conversation.KindToolResult {
			continue
		}
		if m.Result.Succeeded {
			ok++
		} else {
			failed++
		}
	}
	if ok != 3 || failed != 2 {
		t.Errorf("want 3 successes and 2 failures, got %d/%d", ok, failed)
	}
	if !strings.Contains(state.LastError, "d exploded") {
		t.Errorf("last failure wins, got %q", state.LastError)
	}
	if strings.Contains(state.LastError, "b exploded") {
		t.Errorf("earlier failure should be overwritten, got %q", state.LastError)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	d, _, state := dispatchFixture(nil)
	decision := state.CurrentDecision()
	decision.Requests = append(decision.Requests, conversation.ToolRequest{
		ID:   conversation.NewRequestID(),
		Name: "no_such_tool",
	})
	d.Dispatch(context.Background(), state)

	last := state.LastMessage()
	if last.Kind != conversation.KindToolResult || last.Result.Succeeded {
		t.Fatal("unknown tool should yield a failed result")
	}
	if !strings.Contains(state.LastError, "unknown tool") {
		t.Errorf("unexpected error %q", state.LastError)
	}
}

func TestDispatchSkipsCompletedRequests(t *testing.T) {
	d, tool, state := dispatchFixture(nil, "a", "b")
	decision := state.CurrentDecision()
	// First request already has a result, as after a resumed turn.
	state.Append(conversation.NewToolResult(conversation.ToolResult{
		RequestID: decision.Requests[0].ID,
		Name:      "echo",
		Succeeded: true,
		Content:   "a",
	}))
	d.Dispatch(context.Background(), state)

	if strings.Join(tool.ran, "") != "b" {
		t.Errorf("only the pending request should run, got %v", tool.ran)
	}
}

func TestDispatchStopsOnCancellation(t *testing.T) {
	d, tool, state := dispatchFixture(nil, "a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Dispatch(ctx, state)

	if len(tool.ran) != 0 {
		t.Errorf("cancelled dispatch should not run requests, got %v", tool.ran)
	}
	if got := len(state.PendingRequests()); got != 2 {
		t.Errorf("requests should stay pending for a retry, got %d pending", got)
	}
}
