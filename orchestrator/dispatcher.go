package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/tools"
)

// Dispatcher executes the pending requests of the active batch, strictly in
// request order. Each outcome is appended as a tool result before the next
// request runs, so later requests observe everything earlier ones merged
// into the state.
//
// A failing request never aborts the batch: it records a failed result,
// overwrites LastError (last failure wins) and execution moves on. Only
// context cancellation stops the batch early, leaving the appended results
// in place.
type Dispatcher struct {
	registry *tools.Registry
	logger   *slog.Logger
}

// NewDispatcher wires the registry the decision engine advertised.
func NewDispatcher(registry *tools.Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Dispatch runs every request of the active decision that has no result
// yet. No active decision is a no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, state *conversation.State) {
	for _, req := range state.PendingRequests() {
		if ctx.Err() != nil {
			return
		}
		handler, ok := d.registry.Lookup(req.Name)
		if !ok {
			d.record(state, req, false, fmt.Sprintf("tool %s failed: unknown tool", req.Name))
			continue
		}
		content, err := handler.Run(ctx, state, req.Arguments)
		if err != nil {
			d.record(state, req, false, fmt.Sprintf("tool %s failed: %v", req.Name, err))
			continue
		}
		d.record(state, req, true, content)
	}
}

func (d *Dispatcher) record(state *conversation.State, req conversation.ToolRequest, succeeded bool, content string) {
	state.Append(conversation.NewToolResult(conversation.ToolResult{
		RequestID: req.ID,
		Name:      req.Name,
		Succeeded: succeeded,
		Content:   content,
	}))
	if succeeded {
		d.logger.Debug("tool executed", "thread_id", state.ThreadID, "tool", req.Name)
		return
	}
	state.LastError = content
	d.logger.Warn("tool failed", "thread_id", state.ThreadID, "tool", req.Name, "error", content)
}
