package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/fault"
	"github.com/quarkbyte/finagent/llm"
	"github.com/quarkbyte/finagent/prompt/cot"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	Tool      string         `json:"tool" jsonschema:"title=tool,description=Name of the tool to call, exactly as listed in the catalog." validate:"required"`
	Arguments map[string]any `json:"arguments,omitempty" jsonschema:"title=arguments,description=Arguments for the tool as a JSON object. Omit arguments the conversation already provides."`
}

// Decision is the model's plan for one hop: commentary for the user plus
// the tool batch to execute, in order. An empty batch makes the reply final.
type Decision struct {
	schema.Base
	Reply     string     `json:"reply" jsonschema:"title=reply,description=What to tell the user. The final answer when no tools are requested."`
	ToolCalls []ToolCall `json:"tool_calls,omitempty" jsonschema:"title=tool_calls,description=Tools to execute before answering, in execution order." validate:"dive"`
}

// DecisionEngine asks the model what to do next and records the outcome as
// a decision message. Model failures never escape: they are recorded on the
// state for the error handler, because a broken model must produce an
// apology, not a dropped turn.
type DecisionEngine struct {
	completer       llm.Completer
	catalog         *tools.Catalog
	background      []string
	steps           []string
	outputInstructs []string
	logger          *slog.Logger
}

// DecisionOption configures the engine.
type DecisionOption func(*DecisionEngine)

// WithPersona replaces the default identity lines of the system prompt.
func WithPersona(background []string) DecisionOption {
	return func(e *DecisionEngine) {
		e.background = background
	}
}

// WithSteps replaces the default internal-steps lines of the system prompt.
func WithSteps(steps []string) DecisionOption {
	return func(e *DecisionEngine) {
		e.steps = steps
	}
}

// WithDecisionLogger routes engine logging.
func WithDecisionLogger(logger *slog.Logger) DecisionOption {
	return func(e *DecisionEngine) {
		e.logger = logger
	}
}

// NewDecisionEngine wires the model client to the tool catalog.
func NewDecisionEngine(completer llm.Completer, registry *tools.Registry, opts ...DecisionOption) *DecisionEngine {
	ret := &DecisionEngine{
		completer:       completer,
		catalog:         tools.NewCatalog(registry),
		background:      defaultBackground(),
		steps:           defaultSteps(),
		outputInstructs: defaultOutputInstructs(),
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func defaultBackground() []string {
	return []string{
		"- You are Stella, an equity analysis assistant for retail investors.",
		"- You answer questions about listed companies using fundamental data, a financial distress model, charts, news and company profiles.",
		"- You never invent figures. Every number you quote comes from a tool result in this conversation.",
	}
}

func defaultSteps() []string {
	return []string{
		"- Decide whether the request needs tools. Greetings and questions about your capabilities get a direct reply with no tool calls.",
		"- When the user names a company without a ticker symbol, resolve the ticker first.",
		"- A risk analysis is fetch_fundamentals, then preprocess, then assess_risk. Request them together in one batch.",
		"- For comparisons pass the complete ticker set, including tickers carried over from earlier turns.",
		"- Use search_reference_document for questions about the methodology, the metrics or how the analysis works.",
		"- Prefer one batch of tool calls per user request over many small round trips.",
	}
}

func defaultOutputInstructs() []string {
	return []string{
		"- Set reply to what you would say to the user, and list every tool invocation in tool_calls.",
		"- Leave tool_calls empty when you can answer directly; reply is then the final answer.",
	}
}

// systemPrompt assembles the static instructions, the tool catalog and the
// state-derived context for one call. A fresh generator per call keeps the
// engine safe for concurrent threads.
func (e *DecisionEngine) systemPrompt(state *conversation.State) string {
	gen := cot.New(
		cot.WithBackground(e.background),
		cot.WithSteps(e.steps),
		cot.WithOutputInstructs(e.outputInstructs),
		cot.WithContextProviders(e.catalog),
	)
	gen.AddContextProviders(stateProviders(state)...)
	return gen.Generate()
}

// Decide runs one decision hop: build the prompt, call the model, append
// the decision message and point State.Decision at it. The returned usage
// is nil when the provider reported none.
func (e *DecisionEngine) Decide(ctx context.Context, state *conversation.State) *llm.Usage {
	const op = "orchestrator.decide"
	messages := make([]llm.Message, 0, state.MessageCount()+1)
	messages = append(messages, llm.Message{Role: llm.SystemRole, Content: e.systemPrompt(state)})
	messages = append(messages, transcript(state)...)

	decision := new(Decision)
	var resp llm.Response
	if err := e.completer.CreateStructured(ctx, messages, decision, &resp); err != nil {
		state.LastError = fault.New(fault.ModelUnavailable, op, err).Error()
		e.logger.Error("decision call failed", "thread_id", state.ThreadID, "error", err)
		return resp.Usage
	}

	requests := make([]conversation.ToolRequest, 0, len(decision.ToolCalls))
	for _, call := range decision.ToolCalls {
		if call.Tool == "" {
			continue
		}
		var args json.RawMessage
		if len(call.Arguments) > 0 {
			bs, err := json.Marshal(call.Arguments)
			if err != nil {
				state.LastError = fault.Errorf(fault.Defect, op, "unencodable arguments for %s: %v", call.Tool, err).Error()
				return resp.Usage
			}
			args = bs
		}
		requests = append(requests, conversation.ToolRequest{
			ID:        conversation.NewRequestID(),
			Name:      call.Tool,
			Arguments: args,
		})
	}

	state.Append(conversation.NewDecision(decision.Reply, requests))
	state.Decision = state.MessageCount() - 1
	e.logger.Debug("decision recorded",
		"thread_id", state.ThreadID,
		"requests", len(requests),
		"terminal", len(requests) == 0,
	)
	return resp.Usage
}

// transcript renders the message log for the model. Tool results come back
// as user-role context because the structured-output path owns the
// assistant role.
func transcript(state *conversation.State) []llm.Message {
	msgs := make([]llm.Message, 0, state.MessageCount())
	for _, m := range state.Messages {
		switch m.Kind {
		case conversation.KindUserTurn:
			msgs = append(msgs, llm.Message{Role: llm.UserRole, Content: m.Text})
		case conversation.KindDecision:
			var sb strings.Builder
			sb.WriteString(m.Text)
			for _, req := range m.Requests {
				fmt.Fprintf(&sb, "\n[tool call] %s %s", req.Name, string(req.Arguments))
			}
			if content := strings.TrimSpace(sb.String()); content != "" {
				msgs = append(msgs, llm.Message{Role: llm.AssistantRole, Content: content})
			}
		case conversation.KindToolResult:
			if m.Result == nil {
				continue
			}
			status := "ok"
			if !m.Result.Succeeded {
				status = "failed"
			}
			content := fmt.Sprintf("[tool result] %s (%s): %s", m.Result.Name, status, m.Result.Content)
			msgs = append(msgs, llm.Message{Role: llm.UserRole, Content: content})
		case conversation.KindFinal:
			msgs = append(msgs, llm.Message{Role: llm.AssistantRole, Content: m.Text})
		}
	}
	return msgs
}
