// Package conversation holds the per-thread state the orchestrator reads and
// mutates: the message log, the analysis artifacts, and their persistence.
package conversation

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/xid"

	"github.com/quarkbyte/finagent/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// NewRequestID returns a new tool request ID.
func NewRequestID() string {
	return uuid.NewString()
}

// Kind discriminates message variants in the log.
type Kind = string

const (
	// KindUserTurn is a raw user utterance.
	KindUserTurn Kind = "user_turn"
	// KindDecision is a model decision: optional text plus the tool batch.
	// An empty batch means the text is the final reply.
	KindDecision Kind = "assistant_decision"
	// KindToolResult is the outcome of one tool request.
	KindToolResult Kind = "tool_result"
	// KindFinal is a rendered assistant reply, possibly with attachments.
	KindFinal Kind = "assistant_final"
)

// ToolRequest is one entry of a decision batch. Slice order within the
// decision is the execution order.
type ToolRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolResult is the recorded outcome of one request.
type ToolResult struct {
	RequestID string `json:"request_id"`
	Name      string `json:"name"`
	Succeeded bool   `json:"succeeded"`
	Content   string `json:"content,omitempty"`
}

// Message is one entry of the append-only log. Exactly the fields of its
// Kind are set.
type Message struct {
	Kind   Kind   `json:"kind"`
	TurnID string `json:"turn_id,omitempty"`
	// Text is the user utterance, the decision commentary, or the final
	// reply, depending on Kind.
	Text string `json:"text,omitempty"`
	// Requests is the tool batch of a decision.
	Requests []ToolRequest `json:"requests,omitempty"`
	// Result is the payload of a tool_result message.
	Result *ToolResult `json:"result,omitempty"`
	// Attachments ride on final replies.
	Attachments []schema.Attachment `json:"attachments,omitempty"`
}

// NewUserTurn builds a user message.
func NewUserTurn(text string) Message {
	return Message{Kind: KindUserTurn, Text: text}
}

// NewDecision builds a decision message.
func NewDecision(text string, requests []ToolRequest) Message {
	return Message{Kind: KindDecision, Text: text, Requests: requests}
}

// NewToolResult builds a tool result message.
func NewToolResult(res ToolResult) Message {
	return Message{Kind: KindToolResult, Result: &res}
}

// NewFinal builds a final reply message.
func NewFinal(text string, attachments []schema.Attachment) Message {
	return Message{Kind: KindFinal, Text: text, Attachments: attachments}
}

// Terminal reports whether a decision carries no tool requests.
func (m Message) Terminal() bool {
	return m.Kind == KindDecision && len(m.Requests) == 0
}
