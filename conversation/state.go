package conversation

import (
	"encoding/json"

	"github.com/quarkbyte/finagent/dataset"
)

// Verdict is the risk classification of the active ticker.
type Verdict = string

const (
	VerdictHighRisk      Verdict = "high_risk"
	VerdictNoExtremeRisk Verdict = "no_extreme_risk"
)

// Comparison records the settings of the last multi-ticker comparison so a
// follow-up like "add META" can rebuild it. Period is a lookback in
// calendar days; zero means the comparison was not time-windowed.
type Comparison struct {
	Metric string `json:"metric,omitempty"`
	Period int    `json:"period_days,omitempty"`
}

// State is everything known about one conversation thread. Ticker,
// Tickers, CompanyName, the datasets and Comparison survive across turns;
// RiskVerdict, Chart, LastError and Decision live for a single turn.
type State struct {
	ThreadID    string   `json:"thread_id"`
	Ticker      string   `json:"ticker,omitempty"`
	Tickers     []string `json:"tickers,omitempty"`
	CompanyName string   `json:"company_name,omitempty"`

	RawDataset       *dataset.Table `json:"raw_dataset,omitempty"`
	ProcessedDataset *dataset.Table `json:"processed_dataset,omitempty"`
	Comparison       *Comparison    `json:"comparison,omitempty"`

	RiskVerdict Verdict         `json:"risk_verdict,omitempty"`
	Chart       json.RawMessage `json:"chart,omitempty"`
	LastError   string          `json:"last_error,omitempty"`

	// Messages is append-only; insertion order is significant.
	Messages []Message `json:"messages"`
	// Decision is the index of the active decision message, -1 when none.
	Decision int `json:"decision"`
}

// NewState returns a fresh thread state.
func NewState(threadID string) *State {
	return &State{
		ThreadID: threadID,
		Decision: -1,
	}
}

// Append adds a message to the log and returns a pointer to the stored copy.
func (s *State) Append(msg Message) *Message {
	s.Messages = append(s.Messages, msg)
	return &s.Messages[len(s.Messages)-1]
}

// LastMessage returns the newest log entry, nil on an empty log.
func (s *State) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// CurrentDecision resolves the Decision index, nil when no decision is
// active or the index does not point at a decision message.
func (s *State) CurrentDecision() *Message {
	if s.Decision < 0 || s.Decision >= len(s.Messages) {
		return nil
	}
	msg := &s.Messages[s.Decision]
	if msg.Kind != KindDecision {
		return nil
	}
	return msg
}

// BatchResults collects the tool results recorded after the active decision,
// keyed by request ID.
func (s *State) BatchResults() map[string]*ToolResult {
	if s.CurrentDecision() == nil {
		return nil
	}
	out := make(map[string]*ToolResult)
	for i := s.Decision + 1; i < len(s.Messages); i++ {
		if m := &s.Messages[i]; m.Kind == KindToolResult && m.Result != nil {
			out[m.Result.RequestID] = m.Result
		}
	}
	return out
}

// BatchResultByTool returns the newest result in the active batch produced
// by the named tool, nil when absent.
func (s *State) BatchResultByTool(name string) *ToolResult {
	var found *ToolResult
	if s.CurrentDecision() == nil {
		return nil
	}
	for i := s.Decision + 1; i < len(s.Messages); i++ {
		if m := &s.Messages[i]; m.Kind == KindToolResult && m.Result != nil && m.Result.Name == name {
			found = m.Result
		}
	}
	return found
}

// PendingRequests returns the active decision's requests that have no
// recorded result yet, in execution order.
func (s *State) PendingRequests() []ToolRequest {
	decision := s.CurrentDecision()
	if decision == nil {
		return nil
	}
	done := s.BatchResults()
	var pending []ToolRequest
	for _, req := range decision.Requests {
		if _, ok := done[req.ID]; !ok {
			pending = append(pending, req)
		}
	}
	return pending
}

// Dataset returns the preferred table for display and prompting: the
// processed dataset when present, the raw one otherwise.
func (s *State) Dataset() *dataset.Table {
	if s.ProcessedDataset != nil {
		return s.ProcessedDataset
	}
	return s.RawDataset
}

// MessageCount returns the log length.
func (s *State) MessageCount() int {
	return len(s.Messages)
}
