package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/llm"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools/profile"
)

// narration is the structured shape the profile prose comes back in.
type narration struct {
	schema.Base
	Text string `json:"text" jsonschema:"title=text,description=The company presentation, a few short paragraphs of plain prose." validate:"required"`
}

// ProfileFinalizer turns raw profile facts into prose through the model.
// The model must label genuinely unknown fields "unknown" instead of
// inventing values, and carry already-localized wording verbatim. When the
// model is unreachable the finalizer falls back to a plain field listing,
// never to an error.
type ProfileFinalizer struct {
	completer llm.Completer
	logger    *slog.Logger
}

func NewProfileFinalizer(completer llm.Completer, logger *slog.Logger) *ProfileFinalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileFinalizer{completer: completer, logger: logger}
}

func (f *ProfileFinalizer) Finalize(ctx context.Context, state *conversation.State) *llm.Usage {
	res := state.BatchResultByTool("fetch_profile")
	if res == nil || !res.Succeeded || res.Content == "" {
		state.Append(conversation.NewFinal("The company profile is not available right now. Please try again.", nil))
		return nil
	}
	var facts profile.Facts
	if err := json.Unmarshal([]byte(res.Content), &facts); err != nil {
		f.logger.Warn("undecodable profile result", "thread_id", state.ThreadID, "error", err)
		state.Append(conversation.NewFinal("The company profile is not available right now. Please try again.", nil))
		return nil
	}

	att := schema.Attachment{Name: "profile", MIME: "application/json", JSON: json.RawMessage(res.Content)}

	messages := []llm.Message{
		{
			Role: llm.SystemRole,
			Content: "Present a company profile to a retail investor in a few short paragraphs. " +
				"Use only the fields provided. For any field that is empty or missing, say it is unknown; never guess or invent a value. " +
				"Some fields may already be written in the user's language; reuse their wording verbatim instead of rephrasing or re-translating them.",
		},
		{
			Role:    llm.UserRole,
			Content: fmt.Sprintf("Profile fields for %s:\n%s", subject(state), res.Content),
		},
	}
	var out narration
	var resp llm.Response
	if err := f.completer.CreateStructured(ctx, messages, &out, &resp); err != nil || strings.TrimSpace(out.Text) == "" {
		if err != nil {
			f.logger.Warn("profile narration failed, falling back to field listing", "thread_id", state.ThreadID, "error", err)
		}
		state.Append(conversation.NewFinal(factsListing(subject(state), facts), []schema.Attachment{att}))
		return resp.Usage
	}
	state.Append(conversation.NewFinal(out.Text, []schema.Attachment{att}))
	return resp.Usage
}

// factsListing is the no-model fallback: every known field on its own line.
func factsListing(who string, facts profile.Facts) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Company profile for %s:\n", who)
	for _, field := range []struct{ label, value string }{
		{"Name", facts.CompanyName},
		{"Sector", facts.Sector},
		{"Industry", facts.Industry},
		{"CEO", facts.CEO},
		{"Website", facts.Website},
		{"Employees", facts.FullTimeEmployees},
		{"Exchange", facts.Exchange},
		{"Country", facts.Country},
	} {
		value := field.value
		if value == "" {
			value = "unknown"
		}
		fmt.Fprintf(&sb, "\n- %s: %s", field.label, value)
	}
	if facts.Description != "" {
		sb.WriteString("\n\n" + facts.Description)
	}
	return sb.String()
}
