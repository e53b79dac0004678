package orchestrator

import (
	"fmt"
	"log/slog"

	"github.com/quarkbyte/finagent/conversation"
)

// ErrorHandler renders the turn's recorded failure as one coherent reply:
// an apology, the cause inside a fenced block for diagnosability, and an
// invitation to retry. It consumes LastError so a failure is reported to
// the user exactly once, and it never fails itself.
type ErrorHandler struct {
	logger *slog.Logger
}

func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{logger: logger}
}

func (h *ErrorHandler) Handle(state *conversation.State) {
	cause := state.LastError
	if cause == "" {
		cause = "an unknown error occurred"
	}
	h.logger.Warn("turn failed", "thread_id", state.ThreadID, "error", cause)

	text := fmt.Sprintf(
		"Sorry, I could not complete that request.\n\n```\n%s\n```\n\nPlease try again, or rephrase the request. If you were analyzing a company, double-check the ticker symbol.",
		cause,
	)
	state.LastError = ""
	state.Append(conversation.NewFinal(text, nil))
}
