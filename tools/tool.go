package tools

import (
	"context"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/schema"
)

// Tool is the typed contract every collaborator implements. Title doubles
// as the wire name the decision model uses in its tool requests.
type Tool[I schema.Schema, O schema.Schema] interface {
	Title() string
	Description() string
	Run(context.Context, *I) (*O, error)
}

// Binder lets an input fill fields the decision left empty from the
// conversation state. Explicit request arguments are bound first and are
// never overwritten here; the state already carries everything earlier
// requests in the batch merged into it.
type Binder interface {
	Resolve(*conversation.State)
}

// Applier merges a tool output into the conversation state so later
// requests in the same batch and future turns can consume it.
type Applier interface {
	Apply(*conversation.State)
}

// Summarizer shortens a tool output into the transcript line the decision
// model reads back. Outputs without it are serialized whole.
type Summarizer interface {
	Summary() string
}
