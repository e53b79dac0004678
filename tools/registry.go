package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/fault"
	"github.com/quarkbyte/finagent/schema"
)

// Handler is the type-erased form of a registered tool. The dispatcher only
// ever sees handlers; the typed Input/Output shapes stay inside the closure
// built by Register.
type Handler struct {
	name        string
	description string
	run         func(ctx context.Context, state *conversation.State, args json.RawMessage) (string, error)
}

func (h *Handler) Name() string {
	return h.name
}

func (h *Handler) Description() string {
	return h.description
}

// Run binds, validates and executes one tool request against the state.
// The returned string is the transcript content of the tool result.
func (h *Handler) Run(ctx context.Context, state *conversation.State, args json.RawMessage) (string, error) {
	return h.run(ctx, state, args)
}

// Registry holds every tool the dispatcher may execute, keyed by wire name.
type Registry struct {
	validate *validator.Validate
	handlers map[string]*Handler
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{
		validate: validator.New(),
		handlers: make(map[string]*Handler),
	}
}

func (r *Registry) Lookup(name string) (*Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the wire names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func (r *Registry) Handlers() []*Handler {
	list := make([]*Handler, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.handlers[name])
	}
	return list
}

// Register wires a typed tool into the registry under its Title. Binding
// order inside the handler: the request's explicit arguments fill the input
// first and always win, then Resolve fills whatever the decision left empty
// from the state. Because outputs are merged into the state as soon as each
// request finishes, results from earlier requests in the same batch beat any
// stale persisted value without extra bookkeeping here.
func Register[I schema.Schema, O schema.Schema](r *Registry, tool Tool[I, O]) {
	name := tool.Title()
	h := &Handler{
		name:        name,
		description: tool.Description(),
		run: func(ctx context.Context, state *conversation.State, args json.RawMessage) (string, error) {
			input := new(I)
			if len(args) > 0 && !bytes.Equal(args, []byte("null")) {
				if err := json.Unmarshal(args, input); err != nil {
					return "", fault.Errorf(fault.Validation, name, "malformed arguments: %v", err)
				}
			}
			if binder, ok := any(input).(Binder); ok {
				binder.Resolve(state)
			}
			if err := r.validate.StructCtx(ctx, input); err != nil {
				return "", fault.New(fault.Validation, name, err)
			}
			output, err := tool.Run(ctx, input)
			if err != nil {
				return "", err
			}
			if applier, ok := any(output).(Applier); ok {
				applier.Apply(state)
			}
			if sum, ok := any(output).(Summarizer); ok {
				return sum.Summary(), nil
			}
			return schema.Stringify(*output), nil
		},
	}
	if _, exists := r.handlers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.handlers[name] = h
}

// Catalog renders the registry as a prompt context provider so the decision
// model always sees the current tool set.
type Catalog struct {
	registry *Registry
}

func NewCatalog(registry *Registry) *Catalog {
	return &Catalog{registry: registry}
}

func (c *Catalog) Title() string {
	return "Available tools"
}

func (c *Catalog) Info() string {
	var buf bytes.Buffer
	for _, h := range c.registry.Handlers() {
		fmt.Fprintf(&buf, "- %s: %s\n", h.Name(), h.Description())
	}
	return buf.String()
}
