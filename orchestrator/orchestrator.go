// Package orchestrator runs the per-turn tool loop: decide, dispatch,
// route, finalize, clean. It owns no tool logic and no provider transport;
// everything it needs is injected at construction.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/fault"
	"github.com/quarkbyte/finagent/llm"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

// DefaultMaxHops bounds decision round trips within one turn. Intermediate
// tools loop back to the decision engine, so a confused model could spin
// forever without it.
const DefaultMaxHops = 8

// Reply is what one completed turn hands back to the caller.
type Reply struct {
	Text        string              `json:"text"`
	Attachments []schema.Attachment `json:"attachments,omitempty"`
	Usage       llm.Usage           `json:"usage"`
}

// Orchestrator drives complete turns against persisted thread state.
// Turns on the same thread are serialized; different threads run freely
// in parallel.
type Orchestrator struct {
	store      conversation.Store
	decision   *DecisionEngine
	dispatcher *Dispatcher
	routes     Routes
	risk       *RiskFinalizer
	chart      *ChartFinalizer
	table      *TableFinalizer
	news       *NewsFinalizer
	profile    *ProfileFinalizer
	errors     *ErrorHandler
	maxHops    int
	logger     *slog.Logger

	decisionOpts []DecisionOption

	mtx   sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithRoutes replaces the finalizer routing table.
func WithRoutes(routes Routes) Option {
	return func(o *Orchestrator) {
		o.routes = routes
	}
}

// WithMaxHops bounds decision round trips per turn.
func WithMaxHops(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxHops = n
		}
	}
}

// WithLogger routes orchestrator logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithDecisionOptions forwards options to the decision engine.
func WithDecisionOptions(opts ...DecisionOption) Option {
	return func(o *Orchestrator) {
		o.decisionOpts = append(o.decisionOpts, opts...)
	}
}

// New wires a complete orchestrator. The completer serves both the
// decision step and the profile narration; the registry is the tool set
// the dispatcher may execute and the catalog the model sees.
func New(store conversation.Store, completer llm.Completer, registry *tools.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:   store,
		routes:  DefaultRoutes(),
		maxHops: DefaultMaxHops,
		logger:  slog.Default(),
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.decision = NewDecisionEngine(completer, registry, append(o.decisionOpts, WithDecisionLogger(o.logger))...)
	o.dispatcher = NewDispatcher(registry, o.logger)
	o.risk = NewRiskFinalizer(o.logger)
	o.chart = NewChartFinalizer(o.logger)
	o.table = NewTableFinalizer(o.logger)
	o.news = NewNewsFinalizer(o.logger)
	o.profile = NewProfileFinalizer(completer, o.logger)
	o.errors = NewErrorHandler(o.logger)
	return o
}

// threadLock returns the mutex serializing turns for one thread.
func (o *Orchestrator) threadLock(threadID string) *sync.Mutex {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	l, ok := o.locks[threadID]
	if !ok {
		l = new(sync.Mutex)
		o.locks[threadID] = l
	}
	return l
}

// RunTurn executes one full turn: restore the thread state, append the
// user message, loop router steps until a terminal message exists, clean
// the per-turn fields and write the state back.
//
// Cancellation aborts the loop at the next suspension point. The state is
// still persisted: appended tool results stay, LastError reflects the
// stage reached and the per-turn fields are left in place, so a retried
// turn resumes instead of corrupting the thread.
func (o *Orchestrator) RunTurn(ctx context.Context, threadID, text string) (*Reply, error) {
	lock := o.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	state, err := o.store.Get(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = conversation.NewState(threadID)
		o.logger.Info("new thread", "thread_id", threadID)
	}

	turnID := conversation.NewTurnID()
	turnStart := state.MessageCount()
	state.Append(conversation.NewUserTurn(text))

	usage := new(llm.Usage)
	hops := 0
loop:
	for {
		if err := ctx.Err(); err != nil {
			o.abandon(ctx, state, turnID, turnStart)
			return nil, err
		}
		step := Route(state, o.routes)
		o.logger.Debug("turn step", "thread_id", threadID, "turn_id", turnID, "step", step)
		switch step {
		case StepDecide:
			hops++
			if hops > o.maxHops {
				state.LastError = fault.Errorf(fault.Defect, "orchestrator.turn", "gave up after %d decision rounds", o.maxHops).Error()
				continue
			}
			usage.Merge(o.decision.Decide(ctx, state))
		case StepDispatch:
			o.dispatcher.Dispatch(ctx, state)
		case StepRisk:
			o.risk.Finalize(state)
		case StepChart:
			o.chart.Finalize(state)
		case StepTable:
			o.table.Finalize(state)
		case StepNews:
			o.news.Finalize(state)
		case StepProfile:
			usage.Merge(o.profile.Finalize(ctx, state))
		case StepError:
			o.errors.Handle(state)
		case StepEnd:
			break loop
		}
		if last := state.LastMessage(); last != nil && last.Kind == conversation.KindFinal {
			break
		}
	}

	reply := replyFrom(state, usage)
	stampTurn(state, turnID, turnStart)
	Clean(state)
	if err := o.store.Put(ctx, threadID, state); err != nil {
		return nil, err
	}
	o.logger.Info("turn complete",
		"thread_id", threadID,
		"turn_id", turnID,
		"messages", state.MessageCount()-turnStart,
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
	)
	return reply, nil
}

// abandon persists a cancelled turn without cleaning, so the appended
// results and the recorded stage survive for a retry. The write uses a
// detached context because the caller's one is already dead.
func (o *Orchestrator) abandon(ctx context.Context, state *conversation.State, turnID string, turnStart int) {
	stampTurn(state, turnID, turnStart)
	if err := o.store.Put(context.WithoutCancel(ctx), state.ThreadID, state); err != nil && !errors.Is(err, context.Canceled) {
		o.logger.Error("persisting abandoned turn failed", "thread_id", state.ThreadID, "error", err)
	}
	o.logger.Warn("turn abandoned", "thread_id", state.ThreadID, "turn_id", turnID)
}

// stampTurn tags every message appended during this turn with its id.
func stampTurn(state *conversation.State, turnID string, turnStart int) {
	for i := turnStart; i < len(state.Messages); i++ {
		if state.Messages[i].TurnID == "" {
			state.Messages[i].TurnID = turnID
		}
	}
}

// replyFrom assembles the caller-facing reply from the turn's terminal
// message: a rendered final message when a finalizer or the error handler
// ran, otherwise the terminal decision's own text.
func replyFrom(state *conversation.State, usage *llm.Usage) *Reply {
	reply := &Reply{Usage: *usage}
	last := state.LastMessage()
	if last == nil {
		return reply
	}
	switch last.Kind {
	case conversation.KindFinal:
		reply.Text = last.Text
		reply.Attachments = last.Attachments
	case conversation.KindDecision:
		reply.Text = last.Text
	}
	return reply
}
