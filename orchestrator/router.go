package orchestrator

import (
	"github.com/quarkbyte/finagent/conversation"
)

// Step is the next node of the turn loop.
type Step string

const (
	// StepDecide asks the model for the next decision.
	StepDecide Step = "decide"
	// StepDispatch executes the pending tool requests of the active batch.
	StepDispatch Step = "dispatch"
	// StepRisk through StepProfile render the matching finalizer.
	StepRisk    Step = "finalize_risk"
	StepChart   Step = "finalize_chart"
	StepTable   Step = "finalize_table"
	StepNews    Step = "finalize_news"
	StepProfile Step = "finalize_profile"
	// StepError renders the recorded failure.
	StepError Step = "handle_error"
	// StepEnd terminates the turn on a decision with no tool requests.
	StepEnd Step = "end"
)

// Routes maps the name of a batch's last tool request to the step that
// renders the reply. Names absent from the table loop back to the decision
// engine: their results are intermediate context, not displayable output.
type Routes map[string]Step

// DefaultRoutes covers the default tool set.
func DefaultRoutes() Routes {
	return Routes{
		"resolve_ticker":             StepDecide,
		"fetch_fundamentals":         StepDecide,
		"preprocess":                 StepDecide,
		"search_reference_document":  StepDecide,
		"assess_risk":                StepRisk,
		"build_chart":                StepChart,
		"compare_price_series":       StepChart,
		"compare_fundamental_series": StepChart,
		"fetch_price_series":         StepChart,
		"fetch_raw_table":            StepTable,
		"fetch_processed_table":      StepTable,
		"fetch_news":                 StepNews,
		"fetch_profile":              StepProfile,
	}
}

// Route picks the next step from the state alone. It never mutates the
// state, so calling it twice in a row yields the same step.
//
// Priority: a recorded failure beats everything; then the shape of the last
// message; then batch progress. Only when a batch has fully executed does
// the name of its last request choose a finalizer.
func Route(state *conversation.State, routes Routes) Step {
	if state.LastError != "" {
		return StepError
	}
	if last := state.LastMessage(); last != nil && last.Kind == conversation.KindDecision {
		if last.Terminal() {
			return StepEnd
		}
		return StepDispatch
	}
	if decision := state.CurrentDecision(); decision != nil && len(decision.Requests) > 0 {
		if len(state.BatchResults()) < len(decision.Requests) {
			return StepDispatch
		}
		name := decision.Requests[len(decision.Requests)-1].Name
		if step, ok := routes[name]; ok {
			return step
		}
		return StepDecide
	}
	return StepDecide
}
