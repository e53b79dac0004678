package orchestrator

import (
	"github.com/quarkbyte/finagent/conversation"
)

// Clean resets the per-turn fields before the state is written back: the
// risk verdict, the chart payload, the recorded error and the active
// decision index. The ticker, comparison set, company name, both datasets
// and the comparison settings survive, so follow-ups like "add META" or
// "now 5 years" resolve against them without refetching. Clean is
// idempotent.
func Clean(state *conversation.State) {
	state.RiskVerdict = ""
	state.Chart = nil
	state.LastError = ""
	state.Decision = -1
}
