package orchestrator

import (
	"fmt"
	"strings"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/prompt"
)

// stateProviders derives the ephemeral prompt context from the state: the
// loaded dataset's columns, then either the comparison set or the single
// active ticker. The model sees real column names and the carried-over
// tickers instead of guessing them.
func stateProviders(state *conversation.State) []prompt.ContextProvider {
	var out []prompt.ContextProvider
	if t := state.Dataset(); t != nil && t.Len() > 0 {
		out = append(out, &datasetContext{table: t, processed: state.ProcessedDataset != nil})
	}
	if len(state.Tickers) > 1 {
		out = append(out, &comparisonContext{tickers: state.Tickers, comparison: state.Comparison})
	} else if state.Ticker != "" {
		out = append(out, &tickerContext{ticker: state.Ticker, company: state.CompanyName})
	}
	return out
}

type datasetContext struct {
	table     *dataset.Table
	processed bool
}

var _ prompt.ContextProvider = (*datasetContext)(nil)

func (c *datasetContext) Title() string { return "Loaded dataset" }

func (c *datasetContext) Info() string {
	kind := "raw"
	if c.processed {
		kind = "processed"
	}
	return fmt.Sprintf("A %s fundamentals dataset with %d rows is loaded. Columns: %s.",
		kind, c.table.Len(), strings.Join(c.table.Columns, ", "))
}

type comparisonContext struct {
	tickers    []string
	comparison *conversation.Comparison
}

var _ prompt.ContextProvider = (*comparisonContext)(nil)

func (c *comparisonContext) Title() string { return "Active comparison" }

func (c *comparisonContext) Info() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The user is comparing: %s. Keep every one of these tickers when extending the comparison.", strings.Join(c.tickers, ", "))
	if c.comparison != nil && c.comparison.Metric != "" {
		fmt.Fprintf(&sb, " Last comparison metric: %s", c.comparison.Metric)
		if c.comparison.Period > 0 {
			fmt.Fprintf(&sb, " over %d days", c.comparison.Period)
		}
		sb.WriteString(".")
	}
	return sb.String()
}

type tickerContext struct {
	ticker  string
	company string
}

var _ prompt.ContextProvider = (*tickerContext)(nil)

func (c *tickerContext) Title() string { return "Active ticker" }

func (c *tickerContext) Info() string {
	if c.company != "" {
		return fmt.Sprintf("The conversation is about %s (%s). Unqualified follow-ups refer to it.", c.ticker, c.company)
	}
	return fmt.Sprintf("The conversation is about %s. Unqualified follow-ups refer to it.", c.ticker)
}
