package orchestrator

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools/news"
)

// Finalizers render the turn's last tool output as the user-facing reply.
// They read the state, never mutate the carried context, and degrade to an
// apologetic message instead of failing: a finalizer that cannot render has
// nothing useful to throw.

// subject names the company under discussion for reply text.
func subject(state *conversation.State) string {
	switch {
	case state.CompanyName != "":
		return state.CompanyName
	case state.Ticker != "":
		return state.Ticker
	}
	return "the company"
}

// lastRequestName returns the name of the active batch's final request,
// which is what routed the turn here.
func lastRequestName(state *conversation.State) string {
	decision := state.CurrentDecision()
	if decision == nil || len(decision.Requests) == 0 {
		return ""
	}
	return decision.Requests[len(decision.Requests)-1].Name
}

// ChartFinalizer attaches the chart the batch produced.
type ChartFinalizer struct {
	logger *slog.Logger
}

func NewChartFinalizer(logger *slog.Logger) *ChartFinalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartFinalizer{logger: logger}
}

func (f *ChartFinalizer) Finalize(state *conversation.State) {
	if len(state.Chart) == 0 {
		f.logger.Warn("chart finalizer reached without a chart", "thread_id", state.ThreadID)
		state.Append(conversation.NewFinal("The chart is not available. Please try building it again.", nil))
		return
	}
	att := schema.Attachment{Name: "chart", MIME: "application/json", JSON: state.Chart}
	state.Append(conversation.NewFinal("Here is the requested chart.", []schema.Attachment{att}))
}

// tableExcerptRows bounds the JSON preview; the spreadsheet attachment
// always carries the full dataset.
const tableExcerptRows = 10

// TableFinalizer renders the requested dataset: a bounded JSON preview plus
// a full spreadsheet export.
type TableFinalizer struct {
	logger *slog.Logger
}

func NewTableFinalizer(logger *slog.Logger) *TableFinalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableFinalizer{logger: logger}
}

func (f *TableFinalizer) Finalize(state *conversation.State) {
	table, label := state.RawDataset, "raw"
	if lastRequestName(state) == "fetch_processed_table" {
		table, label = state.ProcessedDataset, "processed"
	}
	if table == nil || table.Len() == 0 {
		state.Append(conversation.NewFinal(
			fmt.Sprintf("The %s dataset is not available yet. Fetch the fundamentals first.", label), nil))
		return
	}

	var attachments []schema.Attachment
	if preview, err := json.Marshal(table.Head(tableExcerptRows)); err == nil {
		attachments = append(attachments, schema.Attachment{
			Name: label + "_dataset_preview",
			MIME: "application/json",
			JSON: preview,
		})
	}
	if export, err := dataset.ExportXLSX(table, "Fundamentals"); err == nil {
		attachments = append(attachments, schema.Attachment{
			Name: label + "_dataset.xlsx",
			MIME: dataset.XLSXMimeType,
			Data: export,
		})
	} else {
		f.logger.Warn("spreadsheet export failed", "thread_id", state.ThreadID, "error", err)
	}

	shown := min(tableExcerptRows, table.Len())
	text := fmt.Sprintf("Here is the %s dataset for %s: %d rows, %d columns. The preview shows the first %d rows; the spreadsheet holds everything.",
		label, subject(state), table.Len(), len(table.Columns), shown)
	state.Append(conversation.NewFinal(text, attachments))
}

// NewsFinalizer decodes the batch's article list and attaches it in order.
type NewsFinalizer struct {
	logger *slog.Logger
}

func NewNewsFinalizer(logger *slog.Logger) *NewsFinalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsFinalizer{logger: logger}
}

func (f *NewsFinalizer) Finalize(state *conversation.State) {
	res := state.BatchResultByTool("fetch_news")
	if res == nil || !res.Succeeded || res.Content == "" {
		state.Append(conversation.NewFinal("The news feed is not available right now. Please try again.", nil))
		return
	}
	var items []news.Item
	if err := json.Unmarshal([]byte(res.Content), &items); err != nil {
		f.logger.Warn("undecodable news result", "thread_id", state.ThreadID, "error", err)
		state.Append(conversation.NewFinal("The news feed is not available right now. Please try again.", nil))
		return
	}
	if len(items) == 0 {
		state.Append(conversation.NewFinal(
			fmt.Sprintf("No recent news articles were found for %s.", subject(state)), nil))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are the latest articles about %s:\n", subject(state))
	for _, item := range items {
		sb.WriteString("\n- " + item.Title)
		var details []string
		if item.Site != "" {
			details = append(details, item.Site)
		}
		if item.PublishedDate != "" {
			details = append(details, item.PublishedDate)
		}
		if len(details) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(details, ", "))
		}
	}
	att := schema.Attachment{Name: "articles", MIME: "application/json", JSON: json.RawMessage(res.Content)}
	state.Append(conversation.NewFinal(sb.String(), []schema.Attachment{att}))
}
