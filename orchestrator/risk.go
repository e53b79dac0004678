package orchestrator

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/quarkbyte/finagent/charting"
	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/schema"
)

// RiskFinalizer renders the distress verdict. The verdict vocabulary is
// closed: anything outside it gets a defensive reply instead of a made-up
// interpretation.
type RiskFinalizer struct {
	logger *slog.Logger
}

func NewRiskFinalizer(logger *slog.Logger) *RiskFinalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RiskFinalizer{logger: logger}
}

func (f *RiskFinalizer) Finalize(state *conversation.State) {
	latest, next := fiscalYears(state.ProcessedDataset)
	who := subject(state)

	var text string
	switch state.RiskVerdict {
	case conversation.VerdictHighRisk:
		text = fmt.Sprintf("**Risk assessment for %s.** Based on the fundamentals for the %s fiscal year, the model flags a risk of extreme financial distress. Treat expectations for %s with caution.",
			who, latest, next)
	case conversation.VerdictNoExtremeRisk:
		text = fmt.Sprintf("**Risk assessment for %s.** Based on the fundamentals for the %s fiscal year, the model does not flag a risk of extreme financial distress for %s.",
			who, latest, next)
	default:
		f.logger.Error("unexpected risk verdict", "thread_id", state.ThreadID, "verdict", state.RiskVerdict)
		state.Append(conversation.NewFinal("The risk assessment result could not be interpreted. Please run the analysis again.", nil))
		return
	}

	var attachments []schema.Attachment
	if att := growthValuationChart(state.ProcessedDataset); att != nil {
		attachments = append(attachments, *att)
		text += "\n\nThe attached chart puts revenue-per-share growth against earnings yield across fiscal years."
	}
	state.Append(conversation.NewFinal(text, attachments))
}

// fiscalYears labels the newest fiscal year in the processed dataset and
// the one after it. Without a usable calendarYear the labels stay generic.
func fiscalYears(t *dataset.Table) (latest, next string) {
	latest, next = "most recent", "the coming year"
	if t == nil || t.Len() == 0 || t.ColumnIndex("calendarYear") < 0 {
		return
	}
	years := t.Strings("calendarYear")
	y := years[len(years)-1]
	if y == "" {
		return
	}
	latest = y
	if n, err := strconv.Atoi(y); err == nil {
		next = strconv.Itoa(n + 1)
	}
	return
}

// growthValuationChart builds the growth-versus-valuation companion chart:
// revenue-per-share growth on the left axis, earnings yield on the right,
// a zero line to separate growth from contraction. Missing columns skip
// the chart; the verdict text stands on its own.
func growthValuationChart(t *dataset.Table) *schema.Attachment {
	const growthCol, yieldCol = "revenuePerShare_YoY_Growth", "earningsYield"
	if t == nil || t.Len() == 0 || !t.HasColumns("calendarYear", growthCol, yieldCol) {
		return nil
	}
	xs := t.Strings("calendarYear")
	spec := charting.New("Revenue growth vs earnings yield")
	spec.XTitle = "Fiscal year"
	spec.YTitle = "Revenue/share YoY growth"
	spec.Y2Title = "Earnings yield"
	spec.HLines = []float64{0}

	for _, col := range []string{growthCol, yieldCol} {
		vals, ok := t.Floats(col)
		series := charting.Series{Name: col, Kind: charting.KindLine, Mode: "lines+markers"}
		if col == yieldCol {
			series.YAxis = "y2"
		}
		for i := range vals {
			if !ok[i] {
				continue
			}
			series.X = append(series.X, xs[i])
			series.Y = append(series.Y, vals[i])
		}
		spec.Add(series)
	}

	att, err := spec.Attachment("growth_vs_valuation")
	if err != nil {
		return nil
	}
	return &att
}
