package comparison

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/quarkbyte/finagent/charting"
	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/fault"
	"github.com/quarkbyte/finagent/marketdata"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
	"github.com/quarkbyte/finagent/tools/fundamentals"
)

// Input names the tickers and the processed-dataset metric to align.
type Input struct {
	schema.Base
	Tickers []string `json:"tickers" jsonschema:"title=tickers,description=Ticker symbols to compare. Pass the complete set, including tickers from earlier turns." validate:"min=1"`
	Metric  string   `json:"metric" jsonschema:"title=metric,description=Processed metric to compare, for example roe or marginProfit." validate:"required"`
}

func (in *Input) Resolve(state *conversation.State) {
	if len(in.Tickers) == 0 {
		in.Tickers = append(in.Tickers, state.Tickers...)
	}
	if in.Metric == "" && state.Comparison != nil && state.Comparison.Metric != "price" {
		in.Metric = state.Comparison.Metric
	}
}

// Output carries the finished chart spec and the comparison set.
type Output struct {
	schema.Base
	Tickers []string        `json:"tickers"`
	Skipped []string        `json:"skipped,omitempty"`
	Metric  string          `json:"metric"`
	Chart   json.RawMessage `json:"chart"`
}

func (out *Output) Apply(state *conversation.State) {
	state.Tickers = out.Tickers
	state.Comparison = &conversation.Comparison{Metric: out.Metric}
	state.Chart = out.Chart
}

func (out *Output) Summary() string {
	line := fmt.Sprintf("[Comparison chart created: %s of %s by year.]", out.Metric, strings.Join(out.Tickers, ", "))
	if len(out.Skipped) > 0 {
		line += fmt.Sprintf(" No %s history for: %s.", out.Metric, strings.Join(out.Skipped, ", "))
	}
	return line
}

// Tool runs the fetch and preprocess pipeline per ticker and aligns one
// processed metric across entities on the calendar year. Annual data is
// sparse, so years one entity lacks simply stay out of its series; there
// is no forward-fill here.
type Tool struct {
	tools.Config
	client *marketdata.Client
	logger *slog.Logger
}

func New(client *marketdata.Client, logger *slog.Logger, opts ...tools.Option) *Tool {
	if logger == nil {
		logger = slog.Default()
	}
	ret := &Tool{client: client, logger: logger}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("compare_fundamental_series")
	}
	if ret.Description() == "" {
		ret.SetDescription("compare_fundamental_series(tickers, metric): chart the yearly evolution of one processed metric across several tickers.")
	}
	return ret
}

func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	metric := strings.TrimSpace(input.Metric)
	requested := make([]string, 0, len(input.Tickers))
	perTicker := make(map[string]map[string]float64, len(input.Tickers))
	yearSet := make(map[string]bool)
	var skipped []string

	for _, raw := range input.Tickers {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		if ticker == "" {
			continue
		}
		requested = append(requested, ticker)
		values, err := t.metricHistory(ctx, ticker, metric)
		if err != nil {
			t.logger.Warn("skipping ticker in fundamental comparison", "ticker", ticker, "metric", metric, "error", err)
			skipped = append(skipped, ticker)
			continue
		}
		perTicker[ticker] = values
		for year := range values {
			yearSet[year] = true
		}
	}
	if len(perTicker) == 0 {
		return nil, fault.Errorf(fault.Validation, "compare_fundamental_series", "no %s history for any of the requested tickers: %s", metric, strings.Join(requested, ", "))
	}

	years := make([]string, 0, len(yearSet))
	for year := range yearSet {
		years = append(years, year)
	}
	sort.Strings(years)

	spec := charting.New(fmt.Sprintf("%s evolution by year", metric))
	spec.XTitle = "Year"
	spec.YTitle = metric
	for _, ticker := range requested {
		values := perTicker[ticker]
		if values == nil {
			continue
		}
		series := charting.Series{Name: ticker, Kind: charting.KindLine, Mode: "lines+markers"}
		for _, year := range years {
			if v, ok := values[year]; ok {
				series.X = append(series.X, year)
				series.Y = append(series.Y, v)
			}
		}
		spec.Add(series)
	}
	payload, err := spec.JSON()
	if err != nil {
		return nil, err
	}
	return &Output{Tickers: requested, Skipped: skipped, Metric: metric, Chart: payload}, nil
}

// metricHistory runs one ticker through fetch and preprocess and pulls the
// metric keyed by calendar year.
func (t *Tool) metricHistory(ctx context.Context, ticker, metric string) (map[string]float64, error) {
	records, err := t.client.KeyMetrics(ctx, ticker)
	if err != nil {
		return nil, err
	}
	processed, _, err := fundamentals.Derive(fundamentals.TableFromRecords(records))
	if err != nil {
		return nil, err
	}
	if processed.ColumnIndex(metric) < 0 {
		return nil, fault.Errorf(fault.Validation, "compare_fundamental_series", "metric %s not available for %s", metric, ticker)
	}
	values := make(map[string]float64, processed.Len())
	for i := 0; i < processed.Len(); i++ {
		year, ok := processed.Value(i, "calendarYear")
		if !ok {
			continue
		}
		cell, _ := processed.Value(i, metric)
		if v, ok := dataset.Float(cell); ok {
			values[dataset.Stringify(year)] = v
		}
	}
	return values, nil
}
