package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quarkbyte/finagent/charting"
	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/fault"
	"github.com/quarkbyte/finagent/marketdata"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

// CompareInput names the tickers to rebase against each other.
type CompareInput struct {
	schema.Base
	Tickers    []string `json:"tickers" jsonschema:"title=tickers,description=Ticker symbols to compare. Pass the complete set, including tickers from earlier turns." validate:"min=1"`
	PeriodDays int      `json:"period_days,omitempty" jsonschema:"title=period_days,description=Number of calendar days to look back. Defaults to 252."`
}

func (in *CompareInput) Resolve(state *conversation.State) {
	if len(in.Tickers) == 0 {
		in.Tickers = append(in.Tickers, state.Tickers...)
	}
	if in.PeriodDays <= 0 && state.Comparison != nil {
		in.PeriodDays = state.Comparison.Period
	}
	if in.PeriodDays <= 0 {
		in.PeriodDays = DefaultPeriodDays
	}
}

// CompareOutput carries the finished chart spec and the comparison set.
type CompareOutput struct {
	schema.Base
	Tickers    []string        `json:"tickers"`
	Skipped    []string        `json:"skipped,omitempty"`
	PeriodDays int             `json:"period_days"`
	Chart      json.RawMessage `json:"chart"`
}

// Apply records the full requested comparison set, not just the tickers
// that produced data, so a follow-up turn can extend the same set.
func (out *CompareOutput) Apply(state *conversation.State) {
	state.Tickers = out.Tickers
	state.Comparison = &conversation.Comparison{Metric: "price", Period: out.PeriodDays}
	state.Chart = out.Chart
}

func (out *CompareOutput) Summary() string {
	line := fmt.Sprintf("[Comparison chart created: %s over %d days.]", strings.Join(out.Tickers, ", "), out.PeriodDays)
	if len(out.Skipped) > 0 {
		line += fmt.Sprintf(" No price data for: %s.", strings.Join(out.Skipped, ", "))
	}
	return line
}

// CompareTool charts several tickers rebased to 100 at the window start so
// performance is comparable across price levels and currencies.
type CompareTool struct {
	tools.Config
	client *marketdata.Client
	logger *slog.Logger
}

func NewCompare(client *marketdata.Client, logger *slog.Logger, opts ...tools.Option) *CompareTool {
	if logger == nil {
		logger = slog.Default()
	}
	ret := &CompareTool{client: client, logger: logger}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("compare_price_series")
	}
	if ret.Description() == "" {
		ret.SetDescription("compare_price_series(tickers, period_days): chart several tickers rebased to 100 for performance comparison. Pass the complete ticker set.")
	}
	return ret
}

func (t *CompareTool) Run(ctx context.Context, input *CompareInput) (*CompareOutput, error) {
	days := input.PeriodDays
	if days <= 0 {
		days = DefaultPeriodDays
	}
	to := time.Now()
	from := to.AddDate(0, 0, -days)

	requested := make([]string, 0, len(input.Tickers))
	series := make(map[string][]marketdata.PricePoint, len(input.Tickers))
	var skipped []string
	for _, raw := range input.Tickers {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		if ticker == "" {
			continue
		}
		requested = append(requested, ticker)
		points, err := t.client.HistoricalPrices(ctx, ticker, from, to)
		if err != nil {
			// One missing ticker must not sink the whole comparison.
			t.logger.Warn("skipping ticker in price comparison", "ticker", ticker, "error", err)
			skipped = append(skipped, ticker)
			continue
		}
		series[ticker] = points
	}
	if len(series) == 0 {
		return nil, fault.Errorf(fault.NotFound, "compare_price_series", "no price data for any of the requested tickers: %s", strings.Join(requested, ", "))
	}

	spec := charting.New("Stock performance comparison (base 100)")
	spec.XTitle = "Date"
	spec.YTitle = "Normalized performance (base 100)"
	for _, a := range alignBase100(requested, series) {
		spec.Add(charting.Series{Name: a.name, Kind: charting.KindLine, X: a.x, Y: a.y})
	}
	payload, err := spec.JSON()
	if err != nil {
		return nil, err
	}
	return &CompareOutput{Tickers: requested, Skipped: skipped, PeriodDays: days, Chart: payload}, nil
}
