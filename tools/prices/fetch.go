package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/quarkbyte/finagent/charting"
	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/marketdata"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

// DefaultPeriodDays is roughly one year of trading days.
const DefaultPeriodDays = 252

// FetchInput names the ticker and the look-back window for a price chart.
type FetchInput struct {
	schema.Base
	Ticker     string `json:"ticker" jsonschema:"title=ticker,description=Ticker symbol to chart." validate:"required"`
	PeriodDays int    `json:"period_days,omitempty" jsonschema:"title=period_days,description=Number of calendar days to look back. Defaults to 252."`
}

func (in *FetchInput) Resolve(state *conversation.State) {
	if in.Ticker == "" {
		in.Ticker = state.Ticker
	}
	if in.PeriodDays <= 0 {
		in.PeriodDays = DefaultPeriodDays
	}
}

// FetchOutput carries the finished chart spec.
type FetchOutput struct {
	schema.Base
	Ticker     string          `json:"ticker"`
	PeriodDays int             `json:"period_days"`
	Points     int             `json:"points"`
	Chart      json.RawMessage `json:"chart"`
}

func (out *FetchOutput) Apply(state *conversation.State) {
	state.Chart = out.Chart
}

func (out *FetchOutput) Summary() string {
	return fmt.Sprintf("[Price chart created: %s, %d days, %d points.]", out.Ticker, out.PeriodDays, out.Points)
}

// FetchTool charts the closing price history of a single ticker.
type FetchTool struct {
	tools.Config
	client *marketdata.Client
}

func NewFetch(client *marketdata.Client, opts ...tools.Option) *FetchTool {
	ret := &FetchTool{client: client}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("fetch_price_series")
	}
	if ret.Description() == "" {
		ret.SetDescription("fetch_price_series(ticker, period_days): chart the closing price history of one ticker. period_days defaults to 252.")
	}
	return ret
}

func (t *FetchTool) Run(ctx context.Context, input *FetchInput) (*FetchOutput, error) {
	days := input.PeriodDays
	if days <= 0 {
		days = DefaultPeriodDays
	}
	to := time.Now()
	from := to.AddDate(0, 0, -days)
	points, err := t.client.HistoricalPrices(ctx, input.Ticker, from, to)
	if err != nil {
		return nil, err
	}
	ticker := strings.ToUpper(input.Ticker)
	series := charting.Series{Name: ticker, Kind: charting.KindLine}
	for _, p := range points {
		series.X = append(series.X, p.Date)
		series.Y = append(series.Y, p.Close)
	}
	spec := charting.New(fmt.Sprintf("%s closing price, last %d days", ticker, days))
	spec.XTitle = "Date"
	spec.YTitle = "Close (USD)"
	spec.Add(series)
	payload, err := spec.JSON()
	if err != nil {
		return nil, err
	}
	return &FetchOutput{Ticker: ticker, PeriodDays: days, Points: len(points), Chart: payload}, nil
}
