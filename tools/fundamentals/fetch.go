package fundamentals

import (
	"context"
	"fmt"
	"strings"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/dataset"
	"github.com/quarkbyte/finagent/marketdata"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

// rawColumns is the ordered whitelist kept from the annual key metrics
// payload. symbol and calendarYear anchor later joins; the per-share and
// ratio columns feed preprocessing, the distress model and the raw table
// view. Everything else the provider sends is discarded.
var rawColumns = []string{
	"date", "symbol", "calendarYear", "period",
	"marketCap", "netIncomePerShare", "revenuePerShare",
	"peRatio", "pbRatio", "roe", "roic", "debtToEquity",
	"earningsYield", "freeCashFlowPerShare", "dividendYield",
}

// FetchInput names the ticker whose fundamentals should be loaded.
type FetchInput struct {
	schema.Base
	Ticker string `json:"ticker" jsonschema:"title=ticker,description=Ticker symbol to fetch annual fundamentals for." validate:"required"`
}

func NewFetchInput(ticker string) *FetchInput {
	return &FetchInput{Ticker: ticker}
}

func (in *FetchInput) Resolve(state *conversation.State) {
	if in.Ticker == "" {
		in.Ticker = state.Ticker
	}
}

// FetchOutput carries the raw annual dataset.
type FetchOutput struct {
	schema.Base
	Ticker string         `json:"ticker"`
	Table  *dataset.Table `json:"table"`
}

// Apply pins the ticker and the raw dataset. A fresh raw dataset
// invalidates any processed one still lying around from an earlier turn.
func (out *FetchOutput) Apply(state *conversation.State) {
	state.Ticker = out.Ticker
	state.RawDataset = out.Table
	state.ProcessedDataset = nil
}

func (out *FetchOutput) Summary() string {
	return fmt.Sprintf("[Fetched %d annual rows for %s. Columns: %s.]",
		out.Table.Len(), out.Ticker, strings.Join(out.Table.Columns, ", "))
}

// FetchTool loads annual key metrics for one ticker from the market data
// provider and keeps only the whitelisted columns.
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
		ret.SetTitle("fetch_fundamentals")
	}
	if ret.Description() == "" {
		ret.SetDescription("fetch_fundamentals(ticker): load annual fundamental metrics for a ticker. Required before preprocess, assess_risk or the table views.")
	}
	return ret
}

func (t *FetchTool) Run(ctx context.Context, input *FetchInput) (*FetchOutput, error) {
	records, err := t.client.KeyMetrics(ctx, input.Ticker)
	if err != nil {
		return nil, err
	}
	ticker := strings.ToUpper(input.Ticker)
	if sym, ok := records[0]["symbol"].(string); ok && sym != "" {
		ticker = sym
	}
	return &FetchOutput{Ticker: ticker, Table: TableFromRecords(records)}, nil
}

// TableFromRecords shapes provider key metric records into the raw table,
// keeping only whitelisted columns the provider actually sent, in
// whitelist order. Shared with the fundamental comparison pipeline.
func TableFromRecords(records []map[string]any) *dataset.Table {
	if len(records) == 0 {
		return dataset.New()
	}
	cols := make([]string, 0, len(rawColumns))
	for _, col := range rawColumns {
		if _, ok := records[0][col]; ok {
			cols = append(cols, col)
		}
	}
	return dataset.FromMaps(cols, records)
}
