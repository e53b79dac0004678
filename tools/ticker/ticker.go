package ticker

import (
	"context"
	"fmt"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/marketdata"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

// Input identifies the company to resolve into a listed ticker.
type Input struct {
	schema.Base
	CompanyName string `json:"company_name" jsonschema:"title=company_name,description=Company name or free-form identifier to resolve into a ticker symbol." validate:"required"`
}

func NewInput(name string) *Input {
	return &Input{CompanyName: name}
}

func (in *Input) Resolve(state *conversation.State) {
	if in.CompanyName == "" {
		in.CompanyName = state.CompanyName
	}
}

// Output carries the first matching listing.
type Output struct {
	schema.Base
	Ticker      string `json:"ticker" jsonschema:"title=ticker,description=Resolved ticker symbol."`
	CompanyName string `json:"company_name" jsonschema:"title=company_name,description=Listed company name."`
	Exchange    string `json:"exchange,omitempty" jsonschema:"title=exchange,description=Exchange short name."`
}

func (out *Output) Apply(state *conversation.State) {
	state.Ticker = out.Ticker
	if out.CompanyName != "" {
		state.CompanyName = out.CompanyName
	}
}

func (out *Output) Summary() string {
	return fmt.Sprintf("[Ticker %s found for %s.]", out.Ticker, out.CompanyName)
}

// Tool resolves free-form company names through the market data search
// endpoint and pins the first hit on the conversation state.
type Tool struct {
	tools.Config
	client *marketdata.Client
}

func New(client *marketdata.Client, opts ...tools.Option) *Tool {
	ret := &Tool{client: client}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("resolve_ticker")
	}
	if ret.Description() == "" {
		ret.SetDescription("resolve_ticker(company_name): look up the stock ticker for a company name. Run this first when the user names a company without a symbol.")
	}
	return ret
}

func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	hit, err := t.client.SearchTicker(ctx, input.CompanyName)
	if err != nil {
		return nil, err
	}
	return &Output{
		Ticker:      hit.Symbol,
		CompanyName: hit.Name,
		Exchange:    hit.ExchangeShortName,
	}, nil
}
