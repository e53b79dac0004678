package profile

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/marketdata"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

// Input names the ticker whose profile should be fetched.
type Input struct {
	schema.Base
	Ticker string `json:"ticker" jsonschema:"title=ticker,description=Ticker symbol to fetch the company profile for." validate:"required"`
}

func (in *Input) Resolve(state *conversation.State) {
	if in.Ticker == "" {
		in.Ticker = state.Ticker
	}
}

// Facts is the trimmed provider profile. Every field is nullable in the
// provider payload; empty means unknown and the narration must say so
// rather than invent a value.
type Facts struct {
	CompanyName       string `json:"companyName,omitempty"`
	Sector            string `json:"sector,omitempty"`
	Industry          string `json:"industry,omitempty"`
	CEO               string `json:"ceo,omitempty"`
	Website           string `json:"website,omitempty"`
	Description       string `json:"description,omitempty"`
	FullTimeEmployees string `json:"fullTimeEmployees,omitempty"`
	Exchange          string `json:"exchange,omitempty"`
	Country           string `json:"country,omitempty"`
	Image             string `json:"image,omitempty"`
}

// Output carries the profile facts. Its transcript form is the facts JSON
// so the profile finalizer can narrate it directly.
type Output struct {
	schema.Base
	Ticker string `json:"ticker"`
	Facts  Facts  `json:"facts"`
}

func (out *Output) Apply(state *conversation.State) {
	state.Ticker = out.Ticker
	if out.Facts.CompanyName != "" {
		state.CompanyName = out.Facts.CompanyName
	}
}

func (out *Output) Summary() string {
	bs, err := json.Marshal(out.Facts)
	if err != nil {
		return "{}"
	}
	return string(bs)
}

// Localizer rewrites display fields for the audience locale. Downstream
// narration must carry localized fields verbatim instead of re-translating.
type Localizer interface {
	Localize(ctx context.Context, facts *Facts) error
}

// NoopLocalizer leaves the provider wording untouched.
type NoopLocalizer struct{}

func (NoopLocalizer) Localize(context.Context, *Facts) error { return nil }

// Tool fetches the company profile and runs it through the localizer.
// Localization is best effort: on failure the provider wording stands.
type Tool struct {
	tools.Config
	client    *marketdata.Client
	localizer Localizer
	logger    *slog.Logger
}

type ToolOption func(*Tool)

func WithLocalizer(l Localizer) ToolOption {
	return func(t *Tool) {
		t.localizer = l
	}
}

func WithLogger(l *slog.Logger) ToolOption {
	return func(t *Tool) {
		t.logger = l
	}
}

func New(client *marketdata.Client, opts ...ToolOption) *Tool {
	ret := &Tool{client: client, localizer: NoopLocalizer{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.Title() == "" {
		ret.SetTitle("fetch_profile")
	}
	if ret.Description() == "" {
		ret.SetDescription("fetch_profile(ticker): fetch company profile facts such as sector, CEO, employees and description.")
	}
	return ret
}

func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	p, err := t.client.CompanyProfile(ctx, input.Ticker)
	if err != nil {
		return nil, err
	}
	facts := Facts{
		CompanyName:       p.CompanyName,
		Sector:            p.Sector,
		Industry:          p.Industry,
		CEO:               p.CEO,
		Website:           p.Website,
		Description:       p.Description,
		FullTimeEmployees: p.FullTimeEmployees,
		Exchange:          p.Exchange,
		Country:           p.Country,
		Image:             p.Image,
	}
	if t.localizer != nil {
		if err := t.localizer.Localize(ctx, &facts); err != nil {
			t.logger.Warn("profile localization failed, keeping provider wording", "ticker", input.Ticker, "error", err)
		}
	}
	ticker := strings.ToUpper(input.Ticker)
	if p.Symbol != "" {
		ticker = p.Symbol
	}
	return &Output{Ticker: ticker, Facts: facts}, nil
}
