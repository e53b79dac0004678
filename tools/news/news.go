package news

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/quarkbyte/finagent/conversation"
	"github.com/quarkbyte/finagent/marketdata"
	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

const (
	DefaultLimit        = 3
	DefaultLookbackDays = 30
)

// Input names the company whose news should be fetched.
type Input struct {
	schema.Base
	Ticker      string `json:"ticker" jsonschema:"title=ticker,description=Ticker symbol to fetch news for." validate:"required"`
	CompanyName string `json:"company_name,omitempty" jsonschema:"title=company_name,description=Company name, used when narrating the articles."`
	Limit       int    `json:"limit,omitempty" jsonschema:"title=limit,description=Maximum number of articles. Defaults to 3."`
}

func (in *Input) Resolve(state *conversation.State) {
	if in.Ticker == "" {
		in.Ticker = state.Ticker
	}
	if in.CompanyName == "" {
		in.CompanyName = state.CompanyName
	}
	if in.CompanyName == "" {
		in.CompanyName = in.Ticker
	}
}

// Item is one article as the news finalizer consumes it.
type Item struct {
	Title         string `json:"title"`
	Site          string `json:"site,omitempty"`
	URL           string `json:"url"`
	Image         string `json:"image,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	Excerpt       string `json:"excerpt,omitempty"`
}

// Output carries the filtered article list. Its transcript form is the
// article JSON itself so the news finalizer can narrate it without another
// provider round trip.
type Output struct {
	schema.Base
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name,omitempty"`
	Articles    []Item `json:"articles"`
}

func (out *Output) Summary() string {
	bs, err := json.Marshal(out.Articles)
	if err != nil {
		return "[]"
	}
	return string(bs)
}

// Tool fetches recent articles for a ticker, drops anything older than the
// look-back window and fills missing source metadata from the article page.
type Tool struct {
	tools.Config
	client   *marketdata.Client
	enricher *Enricher
	limit    int
	lookback int
}

type ToolOption func(*Tool)

func WithLimit(n int) ToolOption {
	return func(t *Tool) {
		t.limit = n
	}
}

func WithLookbackDays(n int) ToolOption {
	return func(t *Tool) {
		t.lookback = n
	}
}

func WithEnricher(e *Enricher) ToolOption {
	return func(t *Tool) {
		t.enricher = e
	}
}

func New(client *marketdata.Client, opts ...ToolOption) *Tool {
	ret := &Tool{client: client, limit: DefaultLimit, lookback: DefaultLookbackDays}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.Title() == "" {
		ret.SetTitle("fetch_news")
	}
	if ret.Description() == "" {
		ret.SetDescription("fetch_news(ticker, company_name, limit): fetch recent news articles about a company.")
	}
	return ret
}

func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = t.limit
	}
	// Over-fetch so the recency filter still leaves enough articles.
	articles, err := t.client.News(ctx, input.Ticker, limit*4)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().AddDate(0, 0, -t.lookback)
	items := make([]Item, 0, limit)
	for _, a := range articles {
		if published, ok := parsePublished(a.PublishedDate); ok && published.Before(cutoff) {
			continue
		}
		items = append(items, Item{
			Title:         a.Title,
			Site:          a.Site,
			URL:           a.URL,
			Image:         a.Image,
			PublishedDate: a.PublishedDate,
			Excerpt:       excerpt(a.Text),
		})
		if len(items) == limit {
			break
		}
	}
	if t.enricher != nil {
		for i := range items {
			if items[i].Site == "" || items[i].Image == "" {
				t.enricher.Fill(ctx, &items[i])
			}
		}
	}
	return &Output{Ticker: strings.ToUpper(input.Ticker), CompanyName: input.CompanyName, Articles: items}, nil
}

// parsePublished accepts the provider's datetime and plain date forms.
func parsePublished(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02", time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

const excerptRunes = 280

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= excerptRunes {
		return s
	}
	return fmt.Sprintf("%s...", strings.TrimSpace(string(runes[:excerptRunes])))
}
