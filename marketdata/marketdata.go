// Package marketdata is the REST client for the financial data provider:
// symbol search, annual key metrics, price history, news and company
// profiles.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quarkbyte/finagent/fault"
)

// Client talks to the provider. Zero-value timeouts fall back to the
// defaults; the API key is mandatory for live use.
type Client struct {
	Config
}

// New returns a configured client.
func New(options ...Option) *Client {
	c := &Client{
		Config: Config{
			baseURL:        defaultBaseURL,
			connectTimeout: defaultConnectTimeout,
			readTimeout:    defaultReadTimeout,
			writeTimeout:   defaultWriteTimeout,
			maxRetries:     defaultMaxRetries,
		},
	}
	for _, opt := range options {
		opt(&c.Config)
	}
	if c.httpClient == nil {
		c.httpClient = newHTTPClient(c.connectTimeout, c.readTimeout)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// newHTTPClient maps the configured bounds onto the transport: the dial
// timeout on the Dialer, the read timeout on ResponseHeaderTimeout. The
// request-write bound is folded into the per-call context deadline.
func newHTTPClient(connect, read time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: connect}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   connect,
			ResponseHeaderTimeout: read,
			MaxIdleConns:          defaultMaxConns,
			MaxConnsPerHost:       defaultMaxConns,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

const maxBodyBytes = 16 << 20

// get performs one API call with bounded retries. Retries happen only on
// transport errors where no response bytes were observed; once a response
// arrives, whatever it says is final.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", c.apiKey)
	endpoint := strings.TrimSuffix(c.baseURL, "/") + path + "?" + query.Encode()

	deadline := c.connectTimeout + c.readTimeout + c.writeTimeout
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying upstream call", "op", op, "path", path, "attempt", attempt)
			select {
			case <-ctx.Done():
				return fault.New(fault.UpstreamUnavailable, op, ctx.Err())
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fault.New(fault.Defect, op, err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return fault.New(fault.UpstreamUnavailable, op, ctx.Err())
			}
			lastErr = fault.New(fault.UpstreamUnavailable, op, err)
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		if readErr != nil {
			// Response bytes were observed; a truncated body is final.
			return fault.New(fault.UpstreamUnavailable, op, readErr)
		}
		if resp.StatusCode != http.StatusOK {
			return fault.FromStatus(op, resp.StatusCode, snippet(body))
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fault.Errorf(fault.UpstreamUnavailable, op, "malformed response: %v", err)
		}
		return nil
	}
	return lastErr
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// SearchTicker resolves a free-form company name to its primary listing.
func (c *Client) SearchTicker(ctx context.Context, name string) (*SearchResult, error) {
	const op = "marketdata.SearchTicker"
	query := url.Values{}
	query.Set("query", name)
	query.Set("limit", "10")
	var hits []SearchResult
	if err := c.get(ctx, op, "/api/v3/search", query, &hits); err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fault.Errorf(fault.NotFound, op, "no listing matches %q", name)
	}
	c.logger.Debug("resolved ticker", "query", name, "symbol", hits[0].Symbol)
	return &hits[0], nil
}

// KeyMetrics fetches annual key-metrics records, oldest fields untouched.
// The provider answers 200 with an empty array for unknown symbols; that is
// reported as a not-found failure.
func (c *Client) KeyMetrics(ctx context.Context, ticker string) ([]map[string]any, error) {
	const op = "marketdata.KeyMetrics"
	query := url.Values{}
	query.Set("period", "annual")
	var records []map[string]any
	if err := c.get(ctx, op, "/api/v3/key-metrics/"+url.PathEscape(ticker), query, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fault.Errorf(fault.NotFound, op, "no key metrics for %q", ticker)
	}
	c.logger.Debug("fetched key metrics", "ticker", ticker, "rows", len(records))
	return records, nil
}

type priceHistory struct {
	Symbol     string       `json:"symbol"`
	Historical []PricePoint `json:"historical"`
}

// HistoricalPrices fetches daily closes between from and to, returned in
// ascending date order.
func (c *Client) HistoricalPrices(ctx context.Context, ticker string, from, to time.Time) ([]PricePoint, error) {
	const op = "marketdata.HistoricalPrices"
	query := url.Values{}
	query.Set("serietype", "line")
	if !from.IsZero() {
		query.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		query.Set("to", to.Format("2006-01-02"))
	}
	var hist priceHistory
	if err := c.get(ctx, op, "/api/v3/historical-price-full/"+url.PathEscape(ticker), query, &hist); err != nil {
		return nil, err
	}
	if len(hist.Historical) == 0 {
		return nil, fault.Errorf(fault.NotFound, op, "no price history for %q", ticker)
	}
	// The provider sends newest first.
	points := hist.Historical
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// News fetches up to limit recent articles for the ticker.
func (c *Client) News(ctx context.Context, ticker string, limit int) ([]Article, error) {
	const op = "marketdata.News"
	if limit <= 0 {
		limit = 50
	}
	query := url.Values{}
	query.Set("tickers", ticker)
	query.Set("limit", fmt.Sprintf("%d", limit))
	var articles []Article
	if err := c.get(ctx, op, "/api/v3/stock_news", query, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// CompanyProfile fetches the company fact sheet.
func (c *Client) CompanyProfile(ctx context.Context, ticker string) (*Profile, error) {
	const op = "marketdata.CompanyProfile"
	var profiles []Profile
	if err := c.get(ctx, op, "/api/v3/profile/"+url.PathEscape(ticker), nil, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fault.Errorf(fault.NotFound, op, "no profile for %q", ticker)
	}
	return &profiles[0], nil
}
