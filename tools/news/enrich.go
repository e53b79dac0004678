package news

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	enrichUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	enrichMaxBytes  = 1 << 20
)

// Enricher fills missing article metadata from the article page's Open
// Graph tags. It is best effort: failures only leave fields empty, never
// fail the news fetch.
type Enricher struct {
	client *http.Client
	logger *slog.Logger
}

func NewEnricher(client *http.Client, logger *slog.Logger) *Enricher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{client: client, logger: logger}
}

func (e *Enricher) Fill(ctx context.Context, item *Item) {
	if item.URL == "" {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL, nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", enrichUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;")
	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug("news enrichment fetch failed", "url", item.URL, "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return
	}
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, enrichMaxBytes))
	if err != nil {
		return
	}
	if item.Site == "" {
		item.Site, _ = doc.Find("meta[property='og:site_name']").Attr("content")
	}
	if item.Image == "" {
		item.Image, _ = doc.Find("meta[property='og:image']").Attr("content")
	}
	if item.Title == "" {
		item.Title = doc.Find("head title").Text()
	}
}
