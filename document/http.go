package document

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"

	"go.uber.org/atomic"

	"github.com/quarkbyte/finagent/fault"
)

// HTTPSource fetches a document over HTTP and caches the body, so repeated
// ingestion passes do not refetch. A Fetch while another fetch is in flight
// returns ErrFetching instead of issuing a second request.
type HTTPSource struct {
	status *atomic.Int32
	client *http.Client
	method string
	link   string
	doc    *Document
}

var _ Source = (*HTTPSource)(nil)

// HTTPOption customizes an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTPSource) {
		h.client = client
	}
}

// WithHTTPMethod replaces the default GET.
func WithHTTPMethod(method string) HTTPOption {
	return func(h *HTTPSource) {
		h.method = method
	}
}

// NewHTTPSource wraps a URL as a Source.
func NewHTTPSource(link string, opts ...HTTPOption) *HTTPSource {
	ret := &HTTPSource{
		status: atomic.NewInt32(Unread),
		client: http.DefaultClient,
		method: http.MethodGet,
		link:   link,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (h *HTTPSource) Name() string {
	u, err := url.Parse(h.link)
	if err != nil {
		return h.link
	}
	if base := path.Base(u.Path); base != "." && base != "/" {
		return base
	}
	return u.Host
}

// ReadStatus reports the fetch lifecycle state.
func (h *HTTPSource) ReadStatus() ReadStatus {
	return h.status.Load()
}

func (h *HTTPSource) Fetch(ctx context.Context) (*Document, error) {
	switch h.status.Load() {
	case Reading:
		return nil, ErrFetching
	case ReadCompleted:
		return h.doc, nil
	}
	if !h.status.CompareAndSwap(Unread, Reading) {
		return nil, ErrFetching
	}

	req, err := http.NewRequestWithContext(ctx, h.method, h.link, nil)
	if err != nil {
		h.status.Store(Unread)
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		h.status.Store(Unread)
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		h.status.Store(Unread)
		return nil, fault.FromStatus("document.fetch", resp.StatusCode, h.link)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		h.status.Store(Unread)
		return nil, err
	}
	h.doc = New(h.Name(), body, map[string]string{
		"url":    h.link,
		"method": h.method,
	})
	h.status.Store(ReadCompleted)
	return h.doc, nil
}
