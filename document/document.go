// Package document loads reference documents from files, HTTP and S3 and
// renders them to text or markdown for corpus ingestion.
package document

import (
	"bytes"
	"context"
	"errors"

	"github.com/gabriel-vasile/mimetype"
)

// ErrFetching is returned when a fetch is requested while another fetch of
// the same source is still in flight.
var ErrFetching = errors.New("document fetch already in flight")

// ReadStatus tracks the fetch lifecycle of a cached source.
type ReadStatus = int32

const (
	Unread ReadStatus = iota
	Reading
	ReadCompleted
)

// Source produces a Document from some storage backend.
type Source interface {
	// Name identifies the document, used for provenance in search results.
	Name() string
	// Fetch loads the document body. Implementations may cache, in which
	// case a later Fetch returns the cached Document.
	Fetch(ctx context.Context) (*Document, error)
}

// Document is an in-memory reference document with its detected content
// type and source metadata.
type Document struct {
	name string
	mime *mimetype.MIME
	meta map[string]string
	body []byte
}

// New wraps raw bytes as a Document, sniffing the content type from the
// body rather than trusting the name.
func New(name string, body []byte, meta map[string]string) *Document {
	if meta == nil {
		meta = make(map[string]string)
	}
	return &Document{
		name: name,
		mime: mimetype.Detect(body),
		meta: meta,
		body: body,
	}
}

// Name returns the document identifier.
func (d *Document) Name() string { return d.name }

// MIME returns the detected content type.
func (d *Document) MIME() *mimetype.MIME { return d.mime }

// Meta returns source metadata such as the origin path or URL.
func (d *Document) Meta() map[string]string { return d.meta }

// Len returns the body size in bytes.
func (d *Document) Len() int { return len(d.body) }

// Reader returns a fresh reader over the body.
func (d *Document) Reader() *bytes.Reader { return bytes.NewReader(d.body) }
