// Package embedder turns reference-document text into vector embeddings for
// the research index.
package embedder

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/quarkbyte/finagent/llm"
)

// Embedding is the vector representation of a piece of text. Object carries
// the embedded text itself and Meta the provenance of the chunk.
type Embedding struct {
	Object    string            `json:"object"`
	Embedding []float64         `json:"embedding"`
	Index     int               `json:"index"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// UUID derives a stable identifier from the embedded text and its metadata,
// so re-ingesting an unchanged corpus overwrites instead of duplicating.
// Meta keys are folded in sorted order to keep the identifier deterministic.
func (e Embedding) UUID() string {
	buf := new(bytes.Buffer)
	buf.WriteString(e.Object)
	keys := make([]string, 0, len(e.Meta))
	for k := range e.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteString(k + ":" + e.Meta[k])
		buf.WriteByte('\n')
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, buf.Bytes()).String()
}

// DotProduct multiplies the vector with another of the same length.
func (e *Embedding) DotProduct(other *Embedding) (float64, error) {
	if len(e.Embedding) != len(other.Embedding) {
		return 0, errors.New("vector length mismatch")
	}
	var sum float64
	for i := range e.Embedding {
		sum += e.Embedding[i] * other.Embedding[i]
	}
	return sum, nil
}

// Embedder generates embeddings through a hosted model.
type Embedder interface {
	Provider() string
	Model() string
	Embed(ctx context.Context, text string, embedding *Embedding, usage *llm.Usage) error
	BatchEmbed(ctx context.Context, parts []string, usage *llm.Usage) ([]Embedding, error)
}

// EmbedChunks embeds every chunk in a single batch call.
func EmbedChunks(ctx context.Context, emb Embedder, chunks []Chunk, usage *llm.Usage) ([]Embedding, error) {
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = chunk.Text
	}
	return emb.BatchEmbed(ctx, parts, usage)
}
