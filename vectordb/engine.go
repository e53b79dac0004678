// Package vectordb defines the vector store behind the reference-document
// index. Engines share one interface so the research corpus can live in
// process memory for tests, in chromem for single-node deployments, or in
// Milvus when the corpus outgrows a single node.
package vectordb

import (
	"context"

	"github.com/quarkbyte/finagent/embedder"
)

// EngineType selects a storage backend in configuration.
type EngineType string

const (
	Memory  EngineType = "memory"
	Chromem EngineType = "chromem"
	Milvus  EngineType = "milvus"
)

// Record is one stored chunk: its embedding plus the text and provenance
// metadata it was derived from. Score is only populated on search results
// and its scale is engine specific; results always arrive most similar
// first.
type Record struct {
	ID        string
	Score     float64
	Embedding embedder.Embedding
}

// Engine stores embedded chunks in named collections and finds the nearest
// ones to a query vector.
type Engine interface {
	Insert(ctx context.Context, collection string, records ...Record) error
	Search(ctx context.Context, vector []float64, opts ...SearchOption) ([]Record, error)
}
