package research

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/quarkbyte/finagent/document"
	"github.com/quarkbyte/finagent/embedder"
	"github.com/quarkbyte/finagent/fault"
	"github.com/quarkbyte/finagent/llm"
	"github.com/quarkbyte/finagent/vectordb"
)

// DefaultCollection is the vector store collection holding the corpus.
const DefaultCollection = "reference"

// Index is the reference-document corpus: documents are parsed to text,
// chunked, embedded and stored in a vector engine, then searched by query
// embedding.
type Index struct {
	engine     vectordb.Engine
	embedder   embedder.Embedder
	chunker    embedder.Chunker
	collection string
	topK       int
	logger     *slog.Logger
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithCollection names the vector store collection.
func WithCollection(name string) IndexOption {
	return func(i *Index) {
		i.collection = name
	}
}

// WithChunker replaces the default text chunker.
func WithChunker(chunker embedder.Chunker) IndexOption {
	return func(i *Index) {
		i.chunker = chunker
	}
}

// WithTopK sets the default result count for Search.
func WithTopK(topK int) IndexOption {
	return func(i *Index) {
		i.topK = topK
	}
}

// WithLogger routes ingestion progress to the given logger.
func WithLogger(logger *slog.Logger) IndexOption {
	return func(i *Index) {
		i.logger = logger
	}
}

// NewIndex builds a corpus over the given engine and embedder.
func NewIndex(engine vectordb.Engine, emb embedder.Embedder, opts ...IndexOption) *Index {
	ret := &Index{
		engine:     engine,
		embedder:   emb,
		chunker:    embedder.NewTextChunker(),
		collection: DefaultCollection,
		topK:       4,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Collection returns the vector store collection the corpus lives in.
func (i *Index) Collection() string { return i.collection }

// AddSource ingests one document: fetch, render to text, chunk, embed and
// store. Every stored chunk carries the document name and its position so
// search hits can cite where they came from. Returns the chunk count.
func (i *Index) AddSource(ctx context.Context, src document.Source) (int, error) {
	doc, err := src.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", src.Name(), err)
	}
	text, err := document.Text(ctx, doc)
	if err != nil {
		return 0, err
	}
	chunks := i.chunker.Chunk(text)
	if len(chunks) == 0 {
		return 0, fault.Errorf(fault.Validation, "research.index", "document %s produced no text", doc.Name())
	}
	var usage llm.Usage
	embeddings, err := embedder.EmbedChunks(ctx, i.embedder, chunks, &usage)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", doc.Name(), err)
	}
	records := make([]vectordb.Record, 0, len(embeddings))
	for idx, emb := range embeddings {
		emb.Meta = map[string]string{
			"source":  doc.Name(),
			"section": "chunk " + strconv.Itoa(idx+1),
		}
		records = append(records, vectordb.Record{Embedding: emb})
	}
	if err := i.engine.Insert(ctx, i.collection, records...); err != nil {
		return 0, fmt.Errorf("store %s: %w", doc.Name(), err)
	}
	i.logger.Info("indexed reference document",
		"source", doc.Name(),
		"chunks", len(records),
		"embed_tokens", usage.InputTokens,
	)
	return len(records), nil
}

// AddSources ingests documents in order, stopping at the first failure.
func (i *Index) AddSources(ctx context.Context, srcs ...document.Source) error {
	for _, src := range srcs {
		if _, err := i.AddSource(ctx, src); err != nil {
			return err
		}
	}
	return nil
}

// Search embeds the query and returns the nearest chunks, most similar
// first. A non-positive topK falls back to the index default.
func (i *Index) Search(ctx context.Context, query string, topK int) ([]vectordb.Record, error) {
	var emb embedder.Embedding
	if err := i.embedder.Embed(ctx, query, &emb, nil); err != nil {
		return nil, fault.New(fault.UpstreamUnavailable, "research.search", err)
	}
	if topK <= 0 {
		topK = i.topK
	}
	return i.engine.Search(ctx, emb.Embedding,
		vectordb.SearchWithCollection(i.collection),
		vectordb.SearchWithTopK(topK),
	)
}

// ParseSource turns a configured source spec into a document source.
// Specs are s3://bucket/key object names, http(s) URLs, or local paths.
// S3 specs need a client; passing nil rejects them.
func ParseSource(spec string, s3client *s3.Client) (document.Source, error) {
	switch {
	case strings.HasPrefix(spec, "s3://"):
		rest := strings.TrimPrefix(spec, "s3://")
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return nil, fault.Errorf(fault.Validation, "research.source", "malformed s3 source %q, want s3://bucket/key", spec)
		}
		if s3client == nil {
			return nil, fault.Errorf(fault.Validation, "research.source", "s3 source %q configured without s3 credentials", spec)
		}
		return document.NewS3Source(s3client, bucket, key), nil
	case strings.HasPrefix(spec, "http://"), strings.HasPrefix(spec, "https://"):
		return document.NewHTTPSource(spec), nil
	case spec == "":
		return nil, fault.Errorf(fault.Validation, "research.source", "empty source spec")
	default:
		return document.NewFileSource(spec), nil
	}
}
