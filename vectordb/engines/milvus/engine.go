// Package milvus backs the research index with a Milvus cluster for
// deployments where the reference corpus outgrows an embedded store.
package milvus

import (
	"context"
	"encoding/json"

	milvusClient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/quarkbyte/finagent/vectordb"
)

// Engine wraps a Milvus client. Collections are created lazily on first
// insert with an HNSW index over cosine similarity, so scores grow with
// relevance.
type Engine struct {
	db milvusClient.Client
	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

func New(db milvusClient.Client, opts ...vectordb.Option) *Engine {
	ret := &Engine{
		db: db,
	}
	ret.EngineType = vectordb.Milvus
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret
}

// CreateCollection provisions the chunk schema: a stable string primary
// key, the vector column, the chunk text and a JSON metadata column.
func (e *Engine) CreateCollection(ctx context.Context, name string, dim int64) error {
	idField := entity.NewField().WithName("id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(36).WithIsPrimaryKey(true).WithIsAutoID(false)
	vectorField := entity.NewField().WithName("embedding").WithDataType(entity.FieldTypeFloatVector).WithDim(dim)
	contentField := entity.NewField().WithName("content").WithDataType(entity.FieldTypeString)
	metaField := entity.NewField().WithName("meta").WithDataType(entity.FieldTypeJSON).WithIsDynamic(true)
	schema := entity.NewSchema().WithName(name).WithAutoID(false).WithField(idField).WithField(vectorField).WithField(contentField).WithField(metaField)
	if err := e.db.CreateCollection(ctx, schema, 0); err != nil {
		return err
	}
	idxHnsw, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
	if err != nil {
		return err
	}
	return e.db.CreateIndex(ctx, name, "embedding", idxHnsw, true, milvusClient.WithIndexName("embedding_idx"))
}

func (e *Engine) Insert(ctx context.Context, collection string, records ...vectordb.Record) error {
	if len(records) == 0 {
		return nil
	}
	dim := int64(len(records[0].Embedding.Embedding))
	if dim == 0 && e.Dimension > 0 {
		dim = int64(e.Dimension)
	}
	if exists, err := e.db.HasCollection(ctx, collection); err != nil {
		return err
	} else if !exists {
		if err := e.CreateCollection(ctx, collection, dim); err != nil {
			return err
		}
	}
	ids := make([]string, 0, len(records))
	vectors := make([][]float32, 0, len(records))
	contents := make([]string, 0, len(records))
	metas := make([][]byte, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			record.ID = record.Embedding.UUID()
		}
		ids = append(ids, record.ID)
		vectors = append(vectors, vectordb.Float32s(record.Embedding.Embedding))
		contents = append(contents, record.Embedding.Object)
		bs, err := json.Marshal(record.Embedding.Meta)
		if err != nil {
			return err
		}
		metas = append(metas, bs)
	}
	columns := []entity.Column{
		entity.NewColumnVarChar("id", ids),
		entity.NewColumnFloatVector("embedding", int(dim), vectors),
		entity.NewColumnString("content", contents),
		entity.NewColumnJSONBytes("meta", metas),
	}
	_, err := e.db.Insert(ctx, collection, "", columns...)
	return err
}

func (e *Engine) Search(ctx context.Context, vector []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	var option vectordb.SearchOptions
	for _, opt := range opts {
		opt(&option)
	}
	if err := e.db.LoadCollection(ctx, option.Collection, false); err != nil {
		return nil, err
	}
	query := entity.FloatVector(vectordb.Float32s(vector))
	topK := option.TopK
	if topK == 0 {
		topK = e.TopK
	}
	searchParams, err := entity.NewIndexHNSWSearchParam(topK)
	if err != nil {
		return nil, err
	}
	results, err := e.db.Search(ctx, option.Collection, nil, "", []string{"id", "content", "meta"}, []entity.Vector{query}, "embedding", entity.COSINE, topK, searchParams)
	if err != nil {
		return nil, err
	}
	records := make([]vectordb.Record, 0, topK)
	for _, result := range results {
		records = append(records, resultRecords(&result)...)
	}
	return records, nil
}

// resultRecords flattens one Milvus result set into records, one per hit.
func resultRecords(result *milvusClient.SearchResult) []vectordb.Record {
	records := make([]vectordb.Record, result.ResultCount)
	for i := range result.ResultCount {
		if i < len(result.Scores) {
			records[i].Score = float64(result.Scores[i])
		}
		if col := result.Fields.GetColumn("id"); col != nil {
			records[i].ID, _ = col.GetAsString(i)
		}
		if col := result.Fields.GetColumn("content"); col != nil {
			records[i].Embedding.Object, _ = col.GetAsString(i)
		}
		if col := result.Fields.GetColumn("meta"); col != nil {
			if v, err := col.Get(i); err == nil {
				if bs, ok := v.([]byte); ok {
					json.Unmarshal(bs, &records[i].Embedding.Meta)
				}
			}
		}
	}
	return records
}
