// Package memory keeps the research index in process memory. It is the
// default engine: no external service, good enough for a corpus of a few
// reports, and the backend every test runs against.
package memory

import (
	"context"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/quarkbyte/finagent/vectordb"
)

// Engine stores collections in a sync.Map keyed by name. Scores are L2
// distances, so smaller means more similar; results are sorted ascending.
type Engine struct {
	collections *sync.Map
	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

// Collection is a named record set with its own lock.
type Collection struct {
	records []vectordb.Record
	mu      sync.RWMutex
}

func (c *Collection) AddRecords(records ...vectordb.Record) {
	c.mu.Lock()
	c.records = append(c.records, records...)
	c.mu.Unlock()
}

// Records returns a snapshot of the collection contents.
func (c *Collection) Records() []vectordb.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]vectordb.Record, len(c.records))
	copy(out, c.records)
	return out
}

func New(opts ...vectordb.Option) (*Engine, error) {
	ret := &Engine{
		collections: new(sync.Map),
	}
	ret.EngineType = vectordb.Memory
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret, nil
}

// HasCollection reports whether the named collection exists.
func (e *Engine) HasCollection(name string) (bool, error) {
	_, exists := e.collections.Load(name)
	return exists, nil
}

// DropCollection removes a collection and all its records.
func (e *Engine) DropCollection(name string) error {
	e.collections.Delete(name)
	return nil
}

// Collection returns the named collection, creating it on first use.
func (e *Engine) Collection(_ context.Context, name string) (*Collection, error) {
	col, _ := e.collections.LoadOrStore(name, new(Collection))
	return col.(*Collection), nil
}

func (e *Engine) Insert(ctx context.Context, collection string, records ...vectordb.Record) error {
	col, err := e.Collection(ctx, collection)
	if err != nil {
		return err
	}
	docs := make([]vectordb.Record, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			record.ID = record.Embedding.UUID()
		}
		docs = append(docs, record)
	}
	col.AddRecords(docs...)
	return nil
}

func (e *Engine) Search(ctx context.Context, vector []float64, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	var option vectordb.SearchOptions
	for _, opt := range opts {
		opt(&option)
	}
	col, err := e.Collection(ctx, option.Collection)
	if err != nil {
		return nil, err
	}
	records := filterRecords(col.Records(), &option)
	for idx := range records {
		records[idx].Score = euclideanDistance(vector, records[idx].Embedding.Embedding)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Score < records[j].Score
	})
	topK := option.TopK
	if topK == 0 {
		topK = e.TopK
	}
	if topK == 0 || topK > len(records) {
		topK = len(records)
	}
	return records[:topK], nil
}

// filterRecords applies the metadata and substring filters concurrently.
func filterRecords(docs []vectordb.Record, opts *vectordb.SearchOptions) []vectordb.Record {
	if opts.Meta == nil && opts.Include == "" && opts.Exclude == "" {
		return docs
	}
	filtered := make([]vectordb.Record, 0, len(docs))
	var filteredLock sync.Mutex

	concurrency := min(runtime.NumCPU(), len(docs))
	docChan := make(chan vectordb.Record, concurrency*2)

	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range docChan {
				if recordMatchesFilters(&doc, opts) {
					filteredLock.Lock()
					filtered = append(filtered, doc)
					filteredLock.Unlock()
				}
			}
		}()
	}
	for _, doc := range docs {
		docChan <- doc
	}
	close(docChan)
	wg.Wait()

	return filtered
}

// recordMatchesFilters requires every Meta key to match exactly and applies
// the Include/Exclude substring filters to the chunk text.
func recordMatchesFilters(record *vectordb.Record, opts *vectordb.SearchOptions) bool {
	for k, v := range opts.Meta {
		if record.Embedding.Meta[k] != v {
			return false
		}
	}
	if opts.Include != "" && !strings.Contains(record.Embedding.Object, opts.Include) {
		return false
	}
	if opts.Exclude != "" && strings.Contains(record.Embedding.Object, opts.Exclude) {
		return false
	}
	return true
}

func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
