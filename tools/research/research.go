// Package research answers methodology questions from an embedded corpus of
// reference documents. Documents are chunked and embedded at startup; the
// search tool retrieves the nearest chunks to a query and cites where each
// excerpt came from.
package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/quarkbyte/finagent/schema"
	"github.com/quarkbyte/finagent/tools"
)

// Input is a natural-language question against the reference corpus.
type Input struct {
	schema.Base
	Query string `json:"query" jsonschema:"title=query,description=Natural-language question to answer from the reference documents." validate:"required"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"title=top_k,description=Maximum number of excerpts to return."`
}

// Excerpt is one retrieved passage with its provenance.
type Excerpt struct {
	Source  string  `json:"source"`
	Section string  `json:"section,omitempty"`
	Score   float64 `json:"score"`
	Text    string  `json:"text"`
}

// Output carries the retrieved passages, most relevant first.
type Output struct {
	schema.Base
	Query    string    `json:"query"`
	Excerpts []Excerpt `json:"excerpts"`
}

// Summary renders the excerpts for the transcript so the decision model can
// quote them. A miss is an answer too, not an error.
func (out *Output) Summary() string {
	if len(out.Excerpts) == 0 {
		return fmt.Sprintf("[No relevant passages found in the reference documents for %q.]", out.Query)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "From the reference documents, regarding %q:\n", out.Query)
	for i, ex := range out.Excerpts {
		source := ex.Source
		if ex.Section != "" {
			source += ", " + ex.Section
		}
		fmt.Fprintf(&sb, "\n%d. (%s, score %.3f)\n%s\n", i+1, source, ex.Score, ex.Text)
	}
	sb.WriteString("\nCite the source document when using these passages.")
	return sb.String()
}

// Tool searches the reference corpus.
type Tool struct {
	tools.Config
	index *Index
}

func New(index *Index, opts ...tools.Option) *Tool {
	ret := &Tool{index: index}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("search_reference_document")
	}
	if ret.Description() == "" {
		ret.SetDescription("search_reference_document(query): search the internal research documents for methodology, model and metric definitions. Use for questions about how the analysis works.")
	}
	return ret
}

func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	records, err := t.index.Search(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, err
	}
	excerpts := make([]Excerpt, 0, len(records))
	for _, rec := range records {
		excerpts = append(excerpts, Excerpt{
			Source:  rec.Embedding.Meta["source"],
			Section: rec.Embedding.Meta["section"],
			Score:   rec.Score,
			Text:    rec.Embedding.Object,
		})
	}
	return &Output{Query: input.Query, Excerpts: excerpts}, nil
}
