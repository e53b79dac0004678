package embedder

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/quarkbyte/finagent/llm"
)

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

var _ Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAI wraps an OpenAI client. An empty model selects
// text-embedding-3-small.
func NewOpenAI(client *openai.Client, model string) *OpenAIEmbedder {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbedder{client: client, model: model}
}

func (e *OpenAIEmbedder) Provider() string { return "openai" }

func (e *OpenAIEmbedder) Model() string { return e.model }

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string, embedding *Embedding, usage *llm.Usage) error {
	ret, err := e.BatchEmbed(ctx, []string{text}, usage)
	if err != nil {
		return err
	}
	if len(ret) > 0 {
		*embedding = ret[0]
	}
	return nil
}

func (e *OpenAIEmbedder) BatchEmbed(ctx context.Context, parts []string, usage *llm.Usage) ([]Embedding, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: parts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, err
	}
	if usage != nil {
		usage.InputTokens += resp.Usage.PromptTokens
	}
	ret := make([]Embedding, len(parts))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(ret) {
			continue
		}
		vec := make([]float64, len(data.Embedding))
		for i, v := range data.Embedding {
			vec[i] = float64(v)
		}
		ret[data.Index] = Embedding{
			Object:    parts[data.Index],
			Embedding: vec,
			Index:     data.Index,
		}
	}
	return ret, nil
}
