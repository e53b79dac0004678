package embedder

import (
	"context"

	genai "github.com/google/generative-ai-go/genai"

	"github.com/quarkbyte/finagent/llm"
)

// GeminiEmbedder generates embeddings through the Gemini API. Gemini does
// not report token usage for embedding calls, so usage is left untouched.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

var _ Embedder = (*GeminiEmbedder)(nil)

// NewGemini wraps a Gemini client. An empty model selects
// text-embedding-004.
func NewGemini(client *genai.Client, model string) *GeminiEmbedder {
	if model == "" {
		model = "text-embedding-004"
	}
	return &GeminiEmbedder{client: client, model: model}
}

func (e *GeminiEmbedder) Provider() string { return "gemini" }

func (e *GeminiEmbedder) Model() string { return e.model }

func (e *GeminiEmbedder) Embed(ctx context.Context, text string, embedding *Embedding, usage *llm.Usage) error {
	model := e.client.EmbeddingModel(e.model)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return err
	}
	if resp.Embedding == nil {
		return nil
	}
	vec := make([]float64, len(resp.Embedding.Values))
	for i, v := range resp.Embedding.Values {
		vec[i] = float64(v)
	}
	embedding.Object = text
	embedding.Embedding = vec
	embedding.Index = 0
	return nil
}

func (e *GeminiEmbedder) BatchEmbed(ctx context.Context, parts []string, usage *llm.Usage) ([]Embedding, error) {
	model := e.client.EmbeddingModel(e.model)
	batch := model.NewBatch()
	for _, part := range parts {
		batch.AddContent(genai.Text(part))
	}
	resp, err := model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	ret := make([]Embedding, 0, len(resp.Embeddings))
	for idx, v := range resp.Embeddings {
		if idx >= len(parts) {
			break
		}
		vec := make([]float64, len(v.Values))
		for i, f := range v.Values {
			vec[i] = float64(f)
		}
		ret = append(ret, Embedding{
			Object:    parts[idx],
			Embedding: vec,
			Index:     idx,
		})
	}
	return ret, nil
}
