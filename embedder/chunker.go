package embedder

import (
	"fmt"
	"strings"

	"github.com/clipperhouse/uax29/sentences"
	"github.com/pkoukk/tiktoken-go"
)

// Chunker splits document text into windows sized for the embedding model.
type Chunker interface {
	Chunk(text string) []Chunk
}

// Chunk is a window of document text.
type Chunk struct {
	Text string
	// TokenSize is the token count of Text under the chunker's counter.
	TokenSize int
	// StartSentence and EndSentence index the sentences spanned by this
	// chunk, end exclusive.
	StartSentence int
	EndSentence   int
}

// TokenCounter counts model tokens in a text segment.
type TokenCounter interface {
	Count(text string) int
}

// WordCounter approximates tokens by whitespace-separated words.
type WordCounter struct{}

func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// TikTokenCounter counts exact tokens for OpenAI-family models.
type TikTokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTikTokenCounter loads a tiktoken encoding such as cl100k_base.
func NewTikTokenCounter(encoding string) (*TikTokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("get encoding %s: %w", encoding, err)
	}
	return &TikTokenCounter{enc: enc}, nil
}

func (t *TikTokenCounter) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// SplitSentences segments text on Unicode sentence boundaries.
func SplitSentences(text string) []string {
	scanner := sentences.NewScanner(strings.NewReader(text))
	var out []string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

const (
	DefaultChunkSize    = 200
	DefaultChunkOverlap = 50
)

// TextChunker packs whole sentences into chunks of roughly ChunkSize tokens,
// repeating about ChunkOverlap tokens between neighbours so no statement is
// stranded at a boundary.
type TextChunker struct {
	ChunkSize        int
	ChunkOverlap     int
	TokenCounter     TokenCounter
	SentenceSplitter func(string) []string
}

var _ Chunker = (*TextChunker)(nil)

// TextChunkerOption customizes a TextChunker.
type TextChunkerOption func(*TextChunker)

func WithChunkSize(size int) TextChunkerOption {
	return func(tc *TextChunker) {
		if size > 0 {
			tc.ChunkSize = size
		}
	}
}

func WithChunkOverlap(overlap int) TextChunkerOption {
	return func(tc *TextChunker) {
		if overlap >= 0 {
			tc.ChunkOverlap = overlap
		}
	}
}

func WithTokenCounter(counter TokenCounter) TextChunkerOption {
	return func(tc *TextChunker) {
		tc.TokenCounter = counter
	}
}

func WithSentenceSplitter(split func(string) []string) TextChunkerOption {
	return func(tc *TextChunker) {
		tc.SentenceSplitter = split
	}
}

func NewTextChunker(opts ...TextChunkerOption) *TextChunker {
	tc := &TextChunker{
		ChunkSize:        DefaultChunkSize,
		ChunkOverlap:     DefaultChunkOverlap,
		TokenCounter:     WordCounter{},
		SentenceSplitter: SplitSentences,
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}

// Chunk splits text into sentences, then packs them greedily until the next
// sentence would exceed ChunkSize. A sentence larger than ChunkSize becomes
// its own oversized chunk rather than being dropped.
func (tc *TextChunker) Chunk(text string) []Chunk {
	parts := tc.SentenceSplitter(text)
	counts := make([]int, len(parts))
	for i, s := range parts {
		counts[i] = tc.TokenCounter.Count(s)
	}

	var chunks []Chunk
	start, tokens := 0, 0
	for i := range parts {
		if tokens > 0 && tokens+counts[i] > tc.ChunkSize {
			chunks = append(chunks, tc.build(parts, counts, start, i))
			start = max(start, i-tc.overlapSentences(counts, i))
			tokens = 0
			for j := start; j < i; j++ {
				tokens += counts[j]
			}
		}
		tokens += counts[i]
	}
	if tokens > 0 && start < len(parts) {
		chunks = append(chunks, tc.build(parts, counts, start, len(parts)))
	}
	return chunks
}

func (tc *TextChunker) build(parts []string, counts []int, start, end int) Chunk {
	total := 0
	for i := start; i < end; i++ {
		total += counts[i]
	}
	return Chunk{
		Text:          strings.Join(parts[start:end], " "),
		TokenSize:     total,
		StartSentence: start,
		EndSentence:   end,
	}
}

// overlapSentences reports how many sentences before index i are needed to
// reach the configured token overlap.
func (tc *TextChunker) overlapSentences(counts []int, i int) int {
	tokens, n := 0, 0
	for j := i - 1; j >= 0 && tokens < tc.ChunkOverlap; j-- {
		tokens += counts[j]
		n++
	}
	return n
}
