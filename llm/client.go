package llm

import (
	"context"
	"errors"

	"github.com/bububa/instructor-go/pkg/instructor"
	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
)

// Completer produces a structured completion for a transcript. The result
// pointer must be a struct carrying jsonschema tags.
type Completer interface {
	CreateStructured(ctx context.Context, messages []Message, result any, apiResp *Response) error
}

// Client binds an instructor provider to a model and sampling settings.
type Client struct {
	client      instructor.Instructor
	model       string
	temperature float32
	maxTokens   int
}

// Option configures a Client.
type Option func(*Client)

// WithInstructor sets the provider client.
func WithInstructor(clt instructor.Instructor) Option {
	return func(c *Client) {
		c.client = clt
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float32) Option {
	return func(c *Client) {
		c.temperature = temperature
	}
}

// WithMaxTokens bounds the completion length.
func WithMaxTokens(maxTokens int) Option {
	return func(c *Client) {
		c.maxTokens = maxTokens
	}
}

// NewClient returns a configured Client.
func NewClient(options ...Option) *Client {
	ret := new(Client)
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// CreateStructured sends the transcript and decodes the completion into
// result. apiResp, when non-nil, receives provider metadata and token usage.
func (c *Client) CreateStructured(ctx context.Context, messages []Message, result any, apiResp *Response) error {
	if len(messages) == 0 {
		return errors.New("llm: empty transcript")
	}
	switch clt := c.client.(type) {
	case *instructor.InstructorOpenAI:
		chatReq := openai.ChatCompletionRequest{
			Model:               c.model,
			Temperature:         c.temperature,
			MaxCompletionTokens: c.maxTokens,
		}
		for _, msg := range messages {
			v := new(openai.ChatCompletionMessage)
			msg.ToOpenAI(v)
			chatReq.Messages = append(chatReq.Messages, *v)
		}
		res, err := clt.CreateChatCompletion(ctx, chatReq, result)
		if err != nil {
			return err
		}
		if apiResp != nil {
			apiResp.FromOpenAI(&res)
		}
	case *instructor.InstructorAnthropic:
		chatReq := anthropic.MessagesRequest{
			Model:       anthropic.Model(c.model),
			Temperature: &c.temperature,
			MaxTokens:   c.maxTokens,
		}
		for _, msg := range messages {
			// Anthropic takes the system prompt out of band.
			if msg.Role == SystemRole {
				chatReq.System += msg.Content
				continue
			}
			v := new(anthropic.Message)
			msg.ToAnthropic(v)
			chatReq.Messages = append(chatReq.Messages, *v)
		}
		res, err := clt.CreateMessages(ctx, chatReq, result)
		if err != nil {
			return err
		}
		if apiResp != nil {
			apiResp.FromAnthropic(&res)
		}
	case *instructor.InstructorCohere:
		lastIdx := len(messages) - 1
		temperature := float64(c.temperature)
		chatReq := cohere.ChatRequest{
			Model:       &c.model,
			Temperature: &temperature,
			MaxTokens:   &c.maxTokens,
			Message:     messages[lastIdx].Content,
		}
		for idx, msg := range messages {
			if idx >= lastIdx {
				break
			}
			v := new(cohere.Message)
			msg.ToCohere(v)
			chatReq.ChatHistory = append(chatReq.ChatHistory, v)
		}
		res, err := clt.Chat(ctx, &chatReq, result)
		if err != nil {
			return err
		}
		if apiResp != nil {
			apiResp.FromCohere(res)
		}
	default:
		return errors.New("llm: unsupported provider client")
	}
	return nil
}
