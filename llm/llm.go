// Package llm wraps the instructor-backed providers behind one structured
// completion call. The decision step and the narrative finalizers both go
// through it.
package llm

import (
	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
)

// Role is the speaker of a transcript message.
type Role = string

const (
	SystemRole    Role = "system"
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
)

// Message is one entry of the model transcript.
type Message struct {
	Role    Role
	Content string
}

// ToOpenAI converts the message to an openai ChatCompletionMessage.
func (m Message) ToOpenAI(dist *openai.ChatCompletionMessage) {
	dist.Role = m.Role
	dist.Content = m.Content
}

// ToAnthropic converts the message to an anthropic Message.
func (m Message) ToAnthropic(dist *anthropic.Message) {
	dist.Role = anthropic.ChatRole(m.Role)
	dist.Content = []anthropic.MessageContent{anthropic.NewTextMessageContent(m.Content)}
}

// ToCohere converts the message to a cohere Message.
func (m Message) ToCohere(dist *cohere.Message) {
	switch m.Role {
	case SystemRole:
		dist.Role = "SYSTEM"
		dist.System = &cohere.ChatMessage{
			Message: m.Content,
		}
	case AssistantRole:
		dist.Role = "CHATBOT"
		dist.Chatbot = &cohere.ChatMessage{
			Message: m.Content,
		}
	case UserRole:
		dist.Role = "USER"
		dist.User = &cohere.ChatMessage{
			Message: m.Content,
		}
	}
}
