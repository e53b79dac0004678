package llm

import (
	"context"
	"testing"

	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
)

func TestMessageToOpenAI(t *testing.T) {
	m := Message{Role: UserRole, Content: "show the chart"}
	var dist openai.ChatCompletionMessage
	m.ToOpenAI(&dist)
	if dist.Role != "user" || dist.Content != "show the chart" {
		t.Errorf("converted = %+v", dist)
	}
}

func TestMessageToAnthropic(t *testing.T) {
	m := Message{Role: AssistantRole, Content: "done"}
	var dist anthropic.Message
	m.ToAnthropic(&dist)
	if dist.Role != anthropic.ChatRole("assistant") {
		t.Errorf("role = %v", dist.Role)
	}
	if len(dist.Content) != 1 {
		t.Fatalf("content parts = %d, want 1", len(dist.Content))
	}
}

func TestMessageToCohere(t *testing.T) {
	for _, tc := range []struct {
		role Role
		want string
	}{
		{SystemRole, "SYSTEM"},
		{AssistantRole, "CHATBOT"},
		{UserRole, "USER"},
	} {
		m := Message{Role: tc.role, Content: "x"}
		var dist cohere.Message
		m.ToCohere(&dist)
		if dist.Role != tc.want {
			t.Errorf("role %s → %q, want %q", tc.role, dist.Role, tc.want)
		}
	}
	var dist cohere.Message
	Message{Role: AssistantRole, Content: "reply"}.ToCohere(&dist)
	if dist.Chatbot == nil || dist.Chatbot.Message != "reply" {
		t.Error("assistant content should land in the Chatbot field")
	}
}

func TestUsageMerge(t *testing.T) {
	u := Usage{InputTokens: 100, OutputTokens: 20}
	u.Merge(&Usage{InputTokens: 50, OutputTokens: 5})
	u.Merge(nil)
	if u.InputTokens != 150 || u.OutputTokens != 25 {
		t.Errorf("merged = %+v", u)
	}
}

func TestResponseFromOpenAI(t *testing.T) {
	src := openai.ChatCompletionResponse{
		ID:    "chatcmpl-1",
		Model: "gpt-4o",
		Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 3},
	}
	var r Response
	r.FromOpenAI(&src)
	if r.ID != "chatcmpl-1" || r.Model != "gpt-4o" {
		t.Errorf("meta = %+v", r)
	}
	if r.Usage == nil || r.Usage.InputTokens != 10 || r.Usage.OutputTokens != 3 {
		t.Errorf("usage = %+v", r.Usage)
	}
}

func TestClientRejectsEmptyTranscript(t *testing.T) {
	c := NewClient(WithModel("gpt-4o"), WithMaxTokens(256))
	if err := c.CreateStructured(context.Background(), nil, &struct{}{}, nil); err == nil {
		t.Error("empty transcript should error")
	}
}
