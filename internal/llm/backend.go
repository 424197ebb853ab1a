package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Backend sends a single prompt to an inference service and returns its raw text
type Backend interface {
	// Name identifies the backend in logs and diagnostics
	Name() string

	// Complete performs exactly one request; it never retries
	Complete(ctx context.Context, prompt string) (string, error)
}

// ChatBackend adapts an Eino chat model to Backend by sending the prompt as one user message
type ChatBackend struct {
	name  string
	model model.BaseChatModel
}

// NewChatBackend wraps a chat model
func NewChatBackend(name string, chatModel model.BaseChatModel) *ChatBackend {
	return &ChatBackend{name: name, model: chatModel}
}

// Name returns the provider name
func (b *ChatBackend) Name() string {
	return b.name
}

// Complete calls Generate on the chat model with no history
func (b *ChatBackend) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("%s: %w", b.name, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%s: empty response", b.name)
	}
	return resp.Content, nil
}
