package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/huimingz/commitpanel/internal/config"
	"github.com/huimingz/commitpanel/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	calls    atomic.Int32
	complete func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	return f.complete(ctx, prompt)
}

func replying(text string) *fakeBackend {
	return &fakeBackend{complete: func(context.Context, string) (string, error) { return text, nil }}
}

func TestBuildPrompt(t *testing.T) {
	diff := "diff --git a/x.go b/x.go\n+{{not a template}}"
	prompt, err := BuildPrompt(PromptData{CommitType: "fix", MaxChars: 42, Diff: diff})
	require.NoError(t, err)
	assert.Contains(t, prompt, "clear fix Git commit title")
	assert.Contains(t, prompt, "at most 42 characters")
	assert.Contains(t, prompt, "imperative mood")
	assert.Contains(t, prompt, diff)
}

func TestClient_Generate(t *testing.T) {
	var seen string
	backend := &fakeBackend{complete: func(_ context.Context, prompt string) (string, error) {
		seen = prompt
		return "  \"Add login form!\"\n", nil
	}}

	client := NewClient(backend, WithMaxChars(30))
	result, err := client.Generate(context.Background(), "+login", "feature")
	require.NoError(t, err)
	assert.Equal(t, "Add login form", result.Message)
	assert.GreaterOrEqual(t, result.DurationSeconds(), 0.0)
	assert.Contains(t, seen, "+login")
	assert.Contains(t, seen, "at most 30 characters")
	assert.EqualValues(t, 1, backend.calls.Load())
}

func TestClient_Generate_QuotesOnly(t *testing.T) {
	client := NewClient(replying(`"Fix parser: handle EOF"`), WithStrictness(message.QuotesOnly))
	result, err := client.Generate(context.Background(), "d", "fix")
	require.NoError(t, err)
	assert.Equal(t, "Fix parser: handle EOF", result.Message)
}

func TestClient_Generate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		cause   error
	}{
		{
			name:    "backend error",
			backend: &fakeBackend{complete: func(context.Context, string) (string, error) { return "", ErrUnreachable }},
			cause:   ErrUnreachable,
		},
		{
			name:    "empty output",
			backend: replying("   "),
			cause:   ErrEmptyMessage,
		},
		{
			name:    "punctuation only",
			backend: replying(`"!!!"`),
			cause:   ErrEmptyMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewClient(tt.backend).Generate(context.Background(), "d", "fix")
			assert.Nil(t, result)

			var genErr *GenerationError
			require.True(t, errors.As(err, &genErr))
			assert.ErrorIs(t, err, tt.cause)
			assert.EqualValues(t, 1, tt.backend.calls.Load())
		})
	}
}

func TestClient_Generate_Timeout(t *testing.T) {
	backend := &fakeBackend{complete: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}

	_, err := NewClient(backend, WithTimeout(20*time.Millisecond)).Generate(context.Background(), "d", "fix")
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_WarmUp(t *testing.T) {
	t.Run("failures are swallowed and retried", func(t *testing.T) {
		backend := &fakeBackend{complete: func(context.Context, string) (string, error) { return "", ErrUnreachable }}
		retry := &config.RetryConfig{Enabled: true, MaxAttempts: 1, BackoffBase: 0.001, BackoffMax: 0.001}

		NewClient(backend, WithWarmUpRetry(retry)).WarmUp(context.Background())
		assert.EqualValues(t, 2, backend.calls.Load())
	})

	t.Run("sends warm-up prompt", func(t *testing.T) {
		var seen string
		backend := &fakeBackend{complete: func(_ context.Context, prompt string) (string, error) {
			seen = prompt
			return "OK", nil
		}}
		NewClient(backend).WarmUp(context.Background())
		assert.Equal(t, WarmUpPrompt, seen)
	})
}

func TestClient_WarmUpYieldsToGenerate(t *testing.T) {
	t.Run("generate cancels running warm-up", func(t *testing.T) {
		warmStarted := make(chan struct{})
		warmErr := make(chan error, 1)
		backend := &fakeBackend{complete: func(ctx context.Context, prompt string) (string, error) {
			if prompt == WarmUpPrompt {
				close(warmStarted)
				<-ctx.Done()
				warmErr <- ctx.Err()
				return "", ctx.Err()
			}
			return "Add caching layer", nil
		}}
		retry := &config.RetryConfig{Enabled: true, MaxAttempts: 3, BackoffBase: 0.001, BackoffMax: 0.001}
		client := NewClient(backend, WithWarmUpRetry(retry))

		done := make(chan struct{})
		go func() {
			client.WarmUp(context.Background())
			close(done)
		}()
		<-warmStarted

		result, err := client.Generate(context.Background(), "diff", "fix")
		require.NoError(t, err)
		assert.Equal(t, "Add caching layer", result.Message)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("warm-up still running after Generate")
		}
		assert.ErrorIs(t, <-warmErr, context.Canceled)
		assert.EqualValues(t, 2, backend.calls.Load())
	})

	t.Run("warm-up after generate is skipped", func(t *testing.T) {
		backend := replying("Add caching layer")
		client := NewClient(backend)

		_, err := client.Generate(context.Background(), "diff", "fix")
		require.NoError(t, err)
		client.WarmUp(context.Background())
		assert.EqualValues(t, 1, backend.calls.Load())
	})
}

func TestNewClientFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Message.MaxChars = 33
	cfg.Message.Strictness = config.StrictnessQuotes
	cfg.Generation.Timeout = 5

	client := NewClientFromConfig(replying("x"), cfg)
	assert.Equal(t, 33, client.maxChars)
	assert.Equal(t, message.QuotesOnly, client.strictness)
	assert.Equal(t, 5*time.Second, client.timeout)
	assert.NotNil(t, client.retry)
}

type fakeChatModel struct {
	reply *schema.Message
	err   error
	input []*schema.Message
}

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.input = input
	return m.reply, m.err
}

func (m *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestChatBackend_Complete(t *testing.T) {
	chat := &fakeChatModel{reply: schema.AssistantMessage("Add retry to uploads", nil)}
	backend := NewChatBackend("openai", chat)

	out, err := backend.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Add retry to uploads", out)
	require.Len(t, chat.input, 1)
	assert.Equal(t, schema.User, chat.input[0].Role)
	assert.Equal(t, "prompt", chat.input[0].Content)

	chat.err = errors.New("401 unauthorized")
	_, err = backend.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai: 401 unauthorized")
}
