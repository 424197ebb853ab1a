package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/huimingz/commitpanel/internal/config"
	"github.com/huimingz/commitpanel/internal/log"
	"github.com/huimingz/commitpanel/internal/message"
)

// ErrEmptyMessage is the cause when the backend output normalizes to nothing
var ErrEmptyMessage = errors.New("backend returned an empty message")

// GenerationError wraps every failure of Generate.
// Unreachable backends, malformed bodies and empty output are reported the same way.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate commit message: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Result is a normalized commit title and the time the backend took to produce it
type Result struct {
	Message  string
	Duration time.Duration
}

// DurationSeconds returns the elapsed time in seconds
func (r *Result) DurationSeconds() float64 {
	return r.Duration.Seconds()
}

// Client turns a staged diff into a normalized commit title
type Client struct {
	backend    Backend
	timeout    time.Duration
	maxChars   int
	strictness message.Strictness
	retry      *config.RetryConfig

	// warm-up yields to the first Generate
	mu           sync.Mutex
	generating   bool
	cancelWarmUp context.CancelFunc
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithTimeout bounds each Generate call
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxChars sets the character ceiling written into the prompt
func WithMaxChars(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxChars = n
		}
	}
}

// WithStrictness selects the normalization level
func WithStrictness(s message.Strictness) ClientOption {
	return func(c *Client) {
		c.strictness = s
	}
}

// WithWarmUpRetry sets the retry policy used by WarmUp
func WithWarmUpRetry(cfg *config.RetryConfig) ClientOption {
	return func(c *Client) {
		c.retry = cfg
	}
}

// NewClient creates a Client for backend
func NewClient(backend Backend, opts ...ClientOption) *Client {
	c := &Client{
		backend:    backend,
		timeout:    time.Duration(config.DefaultGenerationConfig().Timeout) * time.Second,
		maxChars:   config.DefaultMessageConfig().MaxChars,
		strictness: message.Strict,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig creates a Client using the generation, message and retry sections of cfg
func NewClientFromConfig(backend Backend, cfg *config.Config) *Client {
	gen := cfg.GetGenerationConfig()
	msg := cfg.GetMessageConfig()
	return NewClient(backend,
		WithTimeout(time.Duration(gen.Timeout)*time.Second),
		WithMaxChars(msg.MaxChars),
		WithStrictness(message.ParseStrictness(msg.Strictness)),
		WithWarmUpRetry(cfg.GetRetryConfig()),
	)
}

// Backend returns the underlying backend
func (c *Client) Backend() Backend {
	return c.backend
}

// Generate sends one request for diff and commitType. It never retries.
// Every failure, including an empty normalized message, is a *GenerationError.
func (c *Client) Generate(ctx context.Context, diff, commitType string) (*Result, error) {
	prompt, err := BuildPrompt(PromptData{CommitType: commitType, MaxChars: c.maxChars, Diff: diff})
	if err != nil {
		return nil, &GenerationError{Cause: err}
	}
	log.DebugPrompt(prompt)
	c.stopWarmUp()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	raw, err := c.backend.Complete(ctx, prompt)
	elapsed := time.Since(start)
	log.DebugDuration(c.backend.Name()+" generation", elapsed)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("no response within %v: %w", c.timeout, err)
		}
		return nil, &GenerationError{Cause: err}
	}

	msg := message.Normalize(raw, c.strictness)
	if msg == "" {
		return nil, &GenerationError{Cause: ErrEmptyMessage}
	}

	return &Result{Message: msg, Duration: elapsed}, nil
}

// WarmUp sends a throwaway prompt so the model is loaded before the first Generate.
// Failures are logged and otherwise ignored.
func (c *Client) WarmUp(ctx context.Context) {
	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		log.Debug("Skipping warm-up: generation already started")
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancelWarmUp = cancel
	c.mu.Unlock()
	defer cancel()

	log.Debug("Warming up %s", c.backend.Name())
	start := time.Now()

	err := WithRetry(ctx, c.retry, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		_, err := c.backend.Complete(attemptCtx, WarmUpPrompt)
		return err
	})
	if err != nil {
		log.Debug("Warm-up failed: %v", err)
		return
	}
	log.DebugDuration("warm-up", time.Since(start))
}

// stopWarmUp cancels a running warm-up and prevents later ones
func (c *Client) stopWarmUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generating = true
	if c.cancelWarmUp != nil {
		c.cancelWarmUp()
		c.cancelWarmUp = nil
	}
}
