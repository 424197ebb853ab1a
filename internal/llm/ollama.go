package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/huimingz/commitpanel/internal/log"
)

const ollamaDefaultTimeout = 60 * time.Second

// ErrUnreachable indicates the Ollama server could not be reached
var ErrUnreachable = errors.New("ollama server unreachable")

// StatusError is returned when Ollama answers with a non-2xx status
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if body := strings.TrimSpace(e.Body); body != "" {
		return fmt.Sprintf("ollama returned HTTP %d: %s", e.Code, body)
	}
	return fmt.Sprintf("ollama returned HTTP %d", e.Code)
}

// HTTPStatusCode returns the response status code
func (e *StatusError) HTTPStatusCode() int {
	return e.Code
}

// OllamaBackend talks to the native Ollama API (/api/generate, /api/tags, /api/version)
type OllamaBackend struct {
	baseURL string
	model   string
	client  *api.Client
}

// NewOllamaBackend builds a backend for baseURL (e.g. http://localhost:11434).
// If httpClient is nil, a client with a 60s timeout is used.
func NewOllamaBackend(baseURL, model string, httpClient *http.Client) (*OllamaBackend, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base_url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid ollama base_url %q: scheme and host are required", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: ollamaDefaultTimeout}
	}
	return &OllamaBackend{
		baseURL: base.String(),
		model:   model,
		client:  api.NewClient(base, httpClient),
	}, nil
}

// Name returns the provider name
func (b *OllamaBackend) Name() string {
	return "ollama"
}

// BaseURL returns the API root
func (b *OllamaBackend) BaseURL() string {
	return b.baseURL
}

// Complete sends a non-streaming generate request and returns the response text
func (b *OllamaBackend) Complete(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{Model: b.model, Prompt: prompt, Stream: &stream}
	log.DebugRequest(http.MethodPost, b.baseURL+"/api/generate", req)

	// a server that streams anyway still yields the full text
	var out strings.Builder
	err := b.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", mapOllamaError(ctx, err))
	}

	log.DebugResponse(http.StatusOK, out.String())
	return out.String(), nil
}

// Version returns the server version reported by /api/version
func (b *OllamaBackend) Version(ctx context.Context) (string, error) {
	version, err := b.client.Version(ctx)
	if err != nil {
		return "", fmt.Errorf("ollama version: %w", mapOllamaError(ctx, err))
	}
	return version, nil
}

// Tags returns the names of locally available models from /api/tags
func (b *OllamaBackend) Tags(ctx context.Context) ([]string, error) {
	list, err := b.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ollama tags: %w", mapOllamaError(ctx, err))
	}
	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// mapOllamaError turns client errors into ErrUnreachable, *StatusError or the context error
func mapOllamaError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var apiErr api.StatusError
	if errors.As(err, &apiErr) {
		return &StatusError{Code: apiErr.StatusCode, Body: apiErr.ErrorMessage}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return errors.Join(context.DeadlineExceeded, err)
		}
		return errors.Join(ErrUnreachable, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Join(ErrUnreachable, err)
	}
	return err
}
