package llm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const downloadURL = "https://ollama.com/download"

// Probe checks that a backend can serve requests before a generation is attempted.
// Errors carry text meant to be shown to the user as-is.
type Probe interface {
	// Installed reports whether the backend service or CLI is available
	Installed(ctx context.Context) error

	// ModelAvailable reports whether the configured model is present
	ModelAvailable(ctx context.Context) error
}

// ModelLister is implemented by probes that can enumerate local models
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

func modelMissingError(model string) error {
	return fmt.Errorf("The model %q is not available.\nRun: `ollama pull %s` and `ollama run %s`", model, model, model)
}

// HTTPProbe checks a native Ollama server over HTTP
type HTTPProbe struct {
	backend *OllamaBackend
	model   string
}

// NewHTTPProbe creates a probe sharing the backend's HTTP client
func NewHTTPProbe(backend *OllamaBackend, model string) *HTTPProbe {
	return &HTTPProbe{backend: backend, model: model}
}

// Installed calls /api/version
func (p *HTTPProbe) Installed(ctx context.Context) error {
	if _, err := p.backend.Version(ctx); err != nil {
		return fmt.Errorf("Ollama is not reachable at %s.\nStart it with `ollama serve` or download it from %s", p.backend.BaseURL(), downloadURL)
	}
	return nil
}

// ModelAvailable looks the model up in /api/tags; "name" also matches "name:latest"
func (p *HTTPProbe) ModelAvailable(ctx context.Context) error {
	names, err := p.backend.Tags(ctx)
	if err != nil {
		return fmt.Errorf("could not list Ollama models: %v", err)
	}
	for _, name := range names {
		if matchModel(name, p.model) {
			return nil
		}
	}
	return modelMissingError(p.model)
}

// ListModels returns the names reported by /api/tags
func (p *HTTPProbe) ListModels(ctx context.Context) ([]string, error) {
	return p.backend.Tags(ctx)
}

func matchModel(name, model string) bool {
	return strings.EqualFold(name, model) || strings.EqualFold(name, model+":latest")
}

// CLIProbe checks the ollama binary with `--version` and `list`
type CLIProbe struct {
	command string
	model   string
}

// NewCLIProbe creates a probe for the given command; empty means "ollama"
func NewCLIProbe(command, model string) *CLIProbe {
	if command == "" {
		command = DefaultOllamaCommand
	}
	return &CLIProbe{command: command, model: model}
}

// Installed runs `<command> --version` and requires exit status 0
func (p *CLIProbe) Installed(ctx context.Context) error {
	if _, err := p.run(ctx, "--version"); err != nil {
		return fmt.Errorf("Ollama is not installed or not available in PATH.\nDownload it from %s", downloadURL)
	}
	return nil
}

// ModelAvailable searches `<command> list` output for the model name, ignoring case
func (p *CLIProbe) ModelAvailable(ctx context.Context) error {
	out, err := p.run(ctx, "list")
	if err != nil || !strings.Contains(strings.ToLower(out), strings.ToLower(p.model)) {
		return modelMissingError(p.model)
	}
	return nil
}

// ListModels returns the first column of `<command> list`, skipping the header
func (p *CLIProbe) ListModels(ctx context.Context) ([]string, error) {
	out, err := p.run(ctx, "list")
	if err != nil {
		return nil, err
	}

	var names []string
	for i, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if i == 0 || len(fields) == 0 {
			continue
		}
		names = append(names, fields[0])
	}
	return names, nil
}

func (p *CLIProbe) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, p.command, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w", p.command, strings.Join(args, " "), err)
	}
	return stdout.String(), nil
}

// StaticProbe always passes; remote chat providers are checked by the first request
type StaticProbe struct{}

// Installed always returns nil
func (StaticProbe) Installed(context.Context) error { return nil }

// ModelAvailable always returns nil
func (StaticProbe) ModelAvailable(context.Context) error { return nil }
