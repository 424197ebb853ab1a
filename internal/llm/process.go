package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/huimingz/commitpanel/internal/log"
)

// DefaultOllamaCommand is the CLI used by the process transport
const DefaultOllamaCommand = "ollama"

// ProcessBackend runs `<command> run <model>` with the prompt on stdin
type ProcessBackend struct {
	command string
	model   string
}

// NewProcessBackend creates a process backend; an empty command means "ollama"
func NewProcessBackend(command, model string) *ProcessBackend {
	if command == "" {
		command = DefaultOllamaCommand
	}
	return &ProcessBackend{command: command, model: model}
}

// Name returns the provider name
func (b *ProcessBackend) Name() string {
	return "ollama-cli"
}

// Complete spawns the CLI once and returns its stdout
func (b *ProcessBackend) Complete(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, b.command, "run", b.model)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("Running %s run %s", b.command, b.model)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s run %s: %s: %w", b.command, b.model, msg, err)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%s run %s exited with code %d", b.command, b.model, exitErr.ExitCode())
		}
		return "", fmt.Errorf("%s run %s: %w", b.command, b.model, err)
	}

	log.Debug("%s run %s returned %d bytes", b.command, b.model, stdout.Len())
	return stdout.String(), nil
}
