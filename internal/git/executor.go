package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/huimingz/commitpanel/internal/log"
)

// DefaultMaxOutput caps the captured stdout of a single git command
const DefaultMaxOutput = 1024 * 1024

// ErrOutputTooLarge is returned when a command writes more than the capture limit
var ErrOutputTooLarge = errors.New("git output exceeds capture limit")

// Executor defines the read/commit surface over the git CLI.
// Query methods never fail: a missing binary or non-zero exit reads as "no".
type Executor interface {
	// IsRepository reports whether the work dir is inside a work tree
	IsRepository(ctx context.Context) bool

	// HasAnyChanges reports whether the work tree has modified, added, deleted or untracked entries
	HasAnyChanges(ctx context.Context) bool

	// UnstagedFiles returns files modified in the work tree but not staged
	UnstagedFiles(ctx context.Context) []string

	// StagedDiff returns the trimmed diff of the index against HEAD
	StagedDiff(ctx context.Context) string

	// Commit executes a git commit with the given message
	Commit(ctx context.Context, message string) error
}

// CommandError describes a git command that exited unsuccessfully
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Stdout   string
	Err      error
}

func (e *CommandError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}
	// git commit reports "nothing to commit" on stdout
	if msg := strings.TrimSpace(e.Stdout); msg != "" {
		return msg
	}
	return fmt.Sprintf("git %s failed: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Option configures a DefaultExecutor
type Option func(*DefaultExecutor)

// WithMaxOutput sets the stdout capture limit in bytes
func WithMaxOutput(n int) Option {
	return func(e *DefaultExecutor) {
		if n > 0 {
			e.maxOutput = n
		}
	}
}

// WithBinary overrides the git binary, mostly for tests
func WithBinary(path string) Option {
	return func(e *DefaultExecutor) {
		e.binary = path
	}
}

// DefaultExecutor is the default implementation of Executor
type DefaultExecutor struct {
	workDir   string
	binary    string
	maxOutput int
}

// NewExecutor creates a new DefaultExecutor
func NewExecutor(workDir string, opts ...Option) *DefaultExecutor {
	e := &DefaultExecutor{
		workDir:   workDir,
		binary:    "git",
		maxOutput: DefaultMaxOutput,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// limitedBuffer stops accepting data once the limit is reached
type limitedBuffer struct {
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.overflow {
		return 0, ErrOutputTooLarge
	}
	if b.buf.Len()+len(p) > b.limit {
		b.overflow = true
		return 0, ErrOutputTooLarge
	}
	return b.buf.Write(p)
}

// runGit runs a git command and returns its trimmed stdout
func (e *DefaultExecutor) runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Dir = e.workDir

	stdout := &limitedBuffer{limit: e.maxOutput}
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stdout.overflow {
		return "", fmt.Errorf("git %s: %w (%d bytes)", strings.Join(args, " "), ErrOutputTooLarge, e.maxOutput)
	}
	if err != nil {
		cmdErr := &CommandError{Args: args, ExitCode: -1, Stderr: stderr.String(), Stdout: stdout.buf.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return "", cmdErr
	}

	return strings.TrimSpace(stdout.buf.String()), nil
}

// query runs a read-only command, folding failures into an empty result
func (e *DefaultExecutor) query(ctx context.Context, args ...string) (string, bool) {
	out, err := e.runGit(ctx, args...)
	if err != nil {
		log.Debug("git %s: %v", strings.Join(args, " "), err)
		return "", false
	}
	return out, true
}

// IsRepository reports whether the work dir is inside a git work tree
func (e *DefaultExecutor) IsRepository(ctx context.Context) bool {
	out, ok := e.query(ctx, "rev-parse", "--is-inside-work-tree")
	return ok && out == "true"
}

// HasAnyChanges reports whether git status --porcelain lists anything
func (e *DefaultExecutor) HasAnyChanges(ctx context.Context) bool {
	out, ok := e.query(ctx, "status", "--porcelain")
	return ok && out != ""
}

// UnstagedFiles returns the files listed by git diff --name-only
func (e *DefaultExecutor) UnstagedFiles(ctx context.Context) []string {
	out, ok := e.query(ctx, "diff", "--name-only")
	if !ok || out == "" {
		return []string{}
	}

	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files
}

// StagedDiff returns the diff of staged changes, or "" on failure or overflow
func (e *DefaultExecutor) StagedDiff(ctx context.Context) string {
	out, err := e.runGit(ctx, "diff", "--cached")
	if errors.Is(err, ErrOutputTooLarge) {
		log.Warn("Staged diff is larger than %d bytes and was not captured; raise generation.max_diff_bytes or stage fewer files", e.maxOutput)
		return ""
	}
	if err != nil {
		log.Debug("git diff --cached: %v", err)
		return ""
	}
	return out
}

// Commit executes a git commit with the given message
func (e *DefaultExecutor) Commit(ctx context.Context, message string) error {
	_, err := e.runGit(ctx, "commit", "-m", message)
	return err
}
