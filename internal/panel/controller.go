// Package panel coordinates generating and committing a message for one interactive session.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/huimingz/commitpanel/internal/config"
	"github.com/huimingz/commitpanel/internal/git"
	"github.com/huimingz/commitpanel/internal/llm"
	"github.com/huimingz/commitpanel/internal/log"
	"github.com/huimingz/commitpanel/internal/message"
)

var (
	// ErrBusy is returned when a request arrives while another is in flight
	ErrBusy = errors.New("a request is already in progress")
	// ErrPrecondition wraps every user-correctable rejection of the generate flow
	ErrPrecondition = errors.New("precondition not met")
	// ErrNoResult is returned when commit is requested before any message was generated
	ErrNoResult = errors.New("no generated message to commit")
	// ErrTooShort is the cause when a generated message is under the minimum length
	ErrTooShort = errors.New("generated message is too short")
)

// Generator produces a normalized commit title from a diff
type Generator interface {
	Generate(ctx context.Context, diff, commitType string) (*llm.Result, error)
}

// DiffSnapshot is the repository state captured once per generate request
type DiffSnapshot struct {
	Staged   string
	Unstaged []string
}

// Option configures a Controller
type Option func(*Controller)

// WithUnstagedPolicy sets how unstaged files are handled: warn, block or ignore
func WithUnstagedPolicy(policy string) Option {
	return func(c *Controller) {
		c.unstaged = policy
	}
}

// WithTicketRequired controls whether an empty ticket is rejected
func WithTicketRequired(required bool) Option {
	return func(c *Controller) {
		c.requireTicket = required
	}
}

// WithMinChars sets the minimum generated message length in runes
func WithMinChars(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.minChars = n
		}
	}
}

// OptionsFromConfig maps the policy and message sections to options
func OptionsFromConfig(cfg *config.Config) []Option {
	policy := cfg.GetPolicyConfig()
	return []Option{
		WithUnstagedPolicy(policy.Unstaged),
		WithTicketRequired(policy.TicketRequired()),
		WithMinChars(cfg.GetMessageConfig().MinChars),
	}
}

// Controller runs the generate and commit flows for a single session.
// At most one flow is in flight; overlapping requests are rejected with ErrBusy.
type Controller struct {
	repo      git.Executor
	probe     llm.Probe
	generator Generator
	surface   Surface

	unstaged      string
	requireTicket bool
	minChars      int

	mu        sync.Mutex
	state     State
	busy      bool
	hasResult bool
}

// NewController creates a controller. All dependencies are required.
func NewController(repo git.Executor, probe llm.Probe, generator Generator, surface Surface, opts ...Option) *Controller {
	c := &Controller{
		repo:          repo,
		probe:         probe,
		generator:     generator,
		surface:       surface,
		unstaged:      config.UnstagedWarn,
		requireTicket: true,
		minChars:      config.DefaultMessageConfig().MinChars,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a flow is in flight
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Handle dispatches an inbound event
func (c *Controller) Handle(ctx context.Context, e Event) error {
	switch ev := e.(type) {
	case GenerateEvent:
		return c.Generate(ctx, ev)
	case CommitEvent:
		return c.Commit(ctx, ev)
	default:
		return fmt.Errorf("unexpected inbound event %T", e)
	}
}

func (c *Controller) acquire(next State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	c.state = next
	return true
}

func (c *Controller) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.state = StateIdle
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *Controller) info(level Level, format string, args ...interface{}) {
	c.surface.Emit(InfoEvent{Text: fmt.Sprintf(format, args...), Level: level})
}

func (c *Controller) rejectBusy() error {
	c.info(LevelWarning, "Please wait for the current request to finish.")
	return ErrBusy
}

// reject reports a failed precondition and wraps it in ErrPrecondition
func (c *Controller) reject(text string) error {
	log.Debug("Generate rejected in %s: %s", c.State(), strings.ReplaceAll(text, "\n", " "))
	c.info(LevelError, "%s", text)
	return fmt.Errorf("%w: %s", ErrPrecondition, text)
}

// Generate runs the generate flow, short-circuiting on the first failed check
func (c *Controller) Generate(ctx context.Context, req GenerateEvent) error {
	if !c.acquire(StateValidating) {
		return c.rejectBusy()
	}
	defer c.release()

	ticket := strings.TrimSpace(req.TicketID)
	commitType := strings.TrimSpace(req.CommitType)
	if commitType == "" {
		commitType = message.DefaultCommitType().String()
	}
	if c.requireTicket && ticket == "" {
		return c.reject("Please enter a ticket ID.")
	}

	c.setState(StateCheckingPreconditions)
	if err := c.probe.Installed(ctx); err != nil {
		return c.reject(err.Error())
	}
	if err := c.probe.ModelAvailable(ctx); err != nil {
		return c.reject(err.Error())
	}
	if !c.repo.IsRepository(ctx) {
		return c.reject("This is not a valid Git repository.\nRun `git init` to initialize.")
	}
	if !c.repo.HasAnyChanges(ctx) {
		return c.reject("No code changes detected in the repository.")
	}

	c.setState(StateDiffing)
	snapshot, err := c.snapshot(ctx)
	if err != nil {
		return err
	}

	c.setState(StateGenerating)
	result, err := c.generator.Generate(ctx, snapshot.Staged, commitType)
	if err == nil && utf8.RuneCountInString(result.Message) < c.minChars {
		err = &llm.GenerationError{Cause: fmt.Errorf("%w: %q", ErrTooShort, result.Message)}
	}
	if err != nil {
		log.Debug("Generation failed: %v", err)
		c.info(LevelError, "Could not generate a commit message: %s\nTry again.", generationCause(err))
		return err
	}

	c.setState(StateDisplayingResult)
	formatted := message.Format(ticket, commitType, result.Message)
	c.mu.Lock()
	c.hasResult = true
	c.mu.Unlock()

	c.surface.Emit(CommitResultEvent{Message: formatted, DurationSeconds: result.DurationSeconds()})
	return nil
}

// snapshot applies the unstaged policy and captures the staged diff
func (c *Controller) snapshot(ctx context.Context) (DiffSnapshot, error) {
	var snap DiffSnapshot

	if c.unstaged != config.UnstagedIgnore {
		snap.Unstaged = c.repo.UnstagedFiles(ctx)
		if len(snap.Unstaged) > 0 {
			files := strings.Join(snap.Unstaged, ", ")
			if c.unstaged == config.UnstagedBlock {
				return snap, c.reject(fmt.Sprintf("Unstaged changes found: %s\nStage them with `git add` or stash them first.", files))
			}
			c.info(LevelWarning, "Unstaged changes will not be included: %s", files)
		}
	}

	snap.Staged = strings.TrimSpace(c.repo.StagedDiff(ctx))
	if snap.Staged == "" {
		return snap, c.reject("No staged changes found.\nStage your changes with `git add` first.")
	}
	return snap, nil
}

func generationCause(err error) string {
	var genErr *llm.GenerationError
	if errors.As(err, &genErr) && genErr.Cause != nil {
		return genErr.Cause.Error()
	}
	return err.Error()
}

// Commit commits the buffer text verbatim. It requires a message generated in this
// session, and a successful commit consumes it.
func (c *Controller) Commit(ctx context.Context, req CommitEvent) error {
	if !c.acquire(StateCommitting) {
		return c.rejectBusy()
	}
	defer c.release()

	c.mu.Lock()
	hasResult := c.hasResult
	c.mu.Unlock()
	if !hasResult {
		c.info(LevelWarning, "Generate a commit message first.")
		return ErrNoResult
	}
	if strings.TrimSpace(req.Message) == "" {
		c.info(LevelWarning, "Commit message is empty.")
		return fmt.Errorf("%w: empty commit message", ErrPrecondition)
	}

	if err := c.repo.Commit(ctx, req.Message); err != nil {
		log.Debug("Commit failed: %v", err)
		c.info(LevelError, "Commit failed: %s", err.Error())
		return fmt.Errorf("commit failed: %w", err)
	}

	c.mu.Lock()
	c.hasResult = false
	c.state = StateDisplayingResult
	c.mu.Unlock()

	c.info(LevelSuccess, "Commit completed successfully!")
	return nil
}
