package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/huimingz/commitpanel/internal/config"
	"github.com/huimingz/commitpanel/internal/git"
	"github.com/huimingz/commitpanel/internal/llm"
	"github.com/huimingz/commitpanel/internal/log"
	"github.com/huimingz/commitpanel/internal/panel"
)

// session bundles what one panel or generate run needs
type session struct {
	cfg    *config.Config
	repo   git.Executor
	probe  llm.Probe
	client *llm.Client
}

func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.DebugConfig("Configuration", cfg)

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	backend, probe, err := llm.NewBackendFromConfig(ctx, cfg, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend: %w", err)
	}
	log.Debug("Using backend: %s", backend.Name())

	return &session{
		cfg:    cfg,
		repo:   git.NewExecutor(cwd, git.WithMaxOutput(cfg.GetGenerationConfig().MaxDiffBytes)),
		probe:  probe,
		client: llm.NewClientFromConfig(backend, cfg),
	}, nil
}

func (s *session) controller(surface panel.Surface) *panel.Controller {
	return panel.NewController(s.repo, s.probe, s.client, surface, panel.OptionsFromConfig(s.cfg)...)
}

func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
