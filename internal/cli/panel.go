package cli

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/huimingz/commitpanel/internal/log"
	"github.com/huimingz/commitpanel/internal/message"
	"github.com/huimingz/commitpanel/internal/ui"
	"github.com/spf13/cobra"
)

const debugLogFile = "commitpanel-debug.log"

func runPanel(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd.Context())

	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	// The alt-screen owns the terminal; log lines go to a file or nowhere
	prevOutput := log.Output()
	defer log.SetOutput(prevOutput)
	if debugMode {
		f, err := tea.LogToFile(debugLogFile, "commitpanel")
		if err != nil {
			return fmt.Errorf("failed to open debug log: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	if s.cfg.GetGenerationConfig().Warmup {
		go s.client.WarmUp(ctx)
	}

	model := ui.NewPanelModel(ctx, message.ParseCommitTypes(s.cfg.GetMessageConfig().CommitTypes))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetHandler(s.controller(ui.ProgramSurface(p)))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	return nil
}
