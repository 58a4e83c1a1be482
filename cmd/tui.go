package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setlistify/internal/shared"
	"github.com/desertthunder/setlistify/internal/ui"
	"github.com/desertthunder/setlistify/internal/workflow"
	"github.com/urfave/cli/v3"
)

// Wizard launches the interactive terminal UI for the three-step workflow.
func (r *Runner) Wizard(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	search, closeCache := r.searchService()
	defer closeCache()

	listener, updates := ui.NewNotifier()
	flow := workflow.NewController(ctx, r.engine(),
		workflow.WithLogger(fileLogger),
		workflow.WithListener(listener),
	)
	defer flow.Reset()

	model := ui.NewModel(ctx, flow, search, r.playlistService(), updates,
		ui.WithOpener(r.openURL),
		ui.WithLogger(fileLogger),
	)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
