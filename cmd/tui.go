package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive movie browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(shared.FirstNonEmpty(r.config.Log.File, "./tmp/reelx-tui.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	if err := r.connect(ctx); err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.Opts{
		Catalogue:  r.catalogue,
		Favourites: r.favourites,
		Sessions:   r.sessions,
		Logger:     r.logger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
