package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tdx/internal/shared"
	"github.com/desertthunder/tdx/internal/tasks"
	"github.com/desertthunder/tdx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive task list.
//
// Pending writes are flushed when the program exits.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	logPath := cmd.String("log-file")
	if logPath == "" {
		logPath = r.config.Log.File
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.config.Log.LogLevel())
	r.SetLogger(fileLogger)

	events := make(chan tasks.Event, 64)
	sync := r.newSynchronizer(r.storeFor(cmd), events)
	defer sync.Close()

	model := ui.NewModel(ctx, sync, events)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	r.logger.Info("tui exited", "pending_writes", sync.PendingWrites())
	return nil
}
