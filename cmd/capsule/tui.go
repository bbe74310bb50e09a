package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aretw0/capsule/internal/platform"
	"github.com/aretw0/capsule/pkg/core"
	"github.com/aretw0/capsule/pkg/tui"
)

// LogFileName receives the logs of the interactive screen when --verbose is set.
const LogFileName = "capsule.log"

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive capsule screen",
	Args:  cobra.NoArgs,
	Run:   runTUI,
}

func runTUI(cmd *cobra.Command, args []string) {
	dir, cfg := resolveStore()

	// The alternate screen owns the terminal; stderr logging would corrupt it.
	logger, closeLog := tuiLogger(dir)
	slog.SetDefault(logger)

	svc := openService(dir, cfg)
	err := runWithService(svc, func(svc *core.Service) error {
		return runProgram(svc, cfg.DateLayout, logger)
	})
	closeLog()
	exitOnError(err)
}

func runProgram(svc *core.Service, layout string, logger *slog.Logger) error {
	ctx, cancel := signalContext()
	defer cancel()

	model := tui.New(ctx, svc, tui.Options{DateLayout: layout})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	err := platform.AutoReload(ctx, svc, logger, func(e core.Event) {
		p.Send(tui.ReloadMsg{Event: e})
	})
	if err != nil {
		logger.Debug("auto reload disabled", "error", err)
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("interactive screen failed: %w", err)
	}
	return nil
}

func tuiLogger(dir string) (*slog.Logger, func()) {
	if !verbose {
		return slog.New(slog.DiscardHandler), func() {}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return slog.New(slog.DiscardHandler), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return slog.New(slog.DiscardHandler), func() {}
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = f.Close() }
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
