package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/capsule/internal/platform"
	"github.com/aretw0/capsule/pkg/core"
)

var (
	verbose  bool
	storeDir string
	backend  string
	slot     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "capsule",
	Short: "Write messages to your future self",
	Long: `Capsule records short messages that stay hidden until their unlock date.
Run without a subcommand to open the interactive screen.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
	Args: cobra.NoArgs,
	Run:  runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storeDir, "dir", "", "Store directory (default: $CAPSULE_DIR, ./.capsule upwards, or ~/.capsule)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Storage backend: fs, sqlite, redis or memory")
	rootCmd.PersistentFlags().StringVar(&slot, "slot", "", "Storage key of the capsule list")
}

// resolveStore finds the store directory and merges capsule.yaml with the flags.
func resolveStore() (string, platform.FileConfig) {
	cwd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get working directory", err)
	}
	dir := platform.ResolveStoreDir(storeDir, cwd)

	cfg, err := platform.LoadConfig(dir)
	if err != nil {
		fatal("Failed to load config", err)
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if slot != "" {
		cfg.Slot = slot
	}
	return dir, cfg
}

func openService(dir string, cfg platform.FileConfig) *core.Service {
	opts := append(cfg.Options(), platform.WithLogger(slog.Default()))
	svc, err := platform.New(dir, opts...)
	if err != nil {
		fatal("Failed to open store", err)
	}
	return svc
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// userError is printed verbatim before exiting with status 1.
type userError struct {
	msg string
}

func (e *userError) Error() string { return e.msg }

// runWithService runs fn and closes svc before returning, whatever fn returned.
func runWithService(svc *core.Service, fn func(*core.Service) error) error {
	err := fn(svc)
	if cerr := svc.Close(); cerr != nil {
		slog.Warn("failed to close store", "error", cerr)
	}
	return err
}

// exitOnError reports err and exits with status 1. It must only be called
// once every resource has been released.
func exitOnError(err error) {
	if err == nil {
		return
	}
	var ue *userError
	if errors.As(err, &ue) {
		fmt.Fprintln(os.Stderr, ue.msg)
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
