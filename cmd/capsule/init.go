package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/capsule/internal/platform"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a project-local store",
	Long: `Init creates a .capsule directory in the current directory (or --dir)
together with a capsule.yaml holding the selected backend and slot.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir := storeDir
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				fatal("Failed to get CWD", err)
			}
			dir = filepath.Join(cwd, platform.StoreDirName)
		}

		cfgPath := filepath.Join(dir, platform.ConfigFileName)
		if _, err := os.Stat(cfgPath); err == nil {
			fmt.Println("Store already initialized in", dir)
			return
		} else if !errors.Is(err, os.ErrNotExist) {
			fatal("Failed to inspect store", err)
		}

		cfg := platform.DefaultFileConfig()
		if backend != "" {
			cfg.Backend = backend
		}
		if slot != "" {
			cfg.Slot = slot
		}
		if err := platform.SaveConfig(dir, cfg); err != nil {
			fatal("Failed to write config", err)
		}

		fmt.Println("Initialized empty capsule store in", dir)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
