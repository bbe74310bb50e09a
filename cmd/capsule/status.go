package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/capsule/pkg/core"
)

type statusReport struct {
	Dir     string `json:"dir"`
	Backend string `json:"backend"`
	Slot    string `json:"slot"`
	Service any    `json:"service"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the store configuration and internal state as JSON",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir, cfg := resolveStore()
		svc := openService(dir, cfg)
		exitOnError(runWithService(svc, func(svc *core.Service) error {
			report := statusReport{
				Dir:     dir,
				Backend: cfg.Backend,
				Slot:    cfg.Slot,
				Service: svc.State(),
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(report); err != nil {
				return fmt.Errorf("error encoding JSON: %w", err)
			}
			return nil
		}))
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
