package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/capsule"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of capsule",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("capsule version %s\n", strings.TrimSpace(capsule.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
