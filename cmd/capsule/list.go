package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/capsule/internal/platform"
	"github.com/aretw0/capsule/pkg/core"
)

var (
	listJSON  bool
	listWatch bool
)

// listItem is the JSON form of a capsule. Locked items carry no message.
type listItem struct {
	Position   int    `json:"position"`
	State      string `json:"state"`
	Message    string `json:"message,omitempty"`
	UnlockDate string `json:"unlockDate"`
	CreatedAt  string `json:"createdAt"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List capsules, showing the unlocked ones",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir, cfg := resolveStore()
		svc := openService(dir, cfg)
		exitOnError(runWithService(svc, func(svc *core.Service) error {
			return listCapsules(svc, cfg.DateLayout)
		}))
	},
}

func listCapsules(svc *core.Service, layout string) error {
	if err := printList(os.Stdout, svc.Views(time.Now()), layout, listJSON); err != nil {
		return fmt.Errorf("failed to print capsules: %w", err)
	}
	if !listWatch {
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	err := platform.AutoReload(ctx, svc, slog.Default(), func(e core.Event) {
		if !listJSON {
			fmt.Println()
		}
		if err := printList(os.Stdout, svc.Views(time.Now()), layout, listJSON); err != nil {
			slog.Error("failed to print capsules", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("cannot watch this store: %w", err)
	}
	<-ctx.Done()
	return nil
}

func printList(w io.Writer, views []core.View, layout string, asJSON bool) error {
	if asJSON {
		items := make([]listItem, 0, len(views))
		for _, v := range views {
			items = append(items, listItem{
				Position:   v.Index + 1,
				State:      v.State.String(),
				Message:    v.Message,
				UnlockDate: v.UnlockDate,
				CreatedAt:  v.CreatedAt,
			})
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(items)
	}

	fmt.Fprintln(w, core.ListHeadingText)
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, core.EmptyStateText)
		return err
	}
	for _, v := range views {
		text := core.LockedPlaceholder
		if v.State == core.Unlocked {
			text = v.Message
		}
		_, err := fmt.Fprintf(w, "%d. %s\n   Unlock: %s  Created: %s\n",
			v.Index+1, text,
			core.FormatUnlockDate(v, layout),
			core.FormatCreatedAt(v, layout, time.Local))
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listWatch, "watch", false, "Keep running and print the list again on external changes")
}
