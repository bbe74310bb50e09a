package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/capsule/pkg/core"
)

var forceDelete bool

var deleteCmd = &cobra.Command{
	Use:   "delete [position]",
	Short: "Delete an unlocked capsule",
	Long: `Delete removes the capsule at the given position, as numbered by 'capsule list'.
Locked capsules are refused unless --force is set.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		position, err := strconv.Atoi(args[0])
		if err != nil {
			fatal("Invalid position", err)
		}

		dir, cfg := resolveStore()
		svc := openService(dir, cfg)
		exitOnError(runWithService(svc, func(svc *core.Service) error {
			return deleteCapsule(context.Background(), svc, os.Stdout, os.Stderr, position, forceDelete, time.Now())
		}))
	},
}

// deleteCapsule removes the capsule at the 1-based position.
func deleteCapsule(ctx context.Context, svc *core.Service, out, errOut io.Writer, position int, force bool, now time.Time) error {
	index := position - 1
	views := svc.Views(now)
	if index >= 0 && index < len(views) && !views[index].Deletable && !force {
		return &userError{msg: fmt.Sprintf("Capsule #%d is still locked; use --force to delete it anyway", position)}
	}

	err := svc.DeleteAt(ctx, index)
	if errors.Is(err, core.ErrOutOfRange) {
		return &userError{msg: fmt.Sprintf("No capsule at position %d", position)}
	}
	if err != nil {
		return fmt.Errorf("failed to delete capsule: %w", err)
	}
	if err := svc.LastPersistError(); err != nil {
		fmt.Fprintf(errOut, "Warning: deletion was not saved: %v\n", err)
	}

	_, err = fmt.Fprintf(out, "Capsule #%d deleted\n", position)
	return err
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVar(&forceDelete, "force", false, "Delete even if the capsule is locked")
}
