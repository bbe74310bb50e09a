package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/capsule/pkg/core"
)

var (
	addMessage string
	addDate    string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Seal a new capsule",
	Long:  `Add stores a message that stays locked until the given date (YYYY-MM-DD).`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir, cfg := resolveStore()
		svc := openService(dir, cfg)
		exitOnError(runWithService(svc, func(svc *core.Service) error {
			return addCapsule(context.Background(), svc, os.Stdout, os.Stderr, addMessage, addDate, cfg.DateLayout)
		}))
	},
}

func addCapsule(ctx context.Context, svc *core.Service, out, errOut io.Writer, message, date, layout string) error {
	c, err := svc.Add(ctx, message, date)
	if errors.Is(err, core.ErrValidation) {
		return &userError{msg: core.ValidationAlert}
	}
	if err != nil {
		return fmt.Errorf("failed to add capsule: %w", err)
	}
	if err := svc.LastPersistError(); err != nil {
		fmt.Fprintf(errOut, "Warning: capsule was not saved: %v\n", err)
	}
	if _, err := core.ParseUnlockDate(c.UnlockDate); err != nil {
		fmt.Fprintf(errOut, "Warning: unlock date %q is not YYYY-MM-DD; this capsule will stay locked\n", c.UnlockDate)
	}

	v := core.NewView(svc.Len()-1, c, time.Now())
	_, err = fmt.Fprintf(out, "Capsule #%d sealed until %s\n", v.Index+1, core.FormatUnlockDate(v, layout))
	return err
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addMessage, "message", "m", "", "Message to your future self")
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "Unlock date (YYYY-MM-DD)")
}
