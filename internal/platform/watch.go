package platform

import (
	"context"
	"log/slog"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/capsule/pkg/core"
)

// AutoReload keeps svc in sync with external changes of its slot. After each
// reload onChange is called with the triggering event. It returns an error
// when the storage cannot be watched; the bridge stops when ctx is done.
func AutoReload(ctx context.Context, svc *core.Service, logger *slog.Logger, onChange func(core.Event)) error {
	events, err := svc.Watch(ctx)
	if err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		for e := range events {
			logger.Debug("slot changed externally, reloading", "event", e.String())
			svc.Reload(ctx)
			if onChange != nil {
				onChange(e)
			}
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		logger.Error("auto reload stopped", "error", err)
	}))
	return nil
}
