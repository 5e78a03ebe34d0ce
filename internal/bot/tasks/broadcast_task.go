package tasks

import (
	"context"
	"fmt"
)

// newBroadcastTask creates the scheduled task pushing the configured status
// message to every stored notification target. A failing target does not stop
// the broadcast to the rest.
func newBroadcastTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "broadcast")

	return func(ctx context.Context) error {
		targets, err := deps.Notifier.Targets(ctx)
		if err != nil {
			return fmt.Errorf("broadcast failed to load targets: %w", err)
		}
		if len(targets) == 0 {
			log.InfoContext(ctx, "No notification targets to broadcast to.")
			return nil
		}

		message := deps.Config.Bot.MsgBroadcast
		failed := 0
		for _, target := range targets {
			if err := target.SendMessage(ctx, message); err != nil {
				log.ErrorContext(ctx, "Failed to broadcast to target",
					"key", target.Reference().Key(), "target_type", string(target.Type()), "error", err)
				failed++
			}
		}

		log.InfoContext(ctx, "Broadcast completed", "targets", len(targets), "failed", failed)
		if failed > 0 {
			return fmt.Errorf("broadcast failed for %d of %d targets", failed, len(targets))
		}
		return nil
	}
}
