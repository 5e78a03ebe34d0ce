package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dooriya/WorkflowBot/internal/activity"
	"github.com/dooriya/WorkflowBot/internal/database"
)

// Bot exposes the stored notification targets for application-initiated
// pushes, independent of any inbound turn.
type Bot struct {
	store  database.Store
	sender activity.Sender
	logger *slog.Logger
}

// NewBot creates the notification surface over the store and sender.
func NewBot(store database.Store, sender activity.Sender, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bot{
		store:  store,
		sender: sender,
		logger: logger.With("component", "notification_bot"),
	}
}

// Targets returns every stored conversation endpoint as a sendable target,
// in insertion order.
func (b *Bot) Targets(ctx context.Context) ([]*Target, error) {
	references, err := b.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification targets: %w", err)
	}

	targets := make([]*Target, 0, len(references))
	for _, ref := range references {
		targets = append(targets, NewTarget(b.sender, ref))
	}

	return targets, nil
}
