package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dooriya/WorkflowBot/internal/activity"
	"github.com/dooriya/WorkflowBot/internal/database"
)

// Middleware keeps the notification target store in sync with the
// conversation lifecycle. It runs on every inbound activity, before any
// router.
type Middleware struct {
	store  database.Store
	logger *slog.Logger
}

// NewMiddleware creates the store maintenance middleware.
func NewMiddleware(store database.Store, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Middleware{
		store:  store,
		logger: logger.With("component", "notification_middleware"),
	}
}

// OnTurn classifies the activity and maintains the store accordingly:
// installs and team restores upsert, uninstalls and team deletions remove,
// messages upsert lazily. Store failures propagate to the turn boundary.
func (m *Middleware) OnTurn(ctx context.Context, a *activity.Activity) error {
	category := activity.Classify(a)

	switch category {
	case activity.CategoryBotInstalled, activity.CategoryTeamRestored:
		ref := activity.GetConversationReference(a)
		if err := m.store.Upsert(ctx, ref); err != nil {
			return fmt.Errorf("failed to register conversation: %w", err)
		}
		m.logger.InfoContext(ctx, "Registered notification target",
			"category", category.String(), "key", ref.Key())

	case activity.CategoryMessage:
		return m.tryAddMessagedReference(ctx, a)

	case activity.CategoryBotUninstalled, activity.CategoryTeamDeleted:
		ref := activity.GetConversationReference(a)
		if err := m.store.Remove(ctx, ref); err != nil {
			return fmt.Errorf("failed to unregister conversation: %w", err)
		}
		m.logger.InfoContext(ctx, "Removed notification target",
			"category", category.String(), "key", ref.Key())
	}

	return nil
}

// tryAddMessagedReference registers the conversation of a message activity if
// it is not stored yet. Channel messages register the owning team, not the
// individual channel, so later broadcasts reach the whole team.
func (m *Middleware) tryAddMessagedReference(ctx context.Context, a *activity.Activity) error {
	ref := activity.GetConversationReference(a)
	if ref == nil || ref.Conversation == nil {
		return nil
	}

	switch ref.Conversation.ConversationType {
	case activity.ConversationTypePersonal, activity.ConversationTypeGroup:
		return m.upsertIfAbsent(ctx, ref)

	case activity.ConversationTypeChannel:
		if a.ChannelData == nil || a.ChannelData.Team == nil || a.ChannelData.Team.ID == "" {
			return nil
		}
		return m.upsertIfAbsent(ctx, ref.WithConversationID(a.ChannelData.Team.ID))
	}

	return nil
}

// upsertIfAbsent avoids a redundant write on every message. The upsert itself
// is idempotent, so losing the check-then-write race on the same key is
// harmless.
func (m *Middleware) upsertIfAbsent(ctx context.Context, ref *activity.ConversationReference) error {
	exists, err := m.store.Exists(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to check conversation: %w", err)
	}
	if exists {
		return nil
	}

	if err := m.store.Upsert(ctx, ref); err != nil {
		return fmt.Errorf("failed to register conversation: %w", err)
	}
	m.logger.InfoContext(ctx, "Registered notification target from message", "key", ref.Key())
	return nil
}
