// Package server hosts the inbound HTTP surface of the bot and the turn
// pipeline that fans each activity out to the notification middleware and to
// at most one of the routers.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dooriya/WorkflowBot/internal/activity"
	"github.com/dooriya/WorkflowBot/internal/cardaction"
	"github.com/dooriya/WorkflowBot/internal/command"
	"github.com/dooriya/WorkflowBot/internal/notify"
)

// Dispatcher runs one logical turn per inbound activity: the notification
// middleware always, then the router selected by the activity's category.
type Dispatcher struct {
	notifications *notify.Middleware
	commands      *command.Router
	actions       *cardaction.Router
	sender        activity.Sender
	logger        *slog.Logger
}

// NewDispatcher wires the turn pipeline.
func NewDispatcher(
	notifications *notify.Middleware,
	commands *command.Router,
	actions *cardaction.Router,
	sender activity.Sender,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		notifications: notifications,
		commands:      commands,
		actions:       actions,
		sender:        sender,
		logger:        logger.With("component", "dispatcher"),
	}
}

// ProcessActivity executes one turn. The responder closes a synchronous
// invoke, and must be provided for every turn; it is only called for invoke
// activities.
func (d *Dispatcher) ProcessActivity(ctx context.Context, a *activity.Activity, responder activity.InvokeResponder) error {
	category := activity.Classify(a)
	d.logger.DebugContext(ctx, "Processing activity", "category", category.String(), "type", a.Type)

	if err := d.notifications.OnTurn(ctx, a); err != nil {
		return fmt.Errorf("notification middleware failed: %w", err)
	}

	tc := activity.NewTurnContext(d.sender, a, activity.WithInvokeResponder(responder))

	switch category {
	case activity.CategoryMessage:
		return d.commands.Dispatch(ctx, tc)
	case activity.CategoryCardActionInvoke:
		return d.actions.Dispatch(ctx, tc)
	}

	return nil
}
