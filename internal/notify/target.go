// Package notify maintains the durable registry of conversation endpoints the
// bot can push messages into outside the turn that created them, and keeps it
// in sync with install, message, and removal events.
package notify

import (
	"context"
	"fmt"

	"github.com/dooriya/WorkflowBot/internal/activity"
)

// TargetType classifies a notification target by its conversation scope.
type TargetType string

const (
	// TargetTypeChannel addresses a team channel.
	TargetTypeChannel TargetType = "Channel"
	// TargetTypeGroup addresses a group chat.
	TargetTypeGroup TargetType = "Group"
	// TargetTypePerson addresses a personal chat.
	TargetTypePerson TargetType = "Person"
)

// Target is an addressable conversation endpoint restored from the store.
type Target struct {
	ref    *activity.ConversationReference
	sender activity.Sender
}

// NewTarget wraps a stored conversation reference for sending.
func NewTarget(sender activity.Sender, ref *activity.ConversationReference) *Target {
	return &Target{ref: ref, sender: sender}
}

// Type returns the target's conversation scope.
func (t *Target) Type() TargetType {
	switch t.ref.ConversationType() {
	case activity.ConversationTypeChannel:
		return TargetTypeChannel
	case activity.ConversationTypeGroup:
		return TargetTypeGroup
	default:
		return TargetTypePerson
	}
}

// Reference returns the underlying conversation reference.
func (t *Target) Reference() *activity.ConversationReference {
	return t.ref
}

// SendMessage pushes a plain text message to the target conversation.
func (t *Target) SendMessage(ctx context.Context, text string) error {
	if _, err := t.sender.SendToConversation(ctx, t.ref, activity.NewMessage(text)); err != nil {
		return fmt.Errorf("failed to send message to %q: %w", t.ref.Key(), err)
	}
	return nil
}

// SendAdaptiveCard pushes an adaptive card to the target conversation.
func (t *Target) SendAdaptiveCard(ctx context.Context, card any) error {
	if _, err := t.sender.SendToConversation(ctx, t.ref, activity.NewCardMessage(card)); err != nil {
		return fmt.Errorf("failed to send card to %q: %w", t.ref.Key(), err)
	}
	return nil
}
