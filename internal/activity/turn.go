package activity

import (
	"context"
	"errors"
)

// ErrNoInvokeResponder is returned when an invoke acknowledgment is attempted
// on a turn that has no responder attached.
var ErrNoInvokeResponder = errors.New("turn has no invoke responder")

// Sender delivers outbound activities into a conversation. Implemented by the
// connector client in production and by in-memory fakes in tests.
type Sender interface {
	// SendToConversation sends a new activity and returns its platform
	// assigned id.
	SendToConversation(ctx context.Context, ref *ConversationReference, a *Activity) (string, error)

	// UpdateActivity replaces an existing activity in place. The activity's
	// ID field selects the message to replace.
	UpdateActivity(ctx context.Context, ref *ConversationReference, a *Activity) error
}

// InvokeResponder closes the synchronous invoke of the current turn with an
// acknowledgment value. It must be called at most once per turn.
type InvokeResponder func(ctx context.Context, value any) error

// TurnContext carries the inbound activity of one logical turn together with
// the means to send replies. One context is built per inbound activity; it is
// not shared across turns.
type TurnContext struct {
	Activity *Activity

	sender    Sender
	ref       *ConversationReference
	responder InvokeResponder
}

// TurnOption customizes a TurnContext.
type TurnOption func(*TurnContext)

// WithInvokeResponder attaches the responder used to close a synchronous
// invoke. Required for turns carrying invoke activities.
func WithInvokeResponder(responder InvokeResponder) TurnOption {
	return func(tc *TurnContext) {
		tc.responder = responder
	}
}

// NewTurnContext builds the context for one inbound activity.
func NewTurnContext(sender Sender, a *Activity, opts ...TurnOption) *TurnContext {
	tc := &TurnContext{
		Activity: a,
		sender:   sender,
		ref:      GetConversationReference(a),
	}
	for _, opt := range opts {
		opt(tc)
	}

	return tc
}

// Reference returns the conversation reference of the triggering activity.
func (tc *TurnContext) Reference() *ConversationReference {
	return tc.ref
}

// SendActivity sends a new activity into the turn's conversation and returns
// its platform assigned id.
func (tc *TurnContext) SendActivity(ctx context.Context, a *Activity) (string, error) {
	return tc.sender.SendToConversation(ctx, tc.ref, a)
}

// SendText sends a plain text message into the turn's conversation.
func (tc *TurnContext) SendText(ctx context.Context, text string) (string, error) {
	return tc.SendActivity(ctx, NewMessage(text))
}

// UpdateActivity replaces an existing activity in the turn's conversation.
func (tc *TurnContext) UpdateActivity(ctx context.Context, a *Activity) error {
	return tc.sender.UpdateActivity(ctx, tc.ref, a)
}

// SendInvokeResponse closes the turn's outstanding invoke with the given
// acknowledgment value.
func (tc *TurnContext) SendInvokeResponse(ctx context.Context, value any) error {
	if tc.responder == nil {
		return ErrNoInvokeResponder
	}

	return tc.responder(ctx, value)
}
