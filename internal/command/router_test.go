package command_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dooriya/WorkflowBot/internal/activity"
	"github.com/dooriya/WorkflowBot/internal/command"
)

// fakeSender records every outbound activity.
type fakeSender struct {
	sent    []*activity.Activity
	updated []*activity.Activity
	nextID  int
	sendErr error
}

func (f *fakeSender) SendToConversation(ctx context.Context, ref *activity.ConversationReference, a *activity.Activity) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.nextID++
	f.sent = append(f.sent, a)
	return fmt.Sprintf("sent-%d", f.nextID), nil
}

func (f *fakeSender) UpdateActivity(ctx context.Context, ref *activity.ConversationReference, a *activity.Activity) error {
	f.updated = append(f.updated, a)
	return nil
}

func messageTurn(sender activity.Sender, text string) *activity.TurnContext {
	return activity.NewTurnContext(sender, &activity.Activity{
		Type:         activity.TypeMessage,
		Text:         text,
		ChannelID:    "msteams",
		Conversation: &activity.ConversationAccount{ID: "conv-1"},
	})
}

func mustPattern(t *testing.T, literal string) command.Pattern {
	t.Helper()
	p, err := command.NewPattern(literal)
	require.NoError(t, err)
	return p
}

func textReply(text string) command.HandlerFunc {
	return func(ctx context.Context, tc *activity.TurnContext, msg command.Message) (*activity.Activity, error) {
		return activity.NewMessage(text), nil
	}
}

func TestRouterLiteralMatching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		text    string
		matched bool
	}{
		{"case insensitive with space", "helloWorld", "hello world", true},
		{"exact", "helloWorld", "helloWorld", true},
		{"substring", "helloWorld", "say helloWorld please", true},
		{"partial phrase does not match", "helloWorld", "HELLO", false},
		{"unrelated", "helloWorld", "goodbye", false},
		{"empty text", "helloWorld", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sender := &fakeSender{}
			router := command.NewRouter(nil)
			invoked := false
			err := router.Register(func(ctx context.Context, tc *activity.TurnContext, msg command.Message) (*activity.Activity, error) {
				invoked = true
				return nil, nil
			}, mustPattern(t, tt.pattern))
			require.NoError(t, err)

			require.NoError(t, router.Dispatch(context.Background(), messageTurn(sender, tt.text)))
			assert.Equal(t, tt.matched, invoked)
		})
	}
}

func TestRouterRegexpCaptures(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	router := command.NewRouter(nil)

	var got command.Message
	err := router.Register(func(ctx context.Context, tc *activity.TurnContext, msg command.Message) (*activity.Activity, error) {
		got = msg
		return nil, nil
	}, command.NewRegexpPattern(regexp.MustCompile(`^status (\S+)$`)))
	require.NoError(t, err)

	require.NoError(t, router.Dispatch(context.Background(), messageTurn(sender, "status incident-42")))
	require.Len(t, got.Matches, 2)
	assert.Equal(t, "incident-42", got.Matches[1])
	assert.Equal(t, "status incident-42", got.Text)
}

func TestRouterRunsAllMatchingHandlersInOrder(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	router := command.NewRouter(nil)

	require.NoError(t, router.Register(textReply("first"), mustPattern(t, "hello")))
	require.NoError(t, router.Register(textReply("second"), mustPattern(t, "helloWorld")))
	require.NoError(t, router.Register(textReply("unrelated"), mustPattern(t, "goodbye")))

	require.NoError(t, router.Dispatch(context.Background(), messageTurn(sender, "helloWorld")))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "first", sender.sent[0].Text)
	assert.Equal(t, "second", sender.sent[1].Text)
}

func TestRouterNilReplySuppressesSend(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	router := command.NewRouter(nil)
	require.NoError(t, router.Register(func(ctx context.Context, tc *activity.TurnContext, msg command.Message) (*activity.Activity, error) {
		return nil, nil
	}, mustPattern(t, "hello")))

	require.NoError(t, router.Dispatch(context.Background(), messageTurn(sender, "hello")))
	assert.Empty(t, sender.sent)
}

func TestRouterHandlerErrorPropagatesAfterEarlierSends(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	router := command.NewRouter(nil)
	handlerErr := errors.New("boom")

	require.NoError(t, router.Register(textReply("first"), mustPattern(t, "hello")))
	require.NoError(t, router.Register(func(ctx context.Context, tc *activity.TurnContext, msg command.Message) (*activity.Activity, error) {
		return nil, handlerErr
	}, mustPattern(t, "helloWorld")))
	require.NoError(t, router.Register(textReply("third"), mustPattern(t, "hello w")))

	err := router.Dispatch(context.Background(), messageTurn(sender, "helloWorld"))
	require.ErrorIs(t, err, handlerErr)

	// The first handler's send already happened; the third never ran.
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "first", sender.sent[0].Text)
}

func TestRouterDuplicatePatternIsConstructionError(t *testing.T) {
	t.Parallel()

	router := command.NewRouter(nil)
	require.NoError(t, router.Register(textReply("a"), mustPattern(t, "helloWorld")))

	err := router.Register(textReply("b"), mustPattern(t, "helloWorld"))
	assert.ErrorIs(t, err, command.ErrDuplicatePattern)
}

func TestRouterStripsBotMention(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	router := command.NewRouter(nil)

	var got string
	require.NoError(t, router.Register(func(ctx context.Context, tc *activity.TurnContext, msg command.Message) (*activity.Activity, error) {
		got = msg.Text
		return nil, nil
	}, mustPattern(t, "helloWorld")))

	tc := activity.NewTurnContext(sender, &activity.Activity{
		Type:      activity.TypeMessage,
		Text:      "<at>WorkflowBot</at> HelloWorld",
		Recipient: &activity.ChannelAccount{ID: "bot-1"},
		Entities: []activity.Entity{
			{Type: "mention", Text: "<at>WorkflowBot</at>", Mentioned: &activity.ChannelAccount{ID: "bot-1"}},
		},
		Conversation: &activity.ConversationAccount{ID: "conv-1"},
	})

	require.NoError(t, router.Dispatch(context.Background(), tc))
	assert.Equal(t, "helloworld", got)
}

func TestRouterIgnoresNonMessageActivities(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	router := command.NewRouter(nil)
	require.NoError(t, router.Register(textReply("hit"), mustPattern(t, "hello")))

	tc := activity.NewTurnContext(sender, &activity.Activity{Type: activity.TypeInvoke, Text: "hello"})
	require.NoError(t, router.Dispatch(context.Background(), tc))
	assert.Empty(t, sender.sent)
}
