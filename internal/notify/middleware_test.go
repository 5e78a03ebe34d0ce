package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dooriya/WorkflowBot/internal/activity"
	"github.com/dooriya/WorkflowBot/internal/notify"
)

// fakeStore records store calls and backs Exists/List with a keyed map.
type fakeStore struct {
	refs      map[string]*activity.ConversationReference
	order     []string
	upserts   []string
	removes   []string
	existsErr error
	upsertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{refs: make(map[string]*activity.ConversationReference)}
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }

func (f *fakeStore) Upsert(ctx context.Context, ref *activity.ConversationReference) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	key := ref.Key()
	f.upserts = append(f.upserts, key)
	if _, ok := f.refs[key]; !ok {
		f.refs[key] = ref
		f.order = append(f.order, key)
	}
	return nil
}

func (f *fakeStore) Exists(ctx context.Context, ref *activity.ConversationReference) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.refs[ref.Key()]
	return ok, nil
}

func (f *fakeStore) Remove(ctx context.Context, ref *activity.ConversationReference) error {
	key := ref.Key()
	f.removes = append(f.removes, key)
	delete(f.refs, key)
	return nil
}

func (f *fakeStore) List(ctx context.Context) ([]*activity.ConversationReference, error) {
	out := make([]*activity.ConversationReference, 0, len(f.refs))
	for _, key := range f.order {
		if ref, ok := f.refs[key]; ok {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (f *fakeStore) RunSQLMaintenance(ctx context.Context) error { return nil }

func baseActivity(typ, conversationType string) *activity.Activity {
	return &activity.Activity{
		Type:       typ,
		ChannelID:  "msteams",
		ServiceURL: "https://smba.trafficmanager.net/teams/",
		From:       &activity.ChannelAccount{ID: "user-1"},
		Recipient:  &activity.ChannelAccount{ID: "bot-1"},
		Conversation: &activity.ConversationAccount{
			ID:               "conv-1",
			ConversationType: conversationType,
		},
	}
}

func TestOnTurnBotInstalledRegistersTarget(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mw := notify.NewMiddleware(store, nil)

	a := baseActivity(activity.TypeInstallationUpdate, activity.ConversationTypePersonal)
	a.Action = "add"

	require.NoError(t, mw.OnTurn(context.Background(), a))
	assert.Equal(t, []string{"conv-1_msteams"}, store.upserts)
}

func TestOnTurnBotUninstalledRemovesTarget(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mw := notify.NewMiddleware(store, nil)

	install := baseActivity(activity.TypeInstallationUpdate, activity.ConversationTypePersonal)
	install.Action = "add"
	require.NoError(t, mw.OnTurn(context.Background(), install))

	uninstall := baseActivity(activity.TypeInstallationUpdate, activity.ConversationTypePersonal)
	uninstall.Action = "remove"
	require.NoError(t, mw.OnTurn(context.Background(), uninstall))

	assert.Equal(t, []string{"conv-1_msteams"}, store.removes)
	assert.Empty(t, store.refs)
}

func TestOnTurnTeamLifecycle(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mw := notify.NewMiddleware(store, nil)

	restored := baseActivity(activity.TypeConversationUpdate, activity.ConversationTypeChannel)
	restored.ChannelData = &activity.ChannelData{EventType: "teamRestored"}
	require.NoError(t, mw.OnTurn(context.Background(), restored))
	assert.Len(t, store.refs, 1)

	deleted := baseActivity(activity.TypeConversationUpdate, activity.ConversationTypeChannel)
	deleted.ChannelData = &activity.ChannelData{EventType: "teamDeleted"}
	require.NoError(t, mw.OnTurn(context.Background(), deleted))
	assert.Empty(t, store.refs)
}

func TestOnTurnPersonalMessageRegistersLazily(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mw := notify.NewMiddleware(store, nil)

	msg := baseActivity(activity.TypeMessage, activity.ConversationTypePersonal)
	msg.Text = "hello"

	require.NoError(t, mw.OnTurn(context.Background(), msg))
	require.NoError(t, mw.OnTurn(context.Background(), msg))

	// Second message found the target present and skipped the write.
	assert.Equal(t, []string{"conv-1_msteams"}, store.upserts)
}

func TestOnTurnChannelMessageRegistersTeam(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mw := notify.NewMiddleware(store, nil)

	msg := baseActivity(activity.TypeMessage, activity.ConversationTypeChannel)
	msg.Conversation.ID = "19:channel-thread@thread.tacv2"
	msg.ChannelData = &activity.ChannelData{Team: &activity.TeamInfo{ID: "19:team@thread.tacv2"}}

	require.NoError(t, mw.OnTurn(context.Background(), msg))

	// The owning team is registered, not the channel thread.
	require.Len(t, store.upserts, 1)
	assert.Equal(t, "19:team@thread.tacv2_msteams", store.upserts[0])
}

func TestOnTurnChannelMessageWithoutTeamIsSkipped(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mw := notify.NewMiddleware(store, nil)

	msg := baseActivity(activity.TypeMessage, activity.ConversationTypeChannel)

	require.NoError(t, mw.OnTurn(context.Background(), msg))
	assert.Empty(t, store.upserts)
}

func TestOnTurnOtherCategoriesLeaveStoreAlone(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mw := notify.NewMiddleware(store, nil)

	invoke := baseActivity(activity.TypeInvoke, activity.ConversationTypePersonal)
	invoke.Name = activity.InvokeNameCardAction

	require.NoError(t, mw.OnTurn(context.Background(), invoke))
	assert.Empty(t, store.upserts)
	assert.Empty(t, store.removes)
}

func TestOnTurnStoreFailurePropagates(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.upsertErr = errors.New("disk full")
	mw := notify.NewMiddleware(store, nil)

	install := baseActivity(activity.TypeInstallationUpdate, activity.ConversationTypePersonal)
	install.Action = "add"

	err := mw.OnTurn(context.Background(), install)
	require.ErrorIs(t, err, store.upsertErr)
}

func TestBotTargetsWrapStoredReferences(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	mw := notify.NewMiddleware(store, nil)

	personal := baseActivity(activity.TypeInstallationUpdate, activity.ConversationTypePersonal)
	personal.Action = "add"
	require.NoError(t, mw.OnTurn(context.Background(), personal))

	group := baseActivity(activity.TypeInstallationUpdate, activity.ConversationTypeGroup)
	group.Action = "add"
	group.Conversation.ID = "conv-2"
	require.NoError(t, mw.OnTurn(context.Background(), group))

	sender := &fakeSender{}
	bot := notify.NewBot(store, sender, nil)
	targets, err := bot.Targets(context.Background())
	require.NoError(t, err)
	require.Len(t, targets, 2)

	assert.Equal(t, notify.TargetTypePerson, targets[0].Type())
	assert.Equal(t, notify.TargetTypeGroup, targets[1].Type())

	require.NoError(t, targets[0].SendMessage(context.Background(), "hello"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "hello", sender.sent[0].Text)
	assert.Equal(t, "conv-1", sender.refs[0].Conversation.ID)
}

// fakeSender records pushes with their destination references.
type fakeSender struct {
	sent []*activity.Activity
	refs []*activity.ConversationReference
}

func (f *fakeSender) SendToConversation(ctx context.Context, ref *activity.ConversationReference, a *activity.Activity) (string, error) {
	f.sent = append(f.sent, a)
	f.refs = append(f.refs, ref)
	return "msg-1", nil
}

func (f *fakeSender) UpdateActivity(ctx context.Context, ref *activity.ConversationReference, a *activity.Activity) error {
	return nil
}
