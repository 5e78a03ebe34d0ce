package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dooriya/WorkflowBot/internal/activity"
	"github.com/dooriya/WorkflowBot/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func reference(conversationID, channelID, conversationType string) *activity.ConversationReference {
	return &activity.ConversationReference{
		ChannelID:  channelID,
		ServiceURL: "https://smba.trafficmanager.net/teams/",
		Bot:        &activity.ChannelAccount{ID: "bot-1", Name: "workflow-bot"},
		User:       &activity.ChannelAccount{ID: "user-1", Name: "Sam"},
		Conversation: &activity.ConversationAccount{
			ID:               conversationID,
			ConversationType: conversationType,
		},
	}
}

func TestStoreUpsertAndExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ref := reference("conv-1", "msteams", activity.ConversationTypePersonal)

	exists, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Upsert(ctx, ref))

	exists, err = store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStoreUpsertIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ref := reference("conv-1", "msteams", activity.ConversationTypePersonal)

	require.NoError(t, store.Upsert(ctx, ref))
	require.NoError(t, store.Upsert(ctx, ref))

	refs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, refs, 1)
}

func TestStoreUpsertDistinguishesChannels(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Same conversation id on two channels is two distinct targets.
	require.NoError(t, store.Upsert(ctx, reference("conv-1", "msteams", activity.ConversationTypePersonal)))
	require.NoError(t, store.Upsert(ctx, reference("conv-1", "webchat", activity.ConversationTypePersonal)))

	refs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, refs, 2)
}

func TestStoreRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ref := reference("conv-1", "msteams", activity.ConversationTypePersonal)

	require.NoError(t, store.Upsert(ctx, ref))
	require.NoError(t, store.Remove(ctx, ref))

	exists, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, exists)

	// Removing an absent key is not an error.
	require.NoError(t, store.Remove(ctx, ref))
}

func TestStoreListInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, reference("conv-b", "msteams", activity.ConversationTypeGroup)))
	require.NoError(t, store.Upsert(ctx, reference("conv-a", "msteams", activity.ConversationTypePersonal)))
	require.NoError(t, store.Upsert(ctx, reference("conv-c", "msteams", activity.ConversationTypeChannel)))

	refs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 3)

	assert.Equal(t, "conv-b", refs[0].Conversation.ID)
	assert.Equal(t, "conv-a", refs[1].Conversation.ID)
	assert.Equal(t, "conv-c", refs[2].Conversation.ID)

	// Round-tripped references keep their full shape.
	assert.Equal(t, activity.ConversationTypeGroup, refs[0].Conversation.ConversationType)
	assert.Equal(t, "bot-1", refs[0].Bot.ID)
	assert.Equal(t, "https://smba.trafficmanager.net/teams/", refs[0].ServiceURL)
}

func TestStoreUpsertRejectsInvalidReference(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.Upsert(ctx, nil))
	assert.Error(t, store.Upsert(ctx, &activity.ConversationReference{ChannelID: "msteams"}))
}

func TestStoreMaintenance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, reference("conv-1", "msteams", activity.ConversationTypePersonal)))
	require.NoError(t, store.Remove(ctx, reference("conv-1", "msteams", activity.ConversationTypePersonal)))
	require.NoError(t, store.RunSQLMaintenance(ctx))
}
