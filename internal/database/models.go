package database

import "time"

// ConversationReferenceRecord is the persisted form of a conversation
// reference. Key is the stable identity derived from conversation id and
// channel id; Reference holds the serialized reference as written, never
// mutated after insert.
type ConversationReferenceRecord struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	Key              string `db:"key"`
	ConversationID   string `db:"conversation_id"`
	ChannelID        string `db:"channel_id"`
	ConversationType string `db:"conversation_type"`
	Reference        string `db:"reference"`
}
