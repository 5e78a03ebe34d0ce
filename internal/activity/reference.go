package activity

import "fmt"

// ConversationReference is the minimal addressing data needed to resume
// sending into a conversation later. References are immutable once stored;
// two references with the same conversation and channel id denote the same
// endpoint.
type ConversationReference struct {
	ActivityID   string               `json:"activityId,omitempty"`
	Bot          *ChannelAccount      `json:"bot,omitempty"`
	User         *ChannelAccount      `json:"user,omitempty"`
	Conversation *ConversationAccount `json:"conversation,omitempty"`
	ChannelID    string               `json:"channelId,omitempty"`
	ServiceURL   string               `json:"serviceUrl,omitempty"`
}

// GetConversationReference extracts the conversation reference from an
// inbound activity. The activity's recipient is the bot and its sender the
// user.
func GetConversationReference(a *Activity) *ConversationReference {
	if a == nil {
		return nil
	}

	ref := &ConversationReference{
		ActivityID: a.ID,
		ChannelID:  a.ChannelID,
		ServiceURL: a.ServiceURL,
	}
	if a.Recipient != nil {
		bot := *a.Recipient
		ref.Bot = &bot
	}
	if a.From != nil {
		user := *a.From
		ref.User = &user
	}
	if a.Conversation != nil {
		conversation := *a.Conversation
		ref.Conversation = &conversation
	}

	return ref
}

// WithConversationID returns a copy of the reference rebound to another
// conversation id. Used to register the owning team, rather than a single
// channel, as the notification target for channel-scoped messages.
func (r *ConversationReference) WithConversationID(conversationID string) *ConversationReference {
	clone := *r
	if r.Conversation != nil {
		conversation := *r.Conversation
		clone.Conversation = &conversation
	} else {
		clone.Conversation = &ConversationAccount{}
	}
	clone.Conversation.ID = conversationID

	return &clone
}

// Key returns the stable storage identity of the referenced endpoint,
// composed from the conversation id and transport channel id.
func (r *ConversationReference) Key() string {
	conversationID := ""
	if r.Conversation != nil {
		conversationID = r.Conversation.ID
	}

	return fmt.Sprintf("%s_%s", conversationID, r.ChannelID)
}

// ConversationType returns the conversation type of the referenced endpoint,
// or an empty string if unknown.
func (r *ConversationReference) ConversationType() string {
	if r.Conversation == nil {
		return ""
	}

	return r.Conversation.ConversationType
}
