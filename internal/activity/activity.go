// Package activity defines the Bot Framework activity model consumed and
// produced by the bot, the classifier that maps inbound activities to semantic
// categories, and the conversation reference codec used by the notification
// layer to address conversations outside the turn that created them.
package activity

import (
	"encoding/json"
	"strings"
)

// Activity types understood by the bot.
const (
	TypeMessage            = "message"
	TypeInvoke             = "invoke"
	TypeInstallationUpdate = "installationUpdate"
	TypeConversationUpdate = "conversationUpdate"
)

// InvokeNameCardAction is the invoke name carrying an adaptive card action.
const InvokeNameCardAction = "adaptiveCard/action"

// Conversation types reported by the messaging platform.
const (
	ConversationTypePersonal = "personal"
	ConversationTypeGroup    = "groupChat"
	ConversationTypeChannel  = "channel"
)

// AttachmentTypeAdaptiveCard is the content type for adaptive card attachments.
const AttachmentTypeAdaptiveCard = "application/vnd.microsoft.card.adaptive"

// Activity is a single turn-based event exchanged with the messaging platform.
// Only the fields the bot routes on are modeled; unknown fields are dropped on
// decode.
type Activity struct {
	Type         string               `json:"type"`
	ID           string               `json:"id,omitempty"`
	Name         string               `json:"name,omitempty"`
	Action       string               `json:"action,omitempty"`
	Text         string               `json:"text,omitempty"`
	ReplyToID    string               `json:"replyToId,omitempty"`
	ChannelID    string               `json:"channelId,omitempty"`
	ServiceURL   string               `json:"serviceUrl,omitempty"`
	From         *ChannelAccount      `json:"from,omitempty"`
	Recipient    *ChannelAccount      `json:"recipient,omitempty"`
	Conversation *ConversationAccount `json:"conversation,omitempty"`
	ChannelData  *ChannelData         `json:"channelData,omitempty"`
	Value        *InvokeValue         `json:"value,omitempty"`
	Entities     []Entity             `json:"entities,omitempty"`
	Attachments  []Attachment         `json:"attachments,omitempty"`
}

// ChannelAccount identifies a user or bot on the platform.
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ConversationAccount identifies the conversation an activity belongs to.
type ConversationAccount struct {
	ID               string `json:"id"`
	ConversationType string `json:"conversationType,omitempty"`
	TenantID         string `json:"tenantId,omitempty"`
	Name             string `json:"name,omitempty"`
}

// ChannelData carries platform-specific payload fields the bot inspects:
// the embedded event type on conversation updates and the owning team of a
// channel-scoped message.
type ChannelData struct {
	EventType string       `json:"eventType,omitempty"`
	Team      *TeamInfo    `json:"team,omitempty"`
	Channel   *ChannelInfo `json:"channel,omitempty"`
}

// TeamInfo identifies a team on the platform.
type TeamInfo struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ChannelInfo identifies a channel within a team.
type ChannelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// InvokeValue is the value payload of an invoke activity.
type InvokeValue struct {
	Action *InvokeAction `json:"action,omitempty"`
}

// InvokeAction is the card action embedded in an "adaptiveCard/action" invoke.
// Data is kept raw so the card action router can decode it into the verb's
// declared payload type.
type InvokeAction struct {
	Type string          `json:"type,omitempty"`
	Verb string          `json:"verb,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Entity is a metadata entity attached to an activity, e.g. an @-mention.
type Entity struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Mentioned *ChannelAccount `json:"mentioned,omitempty"`
}

// Attachment is a structured document attached to a message activity.
type Attachment struct {
	ContentType string `json:"contentType"`
	Content     any    `json:"content,omitempty"`
}

// NewMessage builds a plain text message activity.
func NewMessage(text string) *Activity {
	return &Activity{
		Type: TypeMessage,
		Text: text,
	}
}

// NewCardMessage builds a message activity carrying a single adaptive card
// attachment.
func NewCardMessage(card any) *Activity {
	return &Activity{
		Type: TypeMessage,
		Attachments: []Attachment{
			{ContentType: AttachmentTypeAdaptiveCard, Content: card},
		},
	}
}

// RemoveRecipientMention strips the bot's own @-mention from a message
// activity's text and normalizes the remainder: newlines removed, surrounding
// whitespace trimmed, lowered when a mention was present. The activity itself
// is not modified.
func RemoveRecipientMention(a *Activity) string {
	if a == nil {
		return ""
	}

	text := a.Text
	if a.Recipient == nil {
		return strings.TrimSpace(text)
	}

	removed := false
	for _, entity := range a.Entities {
		if entity.Type != "mention" || entity.Mentioned == nil {
			continue
		}
		if entity.Mentioned.ID != a.Recipient.ID || entity.Text == "" {
			continue
		}
		text = strings.ReplaceAll(text, entity.Text, "")
		removed = true
	}

	if removed {
		text = strings.ToLower(text)
	}
	text = strings.NewReplacer("\r\n", "", "\n", "").Replace(text)

	return strings.TrimSpace(text)
}
