// Package cardaction implements the adaptive card action router: a verb-keyed
// table of typed handlers, the invoke response factory, and the delivery
// behaviors controlling how a handler's card reaches the conversation.
package cardaction

// AdaptiveCard is the structured document a card action handler returns.
// Body and element contents are left schemaless; the bot routes cards, it
// does not render them.
type AdaptiveCard struct {
	Type    string           `json:"type"`
	Schema  string           `json:"$schema,omitempty"`
	Version string           `json:"version,omitempty"`
	Body    []map[string]any `json:"body,omitempty"`
	Actions []map[string]any `json:"actions,omitempty"`
	Refresh *CardRefresh     `json:"refresh,omitempty"`
}

// CardRefresh is the auto-refresh block of an adaptive card. Its presence
// marks the card as self-refreshing, which forces ReplaceForAll delivery:
// the acknowledgment channel can only replace the card for the interactor,
// so a privately replaced card would never refresh for anyone else.
type CardRefresh struct {
	Action  map[string]any `json:"action,omitempty"`
	UserIDs []string       `json:"userIds,omitempty"`
}

// NewAdaptiveCard returns an empty adaptive card with type and version set.
func NewAdaptiveCard() *AdaptiveCard {
	return &AdaptiveCard{
		Type:    "AdaptiveCard",
		Schema:  "http://adaptivecards.io/schemas/adaptive-card.json",
		Version: "1.4",
	}
}

// validate reports whether the card carries any renderable content.
func (c *AdaptiveCard) validate() error {
	if c == nil || (len(c.Body) == 0 && len(c.Actions) == 0) {
		return ErrMissingCardContent
	}

	return nil
}
