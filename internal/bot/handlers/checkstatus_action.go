package handlers

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dooriya/WorkflowBot/internal/activity"
	"github.com/dooriya/WorkflowBot/internal/cardaction"
)

// CheckStatusData is the payload of the checkStatus card action.
type CheckStatusData struct {
	RequestID string `json:"requestId,omitempty"`
}

// NewCheckStatusHandler returns the handler for the checkStatus card action.
// It is registered with ReplaceForAll so every participant sees the same
// progress card.
func NewCheckStatusHandler(deps HandlerDeps) cardaction.HandlerFunc[CheckStatusData] {
	h := &checkStatusHandler{deps: deps}
	return h.Handle
}

type checkStatusHandler struct {
	deps  HandlerDeps
	polls atomic.Int64
}

func (h *checkStatusHandler) Handle(ctx context.Context, tc *activity.TurnContext, data CheckStatusData) (*cardaction.AdaptiveCard, error) {
	log := h.deps.Logger.With("handler", "check_status")
	log.InfoContext(ctx, "Handling checkStatus action", "request_id", data.RequestID)

	count := h.polls.Add(1)
	finished := count > 3
	if finished {
		h.polls.Store(0)
	}

	card := cardaction.NewAdaptiveCard()
	if finished {
		card.Body = []map[string]any{
			{"type": "TextBlock", "size": "Medium", "weight": "Bolder", "text": "Provisioning finished"},
			{"type": "TextBlock", "text": fmt.Sprintf("Request %s is ready.", data.RequestID), "wrap": true},
		}
		return card, nil
	}

	card.Body = []map[string]any{
		{"type": "TextBlock", "size": "Medium", "weight": "Bolder", "text": "Provisioning in progress"},
		{"type": "TextBlock", "text": fmt.Sprintf("Checked %d time(s), please try again later.", count), "wrap": true},
	}
	card.Actions = []map[string]any{
		{"type": "Action.Execute", "title": "Check status", "verb": "checkStatus", "data": map[string]any{"requestId": data.RequestID}},
	}

	return card, nil
}
