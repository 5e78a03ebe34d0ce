package handlers

import (
	"context"

	"github.com/dooriya/WorkflowBot/internal/activity"
	"github.com/dooriya/WorkflowBot/internal/cardaction"
)

// DoStuffData is the payload of the doStuff card action.
type DoStuffData struct {
	Message string `json:"message,omitempty"`
}

// NewDoStuffHandler returns the handler for the doStuff card action. The
// response card replaces the interactor's view only.
func NewDoStuffHandler(deps HandlerDeps) cardaction.HandlerFunc[DoStuffData] {
	return doStuffHandler{deps}.Handle
}

type doStuffHandler struct {
	deps HandlerDeps
}

func (h doStuffHandler) Handle(ctx context.Context, tc *activity.TurnContext, data DoStuffData) (*cardaction.AdaptiveCard, error) {
	log := h.deps.Logger.With("handler", "do_stuff")
	log.InfoContext(ctx, "Handling doStuff action", "message", data.Message)

	text := "[ACK] Your response was received."
	if data.Message != "" {
		text = "[ACK] " + data.Message
	}

	card := cardaction.NewAdaptiveCard()
	card.Body = []map[string]any{
		{
			"type":   "TextBlock",
			"size":   "Medium",
			"weight": "Bolder",
			"text":   "A response card",
		},
		{
			"type": "TextBlock",
			"text": text,
			"wrap": true,
		},
	}

	return card, nil
}
