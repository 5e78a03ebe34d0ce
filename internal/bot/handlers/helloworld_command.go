package handlers

import (
	"context"

	"github.com/dooriya/WorkflowBot/internal/activity"
	"github.com/dooriya/WorkflowBot/internal/cardaction"
	"github.com/dooriya/WorkflowBot/internal/command"
)

// NewHelloWorldHandler returns the handler replying to "helloWorld" messages
// with the hello world card. The card carries an execute action wired to the
// doStuff verb.
func NewHelloWorldHandler(deps HandlerDeps) command.HandlerFunc {
	return helloWorldHandler{deps}.Handle
}

type helloWorldHandler struct {
	deps HandlerDeps
}

func (h helloWorldHandler) Handle(ctx context.Context, tc *activity.TurnContext, msg command.Message) (*activity.Activity, error) {
	log := h.deps.Logger.With("handler", "hello_world")
	log.InfoContext(ctx, "Handling helloWorld command", "text", msg.Text)

	card := cardaction.NewAdaptiveCard()
	card.Body = []map[string]any{
		{
			"type":   "TextBlock",
			"size":   "Medium",
			"weight": "Bolder",
			"text":   "Your Hello World Bot is Running",
		},
		{
			"type": "TextBlock",
			"text": "Congratulations! Your hello world bot is running. Click the button below to trigger an action.",
			"wrap": true,
		},
	}
	card.Actions = []map[string]any{
		{
			"type":  "Action.Execute",
			"title": "DoStuff",
			"verb":  "doStuff",
		},
	}

	return activity.NewCardMessage(card), nil
}
