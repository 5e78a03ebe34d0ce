package handlers

import (
	"fmt"

	"github.com/dooriya/WorkflowBot/internal/cardaction"
	"github.com/dooriya/WorkflowBot/internal/command"
)

// RegisterAll wires the built-in handlers into the routers. Registration
// happens once at startup; duplicate patterns or verbs fail construction.
func RegisterAll(deps HandlerDeps, commands *command.Router, actions *cardaction.Router) error {
	helloWorld, err := command.NewPattern("helloWorld")
	if err != nil {
		return fmt.Errorf("failed to build helloWorld pattern: %w", err)
	}
	if err := commands.Register(NewHelloWorldHandler(deps), helloWorld); err != nil {
		return fmt.Errorf("failed to register helloWorld command: %w", err)
	}

	if err := cardaction.Register(actions, "doStuff", NewDoStuffHandler(deps)); err != nil {
		return fmt.Errorf("failed to register doStuff action: %w", err)
	}
	if err := cardaction.Register(actions, "checkStatus", NewCheckStatusHandler(deps),
		cardaction.WithResponseBehavior(cardaction.ReplaceForAll)); err != nil {
		return fmt.Errorf("failed to register checkStatus action: %w", err)
	}

	return nil
}
