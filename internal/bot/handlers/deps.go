// Package handlers contains the built-in command and card action handlers
// registered with the routers at startup.
package handlers

import (
	"log/slog"

	"github.com/dooriya/WorkflowBot/internal/config"
)

// HandlerDeps contains all dependencies required by the built-in handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
}
