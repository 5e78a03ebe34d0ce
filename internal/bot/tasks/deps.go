// Package tasks implements scheduled tasks for the WorkflowBot application.
// It includes task definitions, dependencies, and registration mechanisms.
package tasks

import (
	"log/slog"

	"github.com/dooriya/WorkflowBot/internal/config"
	"github.com/dooriya/WorkflowBot/internal/database"
	"github.com/dooriya/WorkflowBot/internal/notify"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Notifier *notify.Bot
	Config   *config.Config
}
