// Package main contains the entrypoint for the WorkflowBot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dooriya/WorkflowBot/internal/bot"
	"github.com/dooriya/WorkflowBot/internal/bot/handlers"
	"github.com/dooriya/WorkflowBot/internal/bot/tasks"
	"github.com/dooriya/WorkflowBot/internal/cardaction"
	"github.com/dooriya/WorkflowBot/internal/command"
	"github.com/dooriya/WorkflowBot/internal/config"
	"github.com/dooriya/WorkflowBot/internal/connector"
	"github.com/dooriya/WorkflowBot/internal/database"
	"github.com/dooriya/WorkflowBot/internal/logger"
	"github.com/dooriya/WorkflowBot/internal/notify"
	"github.com/dooriya/WorkflowBot/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// connector, routers, server, scheduler), handles graceful shutdown, and
// returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	sender, err := connector.NewClient(cfg.Bot, log)
	if err != nil {
		log.Error("Failed to create connector client", "error", err)
		return 1
	}

	notifications := notify.NewMiddleware(store, log)
	notifier := notify.NewBot(store, sender, log)

	commands := command.NewRouter(log)
	actions := cardaction.NewRouter(log)

	hDeps := handlers.HandlerDeps{
		Logger: log,
		Config: cfg,
	}
	if err := handlers.RegisterAll(hDeps, commands, actions); err != nil {
		log.Error("Failed to register handlers", "error", err)
		return 1
	}

	dispatcher := server.NewDispatcher(notifications, commands, actions, sender, log)
	srv := server.New(cfg.Server, dispatcher, store, log)

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Notifier: notifier,
		Config:   cfg,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, db, store, srv, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
