package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dooriya/WorkflowBot/internal/activity"
	"github.com/dooriya/WorkflowBot/internal/config"
	"github.com/dooriya/WorkflowBot/internal/database"
	"github.com/dooriya/WorkflowBot/internal/logger"
)

// Server is the inbound HTTP listener receiving platform activities.
type Server struct {
	httpServer *http.Server
	dispatcher *Dispatcher
	store      database.Store
	logger     *slog.Logger
}

// New builds the HTTP server and its routes.
func New(cfg config.ServerConfig, dispatcher *Dispatcher, store database.Store, log *slog.Logger) *Server {
	s := &Server{
		dispatcher: dispatcher,
		store:      store,
		logger:     log.With("component", "server"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware(log))
	r.Post("/api/messages", s.handleMessages)
	r.Get("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Start runs the listener until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Error shutting down HTTP server", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped gracefully.")
	return nil
}

// handleMessages decodes one inbound activity and runs its turn. For invoke
// activities the acknowledgment produced by the router is written back as the
// HTTP response; for everything else the turn completes with an empty 200.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	var a activity.Activity
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		s.logger.Warn("Failed to decode inbound activity", "error", err)
		http.Error(w, "invalid activity payload", http.StatusBadRequest)
		return
	}

	responded := false
	responder := func(ctx context.Context, value any) error {
		if responded {
			return errors.New("invoke already acknowledged")
		}
		responded = true

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return json.NewEncoder(w).Encode(value)
	}

	err := s.dispatcher.ProcessActivity(r.Context(), &a, responder)
	if err != nil {
		// The routers already closed any outstanding invoke with a fallback
		// acknowledgment; here the turn boundary converts what is left into a
		// generic error.
		s.logger.Error("Turn processing failed", "error", err, "activity_type", a.Type)
		if !responded {
			http.Error(w, "failed to process activity", http.StatusInternalServerError)
		}
		return
	}

	if !responded {
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}
