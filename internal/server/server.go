// ABOUTME: HTTP webhook server wiring classification, dedupe and the relay service
// ABOUTME: Serves the POST webhook endpoint, the GET setup page and health checks

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/balakhaniyan/cobalt/internal/config"
	"github.com/balakhaniyan/cobalt/internal/dedupe"
	"github.com/balakhaniyan/cobalt/internal/telegram"
)

// maxWebhookBody bounds the accepted webhook payload size.
const maxWebhookBody = 1 << 20

// EventHandler processes one classified event to completion.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *telegram.Event) error
}

// Registrar performs the one-time webhook and command registration with the
// source platform.
type Registrar interface {
	SetWebhook(ctx context.Context, url string) (*telegram.APIResponse, error)
	SetMyCommands(ctx context.Context, commands []telegram.BotCommand) (*telegram.APIResponse, error)
}

// Server is the inbound HTTP surface of the relay.
type Server struct {
	cfg        *config.Config
	handler    EventHandler
	registrar  Registrar
	dedupe     *dedupe.Cache
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates the webhook server. The dedupe cache may be nil to disable
// update id deduplication.
func New(cfg *config.Config, handler EventHandler, registrar Registrar, dedupeCache *dedupe.Cache) *Server {
	return &Server{
		cfg:       cfg,
		handler:   handler,
		registrar: registrar,
		dedupe:    dedupeCache,
		logger:    slog.Default().With("component", "server"),
	}
}

// Handler returns the HTTP handler tree, exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start runs the server until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info("webhook server listening", "addr", s.cfg.Server.HTTPAddr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleIndex routes the root endpoint: POST carries a webhook update, GET is
// the one-time setup trigger.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.handleWebhook(w, r)
	case http.MethodGet:
		s.handleSetup(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleWebhook classifies and processes one inbound update. Once
// classification succeeds the caller always gets 200 "OK": the relay is
// fire-and-forget from Telegram's perspective, except for storage failures
// which surface as 500 so the update is redelivered.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logger := s.logger.With("request_id", requestID)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		logger.Warn("reading webhook body failed", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	event, err := telegram.Classify(body)
	if err != nil {
		logger.Warn("rejecting malformed update", "error", err)
		http.Error(w, "malformed update", http.StatusBadRequest)
		return
	}

	logger = logger.With("update_id", event.UpdateID, "kind", event.Kind)

	if s.dedupe != nil && s.dedupe.CheckAndMark(event.UpdateID) {
		logger.Debug("duplicate update acknowledged")
		s.writeOK(w)
		return
	}

	if err := s.handler.HandleEvent(r.Context(), event); err != nil {
		// Release the id so the redelivered update is processed, not
		// acknowledged as a duplicate.
		if s.dedupe != nil {
			s.dedupe.Forget(event.UpdateID)
		}
		logger.Error("handling update failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logger.Debug("update processed")
	s.writeOK(w)
}

// handleSetup registers the webhook URL and command list with Telegram and
// responds with an HTML status page.
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Server.PublicURL == "" {
		http.Error(w, "server.public_url is not configured", http.StatusInternalServerError)
		return
	}

	webhookResp, err := s.registrar.SetWebhook(r.Context(), s.cfg.Server.PublicURL)
	if err != nil {
		s.logger.Error("webhook registration failed", "error", err)
		http.Error(w, fmt.Sprintf("registering webhook: %v", err), http.StatusBadGateway)
		return
	}

	commandsResp, err := s.registrar.SetMyCommands(r.Context(), []telegram.BotCommand{
		{Command: "add_link", Description: "Add a relay link"},
	})
	if err != nil {
		s.logger.Error("command registration failed", "error", err)
		http.Error(w, fmt.Sprintf("registering commands: %v", err), http.StatusBadGateway)
		return
	}

	s.logger.Info("setup completed", "webhook_ok", webhookResp.OK, "commands_ok", commandsResp.OK)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderSetupPage(s.cfg.Server.PublicURL, webhookResp, commandsResp))
}

// handleHealth is a liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) writeOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
