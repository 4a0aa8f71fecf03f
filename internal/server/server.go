// Package server exposes the inbound email webhook that feeds the unattended
// ticket pipeline.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"ticketflow.dev/ticketflow/internal/ingest"
	"ticketflow.dev/ticketflow/internal/output"
)

const secretHeader = "X-Webhook-Secret"

// Server handles webhook deliveries from the email provider.
type Server struct {
	addr            string
	secret          string
	dedup           *ingest.Deduplicator
	splog           *output.Splog
	requirements    func(subject, from, body string) string
	shutdownTimeout time.Duration
	server          *http.Server
}

// NewServer creates a webhook server. requirements folds an email into the
// requirement text handed to the pipeline.
func NewServer(addr, secret string, dedup *ingest.Deduplicator, requirements func(subject, from, body string) string, splog *output.Splog) *Server {
	return &Server{
		addr:            addr,
		secret:          secret,
		dedup:           dedup,
		splog:           splog,
		requirements:    requirements,
		shutdownTimeout: 5 * time.Second,
	}
}

// Handler returns the HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook/email", s.handleEmail)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.splog.Warn("shutdown error: %v", err)
		}
	}()

	s.splog.Info("Listening on %s...", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

type emailBody struct {
	Plain string `json:"plain"`
	HTML  string `json:"html"`
}

type emailPayload struct {
	MessageID string    `json:"message_id"`
	ThreadID  string    `json:"thread_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Date      string    `json:"date"`
	Subject   string    `json:"subject"`
	Body      emailBody `json:"body"`
}

type webhookResponse struct {
	RunID     string          `json:"run_id"`
	Duplicate bool            `json:"duplicate"`
	Outcome   *ingest.Outcome `json:"outcome"`
}

func (s *Server) handleEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.secret != "" {
		got := r.Header.Get(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) != 1 {
			http.Error(w, "invalid webhook secret", http.StatusUnauthorized)
			return
		}
	}

	if s.dedup == nil {
		http.Error(w, "pipeline unavailable", http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var payload emailPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(payload.MessageID) == "" {
		http.Error(w, "message_id is required", http.StatusBadRequest)
		return
	}

	text := payload.Body.Plain
	if text == "" {
		text = payload.Body.HTML
	}
	if strings.TrimSpace(text) == "" && strings.TrimSpace(payload.Subject) == "" {
		http.Error(w, "email has no content", http.StatusBadRequest)
		return
	}

	requirements := s.requirements(payload.Subject, payload.From, text)

	key := ingest.Key{MessageID: payload.MessageID, ThreadID: payload.ThreadID}
	outcome, duplicate, err := s.dedup.Ingest(r.Context(), key, requirements)
	if err != nil {
		s.splog.Error("ingest %s failed: %v", payload.MessageID, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if duplicate {
		s.splog.Info("duplicate delivery for %s, returning stored outcome", payload.MessageID)
	} else {
		s.splog.Info("processed %s: %d tickets attempted", payload.MessageID, len(outcome.Records))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(webhookResponse{
		RunID:     outcome.RunID,
		Duplicate: duplicate,
		Outcome:   outcome,
	})
}
