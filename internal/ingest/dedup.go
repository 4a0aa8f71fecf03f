// Package ingest runs the webhook pipeline with at-most-once semantics per
// inbound message. Concurrent deliveries of the same message id race for a
// single pipeline run; the losers block and return the winner's outcome.
// Completed outcomes live in a Store so later redeliveries are answered
// without touching the AI or the ticket system again.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ticketflow.dev/ticketflow/internal/planner"
)

// Key identifies one inbound message. MessageID is the dedup key; ThreadID
// is kept for reporting only.
type Key struct {
	MessageID string
	ThreadID  string
}

// Outcome is the stored result of one pipeline run.
type Outcome struct {
	RunID      string                   `json:"run_id"`
	MessageID  string                   `json:"message_id"`
	ThreadID   string                   `json:"thread_id,omitempty"`
	Records    []planner.CreationRecord `json:"records"`
	ReceivedAt time.Time                `json:"received_at"`

	// replayed marks an outcome served from the store rather than a fresh
	// pipeline run.
	replayed bool
}

// Pipeline is the structuring+creation run invoked for a first-seen message.
type Pipeline func(ctx context.Context, key Key, body string) ([]planner.CreationRecord, error)

type flight struct {
	done    chan struct{}
	outcome *Outcome
	err     error
}

// Deduplicator serializes pipeline runs per message id.
type Deduplicator struct {
	store    Store
	pipeline Pipeline

	mu       sync.Mutex
	inflight map[string]*flight
}

// NewDeduplicator creates a deduplicator over the given outcome store.
func NewDeduplicator(store Store, pipeline Pipeline) *Deduplicator {
	return &Deduplicator{
		store:    store,
		pipeline: pipeline,
		inflight: make(map[string]*flight),
	}
}

// Ingest runs the pipeline for a first-seen message id and returns its
// outcome. For a repeated id it returns the stored outcome and
// duplicate=true without running anything. Pipeline errors are not stored:
// a failed run had no remote side effects, so a redelivery may retry it.
func (d *Deduplicator) Ingest(ctx context.Context, key Key, body string) (*Outcome, bool, error) {
	if strings.TrimSpace(key.MessageID) == "" {
		return nil, false, fmt.Errorf("message id is required")
	}

	d.mu.Lock()
	if f, ok := d.inflight[key.MessageID]; ok {
		d.mu.Unlock()
		select {
		case <-f.done:
			return f.outcome, true, f.err
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	d.inflight[key.MessageID] = f
	d.mu.Unlock()

	outcome, err := d.ingestLocked(ctx, key, body)
	f.outcome = outcome
	f.err = err
	close(f.done)

	d.mu.Lock()
	delete(d.inflight, key.MessageID)
	d.mu.Unlock()

	if err != nil {
		return nil, false, err
	}

	// The winner reports duplicate only when the store already had the
	// outcome from an earlier delivery.
	return outcome, outcome.replayed, nil
}

func (d *Deduplicator) ingestLocked(ctx context.Context, key Key, body string) (*Outcome, error) {
	stored, ok, err := d.store.Get(ctx, key.MessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to read ingest store: %w", err)
	}
	if ok {
		stored.replayed = true
		return stored, nil
	}

	records, err := d.pipeline(ctx, key, body)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		RunID:      uuid.New().String(),
		MessageID:  key.MessageID,
		ThreadID:   key.ThreadID,
		Records:    records,
		ReceivedAt: time.Now().UTC(),
	}

	if err := d.store.Put(ctx, key.MessageID, outcome); err != nil {
		return nil, fmt.Errorf("failed to persist ingest outcome: %w", err)
	}
	return outcome, nil
}
