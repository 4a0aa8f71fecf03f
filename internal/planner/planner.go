// Package planner turns a confirmed hierarchy into an ordered sequence of
// remote creations. Parents are always created before their children; a
// failed parent skips its whole subtree; siblings already created are never
// rolled back. The run as a whole always completes and reports every node.
package planner

import (
	"context"
	"strings"
	"time"

	"ticketflow.dev/ticketflow/internal/hierarchy"
	"ticketflow.dev/ticketflow/internal/tracker"
)

// Outcome is the per-node result of a creation run.
type Outcome string

const (
	// OutcomeCreated means the ticket exists remotely.
	OutcomeCreated Outcome = "created"
	// OutcomeFailed means the remote system rejected the ticket after the
	// retry budget was spent.
	OutcomeFailed Outcome = "failed"
	// OutcomeSkippedParentFailed means the ticket was never attempted
	// because an ancestor failed.
	OutcomeSkippedParentFailed Outcome = "skipped (parent failed)"
)

// CreationRecord is the outcome of one node's remote creation. It is
// serialized into webhook responses and the ingestion store.
type CreationRecord struct {
	LocalID   int            `json:"local_id"`
	Kind      hierarchy.Kind `json:"kind"`
	Title     string         `json:"title"`
	RemoteID  string         `json:"remote_id,omitempty"`
	RemoteURL string         `json:"remote_url,omitempty"`
	Outcome   Outcome        `json:"outcome"`
	Err       string         `json:"error,omitempty"`
}

// Options configures a creation run.
type Options struct {
	// Project is the remote creation target (Jira project key or
	// owner/repo).
	Project string

	// RetryAttempts is how many extra attempts a transient remote fault
	// gets before the node is recorded as failed.
	RetryAttempts int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration

	// Progress, when set, is called before each attempted creation with
	// the 1-based position, the total node count and the ticket title.
	Progress func(current, total int, title string)
}

// Planner issues remote creations for confirmed models.
type Planner struct {
	client tracker.Client
	opts   Options
}

// New creates a planner. Zero retry options mean no retries.
func New(client tracker.Client, opts Options) *Planner {
	return &Planner{client: client, opts: opts}
}

// Create materializes the model remotely and returns one record per node, in
// creation order. The model must be frozen (confirmed). The run never fails
// as a whole: individual failures are recorded and downstream nodes of a
// failed parent are marked skipped.
func (p *Planner) Create(ctx context.Context, model *hierarchy.Model) []CreationRecord {
	order := model.CreationOrder()
	records := make([]CreationRecord, 0, len(order))
	byID := make(map[int]*CreationRecord, len(order))

	for i, id := range order {
		node, _ := model.Get(id)
		record := CreationRecord{
			LocalID: id,
			Kind:    node.Kind,
			Title:   node.Title,
		}

		if parentRecord, ok := byID[node.ParentLocalID]; ok && parentRecord.Outcome != OutcomeCreated {
			record.Outcome = OutcomeSkippedParentFailed
			records = append(records, record)
			byID[id] = &records[len(records)-1]
			continue
		}

		if p.opts.Progress != nil {
			p.opts.Progress(i+1, len(order), node.Title)
		}

		req := tracker.CreateIssueRequest{
			Project:     p.opts.Project,
			Kind:        node.Kind,
			Title:       node.Title,
			Description: formatDescription(node),
		}
		if node.ParentLocalID != 0 {
			parent, _ := model.Get(node.ParentLocalID)
			req.ParentRemoteID = parent.RemoteID
			req.ParentKind = parent.Kind
		}

		issue, err := p.createWithRetry(ctx, req)
		if err != nil {
			record.Outcome = OutcomeFailed
			record.Err = err.Error()
		} else {
			record.Outcome = OutcomeCreated
			record.RemoteID = issue.RemoteID
			record.RemoteURL = issue.URL
			_ = model.SetRemote(id, issue.RemoteID, issue.URL)
		}

		records = append(records, record)
		byID[id] = &records[len(records)-1]
	}

	return records
}

// createWithRetry retries transient faults within the configured budget.
// Validation, auth and permission faults fail immediately.
func (p *Planner) createWithRetry(ctx context.Context, req tracker.CreateIssueRequest) (*tracker.Issue, error) {
	var lastErr error
	for attempt := 0; attempt <= p.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, lastErr
			case <-time.After(p.opts.RetryDelay):
			}
		}

		issue, err := p.client.CreateIssue(ctx, req)
		if err == nil {
			return issue, nil
		}
		lastErr = err
		if !tracker.IsTransient(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// formatDescription renders the node description plus acceptance criteria as
// a bullet list, matching how tickets read in the tracker.
func formatDescription(node *hierarchy.TicketNode) string {
	if len(node.AcceptanceCriteria) == 0 {
		return node.Description
	}

	var b strings.Builder
	b.WriteString(node.Description)
	if node.Description != "" {
		b.WriteString("\n\n")
	}
	b.WriteString("Acceptance Criteria:\n")
	for _, criterion := range node.AcceptanceCriteria {
		b.WriteString("• ")
		b.WriteString(criterion)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
