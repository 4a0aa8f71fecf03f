// Package actions implements the user-facing workflows behind the CLI
// commands: draft generation, interactive review, and ticket creation.
package actions

import (
	"context"
	"fmt"
	"time"

	"ticketflow.dev/ticketflow/internal/ai"
	"ticketflow.dev/ticketflow/internal/draft"
	"ticketflow.dev/ticketflow/internal/hierarchy"
	"ticketflow.dev/ticketflow/internal/output"
	"ticketflow.dev/ticketflow/internal/planner"
	"ticketflow.dev/ticketflow/internal/review"
	"ticketflow.dev/ticketflow/internal/tracker"
)

// GenerateOptions contains options for the generate command
type GenerateOptions struct {
	AIClient      ai.Client
	Tracker       tracker.Client
	Project       string
	Requirements  string
	DomainContext string
	AssumeYes     bool
	RetryAttempts int
	RetryDelay    time.Duration
}

// GenerateAction turns requirement text into a reviewed ticket hierarchy and
// creates it in the tracker. Returns the per-ticket creation records, or nil
// when the user aborted the review.
func GenerateAction(ctx context.Context, splog *output.Splog, opts GenerateOptions) ([]planner.CreationRecord, error) {
	if opts.AIClient == nil {
		return nil, fmt.Errorf("AI client not available")
	}
	if opts.Tracker == nil {
		return nil, fmt.Errorf("tracker client not available")
	}

	if opts.Project == "" {
		if !IsInteractive() {
			return nil, fmt.Errorf("no project configured; pass one or run init")
		}
		projects, err := opts.Tracker.ListProjects(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		if len(projects) == 0 {
			return nil, fmt.Errorf("no projects visible to this account")
		}
		keys := make([]string, len(projects))
		for i, p := range projects {
			keys[i] = p.Key
		}
		opts.Project, err = promptSelect("Project", keys)
		if err != nil {
			return nil, err
		}
	}

	requirements := opts.Requirements
	if requirements == "" {
		if !IsInteractive() {
			return nil, fmt.Errorf("no requirements given and no terminal to ask on")
		}
		var err error
		requirements, err = promptMultiline("Describe the requirements")
		if err != nil {
			return nil, err
		}
	}
	if requirements == "" {
		return nil, fmt.Errorf("requirements are empty")
	}

	splog.Info("🤖 Analyzing requirements...")
	raw, err := opts.AIClient.GenerateDraft(ctx, requirements, opts.DomainContext)
	if err != nil {
		return nil, fmt.Errorf("failed to generate draft: %w", err)
	}

	model, err := draft.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("draft rejected: %w", err)
	}

	session := review.NewSession(model)

	var confirmed *hierarchy.Model
	if opts.AssumeYes {
		confirmed, err = session.Confirm()
		if err != nil {
			return nil, err
		}
	} else {
		confirmed, err = runReviewLoop(splog, session)
		if err != nil {
			return nil, err
		}
		if confirmed == nil {
			splog.Info("Aborted. Nothing was created.")
			return nil, nil
		}
	}

	if doc, err := draft.Serialize(confirmed); err == nil {
		splog.Debug("confirmed draft: %s", doc)
	}

	splog.Info("Creating %d tickets in %s...", confirmed.Len(), opts.Project)
	p := planner.New(opts.Tracker, planner.Options{
		Project:       opts.Project,
		RetryAttempts: opts.RetryAttempts,
		RetryDelay:    opts.RetryDelay,
		Progress: func(current, total int, title string) {
			splog.Debug("creating %d/%d: %s", current, total, title)
		},
	})
	records := p.Create(ctx, confirmed)

	splog.Newline()
	for _, line := range output.RenderReport(records) {
		splog.Info("%s", line)
	}

	return records, nil
}
