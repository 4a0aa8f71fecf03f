package actions

import (
	"context"
	"fmt"
	"time"

	"ticketflow.dev/ticketflow/internal/ai"
	"ticketflow.dev/ticketflow/internal/draft"
	"ticketflow.dev/ticketflow/internal/ingest"
	"ticketflow.dev/ticketflow/internal/planner"
	"ticketflow.dev/ticketflow/internal/tracker"
)

// PipelineOptions configures the unattended email-to-tickets pipeline.
type PipelineOptions struct {
	AIClient      ai.Client
	Tracker       tracker.Client
	Project       string
	RetryAttempts int
	RetryDelay    time.Duration
}

// NewEmailPipeline builds the pipeline the webhook ingester runs for each
// new message: generate a draft from the email text, validate it, and create
// the tickets without review.
func NewEmailPipeline(opts PipelineOptions) ingest.Pipeline {
	return func(ctx context.Context, key ingest.Key, requirements string) ([]planner.CreationRecord, error) {
		raw, err := opts.AIClient.GenerateDraft(ctx, requirements, "")
		if err != nil {
			return nil, fmt.Errorf("failed to generate draft: %w", err)
		}

		model, err := draft.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("draft rejected: %w", err)
		}
		model.Freeze()

		p := planner.New(opts.Tracker, planner.Options{
			Project:       opts.Project,
			RetryAttempts: opts.RetryAttempts,
			RetryDelay:    opts.RetryDelay,
		})
		return p.Create(ctx, model), nil
	}
}
