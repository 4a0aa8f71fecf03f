// Package ai provides the AI collaborator that turns free-form requirement
// text into a raw ticket draft for the draft parser.
package ai

import (
	"context"
)

// Client generates raw ticket drafts from requirement text.
//
// The GenerateDraft method should:
//   - Build the analysis prompt from the requirements and optional domain
//     context
//   - Call the AI service
//   - Return the raw response body for the draft parser to validate
//
// Implementations may handle rate limiting and error handling as appropriate
// for their specific AI service. They must not retry with altered prompts;
// a bad draft is surfaced to the caller.
type Client interface {
	// GenerateDraft returns the raw structured draft for the given
	// requirements. The context parameter is used for cancellation and
	// timeout handling. domainContext is optional background the AI may
	// use to ground its structure.
	GenerateDraft(ctx context.Context, requirements, domainContext string) (string, error)
}
