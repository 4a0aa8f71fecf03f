package actions

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketflow.dev/ticketflow/internal/ai"
	"ticketflow.dev/ticketflow/internal/errors"
	"ticketflow.dev/ticketflow/internal/hierarchy"
	"ticketflow.dev/ticketflow/internal/ingest"
	"ticketflow.dev/ticketflow/internal/output"
	"ticketflow.dev/ticketflow/internal/planner"
	"ticketflow.dev/ticketflow/internal/tracker"
)

const sampleDraft = `{
  "tickets": [
    {"type": "Epic", "summary": "User Authentication", "description": "Everything auth", "parent_index": null},
    {"type": "Story", "summary": "Login flow", "description": "", "acceptance_criteria": ["Works"], "parent_index": 0},
    {"type": "Subtask", "summary": "Form validation", "description": "", "parent_index": 1}
  ]
}`

func TestParseReviewCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line    string
		verb    reviewVerb
		id      int
		wantErr bool
	}{
		{line: "list", verb: verbList},
		{line: "l", verb: verbList},
		{line: "show 3", verb: verbShow, id: 3},
		{line: "e 2", verb: verbEdit, id: 2},
		{line: "delete 7", verb: verbDelete, id: 7},
		{line: "  Confirm  ", verb: verbConfirm},
		{line: "q", verb: verbAbort},
		{line: "", wantErr: true},
		{line: "edit", wantErr: true},
		{line: "edit two", wantErr: true},
		{line: "frobnicate", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.line), func(t *testing.T) {
			t.Parallel()
			cmd, err := parseReviewCommand(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.verb, cmd.verb)
			assert.Equal(t, tt.id, cmd.id)
		})
	}
}

func TestGenerateActionAssumeYes(t *testing.T) {
	aiClient := ai.NewMockClient()
	aiClient.SetMockDraft(sampleDraft)
	trackerClient := tracker.NewMockClient()

	records, err := GenerateAction(context.Background(), output.NewSplog(), GenerateOptions{
		AIClient:     aiClient,
		Tracker:      trackerClient,
		Project:      "PROJ",
		Requirements: "We need user authentication.",
		AssumeYes:    true,
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, record := range records {
		assert.Equal(t, planner.OutcomeCreated, record.Outcome)
	}

	requests := trackerClient.Requests()
	require.Len(t, requests, 3)
	assert.Equal(t, hierarchy.KindEpic, requests[0].Kind)
	assert.Equal(t, "PROJ", requests[0].Project)
	assert.Equal(t, requests[0].Project, requests[2].Project)
	assert.Equal(t, 1, aiClient.CallCount())
}

func TestGenerateActionRejectsBadDraft(t *testing.T) {
	aiClient := ai.NewMockClient()
	aiClient.SetMockDraft("sorry, I cannot help with that")

	_, err := GenerateAction(context.Background(), output.NewSplog(), GenerateOptions{
		AIClient:     aiClient,
		Tracker:      tracker.NewMockClient(),
		Project:      "PROJ",
		Requirements: "anything",
		AssumeYes:    true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMalformedDraft)
}

func TestGenerateActionRequiresRequirementsWithoutTerminal(t *testing.T) {
	t.Setenv("TICKETFLOW_TEST_NO_INTERACTIVE", "1")

	aiClient := ai.NewMockClient()
	aiClient.SetMockDraft(sampleDraft)

	_, err := GenerateAction(context.Background(), output.NewSplog(), GenerateOptions{
		AIClient:  aiClient,
		Tracker:   tracker.NewMockClient(),
		Project:   "PROJ",
		AssumeYes: true,
	})
	require.Error(t, err)
	assert.Equal(t, 0, aiClient.CallCount())
}

func TestGenerateActionRequiresProjectWithoutTerminal(t *testing.T) {
	t.Setenv("TICKETFLOW_TEST_NO_INTERACTIVE", "1")

	aiClient := ai.NewMockClient()
	aiClient.SetMockDraft(sampleDraft)

	_, err := GenerateAction(context.Background(), output.NewSplog(), GenerateOptions{
		AIClient:     aiClient,
		Tracker:      tracker.NewMockClient(),
		Requirements: "anything",
		AssumeYes:    true,
	})
	require.Error(t, err)
}

func TestNewEmailPipeline(t *testing.T) {
	aiClient := ai.NewMockClient()
	aiClient.SetMockDraft(sampleDraft)
	trackerClient := tracker.NewMockClient()

	pipeline := NewEmailPipeline(PipelineOptions{
		AIClient: aiClient,
		Tracker:  trackerClient,
		Project:  "PROJ",
	})

	records, err := pipeline(context.Background(), ingest.Key{MessageID: "msg-1"}, "Subject: help\n\nPlease add auth.")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, planner.OutcomeCreated, records[0].Outcome)
}

func TestNewEmailPipelinePropagatesDraftErrors(t *testing.T) {
	aiClient := ai.NewMockClient()
	aiClient.SetMockDraft(`{"tickets": []}`)

	pipeline := NewEmailPipeline(PipelineOptions{
		AIClient: aiClient,
		Tracker:  tracker.NewMockClient(),
		Project:  "PROJ",
	})

	_, err := pipeline(context.Background(), ingest.Key{MessageID: "msg-1"}, "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEmptyDraft)
}
