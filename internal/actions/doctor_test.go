package actions

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketflow.dev/ticketflow/internal/config"
	"ticketflow.dev/ticketflow/internal/output"
	"ticketflow.dev/ticketflow/internal/tracker"
)

func doctorSettings() *config.Settings {
	return &config.Settings{
		Backend:    config.BackendJira,
		TrackerURL: "https://example.atlassian.net",
		Project:    "PROJ",
	}
}

func TestDoctorActionAllHealthy(t *testing.T) {
	t.Parallel()

	secrets := &config.Secrets{OpenAIAPIKey: "sk-test"}
	err := DoctorAction(context.Background(), output.NewSplog(), doctorSettings(), secrets, tracker.NewMockClient())
	assert.NoError(t, err)
}

func TestDoctorActionReportsConnectionFailure(t *testing.T) {
	t.Parallel()

	client := tracker.NewMockClient()
	client.SetConnectionError(fmt.Errorf("401 unauthorized"))

	secrets := &config.Secrets{OpenAIAPIKey: "sk-test"}
	err := DoctorAction(context.Background(), output.NewSplog(), doctorSettings(), secrets, client)
	require.Error(t, err)
}

func TestDoctorActionReportsMissingAIKey(t *testing.T) {
	t.Parallel()

	err := DoctorAction(context.Background(), output.NewSplog(), doctorSettings(), &config.Secrets{}, tracker.NewMockClient())
	require.Error(t, err)
}

func TestNewTrackerClientRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewTrackerClient(context.Background(), doctorSettings(), &config.Secrets{})
	require.Error(t, err)

	_, err = NewTrackerClient(context.Background(), doctorSettings(), &config.Secrets{JiraEmail: "dev@example.com", JiraAPIToken: "tok"})
	assert.NoError(t, err)
}

func TestNewTrackerClientGitHub(t *testing.T) {
	t.Parallel()

	settings := &config.Settings{Backend: config.BackendGitHub, GitHubRepo: "acme/widgets"}

	_, err := NewTrackerClient(context.Background(), settings, &config.Secrets{})
	require.Error(t, err)

	client, err := NewTrackerClient(context.Background(), settings, &config.Secrets{GitHubToken: "ghp_test"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
