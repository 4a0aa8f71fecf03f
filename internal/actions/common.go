package actions

import (
	"context"
	"fmt"
	"strings"

	"ticketflow.dev/ticketflow/internal/ai"
	"ticketflow.dev/ticketflow/internal/config"
	"ticketflow.dev/ticketflow/internal/tracker"
)

// NewTrackerClient builds the tracker client the settings point at.
func NewTrackerClient(ctx context.Context, settings *config.Settings, secrets *config.Secrets) (tracker.Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	switch settings.Backend {
	case config.BackendJira:
		if secrets.JiraEmail == "" || secrets.JiraAPIToken == "" {
			return nil, fmt.Errorf("JIRA_EMAIL and JIRA_API_TOKEN must be set")
		}
		return tracker.NewJiraClient(settings.TrackerURL, secrets.JiraEmail, secrets.JiraAPIToken), nil

	case config.BackendGitHub:
		if secrets.GitHubToken == "" {
			return nil, fmt.Errorf("GITHUB_TOKEN must be set")
		}
		parts := strings.SplitN(settings.GitHubRepo, "/", 2)
		return tracker.NewGitHubClient(ctx, secrets.GitHubToken, parts[0], parts[1]), nil
	}

	return nil, fmt.Errorf("unknown backend %q", settings.Backend)
}

// NewAIClient builds the AI client from the settings and environment.
func NewAIClient(settings *config.Settings, secrets *config.Secrets) (ai.Client, error) {
	if secrets.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY must be set")
	}
	return ai.NewOpenAIClient(secrets.OpenAIAPIKey, settings.Model)
}
