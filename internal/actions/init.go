package actions

import (
	"fmt"

	"ticketflow.dev/ticketflow/internal/config"
	"ticketflow.dev/ticketflow/internal/output"
)

// InitAction interactively writes the settings file. Secrets are deliberately
// not asked for; they stay in the environment.
func InitAction(splog *output.Splog) error {
	if !IsInteractive() {
		return fmt.Errorf("init needs a terminal")
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	backend, err := promptSelect("Tracker backend", []string{string(config.BackendJira), string(config.BackendGitHub)})
	if err != nil {
		return err
	}
	settings.Backend = config.Backend(backend)

	switch settings.Backend {
	case config.BackendJira:
		url, err := promptTextInput("Jira base URL (e.g. https://yourcompany.atlassian.net)", settings.TrackerURL)
		if err != nil {
			return err
		}
		settings.TrackerURL = url

		project, err := promptTextInput("Default project key", settings.Project)
		if err != nil {
			return err
		}
		settings.Project = project

	case config.BackendGitHub:
		repo, err := promptTextInput("GitHub repository (owner/repo)", settings.GitHubRepo)
		if err != nil {
			return err
		}
		settings.GitHubRepo = repo
		settings.Project = repo
	}

	if err := settings.Validate(); err != nil {
		return err
	}

	if err := config.SaveSettings(settings); err != nil {
		return err
	}

	splog.Info("Settings saved.")
	switch settings.Backend {
	case config.BackendJira:
		splog.Tip("Set JIRA_EMAIL, JIRA_API_TOKEN and OPENAI_API_KEY in your environment.")
	case config.BackendGitHub:
		splog.Tip("Set GITHUB_TOKEN and OPENAI_API_KEY in your environment.")
	}
	return nil
}
