package actions

import (
	"context"
	"fmt"

	"ticketflow.dev/ticketflow/internal/config"
	"ticketflow.dev/ticketflow/internal/output"
	"ticketflow.dev/ticketflow/internal/tracker"
)

// DoctorAction checks the configuration and connectivity and reports what it
// finds. It returns an error when any check fails so the command can exit
// non-zero.
func DoctorAction(ctx context.Context, splog *output.Splog, settings *config.Settings, secrets *config.Secrets, client tracker.Client) error {
	failures := 0

	if err := settings.Validate(); err != nil {
		splog.Error("settings: %v", err)
		failures++
	} else {
		splog.Info("✓ settings valid (backend: %s)", settings.Backend)
	}

	if secrets.OpenAIAPIKey == "" {
		splog.Error("OPENAI_API_KEY is not set")
		failures++
	} else {
		splog.Info("✓ OpenAI API key present")
	}

	if client == nil {
		splog.Error("tracker client could not be built")
		failures++
	} else {
		if err := client.TestConnection(ctx); err != nil {
			splog.Error("tracker connection: %v", err)
			failures++
		} else {
			splog.Info("✓ tracker connection ok")

			projects, err := client.ListProjects(ctx)
			if err != nil {
				splog.Warn("could not list projects: %v", err)
			} else {
				splog.Info("✓ %d projects visible", len(projects))
				if settings.Project != "" && !projectVisible(projects, settings.Project) {
					splog.Warn("configured project %q is not among them", settings.Project)
				}
			}
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d checks failed", failures)
	}

	splog.Info("All checks passed.")
	return nil
}

func projectVisible(projects []tracker.Project, key string) bool {
	for _, p := range projects {
		if p.Key == key {
			return true
		}
	}
	return false
}
