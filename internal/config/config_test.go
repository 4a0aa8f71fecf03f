package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	setTempHome(t)

	settings, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, BackendJira, settings.Backend)
	assert.Equal(t, ":8080", settings.ListenAddr)
}

func TestSaveAndLoadSettings(t *testing.T) {
	home := setTempHome(t)
	t.Setenv("JIRA_URL", "")

	settings := &Settings{
		Backend:    BackendJira,
		TrackerURL: "https://example.atlassian.net",
		Project:    "PROJ",
		Model:      "gpt-4o-mini",
	}
	require.NoError(t, SaveSettings(settings))

	// Credentials must never end up in the settings file.
	data, err := os.ReadFile(filepath.Join(home, ".ticketflow", "config.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "token")
	assert.NotContains(t, string(data), "secret")

	loaded, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "https://example.atlassian.net", loaded.TrackerURL)
	assert.Equal(t, "PROJ", loaded.Project)
}

func TestLoadSettingsEnvOverrides(t *testing.T) {
	setTempHome(t)
	t.Setenv("JIRA_URL", "https://override.atlassian.net")
	t.Setenv("TICKETFLOW_BACKEND", "github")
	t.Setenv("TICKETFLOW_GITHUB_REPO", "acme/widgets")

	settings, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "https://override.atlassian.net", settings.TrackerURL)
	assert.Equal(t, BackendGitHub, settings.Backend)
	assert.Equal(t, "acme/widgets", settings.GitHubRepo)
}

func TestLoadSettingsRejectsGarbage(t *testing.T) {
	home := setTempHome(t)
	dir := filepath.Join(home, ".ticketflow")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml: ["), 0600))

	_, err := LoadSettings()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{"jira with url", Settings{Backend: BackendJira, TrackerURL: "https://x.atlassian.net"}, false},
		{"jira without url", Settings{Backend: BackendJira}, true},
		{"github with repo", Settings{Backend: BackendGitHub, GitHubRepo: "acme/widgets"}, false},
		{"github bad repo", Settings{Backend: BackendGitHub, GitHubRepo: "widgets"}, true},
		{"unknown backend", Settings{Backend: "gitlab"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadSecretsFromEnvironment(t *testing.T) {
	t.Setenv("JIRA_EMAIL", "dev@example.com")
	t.Setenv("JIRA_API_TOKEN", "tok")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TICKETFLOW_WEBHOOK_SECRET", "hush")

	secrets := LoadSecrets()
	assert.Equal(t, "dev@example.com", secrets.JiraEmail)
	assert.Equal(t, "tok", secrets.JiraAPIToken)
	assert.Equal(t, "sk-test", secrets.OpenAIAPIKey)
	assert.Equal(t, "hush", secrets.WebhookSecret)
}
