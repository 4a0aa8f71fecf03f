// Package config provides configuration management, combining a persisted
// settings file with environment-only secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend names a tracker implementation.
type Backend string

const (
	BackendJira   Backend = "jira"
	BackendGitHub Backend = "github"
)

// Settings represents the persisted, non-secret configuration. Credentials
// never go in this file; they are read from the environment only.
type Settings struct {
	Backend    Backend `yaml:"backend,omitempty"`
	TrackerURL string  `yaml:"tracker_url,omitempty"`
	Project    string  `yaml:"project,omitempty"`
	GitHubRepo string  `yaml:"github_repo,omitempty"`
	Model      string  `yaml:"model,omitempty"`
	RedisAddr  string  `yaml:"redis_addr,omitempty"`
	ListenAddr string  `yaml:"listen_addr,omitempty"`
}

// Secrets holds credentials read from the environment.
type Secrets struct {
	JiraEmail     string
	JiraAPIToken  string
	GitHubToken   string
	OpenAIAPIKey  string
	WebhookSecret string
}

// GetConfigDir returns the directory holding the settings file and logs,
// creating it if needed.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".ticketflow")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

func settingsPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadSettings reads the settings file. A missing file returns defaults.
func LoadSettings() (*Settings, error) {
	path, err := settingsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// Settings don't exist yet - return defaults
		settings := defaultSettings()
		settings.applyEnvOverrides()
		return settings, nil
	}

	settings := defaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	settings.applyDefaults()
	settings.applyEnvOverrides()

	return settings, nil
}

// applyEnvOverrides lets the environment win over the settings file, so a
// deployment can run without a config file at all.
func (s *Settings) applyEnvOverrides() {
	if v := os.Getenv("JIRA_URL"); v != "" {
		s.TrackerURL = v
	}
	if v := os.Getenv("TICKETFLOW_BACKEND"); v != "" {
		s.Backend = Backend(v)
	}
	if v := os.Getenv("TICKETFLOW_PROJECT"); v != "" {
		s.Project = v
	}
	if v := os.Getenv("TICKETFLOW_GITHUB_REPO"); v != "" {
		s.GitHubRepo = v
	}
	if v := os.Getenv("TICKETFLOW_REDIS_ADDR"); v != "" {
		s.RedisAddr = v
	}
	if v := os.Getenv("TICKETFLOW_LISTEN_ADDR"); v != "" {
		s.ListenAddr = v
	}
}

// SaveSettings writes the settings file with owner-only permissions.
func SaveSettings(settings *Settings) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

func defaultSettings() *Settings {
	s := &Settings{}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.Backend == "" {
		s.Backend = BackendJira
	}
	if s.ListenAddr == "" {
		s.ListenAddr = ":8080"
	}
}

// Validate checks that the settings name a usable backend.
func (s *Settings) Validate() error {
	switch s.Backend {
	case BackendJira:
		if s.TrackerURL == "" {
			return fmt.Errorf("tracker_url is required for the jira backend")
		}
	case BackendGitHub:
		if !strings.Contains(s.GitHubRepo, "/") {
			return fmt.Errorf("github_repo must be in owner/repo form")
		}
	default:
		return fmt.Errorf("unknown backend %q", s.Backend)
	}
	return nil
}

// LoadSecrets reads credentials from the environment. Missing values are
// empty strings; callers decide which ones they need.
func LoadSecrets() *Secrets {
	return &Secrets{
		JiraEmail:     os.Getenv("JIRA_EMAIL"),
		JiraAPIToken:  os.Getenv("JIRA_API_TOKEN"),
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		WebhookSecret: os.Getenv("TICKETFLOW_WEBHOOK_SECRET"),
	}
}
