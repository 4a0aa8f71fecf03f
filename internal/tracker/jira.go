package tracker

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"ticketflow.dev/ticketflow/internal/hierarchy"
)

const jiraRequestTimeout = 30 * time.Second

// JiraClient talks to the Jira Cloud REST API v3 using basic auth
// (email + API token).
type JiraClient struct {
	baseURL    string
	authHeader string
	httpClient *http.Client

	epicFieldMu sync.Mutex
	epicFieldID string
	epicFieldOK bool
}

// NewJiraClient creates a Jira client for the given site.
func NewJiraClient(baseURL, email, apiToken string) *JiraClient {
	credentials := base64.StdEncoding.EncodeToString([]byte(email + ":" + apiToken))
	return &JiraClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: "Basic " + credentials,
		httpClient: &http.Client{Timeout: jiraRequestTimeout},
	}
}

// TestConnection verifies the credentials against /myself.
func (c *JiraClient) TestConnection(ctx context.Context) error {
	var out struct {
		AccountID string `json:"accountId"`
	}
	return c.get(ctx, "/rest/api/3/myself", &out)
}

// ListProjects returns projects and agile boards, de-duplicated by project
// key. Boards resolve to their backing project.
func (c *JiraClient) ListProjects(ctx context.Context) ([]Project, error) {
	var rawProjects []struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/rest/api/3/project", &rawProjects); err != nil {
		return nil, err
	}

	projects := make([]Project, 0, len(rawProjects))
	seen := make(map[string]bool)
	for _, p := range rawProjects {
		seen[p.Key] = true
		projects = append(projects, Project{Key: p.Key, Name: p.Name, Type: "project"})
	}

	// Board listing is best-effort: not every site has the agile API.
	var boards struct {
		Values []struct {
			Name     string `json:"name"`
			Location struct {
				ProjectKey string `json:"projectKey"`
			} `json:"location"`
		} `json:"values"`
	}
	if err := c.get(ctx, "/rest/agile/1.0/board", &boards); err == nil {
		for _, b := range boards.Values {
			key := b.Location.ProjectKey
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			projects = append(projects, Project{Key: key, Name: b.Name + " (board)", Type: "board"})
		}
	}

	return projects, nil
}

// CreateIssue creates one Jira issue. Subtasks link via the parent field;
// stories and tasks under an epic link via the Epic Link custom field when
// the site has one, falling back to the parent field (team-managed projects).
func (c *JiraClient) CreateIssue(ctx context.Context, req CreateIssueRequest) (*Issue, error) {
	fields := map[string]interface{}{
		"project":   map[string]string{"key": req.Project},
		"summary":   req.Title,
		"issuetype": map[string]string{"name": string(req.Kind)},
		"description": map[string]interface{}{
			"type":    "doc",
			"version": 1,
			"content": adfParagraphs(req.Description),
		},
	}

	if req.ParentRemoteID != "" {
		if req.Kind == hierarchy.KindSubtask {
			fields["parent"] = map[string]string{"key": req.ParentRemoteID}
		} else if fieldID := c.epicLinkFieldID(ctx); fieldID != "" {
			fields[fieldID] = req.ParentRemoteID
		} else {
			fields["parent"] = map[string]string{"key": req.ParentRemoteID}
		}
	}

	var out struct {
		Key string `json:"key"`
	}
	if err := c.post(ctx, "/rest/api/3/issue", map[string]interface{}{"fields": fields}, &out); err != nil {
		return nil, err
	}

	return &Issue{RemoteID: out.Key, URL: c.IssueURL(out.Key)}, nil
}

// IssueURL returns the browse URL for an issue key.
func (c *JiraClient) IssueURL(remoteID string) string {
	return c.baseURL + "/browse/" + remoteID
}

// epicLinkFieldID finds and caches the Epic Link custom field id. Empty when
// the site has none (team-managed projects use the parent field instead).
func (c *JiraClient) epicLinkFieldID(ctx context.Context) string {
	c.epicFieldMu.Lock()
	defer c.epicFieldMu.Unlock()

	if c.epicFieldOK {
		return c.epicFieldID
	}

	var fields []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/rest/api/3/field", &fields); err != nil {
		// Leave the cache cold so a later call can retry.
		return ""
	}

	c.epicFieldOK = true
	for _, f := range fields {
		if strings.EqualFold(strings.TrimSpace(f.Name), "epic link") {
			c.epicFieldID = f.ID
			break
		}
	}
	return c.epicFieldID
}

func (c *JiraClient) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *JiraClient) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *JiraClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Kind: FaultTransient, Message: err.Error(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &RemoteError{Kind: FaultTransient, Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteError{
			Kind:    classifyStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: truncate(string(data), 300),
		}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// adfParagraphs renders plain text as Atlassian Document Format paragraphs,
// one per line.
func adfParagraphs(text string) []map[string]interface{} {
	lines := strings.Split(text, "\n")
	content := make([]map[string]interface{}, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			content = append(content, map[string]interface{}{
				"type":    "paragraph",
				"content": []interface{}{},
			})
			continue
		}
		content = append(content, map[string]interface{}{
			"type": "paragraph",
			"content": []map[string]interface{}{
				{"type": "text", "text": line},
			},
		})
	}
	if len(content) == 0 {
		content = append(content, map[string]interface{}{
			"type":    "paragraph",
			"content": []interface{}{},
		})
	}
	return content
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
