package tracker

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is an in-memory Client for tests. Failures can be scripted per
// ticket title; every successful creation gets a sequential key.
type MockClient struct {
	mu        sync.Mutex
	projects  []Project
	failures  map[string]*RemoteError
	requests  []CreateIssueRequest
	nextIssue int
	connErr   error
}

// NewMockClient creates a mock with one default project.
func NewMockClient() *MockClient {
	return &MockClient{
		projects: []Project{{Key: "PROJ", Name: "Project", Type: "project"}},
		failures: make(map[string]*RemoteError),
	}
}

// FailOn scripts a failure for every creation with the given title.
func (m *MockClient) FailOn(title string, kind FaultKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[title] = &RemoteError{Kind: kind, Message: "scripted failure"}
}

// FailOnce scripts a single transient failure for the given title; the next
// attempt succeeds.
func (m *MockClient) FailOnce(title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[title] = &RemoteError{Kind: FaultTransient, Message: "scripted transient failure", Err: errOnce}
}

var errOnce = fmt.Errorf("once")

// SetConnectionError makes TestConnection fail.
func (m *MockClient) SetConnectionError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connErr = err
}

// Requests returns a copy of every creation request seen, in order.
func (m *MockClient) Requests() []CreateIssueRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CreateIssueRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// TestConnection implements Client.
func (m *MockClient) TestConnection(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connErr
}

// ListProjects implements Client.
func (m *MockClient) ListProjects(ctx context.Context) ([]Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Project, len(m.projects))
	copy(out, m.projects)
	return out, nil
}

// CreateIssue implements Client.
func (m *MockClient) CreateIssue(ctx context.Context, req CreateIssueRequest) (*Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if fault, ok := m.failures[req.Title]; ok {
		if fault.Err == errOnce {
			delete(m.failures, req.Title)
		}
		return nil, fault
	}

	m.nextIssue++
	key := fmt.Sprintf("%s-%d", req.Project, m.nextIssue)
	return &Issue{RemoteID: key, URL: m.IssueURL(key)}, nil
}

// IssueURL implements Client.
func (m *MockClient) IssueURL(remoteID string) string {
	return "https://tracker.example.com/browse/" + remoteID
}
