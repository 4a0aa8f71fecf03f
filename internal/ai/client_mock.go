package ai

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a mock implementation of Client for testing purposes. It
// returns a predefined raw draft without making API calls.
type MockClient struct {
	mu               sync.Mutex
	mockDraft        string
	mockError        error
	callCount        int
	lastRequirements string
	lastContext      string
}

// NewMockClient creates a new MockClient instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// GenerateDraft implements Client. Returns the mock draft if set, otherwise
// an error.
func (m *MockClient) GenerateDraft(ctx context.Context, requirements, domainContext string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.lastRequirements = requirements
	m.lastContext = domainContext

	if m.mockError != nil {
		return "", m.mockError
	}
	if m.mockDraft == "" {
		return "", fmt.Errorf("no mock draft set, use SetMockDraft()")
	}
	return m.mockDraft, nil
}

// SetMockDraft sets the raw draft to return.
func (m *MockClient) SetMockDraft(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mockDraft = raw
}

// SetMockError makes GenerateDraft fail with the given error.
func (m *MockClient) SetMockError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mockError = err
}

// CallCount returns how many times GenerateDraft was called.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequirements returns the requirements from the most recent call.
func (m *MockClient) LastRequirements() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequirements
}
