// Package tracker provides clients for the remote ticket system. The Jira
// backend talks to the Jira Cloud REST API; the GitHub backend maps tickets
// onto repository issues. Both implement Client, and creation code only ever
// sees the interface.
package tracker

import (
	"context"
	"errors"
	"fmt"

	"ticketflow.dev/ticketflow/internal/hierarchy"
)

// Project is a creation target in the remote system.
type Project struct {
	Key  string
	Name string
	Type string
}

// Issue is the remote identity of a created ticket.
type Issue struct {
	RemoteID string
	URL      string
}

// CreateIssueRequest carries everything needed to create one remote ticket.
// ParentRemoteID is empty for epics; for stories and tasks it names the
// parent epic, for subtasks the parent story or task.
type CreateIssueRequest struct {
	Project        string
	Kind           hierarchy.Kind
	Title          string
	Description    string
	ParentRemoteID string
	ParentKind     hierarchy.Kind
}

// Client is the interface to the remote ticket system.
type Client interface {
	// TestConnection verifies credentials and reachability.
	TestConnection(ctx context.Context) error

	// ListProjects returns the available creation targets.
	ListProjects(ctx context.Context) ([]Project, error)

	// CreateIssue creates one ticket and returns its remote identity.
	// Failures are *RemoteError values.
	CreateIssue(ctx context.Context, req CreateIssueRequest) (*Issue, error)

	// IssueURL returns the browse URL for a remote id.
	IssueURL(remoteID string) string
}

// FaultKind classifies a remote failure.
type FaultKind string

const (
	// FaultAuth means the credentials were rejected.
	FaultAuth FaultKind = "auth"
	// FaultPermission means the credentials lack access to the target.
	FaultPermission FaultKind = "permission"
	// FaultValidation means the remote system rejected the payload.
	FaultValidation FaultKind = "validation"
	// FaultTransient covers network faults and server-side errors that may
	// succeed on retry.
	FaultTransient FaultKind = "transient"
)

// RemoteError is a classified failure from the ticket system.
type RemoteError struct {
	Kind    FaultKind
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote %s fault (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("remote %s fault: %s", e.Kind, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a remote fault worth retrying.
func IsTransient(err error) bool {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Kind == FaultTransient
	}
	return false
}

// classifyStatus maps an HTTP status to a fault kind.
func classifyStatus(status int) FaultKind {
	switch {
	case status == 401:
		return FaultAuth
	case status == 403:
		return FaultPermission
	case status == 429 || status >= 500:
		return FaultTransient
	default:
		return FaultValidation
	}
}
