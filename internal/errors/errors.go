// Package errors provides sentinel errors and custom error types for the ticketflow application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrMalformedDraft indicates that a raw AI draft could not be decoded
	// into the expected ticket schema
	ErrMalformedDraft = errors.New("malformed draft")

	// ErrEmptyDraft indicates that a draft decoded cleanly but contains no epics
	ErrEmptyDraft = errors.New("draft contains no epics")

	// ErrInvalidHierarchy indicates a parent/child kind combination that the
	// ticket hierarchy does not permit
	ErrInvalidHierarchy = errors.New("invalid hierarchy")

	// ErrUnknownNode indicates a review command referenced a ticket id that
	// does not exist in the draft
	ErrUnknownNode = errors.New("unknown ticket")

	// ErrSessionClosed indicates a review session already reached a terminal
	// state (confirmed or aborted)
	ErrSessionClosed = errors.New("review session closed")

	// ErrEmptyHierarchy indicates confirm was called on a draft with no
	// tickets left
	ErrEmptyHierarchy = errors.New("no tickets to confirm")

	// ErrModelFrozen indicates a mutation was attempted on a confirmed model
	ErrModelFrozen = errors.New("hierarchy is frozen")
)

// UnknownNodeError reports which ticket id a review command failed to resolve
type UnknownNodeError struct {
	LocalID int
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("ticket #%d does not exist", e.LocalID)
}

// Is returns true if the target error is ErrUnknownNode
func (e *UnknownNodeError) Is(target error) bool {
	return target == ErrUnknownNode
}

// NewUnknownNodeError creates a new UnknownNodeError
func NewUnknownNodeError(localID int) *UnknownNodeError {
	return &UnknownNodeError{LocalID: localID}
}

// InvalidHierarchyError describes a parent/child kind combination that was rejected
type InvalidHierarchyError struct {
	LocalID    int
	Kind       string
	ParentKind string
	Message    string
}

func (e *InvalidHierarchyError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid hierarchy at ticket #%d: %s", e.LocalID, e.Message)
	}
	return fmt.Sprintf("invalid hierarchy at ticket #%d: %s cannot have a %s parent", e.LocalID, e.Kind, e.ParentKind)
}

// Is returns true if the target error is ErrInvalidHierarchy
func (e *InvalidHierarchyError) Is(target error) bool {
	return target == ErrInvalidHierarchy
}

// NewInvalidHierarchyError creates a new InvalidHierarchyError
func NewInvalidHierarchyError(localID int, kind, parentKind string) *InvalidHierarchyError {
	return &InvalidHierarchyError{LocalID: localID, Kind: kind, ParentKind: parentKind}
}

// MalformedDraftError carries detail about why a raw draft was rejected
type MalformedDraftError struct {
	Reason string
}

func (e *MalformedDraftError) Error() string {
	return fmt.Sprintf("malformed draft: %s", e.Reason)
}

// Is returns true if the target error is ErrMalformedDraft
func (e *MalformedDraftError) Is(target error) bool {
	return target == ErrMalformedDraft
}

// NewMalformedDraftError creates a new MalformedDraftError
func NewMalformedDraftError(format string, args ...interface{}) *MalformedDraftError {
	return &MalformedDraftError{Reason: fmt.Sprintf(format, args...)}
}
