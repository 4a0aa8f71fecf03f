// Package review implements the interactive review state machine over one
// hierarchy model: list, edit, delete, then either confirm or abort. A
// session is single-actor and synchronous; once it reaches a terminal state
// every further call fails with SessionClosed.
package review

import (
	"ticketflow.dev/ticketflow/internal/errors"
	"ticketflow.dev/ticketflow/internal/hierarchy"
)

// State is the review session state.
type State string

const (
	StateListing   State = "listing"
	StateConfirmed State = "confirmed"
	StateAborted   State = "aborted"
)

// EditRequest carries the fields of an edit command. Nil pointers leave the
// corresponding field unchanged; a nil Criteria slice leaves the acceptance
// criteria alone.
type EditRequest struct {
	Title       *string
	Description *string
	Criteria    []string
	Kind        *hierarchy.Kind
}

// Session wraps a model in the review state machine.
type Session struct {
	model *hierarchy.Model
	state State
}

// NewSession starts a review session in the listing state.
func NewSession(model *hierarchy.Model) *Session {
	return &Session{model: model, state: StateListing}
}

// State returns the current session state.
func (s *Session) State() State {
	return s.state
}

// List returns the live ticket ids in presentation order.
func (s *Session) List() ([]int, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.model.Walk(), nil
}

// Get returns one ticket for display.
func (s *Session) Get(localID int) (*hierarchy.TicketNode, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	node, ok := s.model.Get(localID)
	if !ok {
		return nil, errors.NewUnknownNodeError(localID)
	}
	return node, nil
}

// Edit applies an edit command to one ticket. A kind change that is
// incompatible with the ticket's existing parent fails with InvalidHierarchy
// and leaves the model untouched; the caller has to delete and re-create the
// ticket instead of re-parenting it here.
func (s *Session) Edit(localID int, req EditRequest) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.model.Edit(localID, req.Title, req.Description, req.Criteria, req.Kind)
}

// Model exposes the underlying model for rendering. Nil after an abort.
func (s *Session) Model() *hierarchy.Model {
	return s.model
}

// Delete removes a ticket and its whole subtree. Destructive and immediate;
// there is no undo.
func (s *Session) Delete(localID int) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.model.Delete(localID)
}

// Confirm ends the session successfully and returns the model, frozen. Fails
// with EmptyHierarchy when every ticket has been deleted.
func (s *Session) Confirm() (*hierarchy.Model, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if s.model.Len() == 0 {
		return nil, errors.ErrEmptyHierarchy
	}
	s.state = StateConfirmed
	s.model.Freeze()
	return s.model, nil
}

// Abort ends the session without side effects; the draft is discarded.
func (s *Session) Abort() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.state = StateAborted
	s.model = nil
	return nil
}

func (s *Session) checkOpen() error {
	if s.state != StateListing {
		return errors.ErrSessionClosed
	}
	return nil
}
