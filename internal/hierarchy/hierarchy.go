// Package hierarchy defines the in-memory ticket tree that the rest of the
// application operates on: an arena of ticket nodes keyed by a session-local
// id, with parent/child links that are validated on every structural change.
package hierarchy

import (
	"fmt"
	"sort"

	"ticketflow.dev/ticketflow/internal/errors"
)

// Kind identifies the level of a ticket in the hierarchy.
type Kind string

const (
	KindEpic    Kind = "Epic"
	KindStory   Kind = "Story"
	KindTask    Kind = "Task"
	KindSubtask Kind = "Subtask"
)

// ParseKind normalizes an issue-type string to a Kind. Jira and the AI both
// produce spelling variants of "Subtask".
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "Epic", "epic":
		return KindEpic, true
	case "Story", "story":
		return KindStory, true
	case "Task", "task":
		return KindTask, true
	case "Subtask", "Sub-task", "Sub task", "subtask", "sub-task":
		return KindSubtask, true
	}
	return "", false
}

// ValidChild reports whether a node of kind child may sit under a node of
// kind parent. Stories and Tasks belong under Epics, Subtasks under Stories
// or Tasks.
func ValidChild(parent, child Kind) bool {
	switch child {
	case KindStory, KindTask:
		return parent == KindEpic
	case KindSubtask:
		return parent == KindStory || parent == KindTask
	}
	return false
}

// TicketNode is a single proposed ticket. LocalID is stable for the lifetime
// of the draft and is what the human uses in review commands; RemoteID and
// RemoteURL are only set after successful remote creation.
type TicketNode struct {
	LocalID            int
	Kind               Kind
	Title              string
	Description        string
	AcceptanceCriteria []string
	ParentLocalID      int // 0 means no parent (epics only)
	Children           []int
	RemoteID           string
	RemoteURL          string
	Edited             bool
}

// Model owns the ticket arena. It is constructed empty, populated once by the
// draft parser, mutated only through the review session, and frozen before
// creation. Local ids are never reused, even after deletion.
type Model struct {
	nodes  map[int]*TicketNode
	roots  []int
	nextID int
	frozen bool
}

// NewModel returns an empty model. Ids start at 1.
func NewModel() *Model {
	return &Model{
		nodes:  make(map[int]*TicketNode),
		nextID: 1,
	}
}

// Add inserts a node under parentID (0 for a root epic), assigns it the next
// local id and returns it. It enforces the parent-kind rules and is the only
// way nodes enter the model.
func (m *Model) Add(kind Kind, title, description string, criteria []string, parentID int) (*TicketNode, error) {
	if m.frozen {
		return nil, errors.ErrModelFrozen
	}

	if parentID == 0 {
		if kind != KindEpic {
			return nil, &errors.InvalidHierarchyError{
				LocalID: m.nextID,
				Kind:    string(kind),
				Message: fmt.Sprintf("%s requires a parent", kind),
			}
		}
	} else {
		parent, ok := m.nodes[parentID]
		if !ok {
			return nil, errors.NewUnknownNodeError(parentID)
		}
		if kind == KindEpic {
			return nil, &errors.InvalidHierarchyError{
				LocalID: m.nextID,
				Kind:    string(kind),
				Message: "an epic cannot have a parent",
			}
		}
		if !ValidChild(parent.Kind, kind) {
			return nil, errors.NewInvalidHierarchyError(m.nextID, string(kind), string(parent.Kind))
		}
	}

	node := &TicketNode{
		LocalID:            m.nextID,
		Kind:               kind,
		Title:              title,
		Description:        description,
		AcceptanceCriteria: criteria,
		ParentLocalID:      parentID,
	}
	m.nextID++
	m.nodes[node.LocalID] = node

	if parentID == 0 {
		m.roots = append(m.roots, node.LocalID)
	} else {
		parent := m.nodes[parentID]
		parent.Children = append(parent.Children, node.LocalID)
	}

	return node, nil
}

// Get returns the node with the given local id.
func (m *Model) Get(localID int) (*TicketNode, bool) {
	node, ok := m.nodes[localID]
	return node, ok
}

// Len returns the number of live nodes.
func (m *Model) Len() int {
	return len(m.nodes)
}

// Roots returns the epic ids in insertion order.
func (m *Model) Roots() []int {
	out := make([]int, len(m.roots))
	copy(out, m.roots)
	return out
}

// Frozen reports whether the model has been confirmed and is read-only.
func (m *Model) Frozen() bool {
	return m.frozen
}

// Freeze makes the model read-only. Called once by the review session on
// confirm; creation operates on frozen models only.
func (m *Model) Freeze() {
	m.frozen = true
}

// SetRemote records the remote identity of a created ticket. Allowed on a
// frozen model: remote ids are creation results, not structure.
func (m *Model) SetRemote(localID int, remoteID, remoteURL string) error {
	node, ok := m.nodes[localID]
	if !ok {
		return errors.NewUnknownNodeError(localID)
	}
	node.RemoteID = remoteID
	node.RemoteURL = remoteURL
	return nil
}

// Edit updates title, description, acceptance criteria and/or kind of a node.
// Nil arguments leave the field untouched. A kind change is validated against
// the unchanged parent; an incompatible kind fails with InvalidHierarchy and
// leaves the node as it was. Any applied change marks the node as edited.
func (m *Model) Edit(localID int, title, description *string, criteria []string, kind *Kind) error {
	if m.frozen {
		return errors.ErrModelFrozen
	}
	node, ok := m.nodes[localID]
	if !ok {
		return errors.NewUnknownNodeError(localID)
	}

	if kind != nil && *kind != node.Kind {
		if node.ParentLocalID == 0 {
			if *kind != KindEpic {
				return &errors.InvalidHierarchyError{
					LocalID: localID,
					Kind:    string(*kind),
					Message: fmt.Sprintf("%s requires a parent", *kind),
				}
			}
		} else {
			parent := m.nodes[node.ParentLocalID]
			if !ValidChild(parent.Kind, *kind) {
				return errors.NewInvalidHierarchyError(localID, string(*kind), string(parent.Kind))
			}
		}
		// A kind change must not orphan existing children.
		for _, childID := range node.Children {
			child := m.nodes[childID]
			if !ValidChild(*kind, child.Kind) {
				return &errors.InvalidHierarchyError{
					LocalID: localID,
					Kind:    string(*kind),
					Message: fmt.Sprintf("%s cannot keep its %s child #%d", *kind, child.Kind, childID),
				}
			}
		}
		node.Kind = *kind
		node.Edited = true
	}

	if title != nil {
		node.Title = *title
		node.Edited = true
	}
	if description != nil {
		node.Description = *description
		node.Edited = true
	}
	if criteria != nil {
		node.AcceptanceCriteria = criteria
		node.Edited = true
	}

	return nil
}

// Delete removes a node and its entire subtree atomically, unlinking the node
// from its parent. Local ids of deleted nodes are never reassigned.
func (m *Model) Delete(localID int) error {
	if m.frozen {
		return errors.ErrModelFrozen
	}
	node, ok := m.nodes[localID]
	if !ok {
		return errors.NewUnknownNodeError(localID)
	}

	for _, id := range m.Subtree(localID) {
		delete(m.nodes, id)
	}

	if node.ParentLocalID == 0 {
		m.roots = removeID(m.roots, localID)
	} else if parent, ok := m.nodes[node.ParentLocalID]; ok {
		parent.Children = removeID(parent.Children, localID)
	}

	return nil
}

// Subtree returns localID followed by all its descendants in depth-first
// order, preserving child ordering.
func (m *Model) Subtree(localID int) []int {
	node, ok := m.nodes[localID]
	if !ok {
		return nil
	}
	out := []int{localID}
	for _, childID := range node.Children {
		out = append(out, m.Subtree(childID)...)
	}
	return out
}

// Walk returns every live node id: epics in insertion order, each followed by
// its descendants depth-first. This is the presentation order used by the
// review listing and the draft serializer.
func (m *Model) Walk() []int {
	var out []int
	for _, rootID := range m.roots {
		out = append(out, m.Subtree(rootID)...)
	}
	return out
}

// CreationOrder returns node ids in remote-creation order: for each epic in
// insertion order, a stable breadth-first walk of its subtree. Parents always
// precede their children.
func (m *Model) CreationOrder() []int {
	var out []int
	for _, rootID := range m.roots {
		queue := []int{rootID}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			out = append(out, id)
			queue = append(queue, m.nodes[id].Children...)
		}
	}
	return out
}

// Validate checks the structural invariants: every non-epic has a live parent
// of a permitted kind, parent/child adjacency agrees in both directions, and
// no id is at or beyond the allocation watermark. Mutations go through Add,
// Edit and Delete, so this is a test and debugging aid rather than a runtime
// guard.
func (m *Model) Validate() error {
	seenAsChild := make(map[int]bool)

	for _, rootID := range m.roots {
		node, ok := m.nodes[rootID]
		if !ok {
			return fmt.Errorf("root #%d is not in the arena", rootID)
		}
		if node.ParentLocalID != 0 {
			return fmt.Errorf("root #%d has parent #%d", rootID, node.ParentLocalID)
		}
	}

	ids := make([]int, 0, len(m.nodes))
	for id := range m.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		node := m.nodes[id]
		if id >= m.nextID {
			return fmt.Errorf("ticket #%d is beyond the id watermark %d", id, m.nextID)
		}
		if node.ParentLocalID == 0 {
			if node.Kind != KindEpic {
				return fmt.Errorf("ticket #%d is a parentless %s", id, node.Kind)
			}
		} else {
			parent, ok := m.nodes[node.ParentLocalID]
			if !ok {
				return fmt.Errorf("ticket #%d references missing parent #%d", id, node.ParentLocalID)
			}
			if !ValidChild(parent.Kind, node.Kind) {
				return fmt.Errorf("ticket #%d: %s under %s", id, node.Kind, parent.Kind)
			}
			if !containsID(parent.Children, id) {
				return fmt.Errorf("ticket #%d missing from children of #%d", id, node.ParentLocalID)
			}
		}
		for _, childID := range node.Children {
			child, ok := m.nodes[childID]
			if !ok {
				return fmt.Errorf("ticket #%d references missing child #%d", id, childID)
			}
			if child.ParentLocalID != id {
				return fmt.Errorf("ticket #%d claims child #%d whose parent is #%d", id, childID, child.ParentLocalID)
			}
			if seenAsChild[childID] {
				return fmt.Errorf("ticket #%d appears under two parents", childID)
			}
			seenAsChild[childID] = true
		}
	}

	return nil
}

func removeID(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
