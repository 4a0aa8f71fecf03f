package hierarchy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tferrors "ticketflow.dev/ticketflow/internal/errors"
)

func buildSampleModel(t *testing.T) *Model {
	t.Helper()
	m := NewModel()

	epic, err := m.Add(KindEpic, "Redesign login", "", nil, 0)
	require.NoError(t, err)
	require.Equal(t, 1, epic.LocalID)

	story1, err := m.Add(KindStory, "New login form", "", nil, epic.LocalID)
	require.NoError(t, err)
	require.Equal(t, 2, story1.LocalID)

	story2, err := m.Add(KindStory, "SSO support", "", nil, epic.LocalID)
	require.NoError(t, err)
	require.Equal(t, 3, story2.LocalID)

	sub, err := m.Add(KindSubtask, "SAML metadata exchange", "", nil, story2.LocalID)
	require.NoError(t, err)
	require.Equal(t, 4, sub.LocalID)

	require.NoError(t, m.Validate())
	return m
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Kind
		ok    bool
	}{
		{"Epic", KindEpic, true},
		{"Story", KindStory, true},
		{"Task", KindTask, true},
		{"Subtask", KindSubtask, true},
		{"Sub-task", KindSubtask, true},
		{"sub-task", KindSubtask, true},
		{"Bug", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseKind(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddRejectsInvalidParents(t *testing.T) {
	t.Parallel()
	m := NewModel()

	_, err := m.Add(KindStory, "orphan story", "", nil, 0)
	require.ErrorIs(t, err, tferrors.ErrInvalidHierarchy)

	epic, err := m.Add(KindEpic, "Epic", "", nil, 0)
	require.NoError(t, err)

	_, err = m.Add(KindEpic, "nested epic", "", nil, epic.LocalID)
	require.ErrorIs(t, err, tferrors.ErrInvalidHierarchy)

	// Subtask directly under an epic is not permitted.
	_, err = m.Add(KindSubtask, "subtask", "", nil, epic.LocalID)
	require.ErrorIs(t, err, tferrors.ErrInvalidHierarchy)

	_, err = m.Add(KindStory, "story", "", nil, 99)
	require.ErrorIs(t, err, tferrors.ErrUnknownNode)

	// Failed adds must not leak ids into the arena.
	require.Equal(t, 1, m.Len())
	require.NoError(t, m.Validate())
}

func TestEditKindRevalidatesAgainstParent(t *testing.T) {
	t.Parallel()
	m := buildSampleModel(t)

	// Story #2 sits under the epic; a subtask cannot.
	kind := KindSubtask
	err := m.Edit(2, nil, nil, nil, &kind)
	require.ErrorIs(t, err, tferrors.ErrInvalidHierarchy)

	node, ok := m.Get(2)
	require.True(t, ok)
	assert.Equal(t, KindStory, node.Kind)
	assert.False(t, node.Edited)

	// Story -> Task under the same epic is fine.
	kind = KindTask
	require.NoError(t, m.Edit(2, nil, nil, nil, &kind))
	node, _ = m.Get(2)
	assert.Equal(t, KindTask, node.Kind)
	assert.True(t, node.Edited)
	require.NoError(t, m.Validate())
}

func TestEditKindKeepsChildrenValid(t *testing.T) {
	t.Parallel()
	m := buildSampleModel(t)

	// Story #3 has a subtask child; no kind under an epic may carry one
	// except Story/Task, and those are the only permitted edits anyway.
	kind := KindTask
	require.NoError(t, m.Edit(3, nil, nil, nil, &kind))
	require.NoError(t, m.Validate())
}

func TestEditFields(t *testing.T) {
	t.Parallel()
	m := buildSampleModel(t)

	title := "Rework login form"
	desc := "Covers layout and validation"
	require.NoError(t, m.Edit(2, &title, &desc, []string{"keyboard accessible"}, nil))

	node, _ := m.Get(2)
	assert.Equal(t, title, node.Title)
	assert.Equal(t, desc, node.Description)
	assert.Equal(t, []string{"keyboard accessible"}, node.AcceptanceCriteria)
	assert.True(t, node.Edited)

	err := m.Edit(42, &title, nil, nil, nil)
	require.ErrorIs(t, err, tferrors.ErrUnknownNode)
}

func TestDeleteCascades(t *testing.T) {
	t.Parallel()
	m := buildSampleModel(t)

	// Deleting story #3 takes its subtask #4 with it.
	require.NoError(t, m.Delete(3))
	assert.Equal(t, 2, m.Len())
	_, ok := m.Get(3)
	assert.False(t, ok)
	_, ok = m.Get(4)
	assert.False(t, ok)
	require.NoError(t, m.Validate())

	// Ids are never reused after deletion.
	node, err := m.Add(KindStory, "replacement", "", nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, node.LocalID)
}

func TestDeleteEpicRemovesWholeSubtree(t *testing.T) {
	t.Parallel()
	m := buildSampleModel(t)

	require.NoError(t, m.Delete(1))
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Roots())
	require.NoError(t, m.Validate())
}

func TestDeleteUnknown(t *testing.T) {
	t.Parallel()
	m := buildSampleModel(t)
	require.ErrorIs(t, m.Delete(17), tferrors.ErrUnknownNode)
}

func TestFreezeBlocksMutation(t *testing.T) {
	t.Parallel()
	m := buildSampleModel(t)
	m.Freeze()

	_, err := m.Add(KindEpic, "late epic", "", nil, 0)
	require.ErrorIs(t, err, tferrors.ErrModelFrozen)
	require.ErrorIs(t, m.Delete(2), tferrors.ErrModelFrozen)

	title := "nope"
	require.ErrorIs(t, m.Edit(2, &title, nil, nil, nil), tferrors.ErrModelFrozen)

	// Remote identity is a creation result, not structure.
	require.NoError(t, m.SetRemote(1, "PROJ-1", "https://tracker.example.com/browse/PROJ-1"))
	node, _ := m.Get(1)
	assert.Equal(t, "PROJ-1", node.RemoteID)
}

func TestWalkAndCreationOrder(t *testing.T) {
	t.Parallel()
	m := buildSampleModel(t)

	assert.Equal(t, []int{1, 2, 3, 4}, m.Walk())
	assert.Equal(t, []int{1, 2, 3, 4}, m.CreationOrder())

	// A second epic with a deeper subtree: BFS per epic, depth-first walk.
	epic, err := m.Add(KindEpic, "Billing", "", nil, 0)
	require.NoError(t, err)
	task, err := m.Add(KindTask, "Invoicing", "", nil, epic.LocalID)
	require.NoError(t, err)
	_, err = m.Add(KindSubtask, "PDF export", "", nil, task.LocalID)
	require.NoError(t, err)
	_, err = m.Add(KindTask, "Payments", "", nil, epic.LocalID)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, m.Walk())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 8, 7}, m.CreationOrder())
}

// Random valid edit/delete sequences must never break the invariants.
func TestInvariantsUnderRandomMutation(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 20; round++ {
		m := NewModel()
		for i := 0; i < 3; i++ {
			epic, err := m.Add(KindEpic, "epic", "", nil, 0)
			require.NoError(t, err)
			for j := 0; j < rng.Intn(4); j++ {
				story, err := m.Add(KindStory, "story", "", nil, epic.LocalID)
				require.NoError(t, err)
				for k := 0; k < rng.Intn(3); k++ {
					_, err := m.Add(KindSubtask, "sub", "", nil, story.LocalID)
					require.NoError(t, err)
				}
			}
		}

		for step := 0; step < 30; step++ {
			ids := m.Walk()
			if len(ids) == 0 {
				break
			}
			id := ids[rng.Intn(len(ids))]
			node, ok := m.Get(id)
			require.True(t, ok)

			switch rng.Intn(3) {
			case 0:
				title := "edited"
				require.NoError(t, m.Edit(id, &title, nil, nil, nil))
			case 1:
				if node.Kind == KindStory {
					kind := KindTask
					require.NoError(t, m.Edit(id, nil, nil, nil, &kind))
				}
			case 2:
				require.NoError(t, m.Delete(id))
			}

			require.NoError(t, m.Validate(), "round %d step %d", round, step)
		}
	}
}
