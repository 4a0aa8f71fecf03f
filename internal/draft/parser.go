// Package draft converts raw AI output into a validated hierarchy model and
// back. The wire shape is the flat list the analysis prompt demands:
//
//	{"tickets": [{"type": ..., "summary": ..., "description": ...,
//	              "acceptance_criteria": [...], "parent_index": null | int}]}
//
// Parsing is all-or-nothing: a draft that fails validation anywhere produces
// no model at all.
package draft

import (
	"strings"

	"github.com/tidwall/gjson"

	"ticketflow.dev/ticketflow/internal/errors"
	"ticketflow.dev/ticketflow/internal/hierarchy"
)

type entry struct {
	kind        hierarchy.Kind
	title       string
	description string
	criteria    []string
	parentIdx   int // -1 for none
	children    []int
}

// Parse decodes a raw AI draft into a hierarchy model. Local ids are assigned
// deterministically: epics in order of appearance, each followed by its
// descendants depth-first, starting at 1. Two parses of the same draft
// produce identically numbered trees.
func Parse(raw string) (*hierarchy.Model, error) {
	raw = stripCodeFences(raw)

	if !gjson.Valid(raw) {
		return nil, errors.NewMalformedDraftError("response is not valid JSON")
	}

	tickets := gjson.Get(raw, "tickets")
	if !tickets.Exists() {
		return nil, errors.NewMalformedDraftError("missing \"tickets\" field")
	}
	if !tickets.IsArray() {
		return nil, errors.NewMalformedDraftError("\"tickets\" is not an array")
	}

	entries, err := decodeEntries(tickets.Array())
	if err != nil {
		return nil, err
	}

	return build(entries)
}

func decodeEntries(items []gjson.Result) ([]*entry, error) {
	entries := make([]*entry, 0, len(items))

	for i, item := range items {
		if !item.IsObject() {
			return nil, errors.NewMalformedDraftError("ticket %d is not an object", i)
		}

		typeField := item.Get("type")
		if typeField.Type != gjson.String {
			return nil, errors.NewMalformedDraftError("ticket %d has no \"type\"", i)
		}
		kind, ok := hierarchy.ParseKind(typeField.String())
		if !ok {
			return nil, errors.NewMalformedDraftError("ticket %d has unknown type %q", i, typeField.String())
		}

		summary := item.Get("summary")
		if summary.Type != gjson.String || strings.TrimSpace(summary.String()) == "" {
			return nil, errors.NewMalformedDraftError("ticket %d has no \"summary\"", i)
		}

		e := &entry{
			kind:        kind,
			title:       strings.TrimSpace(summary.String()),
			description: item.Get("description").String(),
			parentIdx:   -1,
		}

		if ac := item.Get("acceptance_criteria"); ac.Exists() {
			if !ac.IsArray() {
				return nil, errors.NewMalformedDraftError("ticket %d: \"acceptance_criteria\" is not an array", i)
			}
			for _, c := range ac.Array() {
				if c.Type != gjson.String {
					return nil, errors.NewMalformedDraftError("ticket %d has a non-string acceptance criterion", i)
				}
				e.criteria = append(e.criteria, c.String())
			}
		}

		if p := item.Get("parent_index"); p.Exists() && p.Type != gjson.Null {
			if p.Type != gjson.Number {
				return nil, errors.NewMalformedDraftError("ticket %d has a non-numeric \"parent_index\"", i)
			}
			idx := int(p.Int())
			if float64(idx) != p.Float() {
				return nil, errors.NewMalformedDraftError("ticket %d has a fractional \"parent_index\"", i)
			}
			if idx < 0 || idx >= len(items) {
				return nil, errors.NewMalformedDraftError("ticket %d references parent %d, out of range", i, idx)
			}
			e.parentIdx = idx
		}

		entries = append(entries, e)
	}

	return entries, nil
}

// build validates kinds against parents and assigns local ids depth-first.
// The kind rules leave no room for cycles: epics have no parent and every
// other kind must chain up to an epic, so validation alone guarantees that
// every entry is reachable from a root.
func build(entries []*entry) (*hierarchy.Model, error) {
	var epicCount int
	for i, e := range entries {
		if e.parentIdx == -1 {
			if e.kind != hierarchy.KindEpic {
				return nil, &errors.InvalidHierarchyError{
					LocalID: i + 1,
					Kind:    string(e.kind),
					Message: string(e.kind) + " has no parent",
				}
			}
			epicCount++
			continue
		}
		if e.kind == hierarchy.KindEpic {
			return nil, &errors.InvalidHierarchyError{
				LocalID: i + 1,
				Kind:    string(e.kind),
				Message: "an epic cannot have a parent",
			}
		}
		parent := entries[e.parentIdx]
		if !hierarchy.ValidChild(parent.kind, e.kind) {
			return nil, errors.NewInvalidHierarchyError(i+1, string(e.kind), string(parent.kind))
		}
		parent.children = append(parent.children, i)
	}

	if epicCount == 0 {
		return nil, errors.ErrEmptyDraft
	}

	model := hierarchy.NewModel()
	var add func(idx, parentID int) error
	add = func(idx, parentID int) error {
		e := entries[idx]
		node, err := model.Add(e.kind, e.title, e.description, e.criteria, parentID)
		if err != nil {
			return err
		}
		for _, childIdx := range e.children {
			if err := add(childIdx, node.LocalID); err != nil {
				return err
			}
		}
		return nil
	}

	for i, e := range entries {
		if e.parentIdx == -1 {
			if err := add(i, 0); err != nil {
				return nil, err
			}
		}
	}

	return model, nil
}

// stripCodeFences removes a surrounding markdown code block, which models
// emit despite being told not to.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if nl := strings.Index(text, "\n"); nl > 0 {
			text = text[nl+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
