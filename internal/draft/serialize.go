package draft

import (
	"github.com/tidwall/sjson"

	"ticketflow.dev/ticketflow/internal/hierarchy"
)

// Serialize renders a model back into the draft wire shape. Nodes are emitted
// in presentation order (epics first, descendants depth-first) with
// parent_index referring to positions in the emitted list, so a parse of the
// output reproduces the tree exactly.
func Serialize(model *hierarchy.Model) (string, error) {
	order := model.Walk()
	position := make(map[int]int, len(order))
	for pos, id := range order {
		position[id] = pos
	}

	doc := `{"tickets":[]}`
	for _, id := range order {
		node, _ := model.Get(id)

		ticket := map[string]interface{}{
			"type":        string(node.Kind),
			"summary":     node.Title,
			"description": node.Description,
		}
		if len(node.AcceptanceCriteria) > 0 {
			ticket["acceptance_criteria"] = node.AcceptanceCriteria
		}
		if node.ParentLocalID == 0 {
			ticket["parent_index"] = nil
		} else {
			ticket["parent_index"] = position[node.ParentLocalID]
		}

		var err error
		doc, err = sjson.Set(doc, "tickets.-1", ticket)
		if err != nil {
			return "", err
		}
	}

	return doc, nil
}
