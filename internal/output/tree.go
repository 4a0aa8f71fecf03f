package output

import (
	"fmt"
	"strings"

	"ticketflow.dev/ticketflow/internal/hierarchy"
	"ticketflow.dev/ticketflow/internal/planner"
)

// RenderHierarchy renders the ticket tree in presentation order, one line per
// ticket, indented by depth. Local ids are what the review commands accept.
func RenderHierarchy(model *hierarchy.Model) []string {
	var lines []string
	for _, id := range model.Walk() {
		node, ok := model.Get(id)
		if !ok {
			continue
		}
		lines = append(lines, renderNode(model, node))
	}
	return lines
}

func renderNode(model *hierarchy.Model, node *hierarchy.TicketNode) string {
	depth := nodeDepth(model, node)
	indent := strings.Repeat("   ", depth)

	line := fmt.Sprintf("%s[%d] %s %s", indent, node.LocalID, kindLabel(node.Kind), node.Title)
	if node.Edited {
		line += " " + editedStyle.Render("(edited)")
	}
	if len(node.AcceptanceCriteria) > 0 {
		line += " " + ColorDim(fmt.Sprintf("(%d criteria)", len(node.AcceptanceCriteria)))
	}
	return line
}

func nodeDepth(model *hierarchy.Model, node *hierarchy.TicketNode) int {
	depth := 0
	for node.ParentLocalID != 0 {
		parent, ok := model.Get(node.ParentLocalID)
		if !ok {
			break
		}
		node = parent
		depth++
	}
	return depth
}

func kindLabel(kind hierarchy.Kind) string {
	switch kind {
	case hierarchy.KindEpic:
		return epicStyle.Render("Epic")
	case hierarchy.KindStory:
		return storyStyle.Render("Story")
	case hierarchy.KindTask:
		return taskStyle.Render("Task")
	case hierarchy.KindSubtask:
		return subtaskStyle.Render("Subtask")
	}
	return string(kind)
}

// RenderDetail renders a single ticket with its description and acceptance
// criteria, used by the review loop's show command.
func RenderDetail(node *hierarchy.TicketNode) []string {
	lines := []string{
		fmt.Sprintf("[%d] %s %s", node.LocalID, kindLabel(node.Kind), node.Title),
	}
	if node.Description != "" {
		lines = append(lines, "", node.Description)
	}
	if len(node.AcceptanceCriteria) > 0 {
		lines = append(lines, "", "Acceptance criteria:")
		for _, c := range node.AcceptanceCriteria {
			lines = append(lines, "  • "+c)
		}
	}
	return lines
}

// RenderReport renders the creation report, one line per attempted ticket.
func RenderReport(records []planner.CreationRecord) []string {
	var lines []string
	for _, record := range records {
		lines = append(lines, renderRecord(record))
	}
	lines = append(lines, "", renderSummary(records))
	return lines
}

func renderRecord(record planner.CreationRecord) string {
	switch record.Outcome {
	case planner.OutcomeCreated:
		line := fmt.Sprintf("%s [%d] %s %s → %s", okStyle.Render("✓"), record.LocalID, record.Kind, record.Title, record.RemoteID)
		if record.RemoteURL != "" {
			line += " " + ColorDim(record.RemoteURL)
		}
		return line
	case planner.OutcomeFailed:
		return fmt.Sprintf("%s [%d] %s %s: %s", failStyle.Render("✗"), record.LocalID, record.Kind, record.Title, record.Err)
	case planner.OutcomeSkippedParentFailed:
		return fmt.Sprintf("%s [%d] %s %s %s", ColorDim("-"), record.LocalID, record.Kind, record.Title, ColorDim("skipped (parent failed)"))
	}
	return fmt.Sprintf("  [%d] %s %s", record.LocalID, record.Kind, record.Title)
}

func renderSummary(records []planner.CreationRecord) string {
	var created, failed, skipped int
	for _, record := range records {
		switch record.Outcome {
		case planner.OutcomeCreated:
			created++
		case planner.OutcomeFailed:
			failed++
		case planner.OutcomeSkippedParentFailed:
			skipped++
		}
	}
	summary := fmt.Sprintf("%d created", created)
	if failed > 0 {
		summary += fmt.Sprintf(", %d failed", failed)
	}
	if skipped > 0 {
		summary += fmt.Sprintf(", %d skipped", skipped)
	}
	return summary
}
