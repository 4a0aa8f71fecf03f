package ai

import (
	"fmt"
	"strings"
)

const (
	// maxRequirementsSize caps the requirement text included in a prompt.
	maxRequirementsSize = 50000

	// maxEmailBodySize caps the email body folded into requirement text.
	maxEmailBodySize = 4000
)

// systemPrompt frames every draft generation call.
const systemPrompt = "You are an expert at analyzing software requirements and structuring them " +
	"into issue-tracker tickets. Always return valid JSON only."

// BuildAnalysisPrompt constructs the prompt that asks the AI to structure
// requirement text into a ticket hierarchy. The demanded output shape is
// exactly what the draft parser accepts.
func BuildAnalysisPrompt(requirements, domainContext string) string {
	if len(requirements) > maxRequirementsSize {
		requirements = requirements[:maxRequirementsSize] + "\n... (truncated)"
	}

	var sections []string

	sections = append(sections, "Analyze the following requirements and generate a structured hierarchy of issue-tracker tickets.")

	if domainContext != "" {
		sections = append(sections, "Context:\n"+domainContext)
	}

	sections = append(sections, "Requirements:\n"+requirements)

	sections = append(sections, `Generate a JSON structure with the following format:
{
  "tickets": [
    {
      "type": "Epic" | "Story" | "Task" | "Subtask",
      "summary": "Title of the ticket",
      "description": "Detailed description",
      "acceptance_criteria": ["Criterion 1", "Criterion 2"],
      "parent_index": null or index of the parent ticket in this list
    }
  ]
}`)

	sections = append(sections, `Rules:
1. Start with Epics at the top level (parent_index: null)
2. Stories and Tasks must reference their parent Epic by list index
3. Subtasks must reference their parent Story or Task, never an Epic
4. Each ticket must have clear acceptance criteria
5. Descriptions should be detailed and actionable
6. Organize logically by feature or functionality
7. Use "Subtask" (not "Sub-task") for sub-tasks

Return ONLY valid JSON, no additional text.`)

	return strings.Join(sections, "\n\n")
}

// BuildEmailRequirements folds an inbound email into requirement text for
// the same analysis prompt the interactive path uses. Subject and sender are
// kept so the AI can name the request.
func BuildEmailRequirements(subject, from, body string) string {
	if len(body) > maxEmailBodySize {
		body = body[:maxEmailBodySize] + "\n... (truncated)"
	}

	var lines []string
	if subject != "" {
		lines = append(lines, fmt.Sprintf("Subject: %s", subject))
	}
	if from != "" {
		lines = append(lines, fmt.Sprintf("From: %s", from))
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, "The following email describes a request or inquiry. Extract what the sender is asking for and structure it as work items. If the email has no clear request, produce a single epic summarizing the inquiry.")
	lines = append(lines, "")
	lines = append(lines, body)

	return strings.Join(lines, "\n")
}
