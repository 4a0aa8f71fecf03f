// Package cli wires the cobra command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ticketflow.dev/ticketflow/internal/output"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ticketflow",
		Short:   "Ticketflow turns natural-language requirements into issue-tracker tickets",
		Long:    `Ticketflow asks an AI to structure free-form requirements into a hierarchy of epics, stories, tasks and subtasks, lets you review and adjust the proposal, and then creates the tickets in Jira or GitHub.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	}

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// newSplog builds the shared logger with file logging enabled.
func newSplog() *output.Splog {
	output.ConfigureColors()
	splog, err := output.NewSplogWithConfig(output.GetLogFilePath())
	if err != nil {
		return output.NewSplog()
	}
	return splog
}
