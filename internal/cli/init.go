package cli

import (
	"github.com/spf13/cobra"

	"ticketflow.dev/ticketflow/internal/actions"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively write the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			splog := newSplog()
			defer func() { _ = splog.Close() }()
			return actions.InitAction(splog)
		},
	}

	return cmd
}
