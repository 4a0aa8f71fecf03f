package cli

import (
	"github.com/spf13/cobra"

	"ticketflow.dev/ticketflow/internal/actions"
	"ticketflow.dev/ticketflow/internal/config"
	"ticketflow.dev/ticketflow/internal/tracker"
)

// newDoctorCmd creates the doctor command
func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues with your ticketflow setup",
		Long: `Run diagnostic checks on your ticketflow configuration.

The doctor command checks:
  - Settings: backend, tracker URL and project
  - Credentials: required environment variables
  - Connectivity: tracker authentication and visible projects`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			splog := newSplog()
			defer func() { _ = splog.Close() }()

			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			secrets := config.LoadSecrets()

			var client tracker.Client
			if c, err := actions.NewTrackerClient(cmd.Context(), settings, secrets); err != nil {
				splog.Warn("tracker client: %v", err)
			} else {
				client = c
			}

			return actions.DoctorAction(cmd.Context(), splog, settings, secrets, client)
		},
	}

	return cmd
}
