package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ticketflow.dev/ticketflow/internal/actions"
	"ticketflow.dev/ticketflow/internal/config"
	"ticketflow.dev/ticketflow/internal/planner"
)

// newGenerateCmd creates the generate command
func newGenerateCmd() *cobra.Command {
	var (
		project       string
		requirements  string
		file          string
		domainContext string
		assumeYes     bool
		retries       int
		retryDelay    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate tickets from natural-language requirements",
		Long: `Ask the AI to structure requirements into a ticket hierarchy, review the
proposal interactively, and create the confirmed tickets in the tracker.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			splog := newSplog()
			defer func() { _ = splog.Close() }()

			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			secrets := config.LoadSecrets()

			trackerClient, err := actions.NewTrackerClient(cmd.Context(), settings, secrets)
			if err != nil {
				return err
			}
			aiClient, err := actions.NewAIClient(settings, secrets)
			if err != nil {
				return err
			}

			if project == "" {
				project = settings.Project
			}

			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read requirements file: %w", err)
				}
				requirements = string(data)
			}

			records, err := actions.GenerateAction(cmd.Context(), splog, actions.GenerateOptions{
				AIClient:      aiClient,
				Tracker:       trackerClient,
				Project:       project,
				Requirements:  requirements,
				DomainContext: domainContext,
				AssumeYes:     assumeYes,
				RetryAttempts: retries,
				RetryDelay:    retryDelay,
			})
			if err != nil {
				return err
			}

			failed := 0
			for _, record := range records {
				if record.Outcome != planner.OutcomeCreated {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d tickets were not created", failed, len(records))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project to create tickets in (defaults to configured project)")
	cmd.Flags().StringVarP(&requirements, "requirements", "r", "", "Requirement text (prompted for when omitted)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read requirement text from a file")
	cmd.Flags().StringVar(&domainContext, "context", "", "Extra domain context for the AI")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the review and create the draft as proposed")
	cmd.Flags().IntVar(&retries, "retries", 2, "Retry attempts for transient tracker errors")
	cmd.Flags().DurationVar(&retryDelay, "retry-delay", 2*time.Second, "Pause between retry attempts")

	return cmd
}
