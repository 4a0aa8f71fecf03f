package cli

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"ticketflow.dev/ticketflow/internal/actions"
	"ticketflow.dev/ticketflow/internal/ai"
	"ticketflow.dev/ticketflow/internal/config"
	"ticketflow.dev/ticketflow/internal/ingest"
	"ticketflow.dev/ticketflow/internal/server"
)

// NewServeCmd creates the serve command. It is exported so the standalone
// server binary can run it without the rest of the command tree.
func NewServeCmd() *cobra.Command {
	var (
		addr       string
		redisAddr  string
		retries    int
		retryDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the email webhook server",
		Long: `Listen for email webhook deliveries and turn each new message into
tickets without interactive review. Redeliveries of a message id return the
stored outcome instead of creating tickets again.`,
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

			if addr == "" {
				addr = settings.ListenAddr
			}
			if redisAddr == "" {
				redisAddr = settings.RedisAddr
			}
			if secrets.WebhookSecret == "" {
				splog.Warn("TICKETFLOW_WEBHOOK_SECRET is not set; the webhook accepts unauthenticated deliveries")
			}

			var store ingest.Store = ingest.NewMemoryStore()
			if redisAddr != "" {
				client := redis.NewClient(&redis.Options{Addr: redisAddr})
				defer func() { _ = client.Close() }()
				store = ingest.NewRedisStore(client, 30*24*time.Hour)
				splog.Info("Using Redis at %s for ingestion state", redisAddr)
			} else {
				splog.Warn("No Redis configured; duplicate detection resets on restart")
			}

			pipeline := actions.NewEmailPipeline(actions.PipelineOptions{
				AIClient:      aiClient,
				Tracker:       trackerClient,
				Project:       settings.Project,
				RetryAttempts: retries,
				RetryDelay:    retryDelay,
			})
			dedup := ingest.NewDeduplicator(store, pipeline)

			srv := server.NewServer(addr, secrets.WebhookSecret, dedup, ai.BuildEmailRequirements, splog)
			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to configured listen_addr)")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for durable duplicate detection")
	cmd.Flags().IntVar(&retries, "retries", 2, "Retry attempts for transient tracker errors")
	cmd.Flags().DurationVar(&retryDelay, "retry-delay", 2*time.Second, "Pause between retry attempts")

	return cmd
}
