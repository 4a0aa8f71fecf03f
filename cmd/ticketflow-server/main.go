package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ticketflow.dev/ticketflow/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveCmd := cli.NewServeCmd()
	if err := serveCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
