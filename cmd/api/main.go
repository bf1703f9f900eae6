package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gatekeeper/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Serve HTTP until SIGINT/SIGTERM.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildAPI(ctx)
	if err != nil {
		slog.Error("api bootstrap failed", "event", "api_bootstrap_failed", "error", err.Error())
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		slog.Error("api stopped with error", "event", "api_run_failed", "error", err.Error())
		os.Exit(1)
	}
}
