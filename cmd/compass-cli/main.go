package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"bellweaver-backend/cmd/compass-cli/commands"
	"bellweaver-backend/internal/components/telemetry"
)

func main() {
	ctx := context.Background()

	otel, err := telemetry.SetupFromEnv(ctx, "compass-cli")
	if err != nil {
		slog.Debug("otel disabled", "err", err.Error())
	}

	err = commands.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	if shutdownErr := otel.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr.Error())
	}

	if err != nil {
		os.Exit(1)
	}
}
