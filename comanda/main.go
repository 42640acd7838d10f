package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taldoflemis/trattoria/cameriere"
	"github.com/taldoflemis/trattoria/pacchetto/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()
	retcode := 0
	defer func() {
		os.Exit(retcode)
	}()

	settings, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		retcode = 1
		return
	}

	otelShutdown, err := telemetry.SetupOTelSDK(ctx, settings.App, settings.OpenTelemetry,
		telemetry.WithLogWriter(os.Stderr),
		telemetry.WithLogLevel(settings.SlogLevel()),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to setup telemetry:", err)
		retcode = 1
		return
	}

	defer func() {
		err = otelShutdown(context.Background())
		if err != nil {
			slog.ErrorContext(ctx, "failed to shutdown opentelemetry providers", slog.Any("err", err))
			retcode = 1
		}
	}()

	app := NewApp(settings, os.Stderr)
	defer app.Close()

	err = NewRootCmd(app).ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, cameriere.ErrSessionExpired):
		// the session hook already told the user
		retcode = 1
	case errors.Is(err, context.Canceled):
		retcode = 130
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		retcode = 1
	}
}
