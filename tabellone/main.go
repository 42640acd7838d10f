package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/taldoflemis/trattoria/pacchetto"
	"github.com/taldoflemis/trattoria/pacchetto/telemetry"
	_ "github.com/taldoflemis/trattoria/tabellone/docs"
)

// @title						Tabellone
// @version						1.0
// @description					Live order board fed by the order status pollers.
// @host						localhost:8080
// @BasePath					/
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

	slog.InfoContext(ctx, "Launching tabellone")

	slog.InfoContext(ctx, "Loading config")
	settings, err := LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("err", err))
		retcode = 1
		return
	}
	if !settings.Nats.Enabled {
		slog.ErrorContext(ctx, "tabellone reads order updates from NATS, enable it in the nats settings")
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Setting up opentelemetry")
	otelShutdown, err := telemetry.SetupOTelSDK(ctx, settings.App, settings.OpenTelemetry)
	if err != nil {
		slog.Error("failed to setup telemetry", slog.Any("err", err))
		retcode = 1
		return
	}

	defer func() {
		err = errors.Join(err, otelShutdown(context.Background()))
		if err != nil {
			slog.ErrorContext(
				ctx,
				"failed to shutdown opentelemetry providers",
				slog.Any("err", err),
			)
			retcode = 1
		}
	}()

	errChan := make(chan error, 2)
	server := echo.New()
	server.HideBanner = true

	slog.InfoContext(ctx, "Connecting to NATS server")
	nc, err := settings.Nats.GetNatsClient()
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to NATS server", slog.Any("err", err))
		retcode = 1
		return
	}
	defer nc.Close()

	subscriber := NewNATSBoardSubscriber(nc, settings.Nats.Subject, settings.Board.ChannelSize)
	board := NewBoard(settings.Board.MaxFinished)
	go func() {
		if err := board.Run(ctx, subscriber); err != nil {
			errChan <- fmt.Errorf("board stopped: %w", err)
		}
	}()

	slog.InfoContext(ctx, "Setting up health checker")
	health, err := healthgo.New(
		healthgo.WithComponent(healthgo.Component{
			Name:    settings.App.Name,
			Version: settings.App.Version,
		}),
		healthgo.WithChecks(healthgo.Config{
			Name:  "nats",
			Check: pacchetto.CheckNats(nc),
		}),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create health checker", slog.Any("err", err))
		retcode = 1
		return
	}

	NewMainHandler(server, settings, subscriber, board, health)
	server.GET("/swagger/*", echoSwagger.WrapHandler)
	pprof.Register(server)

	go func() {
		slog.InfoContext(ctx, "listening for requests", slog.String("ip", settings.HTTP.IP), slog.String("port", settings.HTTP.Port))
		errChan <- server.Start(fmt.Sprintf("%s:%s", settings.HTTP.IP, settings.HTTP.Port))
	}()

	select {
	case err = <-errChan:
		slog.ErrorContext(ctx, "error when running server", slog.Any("err", err))
		retcode = 1
		return
	case <-ctx.Done():
		// Wait for first Signal arrives
	}

	err = server.Shutdown(context.WithoutCancel(ctx))
	if err != nil {
		slog.ErrorContext(ctx, "failed to shutdown gracefully the server", slog.Any("err", err))
	}
}
