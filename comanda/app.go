package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/taldoflemis/trattoria/cameriere"
)

const sessionExpiredMessage = "session expired, please login again"

// App holds what the commands share: settings and the lazily built client
// with its token store and NATS connection.
type App struct {
	settings *Settings
	errOut   io.Writer

	tokens cameriere.TokenStore
	nc     *nats.Conn
	client *cameriere.Client
}

func NewApp(settings *Settings, errOut io.Writer) *App {
	return &App{settings: settings, errOut: errOut}
}

func (a *App) Settings() *Settings { return a.settings }

// Client returns the API client, connecting to NATS first when the token
// store or the status publisher needs it.
func (a *App) Client(ctx context.Context) (*cameriere.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	if a.settings.Nats.Enabled || a.settings.TokenStore.Kind == "nats" {
		if err := a.connectNats(ctx); err != nil {
			return nil, err
		}
	}

	store, err := a.tokenStore(ctx)
	if err != nil {
		return nil, err
	}

	opts := []cameriere.Option{
		cameriere.WithTokenStore(store),
		cameriere.WithHTTPClient(&http.Client{
			Timeout:   a.settings.API.Timeout(),
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}),
		cameriere.WithSessionExpired(func(context.Context) {
			fmt.Fprintln(a.errOut, sessionExpiredMessage)
		}),
	}
	if a.settings.Nats.Enabled {
		opts = append(opts, cameriere.WithStatusPublisher(
			cameriere.NewNATSStatusPublisher(a.nc, a.settings.Nats.Subject),
		))
	}

	client, err := cameriere.New(a.settings.API.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

func (a *App) tokenStore(ctx context.Context) (cameriere.TokenStore, error) {
	if a.tokens != nil {
		return a.tokens, nil
	}

	switch a.settings.TokenStore.Kind {
	case "memory":
		a.tokens = cameriere.NewMemoryTokenStore()
	case "nats":
		store, err := cameriere.NewKVTokenStore(ctx, a.nc, a.settings.TokenStore.Bucket)
		if err != nil {
			return nil, err
		}
		a.tokens = store
	default:
		a.tokens = cameriere.NewFileTokenStore(a.settings.TokenPath())
	}
	return a.tokens, nil
}

func (a *App) connectNats(ctx context.Context) error {
	if a.nc != nil {
		return nil
	}
	slog.DebugContext(ctx, "connecting to NATS server", slog.String("host", a.settings.Nats.Host))
	nc, err := a.settings.Nats.GetNatsClient()
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	a.nc = nc
	return nil
}

func (a *App) Close() {
	if a.nc == nil {
		return
	}
	if err := a.nc.Drain(); err != nil {
		slog.Error("failed to drain NATS connection", slog.Any("err", err))
	}
}
