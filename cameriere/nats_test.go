package cameriere

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/taldoflemis/trattoria/pacchetto/telemetry"
)

// runNats starts an in-process NATS server with JetStream and connects to it.
func runNats(t *testing.T) *nats.Conn {
	t.Helper()

	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	srv := natsserver.RunServer(&opts)
	t.Cleanup(srv.Shutdown)

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	return nc
}

func TestKVTokenStoreSharedSession(t *testing.T) {
	// Arrange
	nc := runNats(t)
	ctx := t.Context()
	first, err := NewKVTokenStore(ctx, nc, "trattoria-session")
	require.NoError(t, err)
	second, err := NewKVTokenStore(ctx, nc, "trattoria-session")
	require.NoError(t, err)

	// Act
	require.NoError(t, first.Save(ctx, TokenPair{Access: "a1", Refresh: "r1"}))

	// Assert
	tokens, err := second.Tokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, TokenPair{Access: "a1", Refresh: "r1"}, tokens)

	require.NoError(t, second.Clear(ctx))
	tokens, err = first.Tokens(ctx)
	require.NoError(t, err)
	assert.False(t, tokens.LoggedIn())
}

func TestNATSStatusPublisher(t *testing.T) {
	// Arrange
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	nc := runNats(t)
	sub, err := nc.SubscribeSync("orders.status.*")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())
	publisher := NewNATSStatusPublisher(nc, "orders.status")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(t.Context(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	// Act
	err = publisher.Publish(ctx, Order{ID: 42, Status: StatusPreparing})

	// Assert
	require.NoError(t, err)
	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "orders.status.42", msg.Subject)
	assert.Equal(t, publisher.Subject(42), msg.Subject)

	var order Order
	require.NoError(t, json.Unmarshal(msg.Data, &order))
	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, StatusPreparing, order.Status)

	received := telemetry.GetContextFromNatsMsg(context.Background(), msg)
	assert.Equal(t, traceID, trace.SpanContextFromContext(received).TraceID())
}
