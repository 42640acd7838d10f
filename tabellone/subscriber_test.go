package main

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taldoflemis/trattoria/cameriere"
)

func runNats(t *testing.T) *nats.Conn {
	t.Helper()

	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	srv := natsserver.RunServer(&opts)
	t.Cleanup(srv.Shutdown)

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	return nc
}

func TestBoardFollowsNATSUpdates(t *testing.T) {
	// Arrange
	nc := runNats(t)
	subscriber := NewNATSBoardSubscriber(nc, "orders.status", 8)
	publisher := cameriere.NewNATSStatusPublisher(nc, "orders.status")
	board := NewBoard(10)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- board.Run(ctx, subscriber) }()
	require.Eventually(t, func() bool { return subscriber.Len() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, nc.Flush())

	// Act
	require.NoError(t, nc.Publish("orders.status.9", []byte("not json")))
	require.NoError(t, nc.Publish("orders.other.3", []byte(`{"id":3,"status":"pending"}`)))
	require.NoError(t, publisher.Publish(ctx, cameriere.Order{ID: 1, Status: cameriere.StatusPending}))
	require.NoError(t, publisher.Publish(ctx, cameriere.Order{ID: 2, Status: cameriere.StatusCompleted}))
	require.NoError(t, publisher.Publish(ctx, cameriere.Order{ID: 1, Status: cameriere.StatusPreparing}))

	// Assert
	assert.Eventually(t, func() bool {
		upcoming, past := board.Snapshot()
		return len(upcoming) == 1 && upcoming[0].Status == cameriere.StatusPreparing && len(past) == 1
	}, 2*time.Second, 5*time.Millisecond)

	upcoming, past := board.Snapshot()
	require.Len(t, upcoming, 1)
	assert.Equal(t, int64(1), upcoming[0].ID)
	require.Len(t, past, 1)
	assert.Equal(t, int64(2), past[0].ID)

	cancel()
	require.NoError(t, <-done)
	assert.Zero(t, subscriber.Len())
}

func TestNATSBoardSubscriberUnknownID(t *testing.T) {
	subscriber := NewNATSBoardSubscriber(runNats(t), "orders.status", 1)

	assert.NoError(t, subscriber.Unsubscribe(t.Context(), "missing"))
}
