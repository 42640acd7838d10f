package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/codes"

	"github.com/taldoflemis/trattoria/cameriere"
	"github.com/taldoflemis/trattoria/pacchetto/telemetry"
)

// BoardSubscriber hands out streams of order status updates.
type BoardSubscriber interface {
	Subscribe(ctx context.Context) (id string, updates <-chan cameriere.Order, err error)
	Unsubscribe(ctx context.Context, id string) error
}

// NATSBoardSubscriber listens on the order status subjects published by the
// pollers.
type NATSBoardSubscriber struct {
	nc          *nats.Conn
	subject     string
	channelSize int

	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

var _ BoardSubscriber = (*NATSBoardSubscriber)(nil)

// NewNATSBoardSubscriber subscribes to every order under subjectPrefix.
func NewNATSBoardSubscriber(nc *nats.Conn, subjectPrefix string, channelSize int) *NATSBoardSubscriber {
	return &NATSBoardSubscriber{
		nc:          nc,
		subject:     subjectPrefix + ".*",
		channelSize: channelSize,
		subs:        make(map[string]*nats.Subscription),
	}
}

func (n *NATSBoardSubscriber) Subscribe(ctx context.Context) (string, <-chan cameriere.Order, error) {
	ctx, span := tracer.Start(ctx, "NATSBoardSubscriber.Subscribe")
	defer span.End()

	id := uuid.NewString()
	ch := make(chan cameriere.Order, n.channelSize)

	sub, err := n.nc.Subscribe(n.subject, func(msg *nats.Msg) {
		msgCtx := telemetry.GetContextFromNatsMsg(context.Background(), msg)

		var order cameriere.Order
		if err := json.Unmarshal(msg.Data, &order); err != nil {
			slog.ErrorContext(msgCtx, "failed to unmarshal order from NATS message", slog.String("subject", msg.Subject), slog.Any("err", err))
			return
		}

		select {
		case ch <- order:
		default:
			slog.WarnContext(msgCtx, "board subscriber is lagging, dropping update",
				slog.String("subscriber", id), slog.Int64("order_id", order.ID))
		}
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to NATS subject", slog.String("subject", n.subject), slog.Any("err", err))
		span.SetStatus(codes.Error, "failed to subscribe to NATS subject")
		span.RecordError(err)
		return "", nil, err
	}

	n.mu.Lock()
	n.subs[id] = sub
	n.mu.Unlock()

	slog.DebugContext(ctx, "subscribed to order updates", slog.String("subscriber", id), slog.String("subject", n.subject))
	return id, ch, nil
}

func (n *NATSBoardSubscriber) Unsubscribe(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "NATSBoardSubscriber.Unsubscribe")
	defer span.End()

	n.mu.Lock()
	sub, ok := n.subs[id]
	delete(n.subs, id)
	n.mu.Unlock()

	if !ok {
		slog.WarnContext(ctx, "no subscription found", slog.String("subscriber", id))
		return nil
	}
	return sub.Unsubscribe()
}

// Len is the number of live subscriptions.
func (n *NATSBoardSubscriber) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// ChannelBoardSubscriber serves updates from an in-process publisher, for
// boards running next to the poller and for tests.
type ChannelBoardSubscriber struct {
	pub *cameriere.ChannelPublisher

	mu  sync.Mutex
	ids map[string]int
}

var _ BoardSubscriber = (*ChannelBoardSubscriber)(nil)

func NewChannelBoardSubscriber(pub *cameriere.ChannelPublisher) *ChannelBoardSubscriber {
	return &ChannelBoardSubscriber{pub: pub, ids: make(map[string]int)}
}

func (c *ChannelBoardSubscriber) Subscribe(context.Context) (string, <-chan cameriere.Order, error) {
	pubID, ch := c.pub.Subscribe()
	id := uuid.NewString()

	c.mu.Lock()
	c.ids[id] = pubID
	c.mu.Unlock()
	return id, ch, nil
}

func (c *ChannelBoardSubscriber) Unsubscribe(_ context.Context, id string) error {
	c.mu.Lock()
	pubID, ok := c.ids[id]
	delete(c.ids, id)
	c.mu.Unlock()

	if ok {
		c.pub.Unsubscribe(pubID)
	}
	return nil
}

// Len is the number of live subscriptions.
func (c *ChannelBoardSubscriber) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}
