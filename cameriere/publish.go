package cameriere

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/codes"

	"github.com/taldoflemis/trattoria/pacchetto/telemetry"
)

// StatusPublisher receives every order observed by the pollers.
type StatusPublisher interface {
	Publish(ctx context.Context, order Order) error
}

type NopPublisher struct{}

var _ StatusPublisher = NopPublisher{}

func (NopPublisher) Publish(context.Context, Order) error { return nil }

// ChannelPublisher fans orders out to in-process subscribers. Slow
// subscribers lose updates instead of blocking the poller.
type ChannelPublisher struct {
	mu      sync.RWMutex
	nextID  int
	subs    map[int]chan Order
	bufSize int
}

var _ StatusPublisher = (*ChannelPublisher)(nil)

func NewChannelPublisher(bufSize int) *ChannelPublisher {
	if bufSize < 1 {
		bufSize = 1
	}
	return &ChannelPublisher{subs: make(map[int]chan Order), bufSize: bufSize}
}

func (p *ChannelPublisher) Publish(ctx context.Context, order Order) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for id, ch := range p.subs {
		select {
		case ch <- order:
		default:
			slog.WarnContext(ctx, "subscriber is lagging, dropping order update",
				slog.Int("subscriber", id), slog.Int64("order_id", order.ID))
		}
	}
	return nil
}

func (p *ChannelPublisher) Subscribe() (int, <-chan Order) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	ch := make(chan Order, p.bufSize)
	p.subs[p.nextID] = ch
	return p.nextID, ch
}

// Unsubscribe closes the subscriber's channel. Unknown ids are ignored.
func (p *ChannelPublisher) Unsubscribe(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ch, ok := p.subs[id]; ok {
		close(ch)
		delete(p.subs, id)
	}
}

// NATSStatusPublisher publishes orders as JSON on "<prefix>.<order id>" with
// the trace context in the message headers.
type NATSStatusPublisher struct {
	nc            *nats.Conn
	subjectPrefix string
}

var _ StatusPublisher = (*NATSStatusPublisher)(nil)

func NewNATSStatusPublisher(nc *nats.Conn, subjectPrefix string) *NATSStatusPublisher {
	return &NATSStatusPublisher{nc: nc, subjectPrefix: subjectPrefix}
}

// Subject returns the subject an order is published on.
func (n *NATSStatusPublisher) Subject(orderID int64) string {
	return n.subjectPrefix + "." + strconv.FormatInt(orderID, 10)
}

func (n *NATSStatusPublisher) Publish(ctx context.Context, order Order) error {
	ctx, span := tracer.Start(ctx, "NATSStatusPublisher.Publish")
	defer span.End()

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order %d: %w", order.ID, err)
	}

	msg := &nats.Msg{Subject: n.Subject(order.ID), Data: data}
	telemetry.InjectContextToNatsMsg(ctx, msg)

	if err := n.nc.PublishMsg(msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish order status", slog.String("subject", msg.Subject), slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish order status")
		return err
	}
	return nil
}
