package cameriere

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taldoflemis/trattoria/pacchetto"
)

const (
	DefaultOrderInterval = 5 * time.Second
	DefaultAdminInterval = 30 * time.Second
)

type WatchOptions struct {
	// Interval between fetches, DefaultOrderInterval when zero.
	Interval time.Duration
	// Jitter spreads each wait by up to ±Jitter of Interval.
	Jitter float64
	// OnUpdate runs after every successful fetch.
	OnUpdate func(Order)
}

// WatchOrder follows an order until the kitchen completes or cancels it and
// returns the final state. Failed fetches are logged and retried on the next
// tick. When ctx ends first, the last order seen is returned with ctx.Err().
func (c *Client) WatchOrder(ctx context.Context, restaurantID, orderID int64, opts WatchOptions) (*Order, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultOrderInterval
	}

	var last *Order
	for tick := uint64(0); ; tick++ {
		order, err := c.FetchOrder(ctx, restaurantID, orderID)
		switch {
		case err != nil && ctx.Err() != nil:
			return last, ctx.Err()
		case err != nil:
			slog.WarnContext(ctx, "failed to fetch order status", slog.Int64("order_id", orderID), slog.Any("err", err))
		default:
			last = order
			c.publish(ctx, *order)
			if opts.OnUpdate != nil {
				opts.OnUpdate(*order)
			}
			if order.Status.IsTerminal() {
				slog.InfoContext(ctx, "order finished", slog.Int64("order_id", orderID), slog.String("status", string(order.Status)))
				return order, nil
			}
		}

		wait := pacchetto.Jitter(uint64(orderID)<<20|tick, interval, opts.Jitter)
		if err := sleep(ctx, wait); err != nil {
			return last, err
		}
	}
}

type PollOptions struct {
	// Interval between fetches, DefaultAdminInterval when zero.
	Interval time.Duration
	Jitter   float64
}

// PollAdminOrders hands the admin order list to fn right away and then on
// every interval until ctx ends. It stops with ErrSessionExpired when the
// session cannot be refreshed; other errors are logged and skipped.
func (c *Client) PollAdminOrders(ctx context.Context, opts PollOptions, fn func([]Order)) error {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultAdminInterval
	}

	for tick := uint64(0); ; tick++ {
		orders, err := c.FetchAdminOrders(ctx)
		switch {
		case errors.Is(err, ErrSessionExpired):
			return err
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			slog.WarnContext(ctx, "failed to fetch admin orders", slog.Any("err", err))
		default:
			for _, o := range orders {
				c.publish(ctx, o)
			}
			if fn != nil {
				fn(orders)
			}
		}

		if err := sleep(ctx, pacchetto.Jitter(tick, interval, opts.Jitter)); err != nil {
			return err
		}
	}
}

func (c *Client) publish(ctx context.Context, order Order) {
	if err := c.publisher.Publish(ctx, order); err != nil {
		slog.WarnContext(ctx, "failed to publish order status", slog.Int64("order_id", order.ID), slog.Any("err", err))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
