package main

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/taldoflemis/trattoria/cameriere"
)

// Board keeps the latest known state of every order it has seen. Finished
// orders beyond maxFinished are forgotten, oldest first.
type Board struct {
	mu          sync.RWMutex
	orders      map[int64]cameriere.Order
	maxFinished int
}

func NewBoard(maxFinished int) *Board {
	return &Board{orders: make(map[int64]cameriere.Order), maxFinished: maxFinished}
}

func (b *Board) Apply(order cameriere.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.orders[order.ID] = order
	if order.Status.IsTerminal() {
		b.trim()
	}
}

func (b *Board) trim() {
	var finished []int64
	for id, o := range b.orders {
		if o.Status.IsTerminal() {
			finished = append(finished, id)
		}
	}
	if len(finished) <= b.maxFinished {
		return
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i] < finished[j] })
	for _, id := range finished[:len(finished)-b.maxFinished] {
		delete(b.orders, id)
	}
}

// Snapshot returns the orders split like the kitchen view, each ordered by id.
func (b *Board) Snapshot() (upcoming, past []cameriere.Order) {
	b.mu.RLock()
	orders := make([]cameriere.Order, 0, len(b.orders))
	for _, o := range b.orders {
		orders = append(orders, o)
	}
	b.mu.RUnlock()

	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return cameriere.SplitOrders(orders)
}

// Run feeds the board from sub until ctx ends.
func (b *Board) Run(ctx context.Context, sub BoardSubscriber) error {
	id, updates, err := sub.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := sub.Unsubscribe(context.WithoutCancel(ctx), id); err != nil {
			slog.ErrorContext(ctx, "failed to unsubscribe board", slog.Any("err", err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case order, ok := <-updates:
			if !ok {
				return nil
			}
			b.Apply(order)
		}
	}
}
