package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/taldoflemis/trattoria/cameriere"
)

// maxItemQuantity caps the units of one item in a single order.
const maxItemQuantity = 99

type itemQuantity struct {
	ItemID   int64
	Quantity int
}

// parseItems reads ID=QTY pairs; a bare ID means one unit. Repeated ids are
// summed, capped at maxItemQuantity, and the result is ordered by id.
func parseItems(args []string) ([]itemQuantity, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", cameriere.ErrValidation)
	}

	totals := map[int64]int{}
	for _, arg := range args {
		idPart, qtyPart, hasQty := strings.Cut(strings.TrimSpace(arg), "=")
		id, err := parseID(idPart)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", arg, err)
		}

		qty := 1
		if hasQty {
			qty, err = strconv.Atoi(qtyPart)
			if err != nil || qty < 1 {
				return nil, fmt.Errorf("%w: item %q: quantity must be a positive number", cameriere.ErrValidation, arg)
			}
		}
		if qty > maxItemQuantity {
			return nil, fmt.Errorf("%w: item %q: at most %d units per item", cameriere.ErrValidation, arg, maxItemQuantity)
		}
		totals[id] += qty
		if totals[id] > maxItemQuantity {
			return nil, fmt.Errorf("%w: item %d: at most %d units per item, got %d", cameriere.ErrValidation, id, maxItemQuantity, totals[id])
		}
	}

	items := make([]itemQuantity, 0, len(totals))
	for id, qty := range totals {
		items = append(items, itemQuantity{ItemID: id, Quantity: qty})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q is not a valid id", cameriere.ErrValidation, s)
	}
	return id, nil
}

func parseStatus(s string) (cameriere.OrderStatus, error) {
	status := cameriere.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown status %q, want pending, preparing, completed or cancelled", cameriere.ErrValidation, s)
	}
	return status, nil
}

// parseStatusFilter is parseStatus that also accepts "all".
func parseStatusFilter(s string) (cameriere.OrderStatus, error) {
	if s == "" || strings.EqualFold(s, "all") {
		return "all", nil
	}
	return parseStatus(s)
}
