package cameriere

// FilterOrders keeps the orders in status. "all" or "" keeps everything.
func FilterOrders(orders []Order, status OrderStatus) []Order {
	if status == "" || status == "all" {
		return orders
	}
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// SplitOrders separates orders the kitchen still has to work on from the
// finished ones.
func SplitOrders(orders []Order) (upcoming, past []Order) {
	for _, o := range orders {
		switch o.Status {
		case StatusPending, StatusPreparing:
			upcoming = append(upcoming, o)
		case StatusCompleted, StatusCancelled:
			past = append(past, o)
		}
	}
	return upcoming, past
}

// Bills returns the orders that can be billed.
func Bills(orders []Order) []Order {
	return FilterOrders(orders, StatusCompleted)
}

func FindOrder(orders []Order, orderID int64) (Order, bool) {
	for _, o := range orders {
		if o.ID == orderID {
			return o, true
		}
	}
	return Order{}, false
}
