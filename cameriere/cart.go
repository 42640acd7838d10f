package cameriere

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

type CartEntry struct {
	Quantity int
	Item     MenuItem
}

func (e CartEntry) Total() decimal.Decimal {
	return e.Item.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Cart holds the items a guest picked before placing the order. Entries
// always have a positive quantity.
type Cart struct {
	mu      sync.Mutex
	entries map[int64]CartEntry
}

func NewCart() *Cart {
	return &Cart{entries: make(map[int64]CartEntry)}
}

// Add puts one more unit of item in the cart and refreshes its snapshot.
func (c *Cart) Add(item MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.entries[item.ID]
	entry.Quantity++
	entry.Item = item
	c.entries[item.ID] = entry
}

// Remove takes one unit out. The entry goes away at zero; absent items are
// ignored.
func (c *Cart) Remove(item MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[item.ID]
	if !ok {
		return
	}
	if entry.Quantity <= 1 {
		delete(c.entries, item.ID)
		return
	}
	entry.Quantity--
	c.entries[item.ID] = entry
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int64]CartEntry)
}

func (c *Cart) Quantity(itemID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[itemID].Quantity
}

// Len is the number of distinct items.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Count is the number of units across all items.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		n += e.Quantity
	}
	return n
}

// Entries returns a copy of the cart ordered by item id.
func (c *Cart) Entries() []CartEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]CartEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Item.ID < entries[j].Item.ID })
	return entries
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.Entries() {
		total = total.Add(e.Total())
	}
	return total
}

// OrderRequest turns the cart into the body for PlaceOrder.
func (c *Cart) OrderRequest(tableNumber int) PlaceOrderRequest {
	entries := c.Entries()
	req := PlaceOrderRequest{
		TableNumber: tableNumber,
		Items:       make([]OrderItemRequest, 0, len(entries)),
	}
	for _, e := range entries {
		req.Items = append(req.Items, OrderItemRequest{MenuItem: e.Item.ID, Quantity: e.Quantity})
	}
	return req
}
