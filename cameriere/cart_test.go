package cameriere

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var (
	espresso   = MenuItem{ID: 1, Name: "Espresso", Price: decimal.RequireFromString("200.00")}
	cappuccino = MenuItem{ID: 2, Name: "Cappuccino", Price: decimal.RequireFromString("250.00")}
)

func TestCartTotal(t *testing.T) {
	// Arrange
	cart := NewCart()

	// Act
	cart.Add(espresso)
	cart.Add(cappuccino)
	cart.Add(espresso)

	// Assert
	assert.Equal(t, "650.00", cart.Total().StringFixed(2))
	assert.Equal(t, 3, cart.Count())
	assert.Equal(t, 2, cart.Len())
}

func TestCartAddRemove(t *testing.T) {
	tests := []struct {
		name    string
		adds    int
		removes int
		want    int
	}{
		{name: "only adds", adds: 3, want: 3},
		{name: "balanced", adds: 2, removes: 2, want: 0},
		{name: "more removes than adds", adds: 1, removes: 4, want: 0},
		{name: "remove absent item", removes: 1, want: 0},
		{name: "mixed", adds: 5, removes: 2, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cart := NewCart()

			// Act
			for range tt.adds {
				cart.Add(espresso)
			}
			for range tt.removes {
				cart.Remove(espresso)
			}

			// Assert
			assert.Equal(t, tt.want, cart.Quantity(espresso.ID))
			for _, e := range cart.Entries() {
				assert.Positive(t, e.Quantity)
			}
			if tt.want == 0 {
				assert.Zero(t, cart.Len())
			}
		})
	}
}

func TestCartAddRefreshesSnapshot(t *testing.T) {
	// Arrange
	cart := NewCart()
	cart.Add(espresso)
	repriced := espresso
	repriced.Price = decimal.RequireFromString("210.00")

	// Act
	cart.Add(repriced)

	// Assert
	assert.Equal(t, "420.00", cart.Total().StringFixed(2))
}

func TestCartOrderRequest(t *testing.T) {
	// Arrange
	cart := NewCart()
	cart.Add(cappuccino)
	cart.Add(espresso)
	cart.Add(espresso)

	// Act
	req := cart.OrderRequest(5)

	// Assert
	assert.Equal(t, PlaceOrderRequest{
		TableNumber: 5,
		Items: []OrderItemRequest{
			{MenuItem: 1, Quantity: 2},
			{MenuItem: 2, Quantity: 1},
		},
	}, req)
}

func TestCartClear(t *testing.T) {
	cart := NewCart()
	cart.Add(espresso)
	cart.Clear()

	assert.Zero(t, cart.Len())
	assert.True(t, cart.Total().IsZero())
	assert.Empty(t, cart.OrderRequest(1).Items)
}
