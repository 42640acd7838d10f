package cameriere

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrders() []Order {
	return []Order{
		{ID: 1, Status: StatusPending},
		{ID: 2, Status: StatusCompleted},
		{ID: 3, Status: StatusPreparing},
		{ID: 4, Status: StatusCancelled},
		{ID: 5, Status: StatusCompleted},
	}
}

func ids(orders []Order) []int64 {
	out := make([]int64, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestFilterOrders(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   []int64
	}{
		{status: "all", want: []int64{1, 2, 3, 4, 5}},
		{status: "", want: []int64{1, 2, 3, 4, 5}},
		{status: StatusCompleted, want: []int64{2, 5}},
		{status: StatusPreparing, want: []int64{3}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterOrders(sampleOrders(), tt.status)))
		})
	}
}

func TestSplitOrdersAndBills(t *testing.T) {
	// Act
	upcoming, past := SplitOrders(sampleOrders())
	bills := Bills(sampleOrders())

	// Assert
	assert.Equal(t, []int64{1, 3}, ids(upcoming))
	assert.Equal(t, []int64{2, 4, 5}, ids(past))
	assert.Equal(t, []int64{2, 5}, ids(bills))
}

func TestOrderTotalFallsBackToMenuPrice(t *testing.T) {
	// Arrange
	order := Order{Items: []OrderLine{
		{MenuItem: espresso, Quantity: 2, ItemPrice: decimal.NewNullDecimal(decimal.RequireFromString("180.00"))},
		{MenuItem: cappuccino, Quantity: 1},
	}}

	// Act
	total := order.Total()

	// Assert
	assert.Equal(t, "610.00", total.StringFixed(2))
}

func TestRenderReceipt(t *testing.T) {
	// Arrange
	order := Order{
		ID:          42,
		TableNumber: 4,
		Status:      StatusCompleted,
		CreatedAt:   time.Date(2026, 10, 18, 19, 30, 0, 0, time.UTC),
		Items: []OrderLine{
			{MenuItem: espresso, Quantity: 2},
			{MenuItem: cappuccino, Quantity: 1},
			{MenuItem: MenuItem{ID: 9, Price: decimal.RequireFromString("10")}, Quantity: 3},
		},
	}

	// Act
	receipt := RenderReceipt(order, nil)

	// Assert
	lines := strings.Split(receipt, "\n")
	require.GreaterOrEqual(t, len(lines), 12)
	assert.Equal(t, "{reset,center}", lines[0])
	assert.Equal(t, "{b,size:2x} RESTAURANT BILL", lines[1])
	assert.Equal(t, "Order #42", lines[3])
	assert.Equal(t, "Table 4", lines[4])
	assert.Equal(t, "18/10/2026, 19:30:00", lines[5])
	assert.Equal(t, "Espresso x2 | 400.00", lines[7])
	assert.Equal(t, "Cappuccino x1 | 250.00", lines[8])
	assert.Equal(t, "Item 9 x3 | 30.00", lines[9])
	assert.Equal(t, "{b,size:1.5x} TOTAL | ₹680.00", lines[11])
	assert.True(t, strings.HasSuffix(receipt, "Please visit again.\n"))
}

func TestFilterMenu(t *testing.T) {
	tests := []struct {
		name   string
		filter MenuFilter
		want   []int64
	}{
		{name: "everything", want: []int64{1, 2, 3}},
		{name: "veg", filter: MenuFilter{Veg: true}, want: []int64{1, 2}},
		{name: "jain", filter: MenuFilter{Jain: true}, want: []int64{1}},
		{name: "chef's special", filter: MenuFilter{ChefsSpecial: true}, want: []int64{2}},
		{name: "query matches description", filter: MenuFilter{Query: "SPICY"}, want: []int64{3}},
		{name: "no match", filter: MenuFilter{Veg: true, Query: "curry"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			filtered := FilterMenu(testMenu(), tt.filter)

			// Assert
			var got []int64
			for _, cat := range filtered {
				assert.NotEmpty(t, cat.Items)
				for _, item := range cat.Items {
					got = append(got, item.ID)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindItem(t *testing.T) {
	item, ok := FindItem(testMenu(), 2)
	assert.True(t, ok)
	assert.Equal(t, "Cappuccino", item.Name)

	_, ok = FindItem(testMenu(), 99)
	assert.False(t, ok)
}
