package cameriere

import (
	"fmt"
	"strings"
	"time"
)

const receiptDateLayout = "02/01/2006, 15:04:05"

// RenderReceipt writes the bill in the markup understood by receipt
// printers: {reset,center}, {b,size:2x} and friends. Dates are shown in loc,
// or UTC when loc is nil.
func RenderReceipt(order Order, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	b.WriteString("{reset,center}\n")
	b.WriteString("{b,size:2x} RESTAURANT BILL\n")
	b.WriteString("{reset,center}\n")
	fmt.Fprintf(&b, "Order #%d\n", order.ID)
	fmt.Fprintf(&b, "Table %d\n", order.TableNumber)
	b.WriteString(order.CreatedAt.In(loc).Format(receiptDateLayout) + "\n")
	b.WriteString("---\n")
	for _, line := range order.Items {
		name := line.MenuItem.Name
		if name == "" {
			name = fmt.Sprintf("Item %d", line.MenuItem.ID)
		}
		fmt.Fprintf(&b, "%s x%d | %s\n", name, line.Quantity, line.Total().StringFixed(2))
	}
	b.WriteString("---\n")
	fmt.Fprintf(&b, "{b,size:1.5x} TOTAL | ₹%s\n", order.Total().StringFixed(2))
	b.WriteString("---\n")
	b.WriteString("{center}\n")
	b.WriteString("Thank you for dining with us!\n")
	b.WriteString("Please visit again.\n")
	return b.String()
}
