package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/taldoflemis/trattoria/cameriere"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func dietTags(item cameriere.MenuItem) string {
	var tags []string
	if item.IsVeg {
		tags = append(tags, "veg")
	}
	if item.IsNonVeg {
		tags = append(tags, "non-veg")
	}
	if item.IsJain {
		tags = append(tags, "jain")
	}
	if item.IsChefsSpecial {
		tags = append(tags, "chef's special")
	}
	return strings.Join(tags, ",")
}

func printMenu(w io.Writer, menu []cameriere.Category) error {
	if len(menu) == 0 {
		_, err := fmt.Fprintln(w, "No items match.")
		return err
	}

	tw := newTable(w)
	for _, cat := range menu {
		fmt.Fprintf(tw, "== %s ==\n", cat.Name)
		fmt.Fprintln(tw, "ID\tNAME\tPRICE\tTAGS\tMINUTES")
		for _, item := range cat.Items {
			fmt.Fprintf(tw, "%d\t%s\t₹%s\t%s\t%d\n",
				item.ID, item.Name, item.Price.StringFixed(2), dietTags(item), item.CookingTimeMinutes)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func printCart(w io.Writer, cart *cameriere.Cart) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ITEM\tQTY\tPRICE\tTOTAL")
	for _, e := range cart.Entries() {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Item.Name, e.Quantity, e.Item.Price.StringFixed(2), e.Total().StringFixed(2))
	}
	fmt.Fprintf(tw, "\t%d\t\t₹%s\n", cart.Count(), cart.Total().StringFixed(2))
	return tw.Flush()
}

func printOrder(w io.Writer, order cameriere.Order) error {
	fmt.Fprintf(w, "Order #%d  table %d  %s\n", order.ID, order.TableNumber, order.Status)
	if order.EstimatedWaitTime > 0 && !order.Status.IsTerminal() {
		fmt.Fprintf(w, "Estimated wait: %d min\n", order.EstimatedWaitTime)
	}
	if len(order.Items) == 0 {
		return nil
	}

	tw := newTable(w)
	for _, line := range order.Items {
		fmt.Fprintf(tw, "  %s\tx%d\t%s\n", line.MenuItem.Name, line.Quantity, line.Total().StringFixed(2))
	}
	fmt.Fprintf(tw, "  TOTAL\t\t₹%s\n", order.Total().StringFixed(2))
	return tw.Flush()
}

func printOrders(w io.Writer, title string, orders []cameriere.Order) error {
	fmt.Fprintf(w, "%s (%d)\n", title, len(orders))
	if len(orders) == 0 {
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTABLE\tSTATUS\tITEMS\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%s\n",
			o.ID, o.TableNumber, o.Status, len(o.Items), o.Total().StringFixed(2),
			o.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func printTables(w io.Writer, baseURL string, tables []cameriere.Table) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNUMBER\tQR CODE")
	for _, t := range tables {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", t.ID, t.Number, t.QRCodeURL(baseURL))
	}
	return tw.Flush()
}

func printSettings(w io.Writer, s cameriere.Settings) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "primary\t%s\n", s.PrimaryColor)
	fmt.Fprintf(tw, "secondary\t%s\n", s.SecondaryColor)
	fmt.Fprintf(tw, "background\t%s\n", s.BackgroundColor)
	fmt.Fprintf(tw, "font\t%s\n", s.FontChoice)
	return tw.Flush()
}
