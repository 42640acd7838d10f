package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taldoflemis/trattoria/cameriere"
)

func newMenuCmd(app *App) *cobra.Command {
	var (
		restaurant int64
		filter     cameriere.MenuFilter
	)

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Show the restaurant menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			menu, err := client.FetchMenu(cmd.Context(), restaurant)
			if err != nil {
				return err
			}
			return printMenu(cmd.OutOrStdout(), cameriere.FilterMenu(menu, filter))
		},
	}

	cmd.Flags().Int64Var(&restaurant, "restaurant", app.settings.Restaurant, "restaurant id")
	cmd.Flags().BoolVar(&filter.Veg, "veg", false, "only vegetarian items")
	cmd.Flags().BoolVar(&filter.Jain, "jain", false, "only jain items")
	cmd.Flags().BoolVar(&filter.ChefsSpecial, "special", false, "only chef's specials")
	cmd.Flags().StringVar(&filter.Query, "query", "", "search names and descriptions")
	return cmd
}

func newOrderCmd(app *App) *cobra.Command {
	var (
		restaurant int64
		table      int
		items      []string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place an order for a table",
		Example: "  comanda order --table 4 --item 1=2 --item 2\n" +
			"  comanda order --table 4 --item 1=2,3=1 --watch",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			wanted, err := parseItems(items)
			if err != nil {
				return err
			}

			client, err := app.Client(ctx)
			if err != nil {
				return err
			}
			menu, err := client.FetchMenu(ctx, restaurant)
			if err != nil {
				return err
			}

			cart := cameriere.NewCart()
			for _, w := range wanted {
				item, ok := cameriere.FindItem(menu, w.ItemID)
				if !ok {
					return fmt.Errorf("%w: item %d is not on the menu", cameriere.ErrValidation, w.ItemID)
				}
				for range w.Quantity {
					cart.Add(item)
				}
			}
			if err := printCart(out, cart); err != nil {
				return err
			}

			order, err := client.PlaceOrder(ctx, restaurant, cart.OrderRequest(table))
			if err != nil {
				return err
			}
			cart.Clear()
			fmt.Fprintf(out, "\nOrder #%d placed, status %s\n", order.ID, order.Status)

			if !watch {
				return nil
			}
			return watchOrder(cmd, app, client, restaurant, order.ID)
		},
	}

	cmd.Flags().Int64Var(&restaurant, "restaurant", app.settings.Restaurant, "restaurant id")
	cmd.Flags().IntVar(&table, "table", 0, "table number")
	cmd.Flags().StringSliceVar(&items, "item", nil, "menu item as ID=QTY, repeatable")
	cmd.Flags().BoolVar(&watch, "watch", false, "follow the order until it is completed or cancelled")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	var (
		restaurant int64
		orderID    int64
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the status of an order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			if watch {
				return watchOrder(cmd, app, client, restaurant, orderID)
			}

			order, err := client.FetchOrder(cmd.Context(), restaurant, orderID)
			if err != nil {
				return err
			}
			return printOrder(cmd.OutOrStdout(), *order)
		},
	}

	cmd.Flags().Int64Var(&restaurant, "restaurant", app.settings.Restaurant, "restaurant id")
	cmd.Flags().Int64Var(&orderID, "order", 0, "order id")
	cmd.Flags().BoolVar(&watch, "watch", false, "follow the order until it is completed or cancelled")
	_ = cmd.MarkFlagRequired("order")
	return cmd
}

// watchOrder prints every status change until the order is finished.
func watchOrder(cmd *cobra.Command, app *App, client *cameriere.Client, restaurant, orderID int64) error {
	out := cmd.OutOrStdout()
	var last cameriere.OrderStatus

	order, err := client.WatchOrder(cmd.Context(), restaurant, orderID, cameriere.WatchOptions{
		Interval: app.settings.Poll.OrderInterval(),
		Jitter:   app.settings.Poll.JitterFactor,
		OnUpdate: func(o cameriere.Order) {
			if o.Status == last {
				return
			}
			last = o.Status
			fmt.Fprintf(out, "Order #%d is %s\n", o.ID, o.Status)
		},
	})
	if err != nil {
		return err
	}
	return printOrder(out, *order)
}
