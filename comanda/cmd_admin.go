package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/taldoflemis/trattoria/cameriere"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage orders, menu, tables and settings",
	}
	cmd.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newSessionCmd(app),
		newAdminOrdersCmd(app),
		newSetStatusCmd(app),
		newClearOrdersCmd(app),
		newTablesCmd(app),
		newAdminMenuCmd(app),
		newSettingsCmd(app),
		newBillsCmd(app),
	)
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := client.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "admin username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password, read from stdin when empty")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newSessionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show whether a session is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			tokens, err := client.TokenStore().Tokens(cmd.Context())
			if err != nil {
				return err
			}
			if !tokens.LoggedIn() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}

			fmt.Fprintln(out, "Logged in")
			if exp, err := tokens.AccessExpiry(); err == nil {
				fmt.Fprintf(out, "Access token expires %s\n", exp.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

func newAdminOrdersCmd(app *App) *cobra.Command {
	var (
		status string
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List orders, split into upcoming and past",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			filter, err := parseStatusFilter(status)
			if err != nil {
				return err
			}
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}

			show := func(orders []cameriere.Order) {
				upcoming, past := cameriere.SplitOrders(cameriere.FilterOrders(orders, filter))
				_ = printOrders(out, "Upcoming", upcoming)
				fmt.Fprintln(out)
				_ = printOrders(out, "Past", past)
			}

			if !follow {
				orders, err := client.FetchAdminOrders(cmd.Context())
				if err != nil {
					return err
				}
				show(orders)
				return nil
			}

			return client.PollAdminOrders(cmd.Context(), cameriere.PollOptions{
				Interval: app.settings.Poll.AdminInterval(),
				Jitter:   app.settings.Poll.JitterFactor,
			}, func(orders []cameriere.Order) {
				fmt.Fprintf(out, "\n-- %s --\n", time.Now().Format(time.TimeOnly))
				show(orders)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "all", "pending, preparing, completed, cancelled or all")
	cmd.Flags().BoolVar(&follow, "follow", false, "keep refreshing the list")
	return cmd
}

func newSetStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status ORDER_ID STATUS",
		Short: "Move an order to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			status, err := parseStatus(args[1])
			if err != nil {
				return err
			}
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.UpdateOrderStatus(cmd.Context(), id, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order #%d is now %s\n", id, status)
			return nil
		},
	}
}

func newClearOrdersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-orders",
		Short: "Delete completed and cancelled orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			msg, err := client.ClearOrders(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newTablesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Manage tables and their QR codes",
	}

	list := &cobra.Command{
		Use:  "list",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			tables, err := client.FetchTables(cmd.Context())
			if err != nil {
				return err
			}
			return printTables(cmd.OutOrStdout(), client.BaseURL(), tables)
		},
	}

	add := &cobra.Command{
		Use:  "add NUMBER",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			table, err := client.AddTable(cmd.Context(), int(number))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Table %d added (id %d), QR code at %s\n",
				table.Number, table.ID, table.QRCodeURL(client.BaseURL()))
			return nil
		},
	}

	del := &cobra.Command{
		Use:  "delete TABLE_ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.DeleteTable(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Table %d deleted\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

func newAdminMenuCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Add and edit menu items",
	}
	cmd.AddCommand(
		newMenuAddCmd(app),
		newMenuUploadCmd(app),
		newMenuSetImageCmd(app),
		newMenuRemoveImageCmd(app),
	)
	return cmd
}

func newMenuAddCmd(app *App) *cobra.Command {
	var (
		item      cameriere.NewMenuItem
		price     string
		imagePath string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a menu item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			item.Price, err = decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("%w: price %q: %w", cameriere.ErrValidation, price, err)
			}

			if imagePath != "" {
				f, err := os.Open(imagePath)
				if err != nil {
					return err
				}
				defer f.Close()
				item.Image = &cameriere.FilePart{Filename: filepath.Base(imagePath), Content: f}
			}

			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			msg, err := client.AddMenuItem(cmd.Context(), item)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().Int64Var(&item.Category, "category", 0, "category id")
	cmd.Flags().StringVar(&item.Name, "name", "", "item name")
	cmd.Flags().StringVar(&item.Description, "description", "", "item description")
	cmd.Flags().StringVar(&price, "price", "", "price, e.g. 250.00")
	cmd.Flags().BoolVar(&item.IsVeg, "veg", false, "vegetarian")
	cmd.Flags().BoolVar(&item.IsNonVeg, "non-veg", false, "non-vegetarian")
	cmd.Flags().BoolVar(&item.IsJain, "jain", false, "jain")
	cmd.Flags().BoolVar(&item.IsChefsSpecial, "special", false, "chef's special")
	cmd.Flags().IntVar(&item.CookingTimeMinutes, "cooking-time", 15, "cooking time in minutes")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to an image file")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newMenuUploadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "upload-csv FILE",
		Short: "Bulk import menu items from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			msg, err := client.UploadMenuCSV(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newMenuSetImageCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-image ITEM_ID FILE",
		Short: "Replace the picture of a menu item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			return updateMenuItem(cmd, app, id, cameriere.MenuItemPatch{
				Image: &cameriere.FilePart{Filename: filepath.Base(args[1]), Content: f},
			})
		},
	}
}

func newMenuRemoveImageCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-image ITEM_ID",
		Short: "Remove the picture of a menu item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return updateMenuItem(cmd, app, id, cameriere.MenuItemPatch{RemoveImage: true})
		},
	}
}

func updateMenuItem(cmd *cobra.Command, app *App, id int64, patch cameriere.MenuItemPatch) error {
	client, err := app.Client(cmd.Context())
	if err != nil {
		return err
	}
	item, err := client.UpdateMenuItem(cmd.Context(), id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (id %d)\n", item.Name, item.ID)
	return nil
}

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the theme settings",
	}

	get := &cobra.Command{
		Use:  "get",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			settings, err := client.FetchSettings(cmd.Context())
			if err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), *settings)
		},
	}

	var update cameriere.SettingsUpdate
	set := &cobra.Command{
		Use:  "set",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if update == (cameriere.SettingsUpdate{}) {
				return fmt.Errorf("%w: nothing to update", cameriere.ErrValidation)
			}
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			settings, err := client.UpdateSettings(cmd.Context(), update)
			if err != nil {
				return err
			}
			return printSettings(cmd.OutOrStdout(), *settings)
		},
	}
	set.Flags().StringVar(&update.PrimaryColor, "primary", "", "primary colour, #RRGGBB")
	set.Flags().StringVar(&update.SecondaryColor, "secondary", "", "secondary colour, #RRGGBB")
	set.Flags().StringVar(&update.BackgroundColor, "background", "", "background colour, #RRGGBB")
	set.Flags().StringVar(&update.FontChoice, "font", "", "font family")

	cmd.AddCommand(get, set)
	return cmd
}

func newBillsCmd(app *App) *cobra.Command {
	var receiptID int64

	cmd := &cobra.Command{
		Use:   "bills",
		Short: "List completed orders or print a receipt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			client, err := app.Client(cmd.Context())
			if err != nil {
				return err
			}
			orders, err := client.FetchAdminOrders(cmd.Context())
			if err != nil {
				return err
			}
			bills := cameriere.Bills(orders)

			if receiptID == 0 {
				return printOrders(out, "Bills", bills)
			}
			order, ok := cameriere.FindOrder(bills, receiptID)
			if !ok {
				return fmt.Errorf("no completed order with id %d: %w", receiptID, cameriere.ErrNotFound)
			}
			_, err = fmt.Fprint(out, cameriere.RenderReceipt(order, time.Local))
			return err
		},
	}

	cmd.Flags().Int64Var(&receiptID, "receipt", 0, "print the receipt of this order")
	return cmd
}
