package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "comanda",
		Short:         "Order from the menu and run the restaurant admin from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       app.settings.App.Version,
	}

	root.PersistentFlags().StringVar(&app.settings.API.BaseURL, "api", app.settings.API.BaseURL, "restaurant API base URL")

	root.AddCommand(
		newMenuCmd(app),
		newOrderCmd(app),
		newStatusCmd(app),
		newAdminCmd(app),
	)
	return root
}
