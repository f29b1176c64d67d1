package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newWalletCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage the wallets the local provider can connect",
	}

	cmd.AddCommand(newWalletAddCmd(app), newWalletListCmd(app))

	return cmd
}

func newWalletAddCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <address>",
		Short: "Register a wallet address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			added, err := app.provider.AddWallet(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !added {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is already registered\n", args[0])
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", args[0])
			return err
		},
	}
}

func newWalletListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered wallets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.seedKnownWallets(cmd.Context()); err != nil {
				return err
			}

			known, err := app.provider.KnownWallets(cmd.Context())
			if err != nil {
				return err
			}
			connected, err := app.provider.CurrentWallets(cmd.Context())
			if err != nil {
				return err
			}

			connectedSet := make(map[string]bool, len(connected))
			for _, wallet := range connected {
				connectedSet[wallet.Address] = true
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, wallet := range known {
				state := ""
				if connectedSet[wallet.Address] {
					state = "connected"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\n", wallet.Address, state)
			}

			return w.Flush()
		},
	}
}
