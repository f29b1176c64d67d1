package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wa",
		Short:         "Wallet Accounts CLI (wa): connect, resume and persist a wallet session",
		Long:          "wa keeps a wallet connection and the user's saved profile in step: it reconnects silently after short breaks, asks again after a day away, and records every disconnect.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		app.out.set(cmd.OutOrStdout())
		app.picker.in = cmd.InOrStdin()
		app.picker.out = cmd.ErrOrStderr()
		cmd.SetContext(app.logger.WithContext(cmd.Context()))
	}
	rootCmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return app.close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newConnectCmd(app),
		newResumeCmd(app),
		newDisconnectCmd(app),
		newSyncCmd(app),
		newStatusCmd(app),
		newSessionCmd(app),
		newWalletCmd(app),
		newPortfolioCmd(app),
	)

	return rootCmd
}
