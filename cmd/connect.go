package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newConnectCmd(app *app) *cobra.Command {
	var wallet string

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect a wallet",
		Long:  "Connect a wallet. After a recent disconnect the last wallet is reconnected silently; after more than a day the wallet picker is shown.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := prepareFlow(cmd.Context(), app, wallet); err != nil {
				return err
			}

			state, err := runFlow(cmd, wallet != "", "Waiting for wallet...", app.reconciler.Connect)
			if err != nil {
				// A failed profile save leaves the wallet connected.
				if state.Connected {
					if writeErr := writeConnected(cmd.OutOrStdout(), state); writeErr != nil {
						return writeErr
					}
				}
				return sessionError(err)
			}

			return writeConnected(cmd.OutOrStdout(), state)
		},
	}

	cmd.Flags().StringVar(&wallet, "wallet", "", "Known wallet address to pick without the interactive picker")

	return cmd
}

func newResumeCmd(app *app) *cobra.Command {
	var wallet string

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Reconnect the wallet saved in the profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := prepareFlow(cmd.Context(), app, wallet); err != nil {
				return err
			}

			state, err := runFlow(cmd, wallet != "", "Resuming wallet session...", app.reconciler.Resume)
			if errors.Is(err, domain.ErrNothingToResume) {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "Nothing to resume.")
				return err
			}
			if err != nil {
				return sessionError(err)
			}
			if !state.Connected {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "Already signed in with the wallet provider.")
				return err
			}

			return writeConnected(cmd.OutOrStdout(), state)
		},
	}

	cmd.Flags().StringVar(&wallet, "wallet", "", "Known wallet address to pick without the interactive picker")

	return cmd
}

func newDisconnectCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect the wallet and record the disconnect time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.reconciler.Load(cmd.Context()); err != nil {
				return sessionError(err)
			}

			return sessionError(app.reconciler.Disconnect(cmd.Context()))
		},
	}
}

func newSyncCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Save the connected wallet to the profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := app.reconciler.Refresh(cmd.Context())
			if errors.Is(err, domain.ErrNoWalletConnected) {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No wallet connected, nothing to sync.")
				return err
			}
			if err != nil {
				return sessionError(err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", describeWallet(state))
			return err
		},
	}
}

// prepareFlow registers configured wallets, presets the picker and loads the
// disconnect time the reconnect decision depends on. Without a signed-in user
// there is no record to load and the flow starts from a fresh connect.
func prepareFlow(ctx context.Context, app *app, wallet string) error {
	if err := app.seedKnownWallets(ctx); err != nil {
		return err
	}
	app.picker.preset = wallet

	if _, err := app.reconciler.Load(ctx); err != nil && !errors.Is(err, domain.ErrNoActiveSession) {
		return err
	}

	return nil
}

// runFlow runs a connect-style flow. The spinner only runs when no picker can
// appear, since both would own the terminal.
func runFlow(
	cmd *cobra.Command,
	withSpinner bool,
	label string,
	flow func(context.Context) (domain.ConnectionState, error),
) (domain.ConnectionState, error) {
	if !withSpinner {
		return flow(cmd.Context())
	}

	var state domain.ConnectionState
	err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), label, func(ctx context.Context) error {
		var flowErr error
		state, flowErr = flow(ctx)
		return flowErr
	})

	return state, err
}

func writeConnected(out io.Writer, state domain.ConnectionState) error {
	_, err := fmt.Fprintf(out, "Connected %s\n", describeWallet(state))
	return err
}

func describeWallet(state domain.ConnectionState) string {
	short := domain.FormatAddress(state.Address)
	if state.DisplayName == "" || state.DisplayName == short {
		return short
	}
	return fmt.Sprintf("%s (%s)", state.DisplayName, short)
}

func sessionError(err error) error {
	if errors.Is(err, domain.ErrNoActiveSession) {
		return fmt.Errorf("%w: run `wa session login` first", err)
	}
	return err
}
