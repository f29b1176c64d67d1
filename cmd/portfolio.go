package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/wallet-accounts-cli/internal/application"
	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newPortfolioCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Connect the stock portfolio",
	}

	cmd.AddCommand(newPortfolioConnectCmd(app), newPortfolioSetKeyCmd(app))

	return cmd
}

func newPortfolioConnectCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Check the stock quote API with a sample quote",
		RunE: func(cmd *cobra.Command, _ []string) error {
			quotes, err := app.quoteSource(cmd.Context())
			if err != nil {
				app.notifier.NotifyError("Failed to connect to stock portfolio")
				return err
			}

			svc := application.NewPortfolioService(quotes, app.notifier, app.cfg.GetString(keyPortfolioSymbol))

			var quote domain.Quote
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Connecting stock portfolio...", func(ctx context.Context) error {
				var probeErr error
				quote, probeErr = svc.Connect(ctx)
				return probeErr
			})
			if err != nil {
				return err
			}

			if quote.Price == "" {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s connected, no quote data\n", quote.Symbol)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", quote.Symbol, quote.Price, quote.LatestTradingDay)
			return err
		},
	}
}

func newPortfolioSetKeyCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <api-key>",
		Short: "Store the Alpha Vantage API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey := strings.TrimSpace(args[0])
			if apiKey == "" {
				return errors.New("api key is empty")
			}

			if err := app.credentials.Put(cmd.Context(), domain.AlphaVantageAPIKey, apiKey); err != nil {
				return fmt.Errorf("store api key: %w", err)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Saved Alpha Vantage API key")
			return err
		},
	}
}
