package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	statusadapter "github.com/bnema/wallet-accounts-cli/internal/adapters/render/status"
	"github.com/bnema/wallet-accounts-cli/internal/application"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool
	var probePortfolio bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the wallet session and saved profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := app.reconciler.Status(cmd.Context())
			if err != nil {
				return sessionError(err)
			}

			if probePortfolio {
				status.Portfolio = portfolioReachable(cmd.Context(), app)
			}

			return writeStatusOutput(cmd, app, status, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&probePortfolio, "portfolio", false, "Probe the stock portfolio connection")

	return cmd
}

type statusJSON struct {
	application.Status
	WalletConnected   bool `json:"WalletConnected"`
	AccountsConnected bool `json:"AccountsConnected"`
}

func writeStatusOutput(cmd *cobra.Command, app *app, status application.Status, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(statusJSON{
			Status:            status,
			WalletConnected:   status.WalletConnected(),
			AccountsConnected: status.AccountsConnected(),
		})
	}

	rendered, err := app.statusRenderer(status, statusadapter.RenderOptions{Now: app.now()})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

// portfolioReachable probes the quote API without toasts.
func portfolioReachable(ctx context.Context, app *app) bool {
	quotes, err := app.quoteSource(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("portfolio probe skipped")
		return false
	}

	svc := application.NewPortfolioService(quotes, nil, app.cfg.GetString(keyPortfolioSymbol))
	if _, err := svc.Connect(ctx); err != nil {
		return false
	}
	return svc.Connected()
}
