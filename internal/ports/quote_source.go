package ports

import (
	"context"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
)

type QuoteSource interface {
	GlobalQuote(ctx context.Context, symbol string) (domain.Quote, error)
}
