package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/bnema/wallet-accounts-cli/internal/ports"
	"github.com/rs/zerolog"
)

const (
	DefaultProbeSymbol = "AAPL"

	msgPortfolioConnected = "Stock portfolio connected successfully"
	msgPortfolioFailed    = "Failed to connect to stock portfolio"
)

type PortfolioService struct {
	quotes   ports.QuoteSource
	notifier ports.Notifier
	symbol   string

	mu        sync.Mutex
	connected bool
}

func NewPortfolioService(quotes ports.QuoteSource, notifier ports.Notifier, symbol string) *PortfolioService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if strings.TrimSpace(symbol) == "" {
		symbol = DefaultProbeSymbol
	}

	return &PortfolioService{quotes: quotes, notifier: notifier, symbol: symbol}
}

// Connect probes the quote API. Any Global Quote reply counts as connected,
// including an empty one outside trading data coverage.
func (s *PortfolioService) Connect(ctx context.Context) (domain.Quote, error) {
	quote, err := s.quotes.GlobalQuote(ctx, s.symbol)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("symbol", s.symbol).Msg("connect stock portfolio")
		s.notifier.NotifyError(msgPortfolioFailed)
		return domain.Quote{}, fmt.Errorf("probe quote %s: %w", s.symbol, err)
	}

	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()

	s.notifier.NotifySuccess(msgPortfolioConnected)
	return quote, nil
}

func (s *PortfolioService) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.connected
}
