package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/bnema/wallet-accounts-cli/internal/ports"
	"github.com/rs/zerolog"
)

// WaitBudget bounds the wait for the provider's wallet list: Attempts checks,
// Interval apart.
type WaitBudget struct {
	Interval time.Duration
	Attempts int
}

var DefaultWaitBudget = WaitBudget{Interval: 500 * time.Millisecond, Attempts: 10}

func (b WaitBudget) Total() time.Duration {
	return b.Interval * time.Duration(b.Attempts)
}

// AwaitWalletEnumeration returns the first wallet once the provider lists one.
// Providers implementing ports.WalletSubscriber are waited on through their
// subscription for the same total budget; others are polled.
func (r *Reconciler) AwaitWalletEnumeration(ctx context.Context, budget WaitBudget) (domain.Wallet, error) {
	if budget.Attempts <= 0 || budget.Interval <= 0 {
		budget = DefaultWaitBudget
	}

	if subscriber, ok := r.provider.(ports.WalletSubscriber); ok {
		wallet, err := r.awaitSubscription(ctx, subscriber, budget)
		if !errors.Is(err, errSubscriptionUnavailable) {
			return wallet, err
		}
		zerolog.Ctx(ctx).Debug().Msg("wallet subscription unavailable, polling")
	}

	return r.pollWallets(ctx, budget)
}

var errSubscriptionUnavailable = errors.New("wallet subscription unavailable")

func (r *Reconciler) pollWallets(ctx context.Context, budget WaitBudget) (domain.Wallet, error) {
	log := zerolog.Ctx(ctx)

	for attempt := 1; attempt <= budget.Attempts; attempt++ {
		wallets, err := r.provider.CurrentWallets(ctx)
		if err != nil {
			return domain.Wallet{}, fmt.Errorf("enumerate wallets: %w", err)
		}
		if len(wallets) > 0 {
			log.Debug().Int("attempt", attempt).Msg("wallet enumerated")
			return wallets[0], nil
		}
		if attempt == budget.Attempts {
			break
		}

		timer := time.NewTimer(budget.Interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return domain.Wallet{}, ctx.Err()
		}
	}

	log.Warn().Int("attempts", budget.Attempts).Dur("interval", budget.Interval).Msg("wallet enumeration budget exhausted")
	return domain.Wallet{}, domain.ErrNoWalletConnected
}

func (r *Reconciler) awaitSubscription(ctx context.Context, subscriber ports.WalletSubscriber, budget WaitBudget) (domain.Wallet, error) {
	waitCtx, cancel := context.WithTimeout(ctx, budget.Total())
	defer cancel()

	updates, unsubscribe, err := subscriber.SubscribeWallets(waitCtx)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("subscribe to wallet changes")
		return domain.Wallet{}, errSubscriptionUnavailable
	}
	defer unsubscribe()

	// The list may have populated before the subscription was registered.
	wallets, err := r.provider.CurrentWallets(ctx)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("enumerate wallets: %w", err)
	}
	if len(wallets) > 0 {
		return wallets[0], nil
	}

	for {
		select {
		case wallets, ok := <-updates:
			if !ok {
				return domain.Wallet{}, domain.ErrNoWalletConnected
			}
			if len(wallets) > 0 {
				return wallets[0], nil
			}
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return domain.Wallet{}, err
			}
			zerolog.Ctx(ctx).Warn().Dur("budget", budget.Total()).Msg("wallet subscription budget exhausted")
			return domain.Wallet{}, domain.ErrNoWalletConnected
		}
	}
}
