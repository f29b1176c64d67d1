package application

import (
	"context"
	"fmt"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
)

// Status is a read-only view of the current user's wallet session.
type Status struct {
	User          domain.UserID
	Record        domain.SessionRecord
	Authenticated bool
	Wallets       []domain.Wallet
	Portfolio     bool
	NextStrategy  domain.ReconnectStrategy
}

func (s Status) WalletConnected() bool {
	return s.Authenticated && len(s.Wallets) > 0
}

func (s Status) AccountsConnected() bool {
	return domain.AccountsConnected(s.WalletConnected(), s.Portfolio)
}

// Status reports the stored record and what a connect would do right now. It
// never calls the provider's login paths.
func (r *Reconciler) Status(ctx context.Context) (Status, error) {
	record, err := r.Load(ctx)
	if err != nil {
		return Status{}, err
	}

	userID, err := r.currentUser(ctx)
	if err != nil {
		return Status{}, err
	}

	authenticated, err := r.provider.Authenticated(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("check provider authentication: %w", err)
	}

	var wallets []domain.Wallet
	if authenticated {
		wallets, err = r.provider.CurrentWallets(ctx)
		if err != nil {
			return Status{}, fmt.Errorf("enumerate wallets: %w", err)
		}
	}

	return Status{
		User:          userID,
		Record:        record,
		Authenticated: authenticated,
		Wallets:       wallets,
		NextStrategy:  domain.DecideStrategy(authenticated, r.State().LastDisconnectTime, r.clock.Now()),
	}, nil
}
