package ports

import (
	"context"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
)

// WalletProvider is the identity/wallet provider. The wallet list populates
// asynchronously after Login or ConnectInteractive return.
type WalletProvider interface {
	Login(ctx context.Context) error
	ConnectInteractive(ctx context.Context) error
	Logout(ctx context.Context) error
	CurrentWallets(ctx context.Context) ([]domain.Wallet, error)
	Authenticated(ctx context.Context) (bool, error)
}

// WalletSubscriber is implemented by providers that can push wallet list changes.
// The returned cancel func must be called to release the subscription.
type WalletSubscriber interface {
	SubscribeWallets(ctx context.Context) (<-chan []domain.Wallet, func(), error)
}
