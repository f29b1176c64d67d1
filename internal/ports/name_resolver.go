package ports

import (
	"context"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
)

// NameResolver returns an empty string when no name or avatar is registered.
type NameResolver interface {
	ResolveName(ctx context.Context, address string, network domain.Network) (string, error)
	ResolveAvatar(ctx context.Context, name string, network domain.Network) (string, error)
}
