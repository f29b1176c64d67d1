package application

import (
	"context"
	"fmt"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/rs/zerolog"
)

// ResolveDisplayIdentity never fails: any resolver error degrades to the
// formatted address with no avatar.
func (r *Reconciler) ResolveDisplayIdentity(ctx context.Context, address string) domain.DisplayIdentity {
	fallback := domain.DisplayIdentity{Name: domain.FormatAddress(address)}
	if r.resolver == nil {
		return fallback
	}

	log := zerolog.Ctx(ctx)

	for _, network := range domain.ResolutionNetworks {
		name, err := r.resolver.ResolveName(ctx, address, network)
		if err != nil {
			log.Warn().
				Err(fmt.Errorf("%w: %w", domain.ErrIdentityResolutionFailed, err)).
				Str("network", string(network)).
				Msg("resolve name")
			return fallback
		}
		if name == "" {
			continue
		}

		identity := domain.DisplayIdentity{Name: name, Network: network}

		avatar, err := r.resolver.ResolveAvatar(ctx, name, network)
		if err != nil {
			log.Warn().Err(err).Str("name", name).Str("network", string(network)).Msg("resolve avatar")
			return identity
		}
		identity.AvatarURL = avatar

		return identity
	}

	return fallback
}
