package ports

import (
	"context"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
)

type ProviderSessionRepository interface {
	Get(ctx context.Context) (domain.ProviderSession, error)
	Save(ctx context.Context, session domain.ProviderSession) error
}

// SessionStore is a SessionSource that can also switch the current user.
type SessionStore interface {
	SessionSource
	SetCurrentUser(ctx context.Context, userID domain.UserID) error
}
