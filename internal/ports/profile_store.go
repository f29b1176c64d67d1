package ports

import (
	"context"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
)

type ProfileStore interface {
	Read(ctx context.Context, userID domain.UserID) (domain.SessionRecord, error)
	Write(ctx context.Context, userID domain.UserID, patch domain.SessionPatch) error
}

// SessionSource yields the current user, or domain.ErrNoActiveSession.
type SessionSource interface {
	CurrentUser(ctx context.Context) (domain.UserID, error)
}
