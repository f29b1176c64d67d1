package toml

import (
	"context"
	"strings"
	"sync"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/bnema/wallet-accounts-cli/internal/ports"
	"github.com/spf13/viper"
)

const (
	SessionPathKey  = "session.path"
	SessionUserKey  = "session.user_id"
	sessionFileName = "session.toml"
)

// SessionRepository tracks which user the CLI acts for. A session.user_id
// config value overrides the stored user.
type SessionRepository struct {
	path     string
	override string
	mu       *sync.RWMutex
}

var _ ports.SessionStore = (*SessionRepository)(nil)

func NewSessionRepository(cfg *viper.Viper) (*SessionRepository, error) {
	path, err := resolvePath(cfg, SessionPathKey, sessionFileName)
	if err != nil {
		return nil, err
	}

	override := ""
	if cfg != nil {
		override = strings.TrimSpace(cfg.GetString(SessionUserKey))
	}

	return &SessionRepository{path: path, override: override, mu: lockForPath(path)}, nil
}

func (r *SessionRepository) CurrentUser(ctx context.Context) (domain.UserID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.override != "" {
		return domain.UserID(r.override), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var file sessionFileSchema
	if err := readTOMLFile(r.path, &file); err != nil {
		return "", err
	}

	userID := strings.TrimSpace(file.UserID)
	if userID == "" {
		return "", domain.ErrNoActiveSession
	}

	return domain.UserID(userID), nil
}

// SetCurrentUser stores userID; an empty id ends the session.
func (r *SessionRepository) SetCurrentUser(ctx context.Context, userID domain.UserID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return writeTOMLFile(r.path, sessionFileSchema{
		Version: currentSchemaVersion,
		UserID:  strings.TrimSpace(string(userID)),
	})
}
