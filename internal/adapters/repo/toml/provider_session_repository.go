package toml

import (
	"context"
	"sync"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/bnema/wallet-accounts-cli/internal/ports"
	"github.com/spf13/viper"
)

const (
	ProviderPathKey  = "provider.path"
	providerFileName = "provider_session.toml"
)

type ProviderSessionRepository struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.ProviderSessionRepository = (*ProviderSessionRepository)(nil)

func NewProviderSessionRepository(cfg *viper.Viper) (*ProviderSessionRepository, error) {
	path, err := resolvePath(cfg, ProviderPathKey, providerFileName)
	if err != nil {
		return nil, err
	}

	return &ProviderSessionRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *ProviderSessionRepository) Get(ctx context.Context) (domain.ProviderSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProviderSession{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var file providerFileSchema
	if err := readTOMLFile(r.path, &file); err != nil {
		return domain.ProviderSession{}, err
	}
	if err := validateVersion("provider session", file.Version); err != nil {
		return domain.ProviderSession{}, err
	}

	return domain.ProviderSession{
		Authenticated:   file.Authenticated,
		AuthenticatedAt: parseTime(file.AuthenticatedAt),
		Connected:       fromWalletSchemas(file.Connected),
		Known:           fromWalletSchemas(file.Known),
		LastUsed:        file.LastUsed,
	}, nil
}

func (r *ProviderSessionRepository) Save(ctx context.Context, session domain.ProviderSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file := providerFileSchema{
		Authenticated:   session.Authenticated,
		AuthenticatedAt: formatTime(session.AuthenticatedAt),
		LastUsed:        session.LastUsed,
		Connected:       toWalletSchemas(session.Connected),
		Known:           toWalletSchemas(session.Known),
	}
	file.applyDefaults()

	return writeTOMLFile(r.path, file)
}

func toWalletSchemas(wallets []domain.Wallet) []walletSchema {
	encoded := make([]walletSchema, 0, len(wallets))
	for _, wallet := range wallets {
		encoded = append(encoded, walletSchema{Address: wallet.Address})
	}
	return encoded
}

func fromWalletSchemas(entries []walletSchema) []domain.Wallet {
	if len(entries) == 0 {
		return nil
	}

	wallets := make([]domain.Wallet, 0, len(entries))
	for _, entry := range entries {
		wallets = append(wallets, domain.Wallet{Address: entry.Address})
	}
	return wallets
}
