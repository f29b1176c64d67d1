package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/wallet-accounts-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/wallet-accounts-cli/internal/adapters/secrets/pass"
	"github.com/bnema/wallet-accounts-cli/internal/ports"
)

var errNoBackends = errors.New("credential chain has no backends")

type Backend struct {
	Name  string
	Store ports.CredentialStore
}

// Store tries backends in order. Reads and writes stop at the first backend
// that succeeds; deletes reach every backend.
type Store struct {
	backends []Backend
}

var _ ports.CredentialStore = (*Store)(nil)

func NewStore(backends ...Backend) (*Store, error) {
	if len(backends) == 0 {
		return nil, errNoBackends
	}
	for i, backend := range backends {
		if backend.Store == nil {
			return nil, fmt.Errorf("credential backend %d (%s) is nil", i, backend.Name)
		}
	}

	return &Store{backends: backends}, nil
}

func NewPassFirstWithFileFallback(passPrefix string, fileRoot string) (*Store, error) {
	return NewStore(
		Backend{Name: "pass", Store: passstore.NewStore(passPrefix)},
		Backend{Name: "file", Store: filestore.NewStore(fileRoot)},
	)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var errs []error
	for _, backend := range s.backends {
		err := backend.Store.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if shouldStop(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("%s backend put failed: %w", backend.Name, err))
	}

	return errors.Join(errs...)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for _, backend := range s.backends {
		value, err := backend.Store.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if shouldStop(err) {
			return "", err
		}
		errs = append(errs, fmt.Errorf("%s backend get failed: %w", backend.Name, err))
	}

	return "", errors.Join(errs...)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, backend := range s.backends {
		err := backend.Store.Delete(ctx, key)
		if err == nil || errors.Is(err, passstore.ErrUnavailable) {
			continue
		}
		if shouldStop(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("%s backend delete failed: %w", backend.Name, err))
	}

	return errors.Join(errs...)
}

func shouldStop(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
