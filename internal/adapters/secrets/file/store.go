package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/bnema/wallet-accounts-cli/internal/ports"
	"github.com/pelletier/go-toml/v2"
)

const (
	FileName = "credentials.toml"

	storeDirMode = 0o700
	fileMode     = 0o600
)

// credentials maps scheme -> name -> value.
type credentials map[string]map[string]string

// Store keeps credentials in a single 0600 TOML file, one table per scheme.
type Store struct {
	path string
	mu   sync.RWMutex
}

var _ ports.CredentialStore = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{path: filepath.Join(filepath.Clean(root), FileName)}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	parsed, err := domain.ParseCredentialKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil {
		return err
	}
	if creds[parsed.Scheme] == nil {
		creds[parsed.Scheme] = map[string]string{}
	}
	creds[parsed.Scheme][parsed.Name] = value

	return s.save(creds)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	parsed, err := domain.ParseCredentialKey(key)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	creds, err := s.load()
	if err != nil {
		return "", err
	}

	value, ok := creds[parsed.Scheme][parsed.Name]
	if !ok {
		return "", fmt.Errorf("file credential %q: %w", key, domain.ErrSecretNotFound)
	}

	return value, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	parsed, err := domain.ParseCredentialKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := creds[parsed.Scheme][parsed.Name]; !ok {
		return nil
	}

	delete(creds[parsed.Scheme], parsed.Name)
	if len(creds[parsed.Scheme]) == 0 {
		delete(creds, parsed.Scheme)
	}

	return s.save(creds)
}

func (s *Store) load() (credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return credentials{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	creds := credentials{}
	if err := toml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("decode credentials file: %w", err)
	}

	return creds, nil
}

func (s *Store) save(creds credentials) error {
	data, err := toml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, storeDirMode); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp credentials file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp credentials file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp credentials file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp credentials file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace credentials file: %w", err)
	}

	return nil
}
