package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"strings"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/bnema/wallet-accounts-cli/internal/ports"
)

// DefaultPrefix is the pass folder holding this tool's entries.
const DefaultPrefix = "wallet-accounts"

var ErrUnavailable = errors.New("pass command unavailable")

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

// Store keeps credentials in the `pass` password manager. The key
// alphavantage://api_key lives at <prefix>/alphavantage/api_key.
type Store struct {
	prefix string
	run    runFunc
}

var _ ports.CredentialStore = (*Store)(nil)

func NewStore(prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{prefix: prefix, run: runPassCommand}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	entry, err := s.entry(ctx, key)
	if err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, value+"\n", "insert", "-m", "-f", entry)
	if err != nil {
		return formatError("put", entry, err, stderr)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	entry, err := s.entry(ctx, key)
	if err != nil {
		return "", err
	}

	stdout, stderr, err := s.run(ctx, "", "show", entry)
	if err != nil {
		if strings.Contains(stderr, "is not in the password store") {
			return "", fmt.Errorf("pass entry %q: %w", entry, domain.ErrSecretNotFound)
		}
		return "", formatError("get", entry, err, stderr)
	}

	// pass show prints the password on the first line; the rest is metadata.
	first, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSuffix(first, "\r"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	entry, err := s.entry(ctx, key)
	if err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, "", "rm", "-f", entry)
	if err != nil {
		if strings.Contains(stderr, "is not in the password store") {
			return nil
		}
		return formatError("delete", entry, err, stderr)
	}

	return nil
}

func (s *Store) entry(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	parsed, err := domain.ParseCredentialKey(key)
	if err != nil {
		return "", err
	}

	return path.Join(s.prefix, parsed.Path()), nil
}

func runPassCommand(ctx context.Context, input string, args ...string) (string, string, error) {
	bin, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(op string, entry string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass %s %q: %w", op, entry, err)
	}

	return fmt.Errorf("pass %s %q: %w: %s", op, entry, err, stderr)
}
