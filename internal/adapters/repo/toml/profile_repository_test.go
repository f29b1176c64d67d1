package toml

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTestProfileRepository(t *testing.T) (*ProfileRepository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "profiles.toml")
	cfg := viper.New()
	cfg.Set(ProfilesPathKey, path)

	repo, err := NewProfileRepository(cfg, fixedClock{now: testNow})
	require.NoError(t, err)

	return repo, path
}

func TestProfileRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo, path := newTestProfileRepository(t)
	ctx := context.Background()
	disconnectedAt := testNow.Add(-2 * time.Hour)

	state := domain.ConnectionState{
		Connected:          true,
		Address:            "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		DisplayName:        "alice.base.eth",
		AvatarURL:          "https://img/alice.png",
		LastDisconnectTime: &disconnectedAt,
	}
	require.NoError(t, repo.Write(ctx, "user-1", state.Snapshot()))

	got, err := repo.Read(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionRecord{
		WalletAddress:      state.Address,
		DisplayName:        "alice.base.eth",
		AvatarURL:          "https://img/alice.png",
		LastDisconnectTime: &disconnectedAt,
		UpdatedAt:          testNow,
	}, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(dataFileMode), info.Mode().Perm())
}

func TestProfileRepositoryReadMissingUser(t *testing.T) {
	t.Parallel()

	repo, _ := newTestProfileRepository(t)

	_, err := repo.Read(context.Background(), "nobody")
	require.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestProfileRepositoryDisconnectMarkerIsPartialWrite(t *testing.T) {
	t.Parallel()

	repo, _ := newTestProfileRepository(t)
	ctx := context.Background()

	connected := domain.ConnectionState{Connected: true, Address: "0xabc", DisplayName: "0xabc"}
	require.NoError(t, repo.Write(ctx, "user-1", connected.Snapshot()))
	require.NoError(t, repo.Write(ctx, "user-1", domain.DisconnectPatch(testNow)))

	got, err := repo.Read(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", got.WalletAddress)
	require.NotNil(t, got.LastDisconnectTime)
	assert.Equal(t, testNow, *got.LastDisconnectTime)

	require.NoError(t, repo.Write(ctx, "user-1", domain.ConnectionState{}.Snapshot()))
	got, err = repo.Read(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, got.WalletAddress)
	require.NotNil(t, got.LastDisconnectTime)
	assert.Equal(t, testNow, *got.LastDisconnectTime)
}

func TestProfileRepositoryKeepsUsersSeparate(t *testing.T) {
	t.Parallel()

	repo, _ := newTestProfileRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Write(ctx, "user-1", domain.ConnectionState{Address: "0x1"}.Snapshot()))
	require.NoError(t, repo.Write(ctx, "user-2", domain.ConnectionState{Address: "0x2"}.Snapshot()))
	require.NoError(t, repo.Write(ctx, "user-1", domain.ConnectionState{Address: "0x3"}.Snapshot()))

	first, err := repo.Read(ctx, "user-1")
	require.NoError(t, err)
	second, err := repo.Read(ctx, "user-2")
	require.NoError(t, err)

	assert.Equal(t, "0x3", first.WalletAddress)
	assert.Equal(t, "0x2", second.WalletAddress)
}

func TestProfileRepositoryRejectsNewerSchema(t *testing.T) {
	t.Parallel()

	repo, path := newTestProfileRepository(t)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"version = 2",
		"",
		"[[profiles]]",
		"id = \"user-1\"",
	}, "\n")), 0o600))

	_, err := repo.Read(context.Background(), "user-1")
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported profiles schema version 2")
}

func TestProfileRepositoryHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	repo, path := newTestProfileRepository(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Write(ctx, "user-1", domain.DisconnectPatch(testNow))
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProfileRepositoryConcurrentWriters(t *testing.T) {
	t.Parallel()

	repo, _ := newTestProfileRepository(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := domain.UserID("user-" + string(rune('a'+i)))
			assert.NoError(t, repo.Write(ctx, user, domain.ConnectionState{Address: "0xabc"}.Snapshot()))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		got, err := repo.Read(ctx, domain.UserID("user-"+string(rune('a'+i))))
		require.NoError(t, err)
		assert.Equal(t, "0xabc", got.WalletAddress)
	}
}
