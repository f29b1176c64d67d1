package local

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func TestLoginReconnectsLastUsedWallet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session domain.ProviderSession
		want    []domain.Wallet
	}{
		{
			name: "last used",
			session: domain.ProviderSession{
				Known:    []domain.Wallet{{Address: "0xa"}, {Address: "0xb"}},
				LastUsed: "0xb",
			},
			want: []domain.Wallet{{Address: "0xb"}},
		},
		{
			name: "first known when last used is gone",
			session: domain.ProviderSession{
				Known:    []domain.Wallet{{Address: "0xa"}},
				LastUsed: "0xdead",
			},
			want: []domain.Wallet{{Address: "0xa"}},
		},
		{
			name:    "no known wallets",
			session: domain.ProviderSession{},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &memoryRepo{session: tt.session}
			provider := NewProvider(repo, nil, fixedClock{now: testNow})
			ctx := context.Background()

			require.NoError(t, provider.Login(ctx))

			authenticated, err := provider.Authenticated(ctx)
			require.NoError(t, err)
			assert.True(t, authenticated)

			wallets, err := provider.CurrentWallets(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, wallets)
			assert.Equal(t, testNow, repo.session.AuthenticatedAt)
		})
	}
}

func TestConnectInteractiveUsesSelector(t *testing.T) {
	t.Parallel()

	repo := &memoryRepo{session: domain.ProviderSession{
		Known: []domain.Wallet{{Address: "0xa"}, {Address: "0xb"}},
	}}
	var offered []domain.Wallet
	selector := func(_ context.Context, wallets []domain.Wallet) (domain.Wallet, error) {
		offered = wallets
		return wallets[1], nil
	}
	provider := NewProvider(repo, selector, fixedClock{now: testNow})

	require.NoError(t, provider.ConnectInteractive(context.Background()))

	assert.Len(t, offered, 2)
	assert.Equal(t, []domain.Wallet{{Address: "0xb"}}, repo.session.Connected)
	assert.Equal(t, "0xb", repo.session.LastUsed)
	assert.True(t, repo.session.Authenticated)
}

func TestConnectInteractiveErrors(t *testing.T) {
	t.Parallel()

	abort := func(context.Context, []domain.Wallet) (domain.Wallet, error) {
		return domain.Wallet{}, ErrSelectionAbort
	}
	stranger := func(context.Context, []domain.Wallet) (domain.Wallet, error) {
		return domain.Wallet{Address: "0xzz"}, nil
	}

	tests := []struct {
		name     string
		known    []domain.Wallet
		selector Selector
		wantErr  error
	}{
		{name: "no known wallets", selector: abort, wantErr: ErrNoKnownWallets},
		{name: "aborted", known: []domain.Wallet{{Address: "0xa"}}, selector: abort, wantErr: ErrSelectionAbort},
		{name: "no selector", known: []domain.Wallet{{Address: "0xa"}}, wantErr: ErrSelectionAbort},
		{name: "unknown address", known: []domain.Wallet{{Address: "0xa"}}, selector: stranger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &memoryRepo{session: domain.ProviderSession{Known: tt.known}}
			provider := NewProvider(repo, tt.selector, fixedClock{now: testNow})

			err := provider.ConnectInteractive(context.Background())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.False(t, repo.session.Authenticated)
		})
	}
}

func TestLogoutClearsConnectedWallets(t *testing.T) {
	t.Parallel()

	repo := &memoryRepo{session: domain.ProviderSession{
		Authenticated: true,
		Connected:     []domain.Wallet{{Address: "0xa"}},
		Known:         []domain.Wallet{{Address: "0xa"}},
		LastUsed:      "0xa",
	}}
	provider := NewProvider(repo, nil, fixedClock{now: testNow})
	ctx := context.Background()

	require.NoError(t, provider.Logout(ctx))

	wallets, err := provider.CurrentWallets(ctx)
	require.NoError(t, err)
	assert.Empty(t, wallets)
	assert.Equal(t, "0xa", repo.session.LastUsed)
	assert.Len(t, repo.session.Known, 1)
}

func TestAddWallet(t *testing.T) {
	t.Parallel()

	repo := &memoryRepo{}
	provider := NewProvider(repo, nil, fixedClock{now: testNow})
	ctx := context.Background()

	added, err := provider.AddWallet(ctx, " 0xa ")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = provider.AddWallet(ctx, "0xa")
	require.NoError(t, err)
	assert.False(t, added)

	_, err = provider.AddWallet(ctx, "  ")
	require.Error(t, err)

	known, err := provider.KnownWallets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Wallet{{Address: "0xa"}}, known)
}

func TestSubscribeWalletsReceivesChanges(t *testing.T) {
	t.Parallel()

	repo := &memoryRepo{session: domain.ProviderSession{Known: []domain.Wallet{{Address: "0xa"}}}}
	provider := NewProvider(repo, nil, fixedClock{now: testNow})
	ctx := context.Background()

	first, cancelFirst, err := provider.SubscribeWallets(ctx)
	require.NoError(t, err)
	second, cancelSecond, err := provider.SubscribeWallets(ctx)
	require.NoError(t, err)
	defer cancelSecond()

	require.NoError(t, provider.Login(ctx))

	assert.Equal(t, []domain.Wallet{{Address: "0xa"}}, <-first)
	assert.Equal(t, []domain.Wallet{{Address: "0xa"}}, <-second)

	cancelFirst()
	cancelFirst()
	_, open := <-first
	assert.False(t, open)

	require.NoError(t, provider.Logout(ctx))
	assert.Empty(t, <-second)
}

func TestLoginPropagatesRepositoryErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	repo := &memoryRepo{saveErr: boom}
	provider := NewProvider(repo, nil, fixedClock{now: testNow})

	err := provider.Login(context.Background())
	require.ErrorIs(t, err, boom)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type memoryRepo struct {
	mu      sync.Mutex
	session domain.ProviderSession
	saveErr error
}

func (r *memoryRepo) Get(context.Context) (domain.ProviderSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := r.session
	session.Connected = append([]domain.Wallet(nil), r.session.Connected...)
	session.Known = append([]domain.Wallet(nil), r.session.Known...)
	return session, nil
}

func (r *memoryRepo) Save(_ context.Context, session domain.ProviderSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	r.session = session
	return nil
}
