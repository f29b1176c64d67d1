package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/stretchr/testify/assert"
)

const testAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"

func TestResolveDisplayIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		resolver       *fakeResolver
		want           domain.DisplayIdentity
		wantNameCalls  []domain.Network
		wantAvatarCall []nameKey
	}{
		{
			name: "primary network name and avatar",
			resolver: &fakeResolver{
				names:   map[domain.Network]string{domain.NetworkBase: "alice.base.eth"},
				avatars: map[nameKey]string{{value: "alice.base.eth", network: domain.NetworkBase}: "https://img/alice.png"},
			},
			want:           domain.DisplayIdentity{Name: "alice.base.eth", AvatarURL: "https://img/alice.png", Network: domain.NetworkBase},
			wantNameCalls:  []domain.Network{domain.NetworkBase},
			wantAvatarCall: []nameKey{{value: "alice.base.eth", network: domain.NetworkBase}},
		},
		{
			name: "secondary network when primary has no name",
			resolver: &fakeResolver{
				names:   map[domain.Network]string{domain.NetworkBaseSepolia: "bob.basetest.eth"},
				avatars: map[nameKey]string{{value: "bob.basetest.eth", network: domain.NetworkBaseSepolia}: "https://img/bob.png"},
			},
			want:           domain.DisplayIdentity{Name: "bob.basetest.eth", AvatarURL: "https://img/bob.png", Network: domain.NetworkBaseSepolia},
			wantNameCalls:  []domain.Network{domain.NetworkBase, domain.NetworkBaseSepolia},
			wantAvatarCall: []nameKey{{value: "bob.basetest.eth", network: domain.NetworkBaseSepolia}},
		},
		{
			name:          "no name anywhere falls back to formatted address",
			resolver:      &fakeResolver{},
			want:          domain.DisplayIdentity{Name: "0x71C7...976F"},
			wantNameCalls: []domain.Network{domain.NetworkBase, domain.NetworkBaseSepolia},
		},
		{
			name: "primary failure falls back without querying secondary",
			resolver: &fakeResolver{
				nameErrs: map[domain.Network]error{domain.NetworkBase: errors.New("rpc down")},
				names:    map[domain.Network]string{domain.NetworkBaseSepolia: "bob.basetest.eth"},
			},
			want:          domain.DisplayIdentity{Name: "0x71C7...976F"},
			wantNameCalls: []domain.Network{domain.NetworkBase},
		},
		{
			name: "avatar failure keeps the name",
			resolver: &fakeResolver{
				names:     map[domain.Network]string{domain.NetworkBase: "alice.base.eth"},
				avatarErr: errors.New("avatar gateway timeout"),
			},
			want:           domain.DisplayIdentity{Name: "alice.base.eth", Network: domain.NetworkBase},
			wantNameCalls:  []domain.Network{domain.NetworkBase},
			wantAvatarCall: []nameKey{{value: "alice.base.eth", network: domain.NetworkBase}},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := NewReconciler(ReconcilerDeps{Provider: &fakeProvider{}, Resolver: tc.resolver}, ReconcilerOptions{})

			got := rec.ResolveDisplayIdentity(context.Background(), testAddress)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantNameCalls, tc.resolver.nameCalls)
			assert.Equal(t, tc.wantAvatarCall, tc.resolver.avatarCall)
		})
	}
}

func TestResolveDisplayIdentityWithoutResolver(t *testing.T) {
	t.Parallel()

	rec := NewReconciler(ReconcilerDeps{Provider: &fakeProvider{}}, ReconcilerOptions{})

	got := rec.ResolveDisplayIdentity(context.Background(), testAddress)
	assert.Equal(t, "0x71C7...976F", got.Name)
	assert.Empty(t, got.AvatarURL)
}
