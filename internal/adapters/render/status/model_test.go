package status

import (
	"strings"
	"testing"

	"github.com/bnema/wallet-accounts-cli/internal/application"
	"github.com/bnema/wallet-accounts-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusModelGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    application.Status
		wantReady bool
	}{
		{name: "nothing connected", status: application.Status{User: "user-1"}},
		{
			name: "wallet connected",
			status: application.Status{
				User:          "user-1",
				Authenticated: true,
				Wallets:       []domain.Wallet{{Address: testAddress}},
			},
			wantReady: true,
		},
		{name: "portfolio connected", status: application.Status{User: "user-1", Portfolio: true}, wantReady: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := newStatusModel(tc.status, RenderOptions{Now: testNow})
			assert.Equal(t, tc.wantReady, m.ready)

			final := drive(t, m)
			view := final.View()
			if tc.wantReady {
				assert.Contains(t, view, "ready")
				assert.NotContains(t, view, "to continue")
			} else {
				assert.Contains(t, view, "connect a wallet or portfolio to continue")
			}
		})
	}
}

func TestStatusModelRendersSectionsInOrder(t *testing.T) {
	t.Parallel()

	m := newStatusModel(application.Status{User: "user-1"}, RenderOptions{Now: testNow})
	assert.Empty(t, m.View())

	final := drive(t, m)
	require.Len(t, final.parts, int(sectionCount))

	view := final.View()
	title := strings.Index(view, "Wallet Session")
	wallet := strings.Index(view, "No wallet connected.")
	record := strings.Index(view, "saved profile")
	gate := strings.Index(view, "portfolio:")
	assert.True(t, title < wallet && wallet < record && record < gate, view)
}

func TestStatusModelIgnoresOtherMessages(t *testing.T) {
	t.Parallel()

	m := newStatusModel(application.Status{User: "user-1"}, RenderOptions{Now: testNow})
	next, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Nil(t, cmd)
	assert.Empty(t, next.(statusModel).parts)
}

// drive feeds the model its own section messages until it quits.
func drive(t *testing.T, m statusModel) statusModel {
	t.Helper()

	cmd := m.Init()
	for i := 0; cmd != nil && i <= int(sectionCount); i++ {
		msg := cmd()
		if _, quit := msg.(tea.QuitMsg); quit {
			break
		}

		next, nextCmd := m.Update(msg)
		m = next.(statusModel)
		cmd = nextCmd
	}

	require.True(t, m.done)
	return m
}
