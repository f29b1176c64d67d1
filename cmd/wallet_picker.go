package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	localwallet "github.com/bnema/wallet-accounts-cli/internal/adapters/wallet/local"
	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type pickerKeys struct {
	up     key.Binding
	down   key.Binding
	choose key.Binding
	quit   key.Binding
}

var defaultPickerKeys = pickerKeys{
	up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "connect")),
	quit:   key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "cancel")),
}

type walletPickerModel struct {
	wallets  []domain.Wallet
	cursor   int
	chosen   int
	aborted  bool
	keys     pickerKeys
	title    lipgloss.Style
	selected lipgloss.Style
	help     lipgloss.Style
}

func newWalletPickerModel(wallets []domain.Wallet) walletPickerModel {
	return walletPickerModel{
		wallets:  wallets,
		chosen:   -1,
		keys:     defaultPickerKeys,
		title:    lipgloss.NewStyle().Bold(true),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		help:     lipgloss.NewStyle().Faint(true),
	}
}

func (m walletPickerModel) Init() tea.Cmd {
	return nil
}

func (m walletPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.down):
		if m.cursor < len(m.wallets)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.choose):
		m.chosen = m.cursor
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.quit):
		m.aborted = true
		return m, tea.Quit
	}

	return m, nil
}

func (m walletPickerModel) View() string {
	if m.chosen >= 0 || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.title.Render("Choose a wallet to connect"))
	b.WriteString("\n\n")
	for i, wallet := range m.wallets {
		line := "  " + domain.FormatAddress(wallet.Address)
		if i == m.cursor {
			line = m.selected.Render("> " + domain.FormatAddress(wallet.Address))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	helpParts := make([]string, 0, 4)
	for _, binding := range []key.Binding{m.keys.up, m.keys.down, m.keys.choose, m.keys.quit} {
		h := binding.Help()
		helpParts = append(helpParts, h.Key+" "+h.Desc)
	}
	b.WriteString("\n")
	b.WriteString(m.help.Render(strings.Join(helpParts, " • ")))

	return b.String()
}

// walletPicker answers the provider's interactive connect. A preset address
// skips the UI.
type walletPicker struct {
	in     io.Reader
	out    io.Writer
	preset string
}

func (p *walletPicker) Select(ctx context.Context, wallets []domain.Wallet) (domain.Wallet, error) {
	if preset := strings.TrimSpace(p.preset); preset != "" {
		for _, wallet := range wallets {
			if strings.EqualFold(wallet.Address, preset) {
				return wallet, nil
			}
		}
		return domain.Wallet{}, fmt.Errorf("wallet %q is not a known wallet", preset)
	}

	program := tea.NewProgram(
		newWalletPickerModel(wallets),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
		tea.WithContext(ctx),
	)

	finalModel, err := program.Run()
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("run wallet picker: %w", err)
	}

	result, ok := finalModel.(walletPickerModel)
	if !ok {
		return domain.Wallet{}, fmt.Errorf("unexpected final picker model type %T", finalModel)
	}
	if result.aborted || result.chosen < 0 {
		return domain.Wallet{}, localwallet.ErrSelectionAbort
	}

	return result.wallets[result.chosen], nil
}
