package status

import (
	"errors"
	"io"
	"time"

	"github.com/bnema/wallet-accounts-cli/internal/application"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type section int

const (
	sectionHeader section = iota
	sectionWallet
	sectionRecord
	sectionGate
	sectionCount
)

// sectionMsg asks the model to render the next section of the status view.
type sectionMsg section

// statusModel renders the session view one section at a time. The accounts
// gate is decided once, from the wallet and portfolio flags, when the model is
// built.
type statusModel struct {
	status application.Status
	opts   RenderOptions
	styles styles
	ready  bool

	parts []string
	done  bool
}

func newStatusModel(status application.Status, opts RenderOptions) statusModel {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	return statusModel{
		status: status,
		opts:   opts,
		styles: newStyles(),
		ready:  status.AccountsConnected(),
	}
}

func (m statusModel) Init() tea.Cmd {
	return nextSection(sectionHeader)
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, ok := msg.(sectionMsg)
	if !ok {
		return m, nil
	}

	m.parts = append(m.parts, m.renderSection(section(next)))
	if section(next)+1 >= sectionCount {
		m.done = true
		return m, tea.Quit
	}

	return m, nextSection(section(next) + 1)
}

func (m statusModel) View() string {
	if !m.done {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.parts...)
}

func (m statusModel) renderSection(sec section) string {
	s := m.styles

	switch sec {
	case sectionHeader:
		return renderHeader(m.status, s)
	case sectionWallet:
		return s.section.Render(renderWallet(m.status, s))
	case sectionRecord:
		return s.section.Render(renderRecord(m.status.Record, m.opts, s))
	default:
		return s.section.Render(renderGate(m.status.Portfolio, m.ready, s))
	}
}

func nextSection(sec section) tea.Cmd {
	return func() tea.Msg {
		return sectionMsg(sec)
	}
}

func Render(status application.Status, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newStatusModel(status, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(statusModel)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
