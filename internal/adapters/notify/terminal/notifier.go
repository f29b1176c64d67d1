package terminal

import (
	"fmt"
	"io"
	"sync"

	"github.com/bnema/wallet-accounts-cli/internal/ports"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// Notifier prints toast-style messages to a terminal writer and mirrors them
// to the log.
type Notifier struct {
	out    io.Writer
	logger zerolog.Logger

	mu      sync.Mutex
	success lipgloss.Style
	failure lipgloss.Style
}

var _ ports.Notifier = (*Notifier)(nil)

func New(out io.Writer, logger zerolog.Logger) *Notifier {
	return &Notifier{
		out:     out,
		logger:  logger,
		success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		failure: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
}

func (n *Notifier) NotifySuccess(message string) {
	n.logger.Info().Str("toast", "success").Msg(message)
	n.print(n.success.Render("✓"), message)
}

func (n *Notifier) NotifyError(message string) {
	n.logger.Warn().Str("toast", "error").Msg(message)
	n.print(n.failure.Render("✗"), message)
}

func (n *Notifier) print(icon, message string) {
	if n.out == nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	_, _ = fmt.Fprintf(n.out, "%s %s\n", icon, message)
}
