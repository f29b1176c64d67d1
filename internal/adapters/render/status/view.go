package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/wallet-accounts-cli/internal/application"
	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
}

func renderHeader(status application.Status, s styles) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.title.Render("Wallet Session"),
		s.header.Render(fmt.Sprintf("user: %s", status.User)),
	)
}

func renderWallet(status application.Status, s styles) string {
	if !status.WalletConnected() {
		parts := []string{s.empty.Render("No wallet connected.")}
		if status.NextStrategy != "" {
			style := s.strategy
			if status.NextStrategy.Interactive() {
				style = s.warning
			}
			parts = append(parts, field("next connect:", style.Render(strategyLabel(status.NextStrategy)), s))
		}
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	parts := make([]string, 0, len(status.Wallets))
	for _, wallet := range status.Wallets {
		parts = append(parts, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.ok.Render("●"),
			" ",
			s.name.Render(walletTitle(wallet, status.Record)),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderRecord(record domain.SessionRecord, opts RenderOptions, s styles) string {
	parts := []string{s.key.Render("saved profile")}

	if record.WalletAddress == "" && record.LastDisconnectTime == nil {
		return lipgloss.JoinVertical(lipgloss.Left, append(parts, s.empty.Render("nothing saved yet"))...)
	}

	if record.WalletAddress != "" {
		parts = append(parts, field("wallet:", s.detail.Render(domain.FormatAddress(record.WalletAddress)), s))
	}
	if record.DisplayName != "" {
		parts = append(parts, field("name:", s.detail.Render(record.DisplayName), s))
	}
	if record.AvatarURL != "" {
		parts = append(parts, field("avatar:", s.detail.Render(record.AvatarURL), s))
	}
	if record.LastDisconnectTime != nil {
		color := disconnectAgeColor(*record.LastDisconnectTime, opts.Now)
		age := lipgloss.NewStyle().Foreground(color).Render(formatDisconnect(*record.LastDisconnectTime, opts.Now))
		parts = append(parts, field("last disconnect:", age, s))
	}
	if !record.UpdatedAt.IsZero() {
		parts = append(parts, field("updated:", s.header.Render(record.UpdatedAt.Format(time.RFC3339)), s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderGate(portfolioConnected, ready bool, s styles) string {
	portfolio := s.gateShut.Render("not connected")
	if portfolioConnected {
		portfolio = s.gateOpen.Render("connected")
	}

	gate := s.gateShut.Render("connect a wallet or portfolio to continue")
	if ready {
		gate = s.gateOpen.Render("ready")
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		field("portfolio:", portfolio, s),
		lipgloss.JoinHorizontal(lipgloss.Top, s.bracket.Render("["), gate, s.bracket.Render("]")),
	)
}

func field(label, value string, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(label), " ", value)
}

func walletTitle(wallet domain.Wallet, record domain.SessionRecord) string {
	short := domain.FormatAddress(wallet.Address)
	name := strings.TrimSpace(record.DisplayName)
	if record.WalletAddress != wallet.Address || name == "" || name == short {
		return short
	}
	return fmt.Sprintf("%s (%s)", name, short)
}

func strategyLabel(strategy domain.ReconnectStrategy) string {
	switch strategy {
	case domain.StrategyAlreadyAuthenticated:
		return "already signed in"
	case domain.StrategyFreshConnect:
		return "sign in"
	case domain.StrategySilentResume:
		return "resume silently"
	case domain.StrategyPromptedResume:
		return "choose a wallet"
	default:
		return string(strategy)
	}
}

func formatDisconnect(at, now time.Time) string {
	if now.IsZero() || at.After(now) {
		return at.Format("15:04 on 02 Jan")
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return plural(int(elapsed.Minutes()), "minute") + " ago"
	case elapsed < 48*time.Hour:
		return plural(int(elapsed.Hours()), "hour") + " ago"
	default:
		return plural(int(math.Floor(elapsed.Hours()/24)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// disconnectAgeColor fades from bright to grey as the disconnect ages toward
// the point where a reconnect needs the wallet picker.
func disconnectAgeColor(at, now time.Time) lipgloss.Color {
	if now.IsZero() || at.After(now) {
		return lipgloss.Color("255")
	}

	remaining := domain.PromptAfter - now.Sub(at)
	return interpolateColor(remaining.Seconds(), 0, domain.PromptAfter.Seconds())
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// 240 (grey) to 255 (white) on the ANSI 256 greyscale ramp.
	const base, target = 240.0, 255.0
	return lipgloss.Color(fmt.Sprintf("%d", int(base+(target-base)*normalized)))
}
