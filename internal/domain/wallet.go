package domain

import "strings"

type Wallet struct {
	Address string
}

type Network string

const (
	NetworkBase        Network = "base"
	NetworkBaseSepolia Network = "base-sepolia"
)

// ResolutionNetworks lists the networks queried for names, in priority order.
var ResolutionNetworks = []Network{NetworkBase, NetworkBaseSepolia}

func (n Network) Label() string {
	switch n {
	case NetworkBase:
		return "Base"
	case NetworkBaseSepolia:
		return "Base Sepolia"
	default:
		return string(n)
	}
}

// FormatAddress shortens an address to its first 6 and last 4 characters.
func FormatAddress(address string) string {
	trimmed := strings.TrimSpace(address)
	if len(trimmed) <= 10 {
		return trimmed
	}

	return trimmed[:6] + "..." + trimmed[len(trimmed)-4:]
}

type DisplayIdentity struct {
	Name      string
	AvatarURL string
	// Network is empty when Name is the formatted address fallback.
	Network Network
}
