package domain

import "time"

// ProviderSession is the local wallet provider's durable login state.
type ProviderSession struct {
	Authenticated   bool
	AuthenticatedAt time.Time
	Connected       []Wallet
	Known           []Wallet
	LastUsed        string
}

// KnowsAddress reports whether address is one of the known wallets.
func (s ProviderSession) KnowsAddress(address string) bool {
	for _, wallet := range s.Known {
		if wallet.Address == address {
			return true
		}
	}
	return false
}

// AddKnown appends the wallet unless an address match already exists.
func (s *ProviderSession) AddKnown(wallet Wallet) bool {
	if wallet.Address == "" || s.KnowsAddress(wallet.Address) {
		return false
	}
	s.Known = append(s.Known, wallet)
	return true
}
