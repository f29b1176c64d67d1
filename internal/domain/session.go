package domain

import "time"

type UserID string

type SessionRecord struct {
	WalletAddress      string
	DisplayName        string
	AvatarURL          string
	LastDisconnectTime *time.Time
	UpdatedAt          time.Time
}

// SessionPatch is a partial record write. Nil fields are left untouched, a pointer
// to an empty string clears the field.
type SessionPatch struct {
	WalletAddress      *string
	DisplayName        *string
	AvatarURL          *string
	LastDisconnectTime *time.Time
}

// Apply merges the patch into the record. LastDisconnectTime is only ever moved
// forward: zero or older timestamps are ignored.
func (r SessionRecord) Apply(patch SessionPatch, now time.Time) SessionRecord {
	if patch.WalletAddress != nil {
		r.WalletAddress = *patch.WalletAddress
	}
	if patch.DisplayName != nil {
		r.DisplayName = *patch.DisplayName
	}
	if patch.AvatarURL != nil {
		r.AvatarURL = *patch.AvatarURL
	}
	if t := patch.LastDisconnectTime; t != nil && !t.IsZero() {
		if r.LastDisconnectTime == nil || t.After(*r.LastDisconnectTime) {
			stamp := *t
			r.LastDisconnectTime = &stamp
		}
	}
	r.UpdatedAt = now

	return r
}

func DisconnectPatch(at time.Time) SessionPatch {
	return SessionPatch{LastDisconnectTime: &at}
}

type ConnectionState struct {
	Connected          bool
	Address            string
	DisplayName        string
	AvatarURL          string
	LastDisconnectTime *time.Time
}

// Snapshot is the full-state write issued by a profile sync.
func (s ConnectionState) Snapshot() SessionPatch {
	address := s.Address
	name := s.DisplayName
	avatar := s.AvatarURL

	patch := SessionPatch{
		WalletAddress: &address,
		DisplayName:   &name,
		AvatarURL:     &avatar,
	}
	if s.LastDisconnectTime != nil {
		stamp := *s.LastDisconnectTime
		patch.LastDisconnectTime = &stamp
	}

	return patch
}

// Syncable reports whether there is anything worth persisting.
func (s ConnectionState) Syncable() bool {
	return s.Address != "" || s.LastDisconnectTime != nil
}

func (s *ConnectionState) Clear() {
	s.Connected = false
	s.Address = ""
	s.DisplayName = ""
	s.AvatarURL = ""
}

func (s *ConnectionState) Adopt(wallet Wallet) {
	s.Connected = true
	s.Address = wallet.Address
}

// AccountsConnected gates moving on from the connection screen.
func AccountsConnected(walletConnected, portfolioConnected bool) bool {
	return walletConnected || portfolioConnected
}
