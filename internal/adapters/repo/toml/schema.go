package toml

import "fmt"

const currentSchemaVersion = 1

type profilesFileSchema struct {
	Version  int             `toml:"version"`
	Profiles []profileSchema `toml:"profiles"`
}

func (s *profilesFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s profilesFileSchema) validateVersion() error {
	return validateVersion("profiles", s.Version)
}

type profileSchema struct {
	ID                 string `toml:"id"`
	WalletAddress      string `toml:"wallet_address"`
	DisplayName        string `toml:"display_name"`
	AvatarURL          string `toml:"avatar_url"`
	LastDisconnectTime string `toml:"last_disconnect_time,omitempty"`
	UpdatedAt          string `toml:"updated_at,omitempty"`
}

type providerFileSchema struct {
	Version         int            `toml:"version"`
	Authenticated   bool           `toml:"authenticated"`
	AuthenticatedAt string         `toml:"authenticated_at,omitempty"`
	LastUsed        string         `toml:"last_used,omitempty"`
	Connected       []walletSchema `toml:"connected"`
	Known           []walletSchema `toml:"known"`
}

func (s *providerFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

type walletSchema struct {
	Address string `toml:"address"`
}

type sessionFileSchema struct {
	Version int    `toml:"version"`
	UserID  string `toml:"user_id"`
}

func validateVersion(kind string, version int) error {
	if version > currentSchemaVersion {
		return fmt.Errorf("unsupported %s schema version %d (current %d)", kind, version, currentSchemaVersion)
	}

	return nil
}
