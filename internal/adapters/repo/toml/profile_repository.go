package toml

import (
	"context"
	"sync"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/bnema/wallet-accounts-cli/internal/ports"
	"github.com/spf13/viper"
)

const (
	ProfilesPathKey  = "profiles.path"
	profilesFileName = "profiles.toml"
)

// ProfileRepository keeps one session record per user in a TOML file.
type ProfileRepository struct {
	path  string
	clock ports.Clock
	mu    *sync.RWMutex
}

var _ ports.ProfileStore = (*ProfileRepository)(nil)

func NewProfileRepository(cfg *viper.Viper, clock ports.Clock) (*ProfileRepository, error) {
	path, err := resolvePath(cfg, ProfilesPathKey, profilesFileName)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &ProfileRepository{path: path, clock: clock, mu: lockForPath(path)}, nil
}

func (r *ProfileRepository) Read(ctx context.Context, userID domain.UserID) (domain.SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionRecord{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.SessionRecord{}, err
	}

	for _, entry := range file.Profiles {
		if entry.ID == string(userID) {
			return fromProfileSchema(entry), nil
		}
	}

	return domain.SessionRecord{}, domain.ErrProfileNotFound
}

// Write applies patch to the user's record, creating the record when missing.
func (r *ProfileRepository) Write(ctx context.Context, userID domain.UserID, patch domain.SessionPatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	index := -1
	for i := range file.Profiles {
		if file.Profiles[i].ID == string(userID) {
			index = i
			break
		}
	}

	var record domain.SessionRecord
	if index >= 0 {
		record = fromProfileSchema(file.Profiles[index])
	}
	encoded := toProfileSchema(userID, record.Apply(patch, r.clock.Now()))

	if index >= 0 {
		file.Profiles[index] = encoded
	} else {
		file.Profiles = append(file.Profiles, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	file.applyDefaults()
	return writeTOMLFile(r.path, file)
}

func (r *ProfileRepository) readSchema() (profilesFileSchema, error) {
	var file profilesFileSchema
	if err := readTOMLFile(r.path, &file); err != nil {
		return profilesFileSchema{}, err
	}
	if err := file.validateVersion(); err != nil {
		return profilesFileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func toProfileSchema(userID domain.UserID, record domain.SessionRecord) profileSchema {
	entry := profileSchema{
		ID:            string(userID),
		WalletAddress: record.WalletAddress,
		DisplayName:   record.DisplayName,
		AvatarURL:     record.AvatarURL,
		UpdatedAt:     formatTime(record.UpdatedAt),
	}
	if record.LastDisconnectTime != nil {
		entry.LastDisconnectTime = formatTime(*record.LastDisconnectTime)
	}

	return entry
}

func fromProfileSchema(entry profileSchema) domain.SessionRecord {
	record := domain.SessionRecord{
		WalletAddress: entry.WalletAddress,
		DisplayName:   entry.DisplayName,
		AvatarURL:     entry.AvatarURL,
		UpdatedAt:     parseTime(entry.UpdatedAt),
	}
	if last := parseTime(entry.LastDisconnectTime); !last.IsZero() {
		record.LastDisconnectTime = &last
	}

	return record
}
