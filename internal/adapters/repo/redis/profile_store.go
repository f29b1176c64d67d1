package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/bnema/wallet-accounts-cli/internal/ports"
	goredis "github.com/redis/go-redis/v9"
)

const (
	DefaultPrefix = "wa:profile:"
	maxTxRetries  = 5
)

type Config struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

// ProfileStore keeps session records as JSON values, one key per user.
type ProfileStore struct {
	client *goredis.Client
	prefix string
	clock  ports.Clock
}

var _ ports.ProfileStore = (*ProfileStore)(nil)

func NewProfileStore(ctx context.Context, cfg Config, clock ports.Clock) (*ProfileStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis address required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &ProfileStore{client: client, prefix: cfg.Prefix, clock: clock}, nil
}

func (s *ProfileStore) Close() error {
	return s.client.Close()
}

func (s *ProfileStore) key(userID domain.UserID) string {
	return s.prefix + string(userID)
}

func (s *ProfileStore) Read(ctx context.Context, userID domain.UserID) (domain.SessionRecord, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.SessionRecord{}, domain.ErrProfileNotFound
		}
		return domain.SessionRecord{}, fmt.Errorf("redis get profile: %w", err)
	}

	return decodeRecord(data)
}

// Write applies the patch inside a WATCH transaction so concurrent writers
// cannot drop each other's fields.
func (s *ProfileStore) Write(ctx context.Context, userID domain.UserID, patch domain.SessionPatch) error {
	key := s.key(userID)

	apply := func(tx *goredis.Tx) error {
		var record domain.SessionRecord

		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, goredis.Nil):
		case err != nil:
			return fmt.Errorf("redis get profile: %w", err)
		default:
			if record, err = decodeRecord(data); err != nil {
				return err
			}
		}

		encoded, err := encodeRecord(record.Apply(patch, s.clock.Now()))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, apply, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("redis write profile: %w", err)
	}

	return fmt.Errorf("redis write profile: %w", goredis.TxFailedErr)
}

type recordJSON struct {
	WalletAddress      string     `json:"wallet_address"`
	DisplayName        string     `json:"display_name"`
	AvatarURL          string     `json:"avatar_url"`
	LastDisconnectTime *time.Time `json:"last_disconnect_time,omitempty"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func encodeRecord(record domain.SessionRecord) ([]byte, error) {
	data, err := json.Marshal(recordJSON(record))
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (domain.SessionRecord, error) {
	var decoded recordJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return domain.SessionRecord{}, fmt.Errorf("decode profile: %w", err)
	}
	return domain.SessionRecord(decoded), nil
}
