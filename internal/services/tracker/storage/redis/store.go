// Package redis is an alternate remote snapshot store keeping each snapshot
// in a hash with its version.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/pitchside/internal/platform/errors"
	"github.com/louisbranch/pitchside/internal/services/tracker/storage"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "pitchside:snapshot:"

// saveScript writes the hash only when the stored version is older.
var saveScript = goredis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'payload', ARGV[2], 'updated_at', ARGV[3])
return 1
`)

// Store provides Redis-backed snapshot persistence.
type Store struct {
	client *goredis.Client
}

// Dial parses url and creates a client without contacting the server.
func Dial(url string) (*Store, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewStore(goredis.NewClient(opts)), nil
}

// NewStore wraps an existing client.
func NewStore(client *goredis.Client) *Store {
	return &Store{client: client}
}

// Close releases the client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return storage.ErrNotConfigured
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apperrors.Wrap(apperrors.CodeRemoteUnavailable, "ping redis", err)
	}
	return nil
}

// SaveSnapshot stores record when it is newer than the stored version.
func (s *Store) SaveSnapshot(ctx context.Context, record storage.SnapshotRecord) error {
	if s == nil || s.client == nil {
		return storage.ErrNotConfigured
	}
	if strings.TrimSpace(record.Key) == "" {
		return fmt.Errorf("snapshot key is required")
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	written, err := saveScript.Run(ctx, s.client,
		[]string{snapshotKey(record.Key)},
		record.Version,
		record.Payload,
		record.UpdatedAt.UTC().UnixMilli(),
	).Int()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeRemoteUnavailable, "save snapshot", err)
	}
	if written == 0 {
		return storage.ErrStale.WithMetadata("key", record.Key)
	}
	return nil
}

// LoadSnapshot returns the stored record for key.
func (s *Store) LoadSnapshot(ctx context.Context, key string) (storage.SnapshotRecord, error) {
	if s == nil || s.client == nil {
		return storage.SnapshotRecord{}, storage.ErrNotConfigured
	}
	fields, err := s.client.HGetAll(ctx, snapshotKey(key)).Result()
	if err != nil {
		return storage.SnapshotRecord{}, apperrors.Wrap(apperrors.CodeRemoteUnavailable, "load snapshot", err)
	}
	return parseRecord(strings.TrimSpace(key), fields)
}

func snapshotKey(key string) string {
	return keyPrefix + strings.TrimSpace(key)
}

func parseRecord(key string, fields map[string]string) (storage.SnapshotRecord, error) {
	if len(fields) == 0 {
		return storage.SnapshotRecord{}, storage.ErrNotFound.WithMetadata("key", key)
	}
	payload, ok := fields["payload"]
	if !ok {
		return storage.SnapshotRecord{}, errors.New("snapshot hash has no payload")
	}
	version, err := strconv.ParseInt(fields["version"], 10, 64)
	if err != nil {
		return storage.SnapshotRecord{}, fmt.Errorf("parse snapshot version: %w", err)
	}
	record := storage.SnapshotRecord{Key: key, Version: version, Payload: []byte(payload)}
	if raw := fields["updated_at"]; raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return storage.SnapshotRecord{}, fmt.Errorf("parse snapshot updated_at: %w", err)
		}
		record.UpdatedAt = time.UnixMilli(ms).UTC()
	}
	return record, nil
}

var _ storage.RemoteStore = (*Store)(nil)
